// Package scope draws a rendered sample buffer as a terminal oscilloscope
// view. It operates on an already-generated buffer, so there is no audio
// device and no real-time loop involved: one frame is drawn, redrawn on
// resize, and the view closes on Escape, Enter or 'q'.
package scope

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Show displays samples as a min/max waveform plot until the user dismisses
// the view.
func Show(samples []int16, title string) error {
	if len(samples) == 0 {
		return fmt.Errorf("scope: no samples to display")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite))

	draw(screen, samples, title)

	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyEnter:
				return nil
			case ev.Rune() == 'q':
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
			draw(screen, samples, title)
		}
	}
}

func draw(screen tcell.Screen, samples []int16, title string) {
	screen.Clear()
	width, height := screen.Size()
	if width < 4 || height < 4 {
		screen.Show()
		return
	}

	plotTop := 1
	plotHeight := height - 2
	mid := plotTop + plotHeight/2

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, r := range title {
		if i >= width {
			break
		}
		screen.SetContent(i, 0, r, nil, style)
	}

	// Each column covers a window of samples; draw a vertical bar from the
	// window minimum to its maximum so transients stay visible at any
	// terminal width.
	window := len(samples) / width
	if window == 0 {
		window = 1
	}
	for x := 0; x < width; x++ {
		start := x * window
		if start >= len(samples) {
			break
		}
		end := start + window
		if end > len(samples) {
			end = len(samples)
		}

		lo, hi := samples[start], samples[start]
		for _, s := range samples[start:end] {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}

		yHi := mid - int(int32(hi)*int32(plotHeight/2)/32768)
		yLo := mid - int(int32(lo)*int32(plotHeight/2)/32768)
		for y := yHi; y <= yLo; y++ {
			if y >= plotTop && y < plotTop+plotHeight {
				screen.SetContent(x, y, '█', nil, style)
			}
		}
	}

	footer := fmt.Sprintf("%d samples  [esc/q to close]", len(samples))
	for i, r := range footer {
		if i >= width {
			break
		}
		screen.SetContent(i, height-1, r, nil, style)
	}

	screen.Show()
}
