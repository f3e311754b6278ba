package main

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli"

	"github.com/valerio/go-esfm/esfm"
	"github.com/valerio/go-esfm/esfm/scope"
)

func main() {
	app := cli.NewApp()
	app.Name = "esfm"
	app.Description = "A deterministic tone renderer for the ESFM chip core"
	app.Usage = "esfm [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of samples to render",
			Value: 2048,
		},
		cli.IntFlag{
			Name:  "fnum",
			Usage: "Frequency number (10 bits)",
			Value: 0x120,
		},
		cli.IntFlag{
			Name:  "block",
			Usage: "Octave block (0-7)",
			Value: 4,
		},
		cli.IntFlag{
			Name:  "mult",
			Usage: "Frequency multiplier index (0-15)",
			Value: 1,
		},
		cli.IntFlag{
			Name:  "wave",
			Usage: "Waveform selector (0-7)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "hihat",
			Usage: "Render the rhythm-mode hi-hat instead of a tone",
		},
		cli.BoolFlag{
			Name:  "pcm",
			Usage: "Write raw interleaved s16le PCM to stdout",
		},
		cli.BoolFlag{
			Name:  "scope",
			Usage: "Show the rendered buffer in a terminal oscilloscope view",
		},
	}
	app.Action = render

	if err := app.Run(os.Args); err != nil {
		log.Error("Error rendering", "error", err)
		os.Exit(1)
	}
}

// slotRegister computes the native-mode address of a per-slot register.
func slotRegister(channel, slot, reg uint16) uint16 {
	return channel<<5 | slot<<3 | reg
}

// programTone sets up a single sustained carrier on channel 0 slot 0.
func programTone(chip *esfm.Chip, fnum, block, mult, wave uint16) {
	chip.WriteRegister(slotRegister(0, 0, 0), 0x20|uint8(mult&0x0f)) // sustaining, mult
	chip.WriteRegister(slotRegister(0, 0, 2), 0xf0)                  // instant attack
	chip.WriteRegister(slotRegister(0, 0, 4), uint8(fnum))
	chip.WriteRegister(slotRegister(0, 0, 5), uint8(block&0x07)<<2|uint8(fnum>>8&0x03))
	chip.WriteRegister(slotRegister(0, 0, 6), 0x30)                  // L+R enabled
	chip.WriteRegister(slotRegister(0, 0, 7), 0xe0|uint8(wave&0x07)) // full output level
	chip.WriteRegister(0x240, 0x01)                                  // key on
}

// programHiHat keys the rhythm-mode hi-hat on channel 7, with pitched
// phantom slots feeding the drum bit network.
func programHiHat(chip *esfm.Chip) {
	// Slot 2 supplies the sibling phase taps, silently.
	chip.WriteRegister(slotRegister(7, 2, 4), 0xc7)
	chip.WriteRegister(slotRegister(7, 2, 5), 0x10|0x01)

	chip.WriteRegister(slotRegister(7, 3, 0), 0x20)
	chip.WriteRegister(slotRegister(7, 3, 2), 0xf0)
	chip.WriteRegister(slotRegister(7, 3, 4), 0xae)
	chip.WriteRegister(slotRegister(7, 3, 5), 0x10|0x02)
	chip.WriteRegister(slotRegister(7, 3, 6), 0x30)
	chip.WriteRegister(slotRegister(7, 3, 7), 0xe0|0x10) // hi-hat noise mode
	chip.WriteRegister(0x247, 0x01)
}

func render(c *cli.Context) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return cli.NewExitError("frames must be positive", 1)
	}

	chip := esfm.New()
	if c.Bool("hihat") {
		programHiHat(chip)
	} else {
		programTone(chip,
			uint16(c.Int("fnum"))&0x3ff,
			uint16(c.Int("block")),
			uint16(c.Int("mult")),
			uint16(c.Int("wave")))
	}

	buf := make([]int16, frames*2)
	chip.GenerateStream(buf, frames)

	if c.Bool("pcm") {
		w := bufio.NewWriter(os.Stdout)
		if err := binary.Write(w, binary.LittleEndian, buf); err != nil {
			return err
		}
		return w.Flush()
	}

	var peakL, peakR int16
	var sumL, sumR float64
	for i := 0; i < frames; i++ {
		l, r := buf[i*2], buf[i*2+1]
		if abs16(l) > peakL {
			peakL = abs16(l)
		}
		if abs16(r) > peakR {
			peakR = abs16(r)
		}
		sumL += float64(l) * float64(l)
		sumR += float64(r) * float64(r)
	}
	log.Info("Rendered",
		"frames", frames,
		"rate", esfm.NativeSampleRate,
		"peakL", peakL,
		"peakR", peakR,
		"rmsL", math.Sqrt(sumL/float64(frames)),
		"rmsR", math.Sqrt(sumR/float64(frames)))

	if c.Bool("scope") {
		left := make([]int16, frames)
		for i := range left {
			left[i] = buf[i*2]
		}
		return scope.Show(left, "esfm left channel")
	}
	return nil
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}
