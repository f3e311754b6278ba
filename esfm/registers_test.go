package esfm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotRegisterRoundTrip(t *testing.T) {
	// Documented bits per slot register; reg 6 bit 0 is reserved and reads
	// zero.
	masks := [8]uint8{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe, 0xff}

	c := New()
	patterns := []uint8{0x00, 0xff, 0xa5, 0x5a, 0x13, 0xc8}
	for _, channel := range []uint16{0, 5, 17} {
		for slot := uint16(0); slot < 4; slot++ {
			for reg := uint16(0); reg < 8; reg++ {
				for _, p := range patterns {
					addr := slotReg(channel, slot, reg)
					c.WriteRegister(addr, p)
					assert.Equal(t, p&masks[reg], c.ReadRegister(addr),
						"channel %d slot %d reg %d pattern %#x", channel, slot, reg, p)
				}
			}
		}
	}
}

func TestKeyOnRegisters(t *testing.T) {
	c := New()

	for ch := uint16(0); ch < 16; ch++ {
		c.WriteRegister(0x240+ch, 0x03)
		assert.True(t, c.channels[ch].keyOn)
		assert.True(t, c.channels[ch].emu4opEnable[0])
		assert.Equal(t, uint8(0x03), c.ReadRegister(0x240+ch))

		c.WriteRegister(0x240+ch, 0x00)
		assert.False(t, c.channels[ch].keyOn)
	}
}

func TestKeyOnChannels16And17(t *testing.T) {
	c := New()

	// Address bit 0 selects the channel, bit 1 selects the slot pair.
	c.WriteRegister(0x250, 0x01)
	assert.True(t, c.channels[16].keyOn)
	assert.False(t, c.channels[17].keyOn)

	c.WriteRegister(0x251, 0x01)
	assert.True(t, c.channels[17].keyOn)

	c.WriteRegister(0x252, 0x01)
	assert.True(t, c.channels[16].keyOn2)
	assert.False(t, c.channels[17].keyOn2)

	c.WriteRegister(0x253, 0x01)
	assert.True(t, c.channels[17].keyOn2)

	assert.Equal(t, uint8(0x01), c.ReadRegister(0x252))
	c.WriteRegister(0x252, 0x00)
	assert.False(t, c.channels[16].keyOn2)
	assert.True(t, c.channels[16].keyOn, "slot pairs must key independently")
}

func TestSecondKeyOnDrivesUpperSlotPair(t *testing.T) {
	c := New()
	programSine(c, 17, 2, 0x120, 4, 1)

	// First key-on bit must not start slots 2/3 of channel 17.
	c.WriteRegister(0x251, 0x01)
	renderFrames(c, 64)
	assert.Equal(t, uint16(0x1ff), c.channels[17].slots[2].egPosition)

	c.WriteRegister(0x253, 0x01)
	renderFrames(c, 4)
	assert.Equal(t, uint16(0), c.channels[17].slots[2].egPosition)
}

func TestOutOfRangeAddresses(t *testing.T) {
	c := New()
	before := *c

	for _, addr := range []uint16{0x254, 0x300, 0x400, 0x405, 0x409, 0x500, 0x502, 0x7ff} {
		c.WriteRegister(addr, 0xff)
		assert.Equal(t, uint8(0), c.ReadRegister(addr), "address %#x", addr)
	}
	assert.Equal(t, before, *c, "ignored writes must not change state")
}

func TestNativePortInterface(t *testing.T) {
	c := New()

	c.WritePort(1, 0x40)
	c.WritePort(2, 0x02) // latch = 0x0240
	c.WritePort(0, 0x01) // key-on channel 0, latch auto-increments
	assert.True(t, c.channels[0].keyOn)

	c.WritePort(0, 0x01) // now writes 0x241: key-on channel 1
	assert.True(t, c.channels[1].keyOn)

	c.WritePort(1, 0x40)
	assert.Equal(t, uint8(0x01), c.ReadPort(1), "readback of latched register")
	assert.Equal(t, uint8(0), c.ReadPort(2))
	assert.Equal(t, uint8(0), c.ReadPort(3))
}

func TestEmulationModeHandshake(t *testing.T) {
	c := New()
	c.SetNativeMode(false)

	c.WritePort(2, 0x05) // latch OPL3 register 0x105
	c.WritePort(3, 0x81)
	assert.True(t, c.nativeMode, "bit 7 of 0x105 enters native mode")
	assert.True(t, c.emuNewmode)
}

func TestTimerOverflowAndStatus(t *testing.T) {
	c := New()
	require.Equal(t, uint8(0), c.ReadPort(0))

	c.WriteRegister(0x402, 0xff)
	c.WriteRegister(0x404, 0x01) // start timer 0 at its reload value

	// Timer 0 ticks every 4 samples; the first tick wraps 0xff.
	renderFrames(c, 4)
	status := c.ReadPort(0)
	assert.Equal(t, uint8(0xc0), status, "IRQ and timer 0 overflow expected")

	c.WriteRegister(0x404, 0x80) // acknowledge
	assert.Equal(t, uint8(0), c.ReadPort(0))
}

func TestTimerMaskSuppressesOverflow(t *testing.T) {
	c := New()
	c.WriteRegister(0x402, 0xff)
	c.WriteRegister(0x404, 0x41) // start timer 0 masked

	renderFrames(c, 64)
	assert.Equal(t, uint8(0), c.ReadPort(0), "masked timer must not raise status bits")
}

func TestConfigRegister(t *testing.T) {
	c := New()
	c.WriteRegister(0x408, 0x40)
	assert.True(t, c.keyscaleMode)
	assert.Equal(t, uint8(0x40), c.ReadRegister(0x408))

	c.WriteRegister(0x408, 0x00)
	assert.False(t, c.keyscaleMode)
}

func TestTestRegisterLatches(t *testing.T) {
	c := New()
	c.WriteRegister(0x501, 0x52)
	assert.Equal(t, uint8(0x52), c.ReadRegister(0x501))
	assert.True(t, c.testDistort)
	assert.True(t, c.testAttenuate)
	assert.True(t, c.testMute)
}
