package esfm

import "github.com/valerio/go-esfm/esfm/bit"

// Native-mode register map, 11-bit address space:
//
//	0x000-0x23F  slot registers: channel = addr>>5, slot = (addr>>3)&3, reg = addr&7
//	0x240-0x24F  key-on, channels 0..15 (bit0 key-on, bit1 4-op pairing latch)
//	0x250-0x253  key-on, channels 16/17 split into first/second slot pair
//	0x402/0x403  timer reload values
//	0x404        timer control
//	0x408        config (bit6 keyscale mode)
//	0x501        test register
const (
	regSlotEnd      = 0x240
	regKeyOnEnd     = 0x250
	regKeyOnHighEnd = 0x254
	regTimer0       = 0x402
	regTimer1       = 0x403
	regTimerControl = 0x404
	regConfig       = 0x408
	regTest         = 0x501
)

// WriteRegister latches one byte into the native-mode register file.
// Addresses outside the map are silently ignored.
func (c *Chip) WriteRegister(address uint16, data uint8) {
	address &= 0x7ff
	switch {
	case address < regSlotEnd:
		c.writeSlotRegister(address, data)
	case address < regKeyOnEnd:
		ch := &c.channels[address-0x240]
		ch.keyOn = bit.IsSet(0, data)
		ch.emu4opEnable[0] = bit.IsSet(1, data)
	case address < regKeyOnHighEnd:
		ch := &c.channels[16+(address&0x01)]
		if address&0x02 != 0 {
			ch.keyOn2 = bit.IsSet(0, data)
		} else {
			ch.keyOn = bit.IsSet(0, data)
		}
	case address == regTimer0:
		c.timerReload[0] = data
	case address == regTimer1:
		c.timerReload[1] = data
	case address == regTimerControl:
		c.writeTimerControl(data)
	case address == regConfig:
		c.keyscaleMode = bit.IsSet(6, data)
		c.updateKeyscaleAll()
	case address == regTest:
		c.testRegister = data
		c.testDistort = bit.IsSet(1, data)
		c.testAttenuate = bit.IsSet(4, data)
		c.testMute = bit.IsSet(6, data)
	}
}

func (c *Chip) writeSlotRegister(address uint16, data uint8) {
	s := &c.channels[address>>5].slots[(address>>3)&0x03]
	switch address & 0x07 {
	case 0:
		s.tremoloEn = bit.IsSet(7, data)
		s.vibratoEn = bit.IsSet(6, data)
		s.envSustaining = bit.IsSet(5, data)
		s.ksr = bit.IsSet(4, data)
		s.mult = bit.ExtractBits(data, 3, 0)
	case 1:
		s.ksl = bit.ExtractBits(data, 7, 6)
		s.tLevel = bit.ExtractBits(data, 5, 0)
	case 2:
		s.attackRate = bit.ExtractBits(data, 7, 4)
		s.decayRate = bit.ExtractBits(data, 3, 0)
	case 3:
		s.sustainLvl = bit.ExtractBits(data, 7, 4)
		if s.sustainLvl == 0x0f {
			// The top sustain setting extends to the full attenuation
			// range, as on OPL2/OPL3.
			s.sustainLvl = 0x1f
		}
		s.releaseRate = bit.ExtractBits(data, 3, 0)
	case 4:
		s.fNum = (s.fNum & 0x300) | uint16(data)
		c.updateSlotKeyscale(s)
	case 5:
		s.envDelay = bit.ExtractBits(data, 7, 5)
		s.block = bit.ExtractBits(data, 4, 2)
		s.fNum = (s.fNum & 0x0ff) | uint16(bit.ExtractBits(data, 1, 0))<<8
		c.updateSlotKeyscale(s)
	case 6:
		s.tremoloDeep = bit.IsSet(7, data)
		s.vibratoDeep = bit.IsSet(6, data)
		s.outEnable[0] = outEnableMask(bit.IsSet(5, data))
		s.outEnable[1] = outEnableMask(bit.IsSet(4, data))
		s.modInLevel = bit.ExtractBits(data, 3, 1)
	case 7:
		s.outputLevel = bit.ExtractBits(data, 7, 5)
		s.rhyNoise = bit.ExtractBits(data, 4, 3)
		s.waveform = bit.ExtractBits(data, 2, 0)
	}
}

func outEnableMask(enabled bool) int16 {
	if enabled {
		return ^0
	}
	return 0
}

// ReadRegister reconstructs the documented bits of a register. Reserved
// bits and unmapped addresses read as zero.
func (c *Chip) ReadRegister(address uint16) uint8 {
	address &= 0x7ff
	switch {
	case address < regSlotEnd:
		return c.readSlotRegister(address)
	case address < regKeyOnEnd:
		ch := &c.channels[address-0x240]
		return bit.PackFlag(0, ch.keyOn) | bit.PackFlag(1, ch.emu4opEnable[0])
	case address < regKeyOnHighEnd:
		ch := &c.channels[16+(address&0x01)]
		if address&0x02 != 0 {
			return bit.PackFlag(0, ch.keyOn2)
		}
		return bit.PackFlag(0, ch.keyOn)
	case address == regTimer0:
		return c.timerReload[0]
	case address == regTimer1:
		return c.timerReload[1]
	case address == regTimerControl:
		return bit.PackFlag(6, c.timerMask[0]) | bit.PackFlag(5, c.timerMask[1]) |
			bit.PackFlag(1, c.timerEnable[1]) | bit.PackFlag(0, c.timerEnable[0])
	case address == regConfig:
		return bit.PackFlag(6, c.keyscaleMode)
	case address == regTest:
		return c.testRegister
	}
	return 0
}

func (c *Chip) readSlotRegister(address uint16) uint8 {
	s := &c.channels[address>>5].slots[(address>>3)&0x03]
	switch address & 0x07 {
	case 0:
		return bit.PackFlag(7, s.tremoloEn) | bit.PackFlag(6, s.vibratoEn) |
			bit.PackFlag(5, s.envSustaining) | bit.PackFlag(4, s.ksr) | s.mult
	case 1:
		return s.ksl<<6 | s.tLevel
	case 2:
		return s.attackRate<<4 | s.decayRate
	case 3:
		return (s.sustainLvl&0x0f)<<4 | s.releaseRate
	case 4:
		return uint8(s.fNum)
	case 5:
		return s.envDelay<<5 | s.block<<2 | uint8(s.fNum>>8)
	case 6:
		return bit.PackFlag(7, s.tremoloDeep) | bit.PackFlag(6, s.vibratoDeep) |
			bit.PackFlag(5, s.outEnable[0] != 0) | bit.PackFlag(4, s.outEnable[1] != 0) |
			s.modInLevel<<1
	case 7:
		return s.outputLevel<<5 | s.rhyNoise<<3 | s.waveform
	}
	return 0
}

// WritePort implements the legacy 4-port bus interface. In native mode,
// port 0 writes data at the address latch and post-increments it, ports 1
// and 2 set the latch low and high bytes. In emulation mode the ports
// behave like an OPL3 pair of address/data registers, but only the mode
// register 0x105 is decoded: bit 0 latches the OPL3 "new" flag and bit 7
// switches the chip into native mode. The rest of the OPL3-compat map is a
// write-through veneer outside this core.
func (c *Chip) WritePort(offset uint8, data uint8) {
	if c.nativeMode {
		switch offset & 0x03 {
		case 0:
			c.WriteRegister(c.addrLatch&0x7ff, data)
			c.addrLatch++
		case 1:
			c.addrLatch = (c.addrLatch & 0xff00) | uint16(data)
		case 2:
			c.addrLatch = (c.addrLatch & 0x00ff) | uint16(data)<<8
		}
		return
	}

	switch offset & 0x03 {
	case 0:
		c.addrLatch = uint16(data)
	case 2:
		c.addrLatch = 0x100 | uint16(data)
	case 1, 3:
		if c.addrLatch == 0x105 {
			c.emuNewmode = bit.IsSet(0, data)
			c.nativeMode = bit.IsSet(7, data)
		}
	}
}

// ReadPort returns chip status at offset 0 (bit7 IRQ, bit6 timer 0
// overflow, bit5 timer 1 overflow) and readback of the latched register at
// offset 1. Other offsets read zero.
func (c *Chip) ReadPort(offset uint8) uint8 {
	switch offset & 0x03 {
	case 0:
		return bit.PackFlag(7, c.irq) |
			bit.PackFlag(6, c.timerOverflow[0]) |
			bit.PackFlag(5, c.timerOverflow[1])
	case 1:
		return c.ReadRegister(c.addrLatch & 0x7ff)
	}
	return 0
}

// writeTimerControl handles register 0x404. Bit 7 acknowledges: it clears
// both overflow flags and the IRQ and ignores every other bit of the write.
func (c *Chip) writeTimerControl(data uint8) {
	if bit.IsSet(7, data) {
		c.timerOverflow[0] = false
		c.timerOverflow[1] = false
		c.irq = false
		return
	}

	c.timerMask[0] = bit.IsSet(6, data)
	c.timerMask[1] = bit.IsSet(5, data)

	for i := 0; i < 2; i++ {
		enable := bit.IsSet(uint8(i), data)
		if enable && !c.timerEnable[i] {
			c.timerCounter[i] = c.timerReload[i]
		}
		c.timerEnable[i] = enable
		if c.timerMask[i] {
			c.timerOverflow[i] = false
		}
	}
	c.irq = c.timerOverflow[0] || c.timerOverflow[1]
}

// tickTimer advances one hardware timer; on wrap it reloads and, unless
// masked, raises its overflow flag and the IRQ line.
func (c *Chip) tickTimer(i int) {
	if !c.timerEnable[i] {
		return
	}
	c.timerCounter[i]++
	if c.timerCounter[i] == 0 {
		c.timerCounter[i] = c.timerReload[i]
		if !c.timerMask[i] {
			c.timerOverflow[i] = true
			c.irq = true
		}
	}
}
