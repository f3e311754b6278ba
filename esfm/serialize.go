package esfm

import (
	"encoding/binary"
	"errors"
)

// Snapshot support: all mutable chip state round-trips through a compact
// little-endian buffer, so a host can save mid-note and resume with a
// bit-identical output stream. The write FIFO is drained into the register
// file before saving, which keeps the format free of variable-length data.

const serializeVersion = 1

var (
	errSnapshotSize    = errors.New("esfm: snapshot buffer too small")
	errSnapshotVersion = errors.New("esfm: unsupported snapshot version")
)

// statePacker visits every serialized field in a fixed order. The same walk
// is used for writing, reading and size counting, so the three can never
// disagree about the layout.
type statePacker interface {
	u8(*uint8)
	u16(*uint16)
	u32(*uint32)
	u64(*uint64)
	i16(*int16)
	flag(*bool)
}

// SerializeSize returns the number of bytes a snapshot occupies. The value
// is constant and can be used to pre-allocate a reusable buffer.
func (c *Chip) SerializeSize() int {
	n := &countPacker{}
	n.count++ // version byte
	c.walkState(n)
	return n.count
}

// Serialize writes the chip state into buf. Pending buffered writes are
// applied first. Returns an error if buf is smaller than SerializeSize().
func (c *Chip) Serialize(buf []byte) error {
	if len(buf) < c.SerializeSize() {
		return errSnapshotSize
	}
	for len(c.writeBuf) > 0 {
		w := c.writeBuf[0]
		c.writeBuf = c.writeBuf[1:]
		c.WriteRegister(w.address, w.data)
	}
	if len(c.writeBuf) == 0 {
		c.writeBuf = nil
	}

	p := &writePacker{buf: buf}
	buf[0] = serializeVersion
	p.off = 1
	c.walkState(p)
	return nil
}

// Deserialize restores chip state from a buffer produced by Serialize.
func (c *Chip) Deserialize(buf []byte) error {
	if len(buf) < c.SerializeSize() {
		return errSnapshotSize
	}
	if buf[0] != serializeVersion {
		return errSnapshotVersion
	}

	c.Reset()
	p := &readPacker{buf: buf, off: 1}
	c.walkState(p)
	return nil
}

// walkState enumerates all mutable state in snapshot order.
func (c *Chip) walkState(p statePacker) {
	for chIdx := range c.channels {
		ch := &c.channels[chIdx]
		for slIdx := range ch.slots {
			s := &ch.slots[slIdx]

			p.u16(&s.fNum)
			p.u8(&s.block)
			p.u8(&s.mult)
			p.u8(&s.tLevel)
			p.u8(&s.ksl)
			p.flag(&s.ksr)
			p.u8(&s.attackRate)
			p.u8(&s.decayRate)
			p.u8(&s.sustainLvl)
			p.u8(&s.releaseRate)
			p.flag(&s.envSustaining)
			p.u8(&s.waveform)
			p.flag(&s.tremoloEn)
			p.flag(&s.tremoloDeep)
			p.flag(&s.vibratoEn)
			p.flag(&s.vibratoDeep)
			p.u8(&s.modInLevel)
			p.u8(&s.outputLevel)
			p.i16(&s.outEnable[0])
			p.i16(&s.outEnable[1])
			p.u8(&s.envDelay)
			p.u8(&s.rhyNoise)

			p.u16(&s.egPosition)
			p.u16(&s.egKslOffset)
			p.u16(&s.egOutput)
			p.u8(&s.keyscale)
			p.u8(&s.egState)
			p.flag(&s.egDelayRun)
			p.u16(&s.egDelayCounter)
			p.u32(&s.phaseAcc)
			p.u16(&s.phaseOut)
			p.flag(&s.phaseReset)
			p.i16(&s.output)
			p.i16(&s.prevOutput)
			p.i16(&s.feedbackBuf)
		}
		p.flag(&ch.keyOn)
		p.flag(&ch.keyOn2)
		p.flag(&ch.emu4opEnable[0])
		p.flag(&ch.emu4opEnable[1])
	}

	p.u64(&c.egTimer)
	p.flag(&c.egTimerOverflow)
	p.flag(&c.egTick)
	p.u8(&c.egClocks)
	p.u16(&c.globalTimer)
	p.u8(&c.tremolo)
	p.u8(&c.tremoloPos)
	p.u8(&c.vibratoPos)
	p.u32(&c.lfsr)
	p.flag(&c.nativeMode)
	p.flag(&c.keyscaleMode)
	p.flag(&c.emuNewmode)
	p.u8(&c.testRegister)
	p.flag(&c.testDistort)
	p.flag(&c.testAttenuate)
	p.flag(&c.testMute)
	for i := 0; i < 2; i++ {
		p.u8(&c.timerCounter[i])
		p.u8(&c.timerReload[i])
		p.flag(&c.timerEnable[i])
		p.flag(&c.timerMask[i])
		p.flag(&c.timerOverflow[i])
	}
	p.flag(&c.irq)
	p.u16(&c.addrLatch)
	p.u64(&c.samples)
}

type countPacker struct{ count int }

func (p *countPacker) u8(*uint8)   { p.count++ }
func (p *countPacker) u16(*uint16) { p.count += 2 }
func (p *countPacker) u32(*uint32) { p.count += 4 }
func (p *countPacker) u64(*uint64) { p.count += 8 }
func (p *countPacker) i16(*int16)  { p.count += 2 }
func (p *countPacker) flag(*bool)  { p.count++ }

type writePacker struct {
	buf []byte
	off int
}

func (p *writePacker) u8(v *uint8) {
	p.buf[p.off] = *v
	p.off++
}

func (p *writePacker) u16(v *uint16) {
	binary.LittleEndian.PutUint16(p.buf[p.off:], *v)
	p.off += 2
}

func (p *writePacker) u32(v *uint32) {
	binary.LittleEndian.PutUint32(p.buf[p.off:], *v)
	p.off += 4
}

func (p *writePacker) u64(v *uint64) {
	binary.LittleEndian.PutUint64(p.buf[p.off:], *v)
	p.off += 8
}

func (p *writePacker) i16(v *int16) {
	binary.LittleEndian.PutUint16(p.buf[p.off:], uint16(*v))
	p.off += 2
}

func (p *writePacker) flag(v *bool) {
	if *v {
		p.buf[p.off] = 1
	} else {
		p.buf[p.off] = 0
	}
	p.off++
}

type readPacker struct {
	buf []byte
	off int
}

func (p *readPacker) u8(v *uint8) {
	*v = p.buf[p.off]
	p.off++
}

func (p *readPacker) u16(v *uint16) {
	*v = binary.LittleEndian.Uint16(p.buf[p.off:])
	p.off += 2
}

func (p *readPacker) u32(v *uint32) {
	*v = binary.LittleEndian.Uint32(p.buf[p.off:])
	p.off += 4
}

func (p *readPacker) u64(v *uint64) {
	*v = binary.LittleEndian.Uint64(p.buf[p.off:])
	p.off += 8
}

func (p *readPacker) i16(v *int16) {
	*v = int16(binary.LittleEndian.Uint16(p.buf[p.off:]))
	p.off += 2
}

func (p *readPacker) flag(v *bool) {
	*v = p.buf[p.off] != 0
	p.off++
}
