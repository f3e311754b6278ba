package esfm

// The optional delayed-write FIFO decouples a host's register stream from
// the sample clock: writes are stamped a fixed two samples into the future
// and applied in order at the start of the sample whose index they target.
// Hosts that do their own scheduling can ignore it and call WriteRegister
// directly between samples.

// writeBufDelay is the fixed scheduling latency, in samples, between
// queueing a write and it taking effect.
const writeBufDelay = 2

// WriteRegisterBuffered queues a register write to be applied just before
// the sample two frames from now. Timestamps are clamped to be
// non-decreasing so the FIFO always drains in order.
func (c *Chip) WriteRegisterBuffered(address uint16, data uint8) {
	ts := c.samples + writeBufDelay
	if n := len(c.writeBuf); n > 0 && c.writeBuf[n-1].timestamp > ts {
		ts = c.writeBuf[n-1].timestamp
	}
	c.writeBuf = append(c.writeBuf, bufferedWrite{timestamp: ts, address: address, data: data})
}

// flushWrites applies every queued write due at the current sample index.
func (c *Chip) flushWrites() {
	n := 0
	for n < len(c.writeBuf) && c.writeBuf[n].timestamp <= c.samples {
		c.WriteRegister(c.writeBuf[n].address, c.writeBuf[n].data)
		n++
	}
	if n > 0 {
		remaining := copy(c.writeBuf, c.writeBuf[n:])
		c.writeBuf = c.writeBuf[:remaining]
	}
}
