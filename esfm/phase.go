package esfm

// phaseGenerate advances one slot's 19-bit phase accumulator and publishes
// the 10-bit phase the waveform unit will see this sample. Vibrato bends
// f_num before the block shift; a pending phase reset from the envelope
// zeroes the accumulator after the current phase has been sampled, so the
// reset is audible from the next sample on.
func (c *Chip) phaseGenerate(chIdx, slIdx int) {
	ch := &c.channels[chIdx]
	s := &ch.slots[slIdx]

	fNum := s.fNum
	if s.vibratoEn {
		depth := int16((fNum >> 7) & 0x07)
		vibPos := c.vibratoPos
		if vibPos&0x03 == 0 {
			depth = 0
		} else if vibPos&0x01 != 0 {
			depth >>= 1
		}
		if !s.vibratoDeep {
			depth >>= 1
		}
		if vibPos&0x04 != 0 {
			depth = -depth
		}
		fNum += uint16(depth)
	}

	basefreq := (uint32(fNum) << s.block) >> 1

	phase := uint16(s.phaseAcc>>9) & 0x3ff
	if s.phaseReset {
		s.phaseAcc = 0
	}
	s.phaseAcc = (s.phaseAcc + (basefreq*uint32(freqMult[s.mult]))>>1) & (1<<19 - 1)

	s.phaseOut = phase

	// Rhythm mode replaces the fourth slot's phase with a drum bit network:
	// taps from its own phase and its slot-2 sibling's phase are folded
	// with one bit of the noise generator.
	if slIdx == 3 && s.rhyNoise != rhythmOff {
		sibPhase := ch.slots[2].phaseOut
		b2 := (phase >> 2) & 0x01
		b3 := (phase >> 3) & 0x01
		b7 := (phase >> 7) & 0x01
		b8 := (phase >> 8) & 0x01
		tc3 := (sibPhase >> 3) & 0x01
		tc5 := (sibPhase >> 5) & 0x01
		rmXor := (b2 ^ b7) | (b3 ^ tc5) | (tc3 ^ tc5)
		noiseBit := uint16(c.lfsr & 0x01)

		switch s.rhyNoise {
		case rhythmSnare:
			s.phaseOut = b8<<9 | (b8^noiseBit)<<8
		case rhythmHiHat:
			s.phaseOut = rmXor << 9
			if rmXor^noiseBit != 0 {
				s.phaseOut |= 0xd0
			} else {
				s.phaseOut |= 0x34
			}
		case rhythmTopCymbal:
			s.phaseOut = rmXor<<9 | 0x80
		}
	}

	// The noise LFSR shifts once per slot, 72 times per sample.
	n := ((c.lfsr >> 14) ^ c.lfsr) & 0x01
	c.lfsr = c.lfsr>>1 | n<<22
}

// slotGenerate feeds the modulator input into the waveform unit and
// accumulates the attenuated result onto the channel bus. The L/R enables
// are stored as all-ones or zero masks so gating is a plain AND.
func (c *Chip) slotGenerate(chIdx, slIdx int) {
	ch := &c.channels[chIdx]
	s := &ch.slots[slIdx]

	phase := int32(s.phaseOut)
	if s.modInLevel != 0 {
		phase += int32(c.slotModInput(chIdx, slIdx)) >> (7 - s.modInLevel)
	}

	s.output = waveformOutput(s.waveform, uint16(phase)&0x3ff, s.egOutput)

	if s.outputLevel != 0 {
		val := s.output >> (7 - s.outputLevel)
		ch.output[0] += val & s.outEnable[0]
		ch.output[1] += val & s.outEnable[1]
	}
}
