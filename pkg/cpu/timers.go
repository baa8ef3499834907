package cpu

// TickTimers decrements the delay and sound timers once. It reports true,
// and notifies the Speaker, when the sound timer has just reached zero.
func (c *CPU) TickTimers() bool {
	if c.DelayTimer > 0 {
		c.DelayTimer--
	}

	if c.SoundTimer == 0 {
		return false
	}
	c.SoundTimer--
	if c.SoundTimer != 0 {
		return false
	}

	if c.Speaker != nil {
		c.Speaker.Beep()
	}
	return true
}
