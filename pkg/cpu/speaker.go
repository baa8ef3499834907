package cpu

// Speaker is the audio side of the machine. Beep is called once each time
// the sound timer counts down to zero and must not block the cycle.
type Speaker interface {
	Beep()
}
