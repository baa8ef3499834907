package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Keypad receives hex keypad transitions. *cpu.CPU satisfies it.
type Keypad interface {
	PressKey(key uint8)
	ReleaseKey(key uint8)
}

// DefaultKeyMap lays the 4×4 hex keypad over the left side of a QWERTY
// keyboard:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var DefaultKeyMap = map[ebiten.Key]uint8{
	ebiten.Key1: 0x1, ebiten.Key2: 0x2, ebiten.Key3: 0x3, ebiten.Key4: 0xC,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
}

type Mapper struct {
	keys map[ebiten.Key]uint8

	// reused between polls
	pressed  []ebiten.Key
	released []ebiten.Key
}

// NewMapper uses DefaultKeyMap when keys is nil.
func NewMapper(keys map[ebiten.Key]uint8) *Mapper {
	if keys == nil {
		keys = DefaultKeyMap
	}
	return &Mapper{keys: keys}
}

// Lookup returns the keypad key bound to k.
func (m *Mapper) Lookup(k ebiten.Key) (uint8, bool) {
	key, ok := m.keys[k]
	return key, ok
}

// Press forwards a physical key press to pad. Unmapped keys are ignored
// and reported as false.
func (m *Mapper) Press(k ebiten.Key, pad Keypad) bool {
	key, ok := m.keys[k]
	if ok {
		pad.PressKey(key)
	}
	return ok
}

func (m *Mapper) Release(k ebiten.Key, pad Keypad) bool {
	key, ok := m.keys[k]
	if ok {
		pad.ReleaseKey(key)
	}
	return ok
}

// Poll forwards the key transitions of the current tick. It must be
// called from the game's Update.
func (m *Mapper) Poll(pad Keypad) {
	m.pressed = inpututil.AppendJustPressedKeys(m.pressed[:0])
	for _, k := range m.pressed {
		m.Press(k, pad)
	}
	m.released = inpututil.AppendJustReleasedKeys(m.released[:0])
	for _, k := range m.released {
		m.Release(k, pad)
	}
}
