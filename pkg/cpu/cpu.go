package cpu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"
)

const (
	MemorySize   = 4096
	ProgramStart = 0x200
	NumRegisters = 16
	NumKeys      = 16

	DisplayWidth  = 64
	DisplayHeight = 32
)

// RegF is the flag register, overwritten as a side effect by the
// arithmetic, shift and draw instructions.
const RegF = 0xF

type CPU struct {
	Memory [MemorySize]byte

	V  [NumRegisters]byte
	I  uint16
	PC uint16

	// Stack holds return addresses. It has no fixed depth; popping it
	// while empty is a fatal fault.
	Stack []uint16

	DelayTimer byte
	SoundTimer byte

	Display [DisplayWidth * DisplayHeight]byte
	// Redraw is set by instructions that touch the display and cleared by
	// the presentation side once the frame has been rendered.
	Redraw bool

	Keys [NumKeys]bool

	Halted bool
	Err    error

	Rand    *rand.Rand
	Speaker Speaker
	Logger  *slog.Logger

	cycles uint64
}

// Option configures a CPU at construction time.
type Option func(*CPU)

// WithSeed makes the random byte instruction reproducible.
func WithSeed(seed uint64) Option {
	return func(c *CPU) {
		c.Rand = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *CPU) {
		c.Rand = r
	}
}

// WithSpeaker attaches the collaborator notified on sound timer expiry.
func WithSpeaker(s Speaker) Option {
	return func(c *CPU) {
		c.Speaker = s
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *CPU) {
		c.Logger = l
	}
}

// NewCPU creates a machine with the font loaded and PC at ProgramStart.
func NewCPU(opts ...Option) *CPU {
	c := &CPU{}
	for _, opt := range opts {
		opt(c)
	}
	if c.Rand == nil {
		WithSeed(uint64(time.Now().UnixNano()))(c)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.Reset()
	return c
}

// Reset clears all machine state except the collaborators and reloads the font.
func (c *CPU) Reset() {
	c.Memory = [MemorySize]byte{}
	copy(c.Memory[FontStart:], FontSet[:])

	c.V = [NumRegisters]byte{}
	c.I = 0
	c.PC = ProgramStart
	c.Stack = c.Stack[:0]
	c.DelayTimer = 0
	c.SoundTimer = 0
	c.Display = [DisplayWidth * DisplayHeight]byte{}
	c.Redraw = false
	c.Keys = [NumKeys]bool{}
	c.Halted = false
	c.Err = nil
	c.cycles = 0
}

// LoadROM copies the program image into memory starting at ProgramStart.
// Read errors are returned unmodified.
func (c *CPU) LoadROM(r io.Reader) error {
	rom, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return c.loadBytes(rom)
}

func (c *CPU) LoadROMFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.Logger.Info("loading ROM", "path", path, "size", len(rom))
	if err := c.loadBytes(rom); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.Logger.Info("loaded ROM into memory", "path", path)
	return nil
}

func (c *CPU) loadBytes(rom []byte) error {
	if len(rom) > MemorySize-ProgramStart {
		return fmt.Errorf("%w: %d bytes > %d bytes", ErrROMTooLarge, len(rom), MemorySize-ProgramStart)
	}
	copy(c.Memory[ProgramStart:], rom)
	return nil
}

// Fetch reads the big-endian instruction word at PC.
func (c *CPU) Fetch() (uint16, error) {
	if int(c.PC)+1 >= MemorySize {
		return 0, &AddressError{Addr: c.PC, PC: c.PC}
	}
	return uint16(c.Memory[c.PC])<<8 | uint16(c.Memory[c.PC+1]), nil
}

// Step runs exactly one cycle: fetch, decode, execute and tick the timers.
// A fault halts the machine; every later call returns the same error.
func (c *CPU) Step() error {
	if c.Halted {
		return c.Err
	}

	pc := c.PC
	word, err := c.Fetch()
	if err != nil {
		return c.halt(err)
	}

	ins := Decode(word)
	c.PC += 2

	if c.Logger.Enabled(context.Background(), slog.LevelDebug) {
		c.Logger.Debug("exec",
			"pc", fmt.Sprintf("0x%03X", pc),
			"opcode", fmt.Sprintf("0x%04X", word),
			"instr", ins.String(),
		)
	}

	if err := c.execute(ins); err != nil {
		var unknown *UnknownOpcodeError
		var addr *AddressError
		switch {
		case errors.As(err, &unknown):
			unknown.PC = pc
		case errors.As(err, &addr):
			addr.PC = pc
		}
		return c.halt(err)
	}

	c.TickTimers()
	c.cycles++
	return nil
}

func (c *CPU) halt(err error) error {
	c.Halted = true
	c.Err = err
	c.Logger.Error("machine halted", "err", err)
	return err
}

// Cycles returns the number of cycles completed since the last reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Run steps the machine until it faults, ctx is cancelled or maxCycles
// cycles have run. maxCycles <= 0 means no limit.
func (c *CPU) Run(ctx context.Context, maxCycles int) error {
	for n := 0; maxCycles <= 0 || n < maxCycles; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (c *CPU) push(addr uint16) {
	c.Stack = append(c.Stack, addr)
}

func (c *CPU) pop() (uint16, error) {
	if len(c.Stack) == 0 {
		return 0, ErrStackUnderflow
	}
	addr := c.Stack[len(c.Stack)-1]
	c.Stack = c.Stack[:len(c.Stack)-1]
	return addr, nil
}

// PressKey and ReleaseKey latch keypad state; the index is masked to 0-F.
func (c *CPU) PressKey(key uint8) {
	c.Keys[key&0xF] = true
}

func (c *CPU) ReleaseKey(key uint8) {
	c.Keys[key&0xF] = false
}

func (c *CPU) KeyPressed(key uint8) bool {
	return c.Keys[key&0xF]
}

// firstPressedKey scans the keypad in index order.
func (c *CPU) firstPressedKey() (uint8, bool) {
	for i, down := range c.Keys {
		if down {
			return uint8(i), true
		}
	}
	return 0, false
}
