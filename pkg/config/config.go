package config

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

const (
	DefaultScale      = 18
	DefaultPitch      = 440
	DefaultPixelColor = "DDDDDD"
	DefaultBackground = "222222"
	DefaultFramerate  = 120
)

var (
	ErrNoROM        = errors.New("no ROM file given")
	ErrTooManyROMs  = errors.New("only one ROM file may be given")
	ErrInvalidColor = errors.New("invalid color")
)

// Options is the parsed command line shared by the binaries.
type Options struct {
	ROM string

	Scale      int
	Pitch      float64
	PixelColor color.RGBA
	Background color.RGBA
	Framerate  int
	Debug      bool

	// Beep names a WAV file played instead of the synthesized tone.
	Beep string
	// Seed fixes the random source; zero seeds from the clock.
	Seed uint64
	// Cycles bounds how many instructions run; zero means no limit.
	Cycles int
	// Screenshot is a PNG path written with the final frame.
	Screenshot string
}

type rawOptions struct {
	Options
	pixelColor string
	background string
}

func newFlagSet(name string, raw *rawOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.IntVar(&raw.Scale, "resolution", DefaultScale, "size of one display pixel in screen pixels")
	fs.IntVar(&raw.Scale, "r", DefaultScale, "shorthand for -resolution")
	fs.Float64Var(&raw.Pitch, "pitch", DefaultPitch, "beep frequency in Hz")
	fs.Float64Var(&raw.Pitch, "p", DefaultPitch, "shorthand for -pitch")
	fs.StringVar(&raw.pixelColor, "px-color", DefaultPixelColor, "hex color of lit pixels")
	fs.StringVar(&raw.pixelColor, "c", DefaultPixelColor, "shorthand for -px-color")
	fs.StringVar(&raw.background, "bg-color", DefaultBackground, "hex color of the background")
	fs.StringVar(&raw.background, "b", DefaultBackground, "shorthand for -bg-color")
	fs.IntVar(&raw.Framerate, "framerate", DefaultFramerate, "frames per second")
	fs.IntVar(&raw.Framerate, "f", DefaultFramerate, "shorthand for -framerate")
	fs.BoolVar(&raw.Debug, "debug", false, "log every executed instruction")
	fs.BoolVar(&raw.Debug, "d", false, "shorthand for -debug")

	fs.StringVar(&raw.Beep, "beep", "", "WAV file to play instead of the built-in tone")
	fs.Uint64Var(&raw.Seed, "seed", 0, "random seed (0 seeds from the clock)")
	fs.IntVar(&raw.Cycles, "cycles", 0, "stop after this many instructions (0 = no limit)")
	fs.StringVar(&raw.Screenshot, "screenshot", "", "write the final frame to this PNG file")

	return fs
}

// Parse reads flags and the single positional ROM path from args, which
// must not include the program name. Flags may appear after the ROM path.
func Parse(args []string) (Options, error) {
	var raw rawOptions
	fs := newFlagSet("gochip8", &raw)
	fs.SetOutput(io.Discard)

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return Options{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	switch len(positional) {
	case 0:
		return Options{}, ErrNoROM
	case 1:
		raw.ROM = positional[0]
	default:
		return Options{}, fmt.Errorf("%w: %s", ErrTooManyROMs, strings.Join(positional, ", "))
	}

	var err error
	if raw.PixelColor, err = ParseColor(raw.pixelColor); err != nil {
		return Options{}, fmt.Errorf("px-color: %w", err)
	}
	if raw.Background, err = ParseColor(raw.background); err != nil {
		return Options{}, fmt.Errorf("bg-color: %w", err)
	}

	if err := raw.Options.Validate(); err != nil {
		return Options{}, err
	}
	return raw.Options, nil
}

func (o Options) Validate() error {
	if o.Scale <= 0 {
		return fmt.Errorf("resolution must be positive, got %d", o.Scale)
	}
	if o.Pitch <= 0 {
		return fmt.Errorf("pitch must be positive, got %g", o.Pitch)
	}
	if o.Framerate <= 0 {
		return fmt.Errorf("framerate must be positive, got %d", o.Framerate)
	}
	if o.Cycles < 0 {
		return fmt.Errorf("cycles must not be negative, got %d", o.Cycles)
	}
	return nil
}

// Usage writes the flag summary for the named program to w.
func Usage(w io.Writer, name string) {
	var raw rawOptions
	fs := newFlagSet(name, &raw)
	fs.SetOutput(w)
	fmt.Fprintf(w, "usage: %s [flags] <rom>\n", name)
	fs.PrintDefaults()
}

// ParseColor accepts six hex digits, optionally prefixed with '#', and
// returns the opaque color they describe.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w %q: want 6 hex digits", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}
