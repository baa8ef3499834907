package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gochip8/pkg/audio"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/input"
	"gochip8/pkg/utils"
)

// maxCyclesPerTick bounds how long one Update may run when the program
// goes a long time without drawing.
const maxCyclesPerTick = 10000

type Game struct {
	vm     *cpu.CPU
	keys   *input.Mapper
	logger *slog.Logger

	fg, bg    color.Color
	scale     int
	maxCycles uint64 // 0 = unlimited

	canvas *ebiten.Image // reused 64×32 display bitmap
}

func newGame(vm *cpu.CPU, opts config.Options, logger *slog.Logger) *Game {
	// paint the background on the first frame
	vm.Redraw = true
	return &Game{
		vm:        vm,
		keys:      input.NewMapper(nil),
		logger:    logger,
		fg:        opts.PixelColor,
		bg:        opts.Background,
		scale:     opts.Scale,
		maxCycles: uint64(opts.Cycles),
	}
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.logger.Info("quitting")
		return ebiten.Termination
	}
	g.keys.Poll(g.vm)
	return g.runTick()
}

// runTick executes cycles until the display needs repainting, so the
// frame limiter paces drawing programs.
func (g *Game) runTick() error {
	for i := 0; i < maxCyclesPerTick; i++ {
		if g.maxCycles > 0 && g.vm.Cycles() >= g.maxCycles {
			g.logger.Info("cycle limit reached", "cycles", g.vm.Cycles())
			return ebiten.Termination
		}
		if err := g.vm.Step(); err != nil {
			return err
		}
		if g.vm.Redraw {
			break
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(cpu.DisplayWidth, cpu.DisplayHeight)
	}

	if g.vm.Redraw {
		g.canvas.WritePixels(g.vm.GetFramebufferRGBA(g.fg, g.bg))
		g.vm.Redraw = false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.canvas, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.DisplayWidth * g.scale, cpu.DisplayHeight * g.scale
}

func loadBeep(opts config.Options) (audio.Sample, error) {
	if opts.Beep == "" {
		return audio.Tone(opts.Pitch, audio.BeepDuration), nil
	}
	return audio.LoadFile(opts.Beep)
}

func newMachine(opts config.Options, speaker cpu.Speaker, logger *slog.Logger) (*cpu.CPU, error) {
	vmOpts := []cpu.Option{cpu.WithLogger(logger)}
	if speaker != nil {
		vmOpts = append(vmOpts, cpu.WithSpeaker(speaker))
	}
	if opts.Seed != 0 {
		vmOpts = append(vmOpts, cpu.WithSeed(opts.Seed))
	}
	vm := cpu.NewCPU(vmOpts...)

	fullPath, _, err := utils.GetPathInfo(opts.ROM)
	if err != nil {
		return nil, err
	}
	if err := vm.LoadROMFile(fullPath); err != nil {
		return nil, err
	}
	return vm, nil
}

func run(opts config.Options, logger *slog.Logger) error {
	sample, err := loadBeep(opts)
	if err != nil {
		return fmt.Errorf("loading beep: %w", err)
	}
	player := audio.NewPlayer(ebaudio.NewContext(audio.SampleRate), sample, logger)
	defer player.Close()

	vm, err := newMachine(opts, player, logger)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(cpu.DisplayWidth*opts.Scale, cpu.DisplayHeight*opts.Scale)
	ebiten.SetWindowTitle(utils.ROMTitle(opts.ROM))
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(opts.Framerate)

	if err := ebiten.RunGame(newGame(vm, opts, logger)); err != nil {
		return err
	}

	if opts.Screenshot != "" {
		if err := vm.SaveScreenshot(opts.Screenshot, opts.Scale, opts.PixelColor, opts.Background); err != nil {
			return fmt.Errorf("saving screenshot: %w", err)
		}
		logger.Info("saved screenshot", "path", opts.Screenshot)
	}
	return nil
}

func main() {
	opts, err := config.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout, "chip8")
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		config.Usage(os.Stderr, "chip8")
		os.Exit(2)
	}

	logger := config.NewLogger(opts.Debug, os.Stderr)
	if err := run(opts, logger); err != nil {
		logger.Error("emulation stopped", "err", err)
		os.Exit(1)
	}
}
