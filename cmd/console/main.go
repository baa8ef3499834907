package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/grid"
	"gochip8/pkg/utils"
)

// defaultCycles applies when -cycles is not given, since a headless run
// has no other way to end.
const defaultCycles = 1000

func renderFrame(w io.Writer, vm *cpu.CPU) error {
	bw := bufio.NewWriter(w)
	for i, cell := range vm.Display {
		x, _ := grid.GetGridCoords(i, cpu.DisplayWidth)
		if cell != 0 {
			bw.WriteByte('#')
		} else {
			bw.WriteByte('.')
		}
		if x == cpu.DisplayWidth-1 {
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

func printSummary(w io.Writer, name string, vm *cpu.CPU) {
	fmt.Fprintf(w, "run complete (%s): cycles=%d PC=0x%03X I=0x%03X DT=%d ST=%d SP=%d\n",
		name, vm.Cycles(), vm.PC, vm.I, vm.DelayTimer, vm.SoundTimer, len(vm.Stack))
	for i, v := range vm.V {
		fmt.Fprintf(w, "V%X=0x%02X", i, v)
		if i%8 == 7 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, " ")
		}
	}
}

func run(ctx context.Context, opts config.Options, stdout io.Writer, logger *slog.Logger) error {
	vmOpts := []cpu.Option{cpu.WithLogger(logger)}
	if opts.Seed != 0 {
		vmOpts = append(vmOpts, cpu.WithSeed(opts.Seed))
	}
	vm := cpu.NewCPU(vmOpts...)

	fullPath, _, err := utils.GetPathInfo(opts.ROM)
	if err != nil {
		return err
	}
	if err := vm.LoadROMFile(fullPath); err != nil {
		return err
	}

	cycles := opts.Cycles
	if cycles == 0 {
		cycles = defaultCycles
	}
	runErr := vm.Run(ctx, cycles)

	if err := renderFrame(stdout, vm); err != nil {
		return err
	}
	printSummary(stdout, utils.ROMTitle(opts.ROM), vm)

	if opts.Screenshot != "" {
		if err := vm.SaveScreenshot(opts.Screenshot, opts.Scale, opts.PixelColor, opts.Background); err != nil {
			return fmt.Errorf("saving screenshot: %w", err)
		}
		logger.Info("saved screenshot", "path", opts.Screenshot)
	}
	return runErr
}

func main() {
	opts, err := config.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout, "chip8-console")
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		config.Usage(os.Stderr, "chip8-console")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := config.NewLogger(opts.Debug, os.Stderr)
	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("emulation stopped", "err", err)
		os.Exit(1)
	}
}
