//go:build !js

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"gochip8/pkg/asm"
	"gochip8/pkg/cpu"
	"gochip8/pkg/utils"
)

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output ROM file path (default: input with .ch8 extension)")
	disPath := flag.String("dis", "", "disassemble an existing ROM file")
	runProgram := flag.Bool("run", false, "run the generated ROM headless and print the machine state")
	cycles := flag.Int("cycles", 1000, "cycles to run with -run")
	seed := flag.Uint64("seed", 1, "random seed used with -run")
	flag.Parse()

	if *inPath == "" && *disPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble or -dis <rom> to disassemble")
		flag.Usage()
		os.Exit(2)
	}

	if *disPath != "" {
		rom, err := os.ReadFile(*disPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read ROM %q: %v\n", *disPath, err)
			os.Exit(1)
		}
		disassemble(os.Stdout, rom)
	}

	if *inPath == "" {
		if *runProgram {
			fmt.Fprintln(os.Stderr, "-run requires -in")
			os.Exit(2)
		}
		return
	}

	source, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	code, _, err := asm.Assemble(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
		os.Exit(1)
	}

	output := *outPath
	if output == "" {
		output = utils.OutputPath(*inPath, ".ch8")
	}
	if err := os.WriteFile(output, code, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write ROM file %q: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("assembled %d bytes -> %s\n", len(code), output)

	if *runProgram {
		if err := runROM(os.Stdout, code, *cycles, *seed); err != nil {
			fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", output, err)
			os.Exit(1)
		}
	}
}

// disassemble lists one instruction word per line. A trailing odd byte is
// shown as data.
func disassemble(w io.Writer, rom []byte) {
	addr := cpu.ProgramStart
	for i := 0; i+1 < len(rom); i += 2 {
		word := uint16(rom[i])<<8 | uint16(rom[i+1])
		fmt.Fprintf(w, "0x%03X  %04X  %s\n", addr+i, word, cpu.Decode(word))
	}
	if len(rom)%2 == 1 {
		fmt.Fprintf(w, "0x%03X  %02X    .BYTE 0x%02X\n", addr+len(rom)-1, rom[len(rom)-1], rom[len(rom)-1])
	}
}

func runROM(w io.Writer, rom []byte, cycles int, seed uint64) error {
	vm := cpu.NewCPU(cpu.WithSeed(seed))
	if err := vm.LoadROM(bytes.NewReader(rom)); err != nil {
		return err
	}
	runErr := vm.Run(context.Background(), cycles)

	fmt.Fprintf(w,
		"run complete: cycles=%d PC=0x%03X I=0x%03X SP=%d V0=0x%02X V1=0x%02X V2=0x%02X V3=0x%02X VF=0x%02X\n",
		vm.Cycles(),
		vm.PC,
		vm.I,
		len(vm.Stack),
		vm.V[0],
		vm.V[1],
		vm.V[2],
		vm.V[3],
		vm.V[cpu.RegF],
	)
	return runErr
}
