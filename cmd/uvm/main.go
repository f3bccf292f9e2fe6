// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/uvm/cpu"
	"github.com/ezrec/uvm/emulator"
	"github.com/ezrec/uvm/internal"
	"github.com/ezrec/uvm/translate"
)

var p = translate.Fprintf

// runFlags are shared by the run and exec commands.
type runFlags struct {
	memory   uint
	watchdog int
	dump     string
	start    int
	end      int
}

func (rf *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().UintVarP(&rf.memory, "memory", "m", cpu.MEMORY_SIZE, "Memory size in bytes")
	cmd.Flags().IntVarP(&rf.watchdog, "watchdog", "w", emulator.WATCHDOG_LIMIT, "Maximum instructions to execute")
	cmd.Flags().StringVarP(&rf.dump, "dump", "d", "", "CSV memory dump file")
	cmd.Flags().IntVar(&rf.start, "start", 0, "First address of the memory dump")
	cmd.Flags().IntVar(&rf.end, "end", 100, "Address after the last of the memory dump")
}

func main() {
	var verbose bool

	log.SetFlags(0)

	rootCmd := &cobra.Command{
		Use:   "uvm",
		Short: "Assembler and virtual machine for the UVM instruction set",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")

	var test bool
	var defines []string

	asmCmd := &cobra.Command{
		Use:   "asm <input.asm> <output.bin>",
		Short: "Assemble a source file into a binary object image",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			emu := emulator.NewEmulator(0)
			prog := assemble(args[0], emu, defines, verbose)

			var image bytes.Buffer
			emu.Rom.Data = prog.Binary()
			_, err := emu.Rom.WriteTo(&image)
			if err != nil {
				log.Fatalf("%v: %v", args[1], err)
			}

			err = os.WriteFile(args[1], image.Bytes(), 0644)
			if err != nil {
				log.Fatalf("%v: %v", args[1], err)
			}

			p(os.Stdout, "Created %v (%d bytes)\n", args[1], image.Len())

			if test {
				prog.Listing(os.Stdout)
				p(os.Stdout, "\nHex dump:\n")
				emu.Rom.HexDump(os.Stdout)
			}
		},
	}
	asmCmd.Flags().BoolVarP(&test, "test", "t", false, "Print the listing and a hex dump")
	asmCmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Predefine NAME=VALUE for $(...) expressions")

	var runOpts runFlags
	runCmd := &cobra.Command{
		Use:   "run <program.bin>",
		Short: "Run a binary object image",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			emu := emulator.NewEmulator(runOpts.memory)
			emu.Verbose = verbose

			inf, err := os.Open(args[0])
			if err != nil {
				log.Fatalf("%v: %v", args[0], err)
			}
			defer inf.Close()

			err = emu.Load(inf)
			if err != nil {
				log.Fatalf("%v: %v", args[0], err)
			}
			p(os.Stdout, "Loaded %d bytes from %v\n", len(emu.Rom.Data), args[0])

			execute(emu, &runOpts)
		},
	}
	runOpts.bind(runCmd)

	var execOpts runFlags
	execCmd := &cobra.Command{
		Use:   "exec <input.asm>",
		Short: "Assemble and run a source file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			emu := emulator.NewEmulator(execOpts.memory)
			emu.Verbose = verbose

			prog := assemble(args[0], emu, defines, verbose)
			err := emu.SetProgram(prog)
			if err != nil {
				log.Fatalf("%v: %v", args[0], err)
			}

			execute(emu, &execOpts)
		},
	}
	execOpts.bind(execCmd)
	execCmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Predefine NAME=VALUE for $(...) expressions")

	definesCmd := &cobra.Command{
		Use:   "defines",
		Short: "List the names predefined for $(...) expressions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			emu := emulator.NewEmulator(0)
			for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
				p(os.Stdout, "%v=%v\n", key, value)
			}
		},
	}

	var selfDump string
	selftestCmd := &cobra.Command{
		Use:       "selftest <popcnt|array>",
		Short:     "Run a built-in instruction self test",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"popcnt", "array"},
		Run: func(cmd *cobra.Command, args []string) {
			var ok bool
			var err error

			switch args[0] {
			case "popcnt":
				p(os.Stdout, "POPCNT self test\n")
				ok, err = emulator.SelfTestPopcnt(os.Stdout)
			case "array":
				p(os.Stdout, "Array copy self test\n")
				var emu *emulator.Emulator
				emu, ok, err = emulator.SelfTestArray(os.Stdout)
				if err == nil && len(selfDump) != 0 {
					dump(emu, selfDump, emulator.ARRAY_SOURCE, emulator.ARRAY_DEST+0x10)
				}
			}
			if err != nil {
				log.Fatal(err)
			}

			if !ok {
				p(os.Stdout, "Self test failed\n")
				os.Exit(1)
			}
			p(os.Stdout, "Self test passed\n")
		},
	}
	selftestCmd.Flags().StringVarP(&selfDump, "dump", "d", "", "CSV memory dump file (array test)")

	rootCmd.AddCommand(asmCmd, runCmd, execCmd, definesCmd, selftestCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// assemble parses a source file, reporting line diagnostics on the log.
// A missing or unreadable source file is fatal.
func assemble(path string, emu *emulator.Emulator, defines []string, verbose bool) (prog *cpu.Program) {
	inf, err := os.Open(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}
	for _, define := range defines {
		key, value, ok := strings.Cut(define, "=")
		if !ok {
			value = "1"
		}
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	for _, diag := range prog.Diagnostics {
		log.Printf("%v: %v", path, diag)
	}

	return
}

// execute runs the emulator, then reports registers and writes the dump.
func execute(emu *emulator.Emulator, opts *runFlags) {
	emu.Watchdog = opts.watchdog

	steps, err := emu.Run()
	if err != nil {
		var runtime *emulator.ErrRuntime
		if !errors.As(err, &runtime) {
			log.Fatal(err)
		}
		log.Printf("%v", runtime)
	}

	p(os.Stdout, "\nExecuted %d steps\n", steps)
	p(os.Stdout, "\nRegisters:\n%v", emu.Cpu.String())

	if len(opts.dump) != 0 {
		dump(emu, opts.dump, opts.start, opts.end)
	}
}

// dump writes memory in [start, end) as CSV to path.
func dump(emu *emulator.Emulator, path string, start, end int) {
	ouf, err := os.Create(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
	defer ouf.Close()

	err = emu.Dump(ouf, start, end)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	p(os.Stdout, "Memory dump saved to %v\n", path)
}
