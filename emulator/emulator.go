// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/uvm/cpu"
	"github.com/ezrec/uvm/internal"
	"github.com/ezrec/uvm/io"
)

const (
	WATCHDOG_LIMIT = 1000 // Maximum steps of a single Run.
)

var _emulator_defines = map[string]string{
	"WATCHDOG_LIMIT": fmt.Sprintf("%v", WATCHDOG_LIMIT),
}

// Emulator state. CPU + program image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.
	Watchdog int          // Step limit of Run; WATCHDOG_LIMIT if zero.

	Rom io.Rom // Object image loaded into memory on Reset.
}

// NewEmulator creates a new emulator with size bytes of memory.
// A size of zero selects cpu.MEMORY_SIZE.
func NewEmulator(size uint) (emu *Emulator) {
	emu = &Emulator{
		Cpu:      cpu.NewCpu(size),
		Program:  &cpu.Program{},
		Watchdog: WATCHDOG_LIMIT,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// SetProgram uses an assembled program as the object image.
func (emu *Emulator) SetProgram(prog *cpu.Program) (err error) {
	emu.Program = prog
	emu.Rom.Data = prog.Binary()

	return emu.Reset()
}

// Load reads an object image from input, and resets the emulator with it.
func (emu *Emulator) Load(input stdio.Reader) (err error) {
	n, err := emu.Rom.ReadFrom(input)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %d bytes", n)
	}

	emu.Program = &cpu.Program{}

	return emu.Reset()
}

// Reset the emulator state, and copy the object image into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	n := emu.Cpu.Load(emu.Rom.Data)
	if emu.Verbose && n < len(emu.Rom.Data) {
		log.Printf("emulator: image truncated to %d of %d bytes", n, len(emu.Rom.Data))
	}

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() int {
	return emu.Cpu.Pc
}

// Instruction returns the current instruction, if it decodes.
func (emu *Emulator) Instruction() (ins cpu.Instruction) {
	if emu.Cpu.Pc < 0 || emu.Cpu.Pc >= len(emu.Cpu.Memory) {
		return
	}

	ins, _ = cpu.DecodeInstruction(emu.Cpu.Memory[emu.Cpu.Pc:])
	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single step of the emulator.
//
// done is set when no instruction was executed. Running off the end of the
// program is not an error; an unknown opcode is reported as an ErrRuntime.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()

	err = emu.Cpu.Tick()
	switch {
	case err == nil:
		return
	case errors.Is(err, cpu.ErrTruncated),
		errors.Is(err, cpu.ErrPcBounds),
		errors.Is(err, cpu.ErrHalted):
		if emu.Verbose {
			log.Printf("emulator: %03x: stop: %v", pc, err)
		}
		done = true
		err = nil
	default:
		done = true
		err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
	}

	return
}

// Run ticks the emulator until it stops, or the watchdog limit is reached.
//
// Reaching the watchdog limit is not an error.
func (emu *Emulator) Run() (steps int, err error) {
	limit := emu.Watchdog
	if limit <= 0 {
		limit = WATCHDOG_LIMIT
	}

	for steps < limit {
		var done bool
		done, err = emu.Tick()
		if done {
			return
		}
		steps++
	}

	if emu.Verbose {
		log.Printf("emulator: watchdog stop after %d steps", steps)
	}

	return
}

// Dump writes memory in [start, end) as CSV to w.
func (emu *Emulator) Dump(w stdio.Writer, start, end int) (err error) {
	return io.Dump{Start: start, End: end}.Marshal(w, emu.Cpu.Memory)
}
