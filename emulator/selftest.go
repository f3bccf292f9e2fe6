package emulator

import (
	"bytes"
	"fmt"
	stdio "io"
	"strings"

	"github.com/ezrec/uvm/cpu"
	"github.com/ezrec/uvm/translate"
)

// PopcntCase is a POPCNT self test vector.
type PopcntCase struct {
	Value uint32
	Want  uint32
}

var POPCNT_CASES = []PopcntCase{
	{0x0, 0},
	{0x1, 1},
	{0x3, 2},
	{0x7, 3},
	{0xf, 4},
	{0xff, 8},
	{0xfffff, 20},
}

const (
	ARRAY_SOURCE = 0x100 // Array copy source address.
	ARRAY_DEST   = 0x200 // Array copy destination address.
)

var ARRAY_VALUES = []byte{10, 20, 30, 40, 50}

// assemble builds and loads a program from source lines.
func (emu *Emulator) assemble(lines []string) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return
	}

	if len(prog.Diagnostics) != 0 {
		err = prog.Diagnostics[0]
		return
	}

	return emu.SetProgram(prog)
}

// SelfTestPopcnt runs a LOADC, POPCNT program for each of POPCNT_CASES,
// reporting each result to w.
func SelfTestPopcnt(w stdio.Writer) (ok bool, err error) {
	ok = true
	for _, tc := range POPCNT_CASES {
		emu := NewEmulator(0)
		err = emu.assemble([]string{
			fmt.Sprintf("LOADC %#x 0 0", tc.Value),
			"POPCNT 0 1 0",
		})
		if err != nil {
			return
		}

		_, err = emu.Run()
		if err != nil && emu.Ticks() != 2 {
			return
		}
		err = nil

		got := emu.Cpu.Register[1]
		mark := "ok"
		if got != tc.Want {
			mark = "FAIL"
			ok = false
		}
		translate.Fprintf(w, "  0x%04X: popcount = %d, want %d %v\n", tc.Value, got, tc.Want, mark)
	}

	return
}

// ArrayCopyProgram returns the source of a program that stores values at
// src, then copies them to dst one byte at a time.
func ArrayCopyProgram(values []byte, src, dst int) (lines []string) {
	lines = append(lines,
		fmt.Sprintf("LOADC %#x 0 6 ; source", src),
		fmt.Sprintf("LOADC %#x 0 7 ; destination", dst),
	)
	for n, value := range values {
		lines = append(lines,
			fmt.Sprintf("LOADC %d 0 0", value),
			fmt.Sprintf("LOADC $(%#x+%d) 0 1", src, n),
			"WRITEM 0 0 1",
		)
	}
	for n := range values {
		lines = append(lines,
			fmt.Sprintf("READM %d 0 0 6", n),
			fmt.Sprintf("LOADC $(%#x+%d) 0 1", dst, n),
			"WRITEM 0 0 1",
		)
	}

	return
}

// SelfTestArray runs the array copy program over ARRAY_VALUES, and
// returns the emulator for inspection.
func SelfTestArray(w stdio.Writer) (emu *Emulator, ok bool, err error) {
	emu = NewEmulator(0)
	err = emu.assemble(ArrayCopyProgram(ARRAY_VALUES, ARRAY_SOURCE, ARRAY_DEST))
	if err != nil {
		return
	}

	steps, err := emu.Run()
	if err != nil && steps != len(emu.Program.Opcodes) {
		return
	}
	err = nil

	src := emu.Cpu.Memory[ARRAY_SOURCE : ARRAY_SOURCE+len(ARRAY_VALUES)]
	dst := emu.Cpu.Memory[ARRAY_DEST : ARRAY_DEST+len(ARRAY_VALUES)]
	ok = bytes.Equal(src, ARRAY_VALUES) && bytes.Equal(dst, ARRAY_VALUES)

	translate.Fprintf(w, "  source 0x%04X: %v\n", ARRAY_SOURCE, src)
	translate.Fprintf(w, "  copied 0x%04X: %v\n", ARRAY_DEST, dst)

	return
}
