package cpu

import (
	"fmt"
	"io"
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated instruction.
type Opcode struct {
	LineNo      int
	Pc          int
	Words       []string
	Instruction Instruction
	Bytes       []byte
}

type Program struct {
	Opcodes     []Opcode
	Diagnostics []error
}

type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode covering the byte at pc.
func (prog *Program) Debug(pc int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if pc >= op.Pc && pc < op.Pc+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  pc - op.Pc,
			}
			break
		}
	}

	return
}

// Binary returns the headerless object image of the program.
func (prog *Program) Binary() (bins []byte) {
	for _, op := range prog.Opcodes {
		bins = append(bins, op.Bytes...)
	}

	return
}

func (prog *Program) Instructions() iter.Seq2[int, Instruction] {
	return func(yield func(pc int, ins Instruction) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Pc, op.Instruction) {
				return
			}
		}
	}
}

// Listing writes one line per opcode: source line, address, instruction and bytes.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		_, err = fmt.Fprintf(w, "[%d] %04X: %v -> % X\n", op.LineNo, op.Pc, op.Instruction, op.Bytes)
		if err != nil {
			return
		}
	}

	return
}
