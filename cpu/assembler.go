// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates, visible inside $(...) expressions.
var sysEquate = map[string]string{
	"LINENO":         "0",
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// Assembler is a single pass, line oriented assembler.
//
// Malformed lines never abort assembly: they are skipped, and recorded
// as diagnostics in the resulting Program.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine   map[string]string // Predefines
	Equate      map[string]string // Map of equates usable in expressions.
	Diagnostics []error           // Line diagnostics, as ErrSyntax.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a numeric literal.
// Literals with a 0x prefix are hexadecimal, all others decimal.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	var v64 uint64
	if hex, ok := strings.CutPrefix(word, "0x"); ok {
		v64, err = strconv.ParseUint(hex, 16, 64)
	} else {
		v64, err = strconv.ParseUint(word, 10, 64)
	}
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			err = nil
			continue
		}
		pred[key] = starlark.MakeUint64(uint64(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// diagnose records a diagnostic for a source line.
func (asm *Assembler) diagnose(lineno int, line string, err error) {
	diag := &ErrSyntax{LineNo: lineno, Line: line, Err: err}
	asm.Diagnostics = append(asm.Diagnostics, diag)
	if asm.Verbose {
		log.Printf("asm: %v", diag)
	}
}

// currentPc gets the byte offset of the next opcode.
func (asm *Assembler) currentPc() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Pc + len(last.Bytes)
}

// Parse parses an input stream into a Program.
//
// Only a failure to read input is returned as an error; line level problems
// are collected in Program.Diagnostics.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var lineno int

	asm.Opcode = asm.Opcode[:0]
	asm.Diagnostics = nil
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v\n", lineno, text)
		}

		line := strings.TrimSpace(text)
		if len(line) == 0 || strings.HasPrefix(line, ";") {
			continue
		}

		line, _, _ = strings.Cut(line, ";")
		line = strings.TrimSpace(line)

		asm.parseLine(line, lineno)
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	prog = &Program{
		Opcodes:     slices.Clone(asm.Opcode),
		Diagnostics: slices.Clone(asm.Diagnostics),
	}

	return
}

// parseLine assembles a single comment-free line.
func (asm *Assembler) parseLine(line string, lineno int) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, err := asm.parenEval(str[2 : len(str)-1])
		if err != nil {
			asm.diagnose(lineno, line, err)
		}
		return fmt.Sprintf("%#x", value)
	})

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	shape, ok := ShapeByMnemonic(words[0])
	if !ok {
		asm.diagnose(lineno, line, ErrMnemonic(words[0]))
		return
	}

	args := words[1:]
	if len(args) != shape.Args {
		asm.diagnose(lineno, line, ErrArgs{Mnemonic: shape.Mnemonic, Want: shape.Args, Got: len(args)})
		return
	}

	values := make([]uint32, len(args))
	for n, word := range args {
		value, err := asm.valueOf(word)
		if err != nil {
			// Recoverable: the argument defaults to zero.
			asm.diagnose(lineno, line, err)
		}
		values[n] = value
	}

	fields := make([]uint32, len(shape.Fields))
	for n, fld := range shape.Fields {
		fields[n] = values[fld.Arg]
		if fld.Register {
			fields[n] &= REGISTER_MASK
		}
	}

	ins, err := MakeInstruction(shape, fields)
	if err != nil {
		asm.diagnose(lineno, line, err)
		return
	}

	opcode := Opcode{
		LineNo:      lineno,
		Pc:          asm.currentPc(),
		Words:       words,
		Instruction: ins,
		Bytes:       EncodeShape(shape, fields...),
	}

	if asm.Verbose {
		log.Printf("asm: %03x: %v -> % X", opcode.Pc, ins, opcode.Bytes)
	}

	asm.Opcode = append(asm.Opcode, opcode)
}
