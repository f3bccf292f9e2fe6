package cpu

import (
	"errors"

	"github.com/ezrec/uvm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted   = errors.New(f("halted"))
	ErrPcBounds = errors.New(f("pc out of memory"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))
	ErrTruncated    = errors.New(f("truncated instruction"))

	// Assembler errors
	ErrOpcodeArgs    = errors.New(f("wrong argument count"))
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))
)

// ErrOpcode is an unknown opcode selector.
type ErrOpcode Selector

func (eo ErrOpcode) Error() string {
	return f("unknown opcode %d", uint8(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrArgs reports a wrong argument count for a mnemonic.
type ErrArgs struct {
	Mnemonic string
	Want     int
	Got      int
}

func (err ErrArgs) Error() string {
	return f("%v requires %d arguments, got %d", err.Mnemonic, err.Want, err.Got)
}

func (err ErrArgs) Unwrap() error {
	return ErrOpcodeArgs
}

// ErrMnemonic reports an unrecognized mnemonic.
type ErrMnemonic string

func (err ErrMnemonic) Error() string {
	return f("unknown instruction %v", string(err))
}

func (err ErrMnemonic) Unwrap() error {
	return ErrOpcodeInvalid
}

// ErrSyntax ties an assembler diagnostic to its source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
