package cpu

import (
	"fmt"
	"strings"
)

const (
	SELECTOR_WIDTH = 6    // Width in bits of the opcode selector.
	SELECTOR_MASK  = 0x3f // Mask of the opcode selector.
	REGISTER_COUNT = 8    // Number of general purpose registers.
	REGISTER_MASK  = 0x7  // Mask of a register index.
)

// Selector is the 6-bit opcode selector at the top of every instruction.
type Selector uint8

const (
	SEL_LOADC  = Selector(1)
	SEL_READM  = Selector(21)
	SEL_WRITEM = Selector(39)
	SEL_POPCNT = Selector(44)
)

// String returns the mnemonic for the selector.
func (sel Selector) String() string {
	shape, ok := ShapeOf(sel)
	if !ok {
		return fmt.Sprintf("sel(%d)", uint8(sel))
	}
	return shape.Mnemonic
}

// FieldRole is the meaning of an instruction field.
type FieldRole int

const (
	ROLE_IMMEDIATE = FieldRole(0) // imm
	ROLE_OFFSET    = FieldRole(1) // offset
	ROLE_DEST      = FieldRole(2) // dest
	ROLE_SRC       = FieldRole(3) // src
	ROLE_BASE      = FieldRole(4) // base
)

var roleNames = [...]string{"imm", "offset", "dest", "src", "base"}

func (role FieldRole) String() string {
	if role < 0 || int(role) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(role))
	}
	return roleNames[role]
}

// Field is a fixed width slot of an encoded instruction.
type Field struct {
	Role     FieldRole // Meaning of the field.
	Width    uint      // Width in bits.
	Register bool      // Field holds a register index (low 3 bits significant).
	Arg      int       // Assembler argument position feeding this field.
}

// Mask returns the mask of the field's declared width.
func (fld Field) Mask() uint32 {
	return uint32((uint64(1) << fld.Width) - 1)
}

// Shape describes the encoding of one instruction.
type Shape struct {
	Mnemonic string
	Selector Selector
	Bytes    int     // Encoded length in bytes.
	Fields   []Field // Fields after the selector, MSB first.
	Args     int     // Assembler argument count.
}

// Width returns the number of significant bits, selector included.
func (shape *Shape) Width() (width uint) {
	width = SELECTOR_WIDTH
	for _, fld := range shape.Fields {
		width += fld.Width
	}
	return
}

// Field returns the index of the first field with the given role.
func (shape *Shape) Field(role FieldRole) (index int, ok bool) {
	for n, fld := range shape.Fields {
		if fld.Role == role {
			return n, true
		}
	}
	return
}

// Shapes is the instruction set table.
//
// The unused assembler argument slots (LOADC arg1, READM arg1, WRITEM arg1,
// POPCNT arg2) are parsed for arity but never encoded.
var Shapes = []Shape{
	{
		Mnemonic: "LOADC", Selector: SEL_LOADC, Bytes: 4, Args: 3,
		Fields: []Field{
			{Role: ROLE_IMMEDIATE, Width: 20, Arg: 0},
			{Role: ROLE_DEST, Width: 6, Register: true, Arg: 2},
		},
	},
	{
		Mnemonic: "READM", Selector: SEL_READM, Bytes: 3, Args: 4,
		Fields: []Field{
			{Role: ROLE_OFFSET, Width: 9, Arg: 0},
			{Role: ROLE_DEST, Width: 3, Register: true, Arg: 2},
			{Role: ROLE_BASE, Width: 3, Register: true, Arg: 3},
		},
	},
	{
		Mnemonic: "WRITEM", Selector: SEL_WRITEM, Bytes: 2, Args: 3,
		Fields: []Field{
			{Role: ROLE_SRC, Width: 3, Register: true, Arg: 0},
			{Role: ROLE_BASE, Width: 3, Register: true, Arg: 2},
		},
	},
	{
		Mnemonic: "POPCNT", Selector: SEL_POPCNT, Bytes: 2, Args: 3,
		Fields: []Field{
			{Role: ROLE_SRC, Width: 3, Register: true, Arg: 0},
			{Role: ROLE_DEST, Width: 3, Register: true, Arg: 1},
		},
	},
}

// shapeBySelector indexes Shapes by selector.
var shapeBySelector [SELECTOR_MASK + 1]*Shape

func init() {
	for n := range Shapes {
		shape := &Shapes[n]
		if shapeBySelector[shape.Selector] != nil {
			panic("duplicate selector " + shape.Mnemonic)
		}
		if int(shape.Width()+7)/8 != shape.Bytes {
			panic("shape width mismatch " + shape.Mnemonic)
		}
		shapeBySelector[shape.Selector] = shape
	}
}

// ShapeOf returns the shape for a selector.
func ShapeOf(sel Selector) (shape *Shape, ok bool) {
	if int(sel) >= len(shapeBySelector) {
		return
	}
	shape = shapeBySelector[sel]
	ok = shape != nil
	return
}

// ShapeByMnemonic returns the shape for a mnemonic, ignoring case.
func ShapeByMnemonic(mnemonic string) (shape *Shape, ok bool) {
	for n := range Shapes {
		if strings.EqualFold(Shapes[n].Mnemonic, mnemonic) {
			return &Shapes[n], true
		}
	}
	return
}

// SelectorOf returns the selector stored in the first byte of an instruction.
func SelectorOf(first byte) Selector {
	return Selector((first >> (8 - SELECTOR_WIDTH)) & SELECTOR_MASK)
}
