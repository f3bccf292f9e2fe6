package cpu

import (
	"fmt"
)

// Instruction is a decoded instruction: one of LoadC, ReadM, WriteM or PopCnt.
type Instruction interface {
	// Shape returns the encoding of the instruction.
	Shape() *Shape
	// Values returns the field values in shape order.
	Values() []uint32
	// String returns the assembly language representation.
	String() string
}

// LoadC loads an immediate into a register.
type LoadC struct {
	Imm  uint32
	Dest uint8
}

// ReadM loads a byte from memory at base + offset.
type ReadM struct {
	Offset uint32
	Dest   uint8
	Base   uint8
}

// WriteM stores the low byte of a register to memory at base.
type WriteM struct {
	Src  uint8
	Base uint8
}

// PopCnt counts the set bits of a register.
type PopCnt struct {
	Src  uint8
	Dest uint8
}

var (
	_ Instruction = LoadC{}
	_ Instruction = ReadM{}
	_ Instruction = WriteM{}
	_ Instruction = PopCnt{}
)

func mustShape(sel Selector) *Shape {
	shape, ok := ShapeOf(sel)
	if !ok {
		panic(ErrOpcode(sel))
	}
	return shape
}

func (ins LoadC) Shape() *Shape    { return mustShape(SEL_LOADC) }
func (ins LoadC) Values() []uint32 { return []uint32{ins.Imm, uint32(ins.Dest)} }
func (ins LoadC) String() string {
	return fmt.Sprintf("LOADC r%d = %d", ins.Dest, ins.Imm)
}

func (ins ReadM) Shape() *Shape { return mustShape(SEL_READM) }
func (ins ReadM) Values() []uint32 {
	return []uint32{ins.Offset, uint32(ins.Dest), uint32(ins.Base)}
}
func (ins ReadM) String() string {
	return fmt.Sprintf("READM r%d = mem[r%d+%d]", ins.Dest, ins.Base, ins.Offset)
}

func (ins WriteM) Shape() *Shape    { return mustShape(SEL_WRITEM) }
func (ins WriteM) Values() []uint32 { return []uint32{uint32(ins.Src), uint32(ins.Base)} }
func (ins WriteM) String() string {
	return fmt.Sprintf("WRITEM mem[r%d] = r%d", ins.Base, ins.Src)
}

func (ins PopCnt) Shape() *Shape    { return mustShape(SEL_POPCNT) }
func (ins PopCnt) Values() []uint32 { return []uint32{uint32(ins.Src), uint32(ins.Dest)} }
func (ins PopCnt) String() string {
	return fmt.Sprintf("POPCNT r%d = popcount(r%d)", ins.Dest, ins.Src)
}

// EncodeInstruction returns the encoded bytes of an instruction.
func EncodeInstruction(ins Instruction) []byte {
	return EncodeShape(ins.Shape(), ins.Values()...)
}

// register narrows a decoded register field to a register index.
func register(value uint32) uint8 {
	return uint8(value & REGISTER_MASK)
}

// MakeInstruction builds the typed instruction for shape from field values.
func MakeInstruction(shape *Shape, values []uint32) (ins Instruction, err error) {
	if len(values) != len(shape.Fields) {
		err = ErrOpcodeDecode
		return
	}

	switch shape.Selector {
	case SEL_LOADC:
		ins = LoadC{Imm: values[0], Dest: register(values[1])}
	case SEL_READM:
		ins = ReadM{Offset: values[0], Dest: register(values[1]), Base: register(values[2])}
	case SEL_WRITEM:
		ins = WriteM{Src: register(values[0]), Base: register(values[1])}
	case SEL_POPCNT:
		ins = PopCnt{Src: register(values[0]), Dest: register(values[1])}
	default:
		err = ErrOpcode(shape.Selector)
	}

	return
}

// DecodeInstruction decodes the instruction at the start of data.
func DecodeInstruction(data []byte) (ins Instruction, err error) {
	if len(data) == 0 {
		err = ErrTruncated
		return
	}

	sel := SelectorOf(data[0])
	shape, ok := ShapeOf(sel)
	if !ok {
		err = ErrOpcode(sel)
		return
	}

	_, values, err := Decode(data, shape)
	if err != nil {
		return
	}

	return MakeInstruction(shape, values)
}
