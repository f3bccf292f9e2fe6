package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Pc: 0, Words: []string{"LOADC", "16", "0", "0"},
				Instruction: LoadC{Imm: 16}, Bytes: EncodeInstruction(LoadC{Imm: 16})},
			{LineNo: 2, Pc: 4, Words: []string{"POPCNT", "0", "1", "0"},
				Instruction: PopCnt{Dest: 1}, Bytes: EncodeInstruction(PopCnt{Dest: 1})},
			{LineNo: 4, Pc: 6, Words: []string{"READM", "1", "0", "2", "0"},
				Instruction: ReadM{Offset: 1, Dest: 2}, Bytes: EncodeInstruction(ReadM{Offset: 1, Dest: 2})},
		},
	}

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(3)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(3, dbg.Index)

	dbg = prog.Debug(5)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(8)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.Opcode.LineNo)
	assert.Equal(2, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Pc: 0, Words: []string{"WRITEM", "0", "0", "1"},
				Instruction: WriteM{Base: 1}, Bytes: EncodeInstruction(WriteM{Base: 1})},
		},
	}

	dbg := prog.Debug(2)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(-1)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader("LOADC 42 0 0\nWRITEM 5 0 6\nPOPCNT 3 4 0\n"))
	assert.NoError(err)

	assert.Equal([]byte{0x04, 0x00, 0x0a, 0x80, 0x9e, 0xe0, 0xb1, 0xc0}, prog.Binary())

	// The binary decodes back into the same instructions.
	bin := prog.Binary()
	for _, op := range prog.Opcodes {
		ins, err := DecodeInstruction(bin[op.Pc:])
		assert.NoError(err)
		assert.Equal(op.Instruction, ins)
	}
}

func TestProgram_Listing(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader("; header\nLOADC 42 0 0\nREADM 5 0 2 3\n"))
	assert.NoError(err)

	out := &bytes.Buffer{}
	assert.NoError(prog.Listing(out))

	assert.Equal(
		"[2] 0000: LOADC r0 = 42 -> 04 00 0A 80\n"+
			"[3] 0004: READM r2 = mem[r3+5] -> 54 0A 98\n",
		out.String())
}
