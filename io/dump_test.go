package io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDump_Marshal(t *testing.T) {
	assert := assert.New(t)

	memory := []byte{'A', 0x00, 0x7e, 0x7f, ' ', 0xff}

	out := &bytes.Buffer{}
	err := Dump{Start: 0, End: 6}.Marshal(out, memory)
	assert.NoError(err)

	assert.Equal(
		"Address,Value,Hex,Char\n"+
			"0,65,0x41,A\n"+
			"1,0,0x00,.\n"+
			"2,126,0x7E,~\n"+
			"3,127,0x7F,.\n"+
			"4,32,0x20,\" \"\n"+
			"5,255,0xFF,.\n",
		out.String())
}

func TestDump_Marshal_Range(t *testing.T) {
	assert := assert.New(t)

	memory := make([]byte, 8)
	memory[2] = 0x2c // ','

	// End past the memory is clipped.
	out := &bytes.Buffer{}
	assert.NoError(Dump{Start: 2, End: 100}.Marshal(out, memory))
	assert.Equal(
		"Address,Value,Hex,Char\n"+
			"2,44,0x2C,\",\"\n"+
			"3,0,0x00,.\n"+
			"4,0,0x00,.\n"+
			"5,0,0x00,.\n"+
			"6,0,0x00,.\n"+
			"7,0,0x00,.\n",
		out.String())

	// Empty range only writes the header.
	out.Reset()
	assert.NoError(Dump{Start: 5, End: 5}.Marshal(out, memory))
	assert.Equal("Address,Value,Hex,Char\n", out.String())

	out.Reset()
	assert.NoError(Dump{Start: 6, End: 2}.Marshal(out, memory))
	assert.Equal("Address,Value,Hex,Char\n", out.String())

	out.Reset()
	assert.ErrorIs(Dump{Start: -1, End: 2}.Marshal(out, memory), ErrDumpRange)
	assert.Equal("", out.String())
}
