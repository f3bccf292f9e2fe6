package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newLoaded returns a CPU with the instructions loaded at address 0.
func newLoaded(size uint, program ...Instruction) (cpu *Cpu) {
	cpu = NewCpu(size)

	var image []byte
	for _, ins := range program {
		image = append(image, EncodeInstruction(ins)...)
	}
	cpu.Load(image)

	return
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(0)
	assert.Equal(MEMORY_SIZE, len(cpu.Memory))
	assert.Equal(0, cpu.Pc)
	assert.False(cpu.Halted)

	for _, b := range cpu.Memory {
		assert.Equal(byte(0), b)
	}

	cpu = NewCpu(16)
	assert.Equal(16, len(cpu.Memory))
}

func TestCpuLoad(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(4)
	n := cpu.Load([]byte{1, 2, 3, 4, 5, 6})
	assert.Equal(4, n)
	assert.Equal([]byte{1, 2, 3, 4}, cpu.Memory)

	cpu.Reset()
	assert.Equal([]byte{0, 0, 0, 0}, cpu.Memory)
}

func TestCpuLoadc(t *testing.T) {
	assert := assert.New(t)

	cpu := newLoaded(0, LoadC{Imm: 42, Dest: 0}, LoadC{Imm: 0xfffff, Dest: 7})

	assert.NoError(cpu.Tick())
	assert.Equal(uint32(42), cpu.Register[0])
	assert.Equal(4, cpu.Pc)

	assert.NoError(cpu.Tick())
	assert.Equal(uint32(0xfffff), cpu.Register[7])
	assert.Equal(8, cpu.Pc)
	assert.Equal(2, cpu.Ticks)
}

func TestCpuReadm(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		base   uint32
		offset uint32
		expect uint32
	}){
		{"inside", 0x100, 0x10, 0xa5},
		{"last", 0x3ff, 0, 0x5a},
		{"offset_past_end", 0x3ff, 1, 0},
		{"base_past_end", 0x400, 0, 0},
		{"wrap_guard", 0xffffffff, 0x1ff, 0},
	}

	for _, entry := range table {
		cpu := newLoaded(0, ReadM{Offset: entry.offset, Dest: 2, Base: 1})
		cpu.Memory[0x110] = 0xa5
		cpu.Memory[0x3ff] = 0x5a
		cpu.Register[1] = entry.base
		cpu.Register[2] = 0xdead

		assert.NoError(cpu.Tick(), entry.name)
		assert.Equal(entry.expect, cpu.Register[2], entry.name)
		assert.Equal(3, cpu.Pc, entry.name)
	}
}

func TestCpuWritem(t *testing.T) {
	assert := assert.New(t)

	cpu := newLoaded(0, WriteM{Src: 1, Base: 2})
	cpu.Register[1] = 0x1234
	cpu.Register[2] = 0x200

	assert.NoError(cpu.Tick())
	assert.Equal(byte(0x34), cpu.Memory[0x200])
	assert.Equal(byte(0), cpu.Memory[0x1ff])
	assert.Equal(byte(0), cpu.Memory[0x201])
	assert.Equal(2, cpu.Pc)

	// Out of bounds writes leave memory untouched.
	cpu = newLoaded(0, WriteM{Src: 1, Base: 2})
	cpu.Register[1] = 0xff
	cpu.Register[2] = 0x400
	before := append([]byte(nil), cpu.Memory...)

	assert.NoError(cpu.Tick())
	assert.Equal(before, cpu.Memory)
	assert.Equal(2, cpu.Pc)
}

func TestCpuPopcnt(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		value  uint32
		expect uint32
	}){
		{0x0, 0},
		{0x1, 1},
		{0x3, 2},
		{0x7, 3},
		{0xf, 4},
		{0xff, 8},
		{0xfffff, 20},
		{0xffffffff, 32},
	}

	for _, entry := range table {
		cpu := newLoaded(0, PopCnt{Src: 0, Dest: 5})
		cpu.Register[0] = entry.value

		assert.NoError(cpu.Tick())
		assert.Equal(entry.expect, cpu.Register[5], "0x%x", entry.value)
		assert.Equal(entry.value, cpu.Register[0])
	}
}

func TestCpuUnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(0)
	cpu.Memory[0] = 63 << 2

	err := cpu.Tick()
	assert.ErrorIs(err, ErrOpcode(0))
	assert.Equal(ErrOpcode(63), err)
	assert.True(cpu.Halted)
	assert.Equal(0, cpu.Pc)
	assert.Equal(0, cpu.Ticks)

	// Halted is terminal.
	assert.ErrorIs(cpu.Tick(), ErrHalted)

	// Zeroed memory holds selector 0, which is unknown.
	cpu = NewCpu(0)
	assert.ErrorIs(cpu.Tick(), ErrOpcode(0))
}

func TestCpuTruncated(t *testing.T) {
	assert := assert.New(t)

	// A LOADC whose last byte lies past the end of memory.
	cpu := NewCpu(6)
	cpu.Load(EncodeInstruction(PopCnt{Src: 0, Dest: 0}))
	copy(cpu.Memory[2:], EncodeInstruction(PopCnt{Src: 0, Dest: 0}))
	copy(cpu.Memory[4:], EncodeInstruction(LoadC{Imm: 1, Dest: 1})[:2])

	assert.NoError(cpu.Tick())
	assert.NoError(cpu.Tick())
	assert.ErrorIs(cpu.Tick(), ErrTruncated)
	assert.True(cpu.Halted)
	assert.Equal(4, cpu.Pc)
	assert.Equal(uint32(0), cpu.Register[1])
}

func TestCpuPcBounds(t *testing.T) {
	assert := assert.New(t)

	cpu := newLoaded(4, PopCnt{Src: 0, Dest: 0}, PopCnt{Src: 0, Dest: 0})

	assert.NoError(cpu.Tick())
	assert.NoError(cpu.Tick())
	assert.Equal(4, cpu.Pc)
	assert.ErrorIs(cpu.Tick(), ErrPcBounds)
	assert.True(cpu.Halted)
}

func TestCpuStoreLoad(t *testing.T) {
	assert := assert.New(t)

	cpu := newLoaded(0,
		LoadC{Imm: 300, Dest: 1},
		LoadC{Imm: 0x200, Dest: 2},
		WriteM{Src: 1, Base: 2},
		ReadM{Offset: 0, Dest: 3, Base: 2},
	)

	for range 4 {
		assert.NoError(cpu.Tick())
	}

	assert.Equal(uint32(300%256), cpu.Register[3])
	assert.Equal(byte(300%256), cpu.Memory[0x200])
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(0)
	cpu.Register[3] = 255

	text := cpu.String()
	assert.Contains(text, "r0:      0 (0x0)")
	assert.Contains(text, "r3:    255 (0xFF)")
	assert.Contains(text, "r7:")
	assert.NotContains(text, "halted")

	cpu.Tick()
	assert.Contains(cpu.String(), "halted")
}
