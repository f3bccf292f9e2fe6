package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/bits"
)

const (
	MEMORY_SIZE = 1024 // Default memory size in bytes.
)

// Cpu is the machine state: memory, register file and program counter.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   []byte                 // Byte addressable memory.
	Register [REGISTER_COUNT]uint32 // Register bank.
	Pc       int                    // Program counter, a byte offset into Memory.
	Halted   bool                   // Set on unknown opcode or end of memory.

	Ticks int // Executed instruction counter.
}

// NewCpu creates a new CPU with size bytes of memory.
// A size of zero selects MEMORY_SIZE.
func NewCpu(size uint) (cpu *Cpu) {
	if size == 0 {
		size = MEMORY_SIZE
	}

	cpu = &Cpu{
		Memory: make([]byte, size),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MEMORY_SIZE":    fmt.Sprintf("%d", len(cpu.Memory)),
		"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	})
}

// String returns the register report.
func (cpu *Cpu) String() (text string) {
	for n, val := range cpu.Register {
		text += fmt.Sprintf("   r%d: %6d (0x%X)\n", n, val, val)
	}
	text += fmt.Sprintf("   pc: %6d (0x%X)\n", cpu.Pc, cpu.Pc)
	if cpu.Halted {
		text += "   halted\n"
	}

	return
}

// Reset the CPU state: zero memory and registers, PC to 0.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory)
	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.Halted = false
	cpu.Ticks = 0
}

// Load copies an image into memory at address 0.
// Bytes beyond the memory capacity are discarded.
func (cpu *Cpu) Load(image []byte) (n int) {
	n = copy(cpu.Memory, image)

	if cpu.Verbose && n < len(image) {
		log.Printf("cpu: load dropped %d bytes past 0x%x", len(image)-n, len(cpu.Memory))
	}

	return
}

// Read returns the byte at addr, or 0 outside of memory.
func (cpu *Cpu) Read(addr uint64) byte {
	if addr >= uint64(len(cpu.Memory)) {
		return 0
	}
	return cpu.Memory[addr]
}

// Write stores value at addr. Writes outside of memory are dropped.
func (cpu *Cpu) Write(addr uint64, value byte) {
	if addr >= uint64(len(cpu.Memory)) {
		return
	}
	cpu.Memory[addr] = value
}

// Fetch decodes the instruction at the PC.
//
// An unknown opcode, a PC outside of memory, or an instruction that runs past
// the end of memory halts the CPU.
func (cpu *Cpu) Fetch() (ins Instruction, err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	if cpu.Pc < 0 || cpu.Pc >= len(cpu.Memory) {
		cpu.Halted = true
		err = ErrPcBounds
		return
	}

	ins, err = DecodeInstruction(cpu.Memory[cpu.Pc:])
	if err != nil {
		cpu.Halted = true
		if cpu.Verbose {
			log.Printf("cpu: %03x: %v", cpu.Pc, err)
		}
		return
	}

	return
}

// Tick executes a single CPU instruction cycle.
// A nil error means an instruction was executed.
func (cpu *Cpu) Tick() (err error) {
	ins, err := cpu.Fetch()
	if err != nil {
		return
	}

	err = cpu.Execute(ins)
	if err != nil {
		return
	}

	cpu.Ticks += 1

	return
}

// Execute executes a single decoded instruction, and advances the PC.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: %03x: %v", cpu.Pc, ins)
	}

	switch ins := ins.(type) {
	case LoadC:
		cpu.Register[ins.Dest&REGISTER_MASK] = ins.Imm
	case ReadM:
		addr := uint64(cpu.Register[ins.Base&REGISTER_MASK]) + uint64(ins.Offset)
		cpu.Register[ins.Dest&REGISTER_MASK] = uint32(cpu.Read(addr))
	case WriteM:
		addr := uint64(cpu.Register[ins.Base&REGISTER_MASK])
		cpu.Write(addr, byte(cpu.Register[ins.Src&REGISTER_MASK]&0xff))
	case PopCnt:
		value := cpu.Register[ins.Src&REGISTER_MASK]
		cpu.Register[ins.Dest&REGISTER_MASK] = uint32(bits.OnesCount32(value))
	default:
		err = errors.Join(ErrOpcodeDecode, fmt.Errorf("%T", ins))
		return
	}

	cpu.Pc += ins.Shape().Bytes

	return
}
