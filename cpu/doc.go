// Package cpu implements the microprocessor and assembler for the UVM system.
//
// The instruction set has four instructions (LOADC, READM, WRITEM, POPCNT)
// of 4, 3, 2 and 2 bytes. Each starts with a 6-bit opcode selector in the top
// bits of its first byte, followed by its fields packed MSB first across byte
// boundaries. The Shapes table describes every layout, and a single codec
// (Encode, Decode) serves both the assembler and the CPU.
//
// The CPU consists of a program counter, eight 32-bit general purpose
// registers (r0-r7) and a flat byte addressable memory.
package cpu
