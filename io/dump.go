package io

import (
	"encoding/csv"
	"fmt"
	"io"
)

// DumpHeader is the header row of a memory dump.
var DumpHeader = []string{"Address", "Value", "Hex", "Char"}

// Dump writes a range of memory as CSV, one row per address.
// The range is [Start, End), clipped to the memory size.
type Dump struct {
	Start int
	End   int
}

// printable returns the byte as a character, or '.' outside of 32..126.
func printable(value byte) string {
	if value < 32 || value > 126 {
		return "."
	}
	return string(rune(value))
}

// Marshal writes the dump of memory to w.
func (dump Dump) Marshal(w io.Writer, memory []byte) (err error) {
	if dump.Start < 0 {
		err = ErrDumpRange
		return
	}

	out := csv.NewWriter(w)

	err = out.Write(DumpHeader)
	if err != nil {
		return
	}

	end := min(dump.End, len(memory))
	for addr := dump.Start; addr < end; addr++ {
		value := memory[addr]
		err = out.Write([]string{
			fmt.Sprintf("%d", addr),
			fmt.Sprintf("%d", value),
			fmt.Sprintf("0x%02X", value),
			printable(value),
		})
		if err != nil {
			return
		}
	}

	out.Flush()
	err = out.Error()

	return
}
