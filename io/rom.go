// Package io provides the file formats of the UVM system: the headerless
// binary object image (Rom) and the CSV memory dump (Dump).
package io

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const HEXDUMP_WIDTH = 16 // Bytes per HexDump row.

// Rom is a binary object image: the raw concatenation of encoded
// instructions, with no header or length prefix.
type Rom struct {
	Data []byte
}

var (
	_ io.ReaderFrom = (*Rom)(nil)
	_ io.WriterTo   = (*Rom)(nil)
)

// ReadFrom replaces the image with the contents of r.
func (rc *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	buf := &bytes.Buffer{}
	n, err = buf.ReadFrom(r)
	if err != nil {
		return
	}

	rc.Data = buf.Bytes()
	return
}

// WriteTo writes the image to w.
func (rc *Rom) WriteTo(w io.Writer) (n int64, err error) {
	written, err := w.Write(rc.Data)
	n = int64(written)
	return
}

// HexDump writes the image as rows of 16 bytes, each prefixed by its offset.
func (rc *Rom) HexDump(w io.Writer) (err error) {
	for offset := 0; offset < len(rc.Data); offset += HEXDUMP_WIDTH {
		chunk := rc.Data[offset:min(offset+HEXDUMP_WIDTH, len(rc.Data))]

		hex := make([]string, len(chunk))
		for n, b := range chunk {
			hex[n] = fmt.Sprintf("%02X", b)
		}

		_, err = fmt.Fprintf(w, "%04X: %v\n", offset, strings.Join(hex, " "))
		if err != nil {
			return
		}
	}

	return
}
