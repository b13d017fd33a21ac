// Package loader reads flat little-endian RV32I word-stream programs
// into memory. There is no ELF or object-file format in scope here —
// a program is just a sequence of 32-bit instruction words, loaded
// starting at a caller-chosen base address (§6).
package loader

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sarchlab/m2sim/emu"
)

// LoadWords reads a little-endian stream of 32-bit words from r and
// returns them in order. The stream length must be a multiple of 4
// bytes; a short trailing read is reported as an error.
func LoadWords(r io.Reader) ([]uint32, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loader: read program: %w", err)
	}

	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("loader: program length %d is not a multiple of 4 bytes", len(raw))
	}

	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}

	return words, nil
}

// LoadInto reads a word-stream program from r and loads it into mem
// starting at base, returning the number of words loaded.
func LoadInto(r io.Reader, mem *emu.Memory, base uint32) (int, error) {
	words, err := LoadWords(r)
	if err != nil {
		return 0, err
	}

	mem.LoadProgram(words, base)

	return len(words), nil
}
