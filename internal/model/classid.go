package model

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// ClassID derives the 64-bit class-version id from class bytecode.
// Identical bytecode yields the same id in every build.
func ClassID(bytecode []byte) int64 {
	sum := blake2b.Sum256(bytecode)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
