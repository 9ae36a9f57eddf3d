package diff

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"probecov/internal/model"
)

// Hasher computes canonical fingerprints of method inventories.
// Uses length-prefixed encoding to avoid delimiter ambiguity.
// Format: ${len}:${value}${len}:${value}... where empty → 0:
// Algorithm: BLAKE2b-256, lowercase hex output
type Hasher struct{}

// NewHasher creates a new hasher instance
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashMethod computes the canonical hash for one method.
// Fields (in order): owner, name, desc, hash, first, last, then sorted lambda=hash pairs
func (h *Hasher) HashMethod(m *model.Method) string {
	parts := []string{
		m.OwnerClass,
		m.Name,
		m.Desc,
		m.Hash,
		strconv.Itoa(m.Probes.First),
		strconv.Itoa(m.Probes.Last),
	}

	lambdas := make([]string, 0, len(m.LambdaHashes))
	for name := range m.LambdaHashes {
		lambdas = append(lambdas, name)
	}
	sort.Strings(lambdas)
	for _, name := range lambdas {
		parts = append(parts, name, m.LambdaHashes[name])
	}
	return h.hashFields(parts)
}

// InventoryID identifies a build by its method inventory, independent of order.
func (h *Hasher) InventoryID(methods []model.Method) string {
	hashes := make([]string, len(methods))
	for i := range methods {
		hashes[i] = h.HashMethod(&methods[i])
	}
	sort.Strings(hashes)

	var builder strings.Builder
	for _, hash := range hashes {
		builder.WriteString("m:")
		builder.WriteString(hash)
	}

	sum := blake2b.Sum256([]byte(builder.String()))
	return "blake2b:" + hex.EncodeToString(sum[:])
}

// hashFields computes BLAKE2b-256 of length-prefixed fields
func (h *Hasher) hashFields(fields []string) string {
	var builder strings.Builder

	for _, field := range fields {
		builder.WriteString(strconv.Itoa(len(field)))
		builder.WriteByte(':')
		builder.WriteString(field)
	}

	sum := blake2b.Sum256([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}
