// Package probes implements probe vector arithmetic and the keyed merge and
// intersection of execution records across tests and sessions.
package probes

import (
	"strings"

	"probecov/internal/calc"
	"probecov/internal/model"
)

// Probes is the executed/not-executed vector of one class execution.
type Probes []bool

// New returns an all-false vector of length n.
func New(n int) Probes {
	return make(Probes, n)
}

// Parse reads a vector written as a string of '1' and '0'. Any other rune is false.
func Parse(s string) Probes {
	p := make(Probes, len(s))
	for i := 0; i < len(s); i++ {
		p[i] = s[i] == '1'
	}
	return p
}

// Merge returns p OR other. The result keeps the length of p; positions past
// the end of other are copied from p.
func (p Probes) Merge(other Probes) Probes {
	out := make(Probes, len(p))
	for i, v := range p {
		out[i] = v || (i < len(other) && other[i])
	}
	return out
}

// Intersect returns p AND other over the positions both vectors have.
// The result length is min(len(p), len(other)).
func (p Probes) Intersect(other Probes) Probes {
	n := min(len(p), len(other))
	out := make(Probes, n)
	for i := 0; i < n; i++ {
		out[i] = p[i] && other[i]
	}
	return out
}

// Covered returns the number of true positions.
func (p Probes) Covered() int {
	n := 0
	for _, v := range p {
		if v {
			n++
		}
	}
	return n
}

// Any reports whether at least one position is true.
func (p Probes) Any() bool {
	for _, v := range p {
		if v {
			return true
		}
	}
	return false
}

// Count converts the vector into a covered/total count.
func (p Probes) Count() calc.Count {
	return calc.NewCount(int64(p.Covered()), int64(len(p)))
}

// Slice returns the positions of an inclusive method range. ok is false when the
// range does not fit the vector. Empty ranges yield an empty slice.
func (p Probes) Slice(r model.ProbeRange) (Probes, bool) {
	if r.IsEmpty() {
		return Probes{}, r.First >= 0 && r.First <= len(p)
	}
	if r.First < 0 || r.Last >= len(p) {
		return nil, false
	}
	return p[r.First : r.Last+1], true
}

// Normalize pads with false or truncates the vector to length n.
func (p Probes) Normalize(n int) Probes {
	out := make(Probes, n)
	copy(out, p)
	return out
}

// Equal reports whether both vectors have the same length and bits.
func (p Probes) Equal(other Probes) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (p Probes) Clone() Probes {
	if p == nil {
		return nil
	}
	out := make(Probes, len(p))
	copy(out, p)
	return out
}

func (p Probes) String() string {
	var sb strings.Builder
	sb.Grow(len(p))
	for _, v := range p {
		if v {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
