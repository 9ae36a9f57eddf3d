// Package calc holds the coverage arithmetic shared by every aggregation level:
// counts, percentages and the trend arrow between two counts.
package calc

import "fmt"

// Count is a covered/total pair. Covered never exceeds Total for well-formed input.
type Count struct {
	Covered int64 `json:"covered"`
	Total   int64 `json:"total"`
}

// Zero is the empty count.
var Zero = Count{}

// NewCount creates a count.
func NewCount(covered, total int64) Count {
	return Count{Covered: covered, Total: total}
}

// Add sums two counts componentwise.
func (c Count) Add(other Count) Count {
	return Count{Covered: c.Covered + other.Covered, Total: c.Total + other.Total}
}

// Percentage returns covered*100/total, or 0 when total is zero.
func (c Count) Percentage() float64 {
	return Percentage(c)
}

// IsCovered reports whether at least one unit is covered.
func (c Count) IsCovered() bool {
	return c.Covered > 0
}

// IsEmpty reports whether the count has nothing to cover.
func (c Count) IsEmpty() bool {
	return c.Total == 0
}

// Valid reports whether the count respects 0 <= covered <= total.
func (c Count) Valid() bool {
	return c.Covered >= 0 && c.Total >= 0 && c.Covered <= c.Total
}

func (c Count) String() string {
	return fmt.Sprintf("%d/%d", c.Covered, c.Total)
}

// Percentage returns covered*100/total. A zero total yields 0 regardless of covered,
// so degenerate counts never divide by zero.
func Percentage(c Count) float64 {
	if c.Total == 0 {
		return 0.0
	}
	return float64(c.Covered) * 100.0 / float64(c.Total)
}

// Sum adds counts componentwise. The combined percentage must be taken from the
// result, never averaged from the parts.
func Sum(counts ...Count) Count {
	var total Count
	for _, c := range counts {
		total = total.Add(c)
	}
	return total
}
