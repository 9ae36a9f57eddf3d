package calc

// ArrowType is the coverage trend between two counts.
type ArrowType string

const (
	// ArrowIncrease means the current count covers proportionally more.
	ArrowIncrease ArrowType = "INCREASE"
	// ArrowDecrease means the current count covers proportionally less.
	ArrowDecrease ArrowType = "DECREASE"
	// ArrowNone means unchanged, or the counts are not comparable.
	ArrowNone ArrowType = ""
)

// Delta returns cur-prev as an exact fraction num/den over the least common
// denominator of both totals. ok is false when either total is zero.
func Delta(prev, cur Count) (num, den int64, ok bool) {
	if prev.Total == 0 || cur.Total == 0 {
		return 0, 0, false
	}
	g := GCD(prev.Total, cur.Total)
	num = cur.Covered*(prev.Total/g) - prev.Covered*(cur.Total/g)
	den = prev.Total / g * cur.Total
	return num, den, true
}

// Arrow compares the covered ratio of two counts without floating point.
func Arrow(prev, cur Count) ArrowType {
	num, _, ok := Delta(prev, cur)
	if !ok {
		return ArrowNone
	}
	switch {
	case num > 0:
		return ArrowIncrease
	case num < 0:
		return ArrowDecrease
	default:
		return ArrowNone
	}
}

// GCD returns the greatest common divisor of a and b (always non-negative).
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
