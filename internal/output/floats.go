package output

import (
	"math"
	"strconv"
)

const floatDecimals = 6

// RoundFloat rounds f to six decimal places so percentages and scores encode
// identically across platforms
func RoundFloat(f float64) float64 {
	multiplier := math.Pow(10, floatDecimals)
	return math.Round(f*multiplier) / multiplier
}

// FormatPercent formats a percentage with two decimals and a percent sign
func FormatPercent(p float64) string {
	return strconv.FormatFloat(math.Round(p*100)/100, 'f', 2, 64) + "%"
}
