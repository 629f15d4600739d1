package utils

import (
	"math"
	"strconv"
)

// FormatNumber renders v without a trailing fraction when it is integral and with
// at most four decimals otherwise. Non-finite values render as "NaN", "+Inf" or "-Inf".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
