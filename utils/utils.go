package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	p := math.Pow(10, float64(round))
	return math.Round(f*p) / p
}

// TrimFloat prints f without trailing zeros, 3.0 -> "3", 1.50 -> "1.5".
func TrimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// HoursBetween is the signed number of hours from t1 to t2.
func HoursBetween(t1, t2 time.Time) float64 {
	return t2.Sub(t1).Hours()
}
