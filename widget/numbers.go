package widget

import (
	"math"
	"strconv"
)

// AsNumber converts the numeric types a property bag may hold to float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// FormatNumber prints n in its shortest decimal form ("4", "2.5", "-0.1").
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// rotate returns the point at angle degrees (counter-clockwise, screen
// coordinates) on the circle of the given radius around (cx, cy), rounded to
// two decimals.
func rotate(cx, cy, radius, deg float64) [2]float64 {
	rad := deg * math.Pi / 180
	x := cx + radius*math.Cos(rad)
	y := cy - radius*math.Sin(rad)
	return [2]float64{math.Round(x*100) / 100, math.Round(y*100) / 100}
}
