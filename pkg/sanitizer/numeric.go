package sanitizer

import "math"

// Numeric covers the built-in integer and float types.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Clamp constrains value to [lo, hi].
func Clamp[T Numeric](value, lo, hi T) T {
	return min(max(value, lo), hi)
}

// SaturatingAdd returns value+delta bounded to [lo, hi]. A sum that would
// overflow int lands on the bound it ran past instead of wrapping.
func SaturatingAdd(value, delta, lo, hi int) int {
	switch {
	case delta > 0 && value > math.MaxInt-delta:
		return hi
	case delta < 0 && value < math.MinInt-delta:
		return lo
	}
	return Clamp(value+delta, lo, hi)
}
