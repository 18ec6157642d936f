package control

import "golang.org/x/exp/constraints"

// Motor command range in percent.
const (
	MinPower = -100
	MaxPower = 100
)

// DefaultDeadband is the stick threshold used when none is configured.
const DefaultDeadband = 5

// Clamp limits v to [lo, hi]. Bounds are taken as given; callers pass
// lo <= hi.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BoolToFloat converts bool to float64 (for CAN encoding)
func BoolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
