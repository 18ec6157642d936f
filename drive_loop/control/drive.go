package control

import "math"

// DrivePower holds the left and right side motor commands in percent.
type DrivePower struct {
	Left  int
	Right int
}

// TankDrive maps one stick per side straight to that side's motors.
func TankDrive(left, right int) DrivePower {
	return DrivePower{
		Left:  Clamp(left, MinPower, MaxPower),
		Right: Clamp(right, MinPower, MaxPower),
	}
}

// ArcadeDrive mixes a forward and a turn axis into side powers.
//
// Each side is clamped on its own, so large combined inputs saturate one
// side before the other: ArcadeDrive(80, 50) is {100, 30}.
func ArcadeDrive(forward, turn int) DrivePower {
	return DrivePower{
		Left:  Clamp(addSat(forward, turn), MinPower, MaxPower),
		Right: Clamp(subSat(forward, turn), MinPower, MaxPower),
	}
}

// addSat returns a+b pinned to the int range instead of wrapping.
func addSat(a, b int) int {
	s := a + b
	switch {
	case a > 0 && b > 0 && s < 0:
		return math.MaxInt
	case a < 0 && b < 0 && s >= 0:
		return math.MinInt
	}
	return s
}

// subSat returns a-b pinned to the int range instead of wrapping.
func subSat(a, b int) int {
	d := a - b
	switch {
	case a >= 0 && b < 0 && d < 0:
		return math.MaxInt
	case a < 0 && b > 0 && d >= 0:
		return math.MinInt
	}
	return d
}

// Deadband zeroes v when it lies strictly inside (-d, d).
func Deadband(v, d int) int {
	if v > -d && v < d {
		return 0
	}
	return v
}
