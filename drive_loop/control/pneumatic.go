package control

// HeightPosition is the commanded height of the top ramp wheel.
type HeightPosition int

const (
	Low HeightPosition = iota
	High
)

// Piston states as written to the solenoid outputs.
const (
	Retracted = false
	Extended  = true
)

func (p HeightPosition) String() string {
	if p == High {
		return "HIGH"
	}
	return "LOW"
}

// Opposite returns the other height.
func Opposite(p HeightPosition) HeightPosition {
	if p == Low {
		return High
	}
	return Low
}

// Toggle switches to the other height.
func Toggle(p HeightPosition) HeightPosition {
	return Opposite(p)
}

// PistonState reports whether the pistons extend for p.
func PistonState(p HeightPosition) bool {
	return p == High
}
