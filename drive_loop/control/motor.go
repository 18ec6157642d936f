package control

// MotorState is the commanded direction of a single motor.
type MotorState int

const (
	Stop    MotorState = 0
	Forward MotorState = 1
	Reverse MotorState = -1
)

func (s MotorState) String() string {
	switch s {
	case Stop:
		return "STOP"
	case Forward:
		return "FORWARD"
	case Reverse:
		return "REVERSE"
	default:
		return "UNKNOWN"
	}
}

// MotorStateFrom picks Forward when fwd is held, else Reverse when rev is
// held, else Stop. fwd wins when both are held.
func MotorStateFrom(fwd, rev bool) MotorState {
	switch {
	case fwd:
		return Forward
	case rev:
		return Reverse
	default:
		return Stop
	}
}

// ClampPowerLevel saturates a power level to [0, 100].
func ClampPowerLevel(level int) int {
	return Clamp(level, 0, MaxPower)
}

// IntakePower returns the signed intake command for state at level.
// Stop is always 0, whatever the level.
func IntakePower(state MotorState, level int) int {
	return directional(state, level)
}

// RampPower returns the signed command for the lower ramp wheels. It has
// the same contract as IntakePower.
func RampPower(state MotorState, level int) int {
	return directional(state, level)
}

func directional(state MotorState, level int) int {
	switch state {
	case Forward:
		return ClampPowerLevel(level)
	case Reverse:
		return -ClampPowerLevel(level)
	default:
		return 0
	}
}
