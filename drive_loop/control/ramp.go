package control

// FullPowerRamp returns the command for the top ramp wheel.
//
// With override set, Forward and Reverse run at full power and level is
// never read. Without it the wheel behaves like IntakePower.
func FullPowerRamp(state MotorState, override bool, level int) int {
	if state == Stop {
		return 0
	}
	if override {
		switch state {
		case Forward:
			return MaxPower
		case Reverse:
			return MinPower
		}
	}
	return directional(state, level)
}
