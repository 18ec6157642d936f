package main

import (
	"math"

	"robot-ctrl-core/drive_loop/control"
)

// Signal names in the CAN map.
const (
	sigAxis1 = "axis1"
	sigAxis2 = "axis2"
	sigAxis3 = "axis3"
	sigAxis4 = "axis4"
	sigBtnR1 = "btn_r1"
	sigBtnR2 = "btn_r2"
	sigBtnL1 = "btn_l1"
	sigBtnL2 = "btn_l2"
	sigBtnX  = "btn_x"
	sigBtnY  = "btn_y"
	sigBtnA  = "btn_a"
	sigBtnB  = "btn_b"

	sigEnabled    = "enabled"
	sigAutonomous = "autonomous"

	sigLeftDrive     = "left_drive_pct"
	sigRightDrive    = "right_drive_pct"
	sigIntake        = "intake_pct"
	sigRamp          = "ramp_pct"
	sigFullPowerRamp = "full_power_ramp_pct"
	sigPiston1       = "piston_1"
	sigPiston2       = "piston_2"
)

// Phase is the competition period announced by field control.
type Phase int

const (
	PhaseDriver Phase = iota
	PhaseAutonomous
	PhaseDisabled
)

func (p Phase) String() string {
	switch p {
	case PhaseDriver:
		return "driver"
	case PhaseAutonomous:
		return "autonomous"
	case PhaseDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

func decodeDriverInput(v map[string]float64) DriverInput {
	return DriverInput{
		Axis1: axis(v[sigAxis1]),
		Axis2: axis(v[sigAxis2]),
		Axis3: axis(v[sigAxis3]),
		Axis4: axis(v[sigAxis4]),
		R1:    v[sigBtnR1] != 0,
		R2:    v[sigBtnR2] != 0,
		L1:    v[sigBtnL1] != 0,
		L2:    v[sigBtnL2] != 0,
		X:     v[sigBtnX] != 0,
		Y:     v[sigBtnY] != 0,
		A:     v[sigBtnA] != 0,
		B:     v[sigBtnB] != 0,
	}
}

func encodeDriverInput(in DriverInput) map[string]float64 {
	return map[string]float64{
		sigAxis1: float64(in.Axis1),
		sigAxis2: float64(in.Axis2),
		sigAxis3: float64(in.Axis3),
		sigAxis4: float64(in.Axis4),
		sigBtnR1: control.BoolToFloat(in.R1),
		sigBtnR2: control.BoolToFloat(in.R2),
		sigBtnL1: control.BoolToFloat(in.L1),
		sigBtnL2: control.BoolToFloat(in.L2),
		sigBtnX:  control.BoolToFloat(in.X),
		sigBtnY:  control.BoolToFloat(in.Y),
		sigBtnA:  control.BoolToFloat(in.A),
		sigBtnB:  control.BoolToFloat(in.B),
	}
}

func decodePhase(v map[string]float64) Phase {
	switch {
	case v[sigEnabled] == 0:
		return PhaseDisabled
	case v[sigAutonomous] != 0:
		return PhaseAutonomous
	default:
		return PhaseDriver
	}
}

func encodePhase(p Phase) map[string]float64 {
	return map[string]float64{
		sigEnabled:    control.BoolToFloat(p != PhaseDisabled),
		sigAutonomous: control.BoolToFloat(p == PhaseAutonomous),
	}
}

func motorValues(out Outputs) map[string]float64 {
	return map[string]float64{
		sigLeftDrive:     float64(out.Drive.Left),
		sigRightDrive:    float64(out.Drive.Right),
		sigIntake:        float64(out.Intake),
		sigRamp:          float64(out.Ramp),
		sigFullPowerRamp: float64(out.FullPowerRamp),
	}
}

func pistonValues(out Outputs) map[string]float64 {
	p := control.BoolToFloat(out.Piston())
	return map[string]float64{
		sigPiston1: p,
		sigPiston2: p,
	}
}

// outputsFromValues rebuilds Outputs from decoded command frames.
func outputsFromValues(motor, piston map[string]float64) Outputs {
	out := Outputs{
		Drive: control.DrivePower{
			Left:  axis(motor[sigLeftDrive]),
			Right: axis(motor[sigRightDrive]),
		},
		Intake:        axis(motor[sigIntake]),
		Ramp:          axis(motor[sigRamp]),
		FullPowerRamp: axis(motor[sigFullPowerRamp]),
		Height:        control.Low,
	}
	if piston[sigPiston1] != 0 {
		out.Height = control.High
	}
	return out
}

func axis(v float64) int {
	return int(math.Round(v))
}
