package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver"

	"robot-ctrl-core/drive_loop/control"
)

// routineFormat is the range of routine file versions this loader reads.
const routineFormat = "^1.0.0"

// Routine is a timed autonomous program.
type Routine struct {
	Meta     RoutineMeta      `json:"meta"`
	Timing   RoutineTiming    `json:"timing"`
	Defaults RoutineCmd       `json:"defaults"`
	Segments []RoutineSegment `json:"segments"`
}

// RoutineMeta names a routine. Version is a semver string.
type RoutineMeta struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// RoutineTiming bounds the routine; nothing runs after DurationS seconds.
type RoutineTiming struct {
	DurationS float64 `json:"duration_s"`
}

// RoutineCmd is a set of raw commands in percent. Height is "low", "high"
// or empty for "unchanged".
type RoutineCmd struct {
	LeftPct          int    `json:"left_pct"`
	RightPct         int    `json:"right_pct"`
	IntakePct        int    `json:"intake_pct"`
	RampPct          int    `json:"ramp_pct"`
	FullPowerRampPct int    `json:"full_power_ramp_pct"`
	Height           string `json:"height,omitempty"`
}

// RoutineSegment applies Cmd for t0 <= t < t1. A negative t1 runs to the
// end of the routine.
type RoutineSegment struct {
	T0      float64 `json:"t0"`
	T1      float64 `json:"t1"`
	Comment string  `json:"comment,omitempty"`
	RoutineCmd
}

// LoadRoutine reads and validates a routine file.
func LoadRoutine(path string) (Routine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Routine{}, fmt.Errorf("read file: %w", err)
	}
	return ParseRoutine(data)
}

// ParseRoutine decodes and validates routine JSON.
func ParseRoutine(data []byte) (Routine, error) {
	var r Routine
	if err := json.Unmarshal(data, &r); err != nil {
		return Routine{}, fmt.Errorf("unmarshal: %w", err)
	}

	if err := checkRoutineVersion(r.Meta.Version); err != nil {
		return Routine{}, err
	}
	if r.Timing.DurationS <= 0 {
		return Routine{}, fmt.Errorf("invalid duration_s: %f", r.Timing.DurationS)
	}
	if _, err := parseHeight(r.Defaults.Height); err != nil {
		return Routine{}, fmt.Errorf("defaults: %w", err)
	}
	for i, seg := range r.Segments {
		if seg.T0 < 0 {
			return Routine{}, fmt.Errorf("segment %d: negative t0 %f", i, seg.T0)
		}
		if seg.T1 >= 0 && seg.T1 < seg.T0 {
			return Routine{}, fmt.Errorf("segment %d: t1 %f before t0 %f", i, seg.T1, seg.T0)
		}
		if _, err := parseHeight(seg.Height); err != nil {
			return Routine{}, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return r, nil
}

// checkRoutineVersion accepts an empty version as the current format.
func checkRoutineVersion(v string) error {
	if v == "" {
		return nil
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("meta.version %q: %w", v, err)
	}
	c, err := semver.NewConstraint(routineFormat)
	if err != nil {
		return err
	}
	if !c.Check(ver) {
		return fmt.Errorf("meta.version %s not supported, require %s", v, routineFormat)
	}
	return nil
}

func parseHeight(s string) (*control.HeightPosition, error) {
	var p control.HeightPosition
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "low":
		p = control.Low
	case "high":
		p = control.High
	default:
		return nil, fmt.Errorf("invalid height %q (low|high)", s)
	}
	return &p, nil
}

// EvalRoutine returns the outputs at t seconds into the routine. current is
// the height in force when no command sets one. Every power goes through
// the same saturating mixers as driver control. Outside [0, duration_s)
// all motors stop and the pistons stay at current.
func EvalRoutine(r *Routine, t float64, current control.HeightPosition) Outputs {
	if t < 0 || t >= r.Timing.DurationS {
		return Outputs{Height: current}
	}

	cmd := r.Defaults
	for _, seg := range r.Segments {
		t1 := seg.T1
		if t1 < 0 {
			t1 = r.Timing.DurationS
		}
		if t >= seg.T0 && t < t1 {
			height := cmd.Height
			cmd = seg.RoutineCmd
			if cmd.Height == "" {
				cmd.Height = height
			}
			break
		}
	}

	out := Outputs{Height: current}
	if p, _ := parseHeight(cmd.Height); p != nil {
		out.Height = *p
	}

	out.Drive = control.TankDrive(cmd.LeftPct, cmd.RightPct)
	out.Intake = signedPower(cmd.IntakePct)
	out.Ramp = signedPower(cmd.RampPct)
	out.FullPowerRamp = control.FullPowerRamp(directionOf(cmd.FullPowerRampPct), false, abs(cmd.FullPowerRampPct))
	return out
}

func signedPower(pct int) int {
	return control.IntakePower(directionOf(pct), abs(pct))
}

func directionOf(pct int) control.MotorState {
	return control.MotorStateFrom(pct > 0, pct < 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
