package main

import "robot-ctrl-core/drive_loop/control"

// DriverInput is one sample of the driver controller. Axes are nominally
// +/-100 but are not trusted to be.
type DriverInput struct {
	Axis1, Axis2, Axis3, Axis4 int

	R1, R2 bool // intake forward / reverse
	L1, L2 bool // ramp forward / reverse
	X, Y   bool // full power ramp forward / reverse
	A      bool // height toggle
	B      bool
}

// Outputs is everything commanded to the robot in one cycle. Both height
// pistons follow Height together.
type Outputs struct {
	Drive         control.DrivePower
	Intake        int
	Ramp          int
	FullPowerRamp int
	Height        control.HeightPosition
}

// Piston is the state written to both pistons.
func (o Outputs) Piston() bool {
	return control.PistonState(o.Height)
}

// CycleConfig holds the mixing settings Step applies every cycle.
type CycleConfig struct {
	Mode              DriveMode
	Deadband          int
	IntakePower       int
	RampPower         int
	FullPowerOverride bool
	FullPowerLevel    int
}

// RisingEdge reports a false to true transition between two samples.
func RisingEdge(current, previous bool) bool {
	return current && !previous
}

// Cycle holds the state that survives between control cycles: the
// commanded height and the previous sample of the toggle button.
type Cycle struct {
	cfg        CycleConfig
	height     control.HeightPosition
	prevToggle bool
}

// NewCycle starts at Low height with the toggle button released.
func NewCycle(cfg CycleConfig) *Cycle {
	return &Cycle{cfg: cfg, height: control.Low}
}

// Init resets to the start-up state: low height, pistons retracted,
// motors stopped.
func (c *Cycle) Init() Outputs {
	c.height = control.Low
	c.prevToggle = false
	return Outputs{Height: c.height}
}

func (c *Cycle) Height() control.HeightPosition { return c.height }

// SetHeight adopts a height commanded outside driver control, e.g. by the
// autonomous routine.
func (c *Cycle) SetHeight(p control.HeightPosition) { c.height = p }

// Hold stops every motor and keeps the pistons where they are.
func (c *Cycle) Hold() Outputs {
	return Outputs{Height: c.height}
}

// Step maps one input sample to outputs.
func (c *Cycle) Step(in DriverInput) Outputs {
	var out Outputs

	switch c.cfg.Mode {
	case DriveArcade:
		forward := control.Deadband(in.Axis3, c.cfg.Deadband)
		turn := control.Deadband(in.Axis1, c.cfg.Deadband)
		out.Drive = control.ArcadeDrive(forward, turn)
	default:
		left := control.Deadband(in.Axis3, c.cfg.Deadband)
		right := control.Deadband(in.Axis2, c.cfg.Deadband)
		out.Drive = control.TankDrive(left, right)
	}

	out.Intake = control.IntakePower(control.MotorStateFrom(in.R1, in.R2), c.cfg.IntakePower)
	out.Ramp = control.RampPower(control.MotorStateFrom(in.L1, in.L2), c.cfg.RampPower)
	out.FullPowerRamp = control.FullPowerRamp(
		control.MotorStateFrom(in.X, in.Y), c.cfg.FullPowerOverride, c.cfg.FullPowerLevel)

	if RisingEdge(in.A, c.prevToggle) {
		c.height = control.Toggle(c.height)
	}
	c.prevToggle = in.A
	out.Height = c.height

	return out
}
