package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"

	"robot-ctrl-core/drive_loop/control"
)

// EnvConfig carries deployment settings. Each field seeds the default of
// the matching command line flag.
type EnvConfig struct {
	Iface       string `env:"ROBOT_IFACE" envDefault:"can0"`
	ConfigPath  string `env:"ROBOT_CONFIG" envDefault:"config/robot.yaml"`
	MapPath     string `env:"ROBOT_CAN_MAP" envDefault:"config/can/can_map.csv"`
	RoutinePath string `env:"ROBOT_ROUTINE" envDefault:"drive_loop/routines/forward_2s.json"`
	LogLevel    string `env:"ROBOT_LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"ROBOT_LOG_FILE" envDefault:"drive_loop.log"`
	Sim         bool   `env:"ROBOT_SIM" envDefault:"false"`
}

func loadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

type DriveMode string

const (
	DriveTank   DriveMode = "tank"
	DriveArcade DriveMode = "arcade"
)

const robotConfigVersion = 1

// RobotConfig is the YAML description of the robot's driver controls.
type RobotConfig struct {
	Version        int `yaml:"version"`
	CycleMS        int `yaml:"cycle_ms"`
	InputTimeoutMS int `yaml:"input_timeout_ms"`

	Drive struct {
		Mode     DriveMode `yaml:"mode"`
		Deadband int       `yaml:"deadband"`
	} `yaml:"drive"`

	Intake struct {
		Power int `yaml:"power"`
	} `yaml:"intake"`

	Ramp struct {
		Power int `yaml:"power"`
	} `yaml:"ramp"`

	FullPowerRamp struct {
		Override bool `yaml:"override"`
		Power    int  `yaml:"power"`
	} `yaml:"full_power_ramp"`

	Frames struct {
		DriverInput string `yaml:"driver_input"`
		FieldState  string `yaml:"field_state"`
		MotorCmd    string `yaml:"motor_cmd"`
		PistonCmd   string `yaml:"piston_cmd"`
	} `yaml:"frames"`
}

// DefaultRobotConfig matches the competition robot: tank drive, deadband
// 5, every mechanism at full power, 20 ms cycle.
func DefaultRobotConfig() RobotConfig {
	var c RobotConfig
	c.Version = robotConfigVersion
	c.CycleMS = 20
	c.InputTimeoutMS = 500
	c.Drive.Mode = DriveTank
	c.Drive.Deadband = control.DefaultDeadband
	c.Intake.Power = 100
	c.Ramp.Power = 100
	c.FullPowerRamp.Override = true
	c.FullPowerRamp.Power = 100
	c.Frames.DriverInput = "DRIVER_INPUT"
	c.Frames.FieldState = "FIELD_STATE"
	c.Frames.MotorCmd = "MOTOR_CMD"
	c.Frames.PistonCmd = "PNEUMATIC_CMD"
	return c
}

// ParseRobotConfig overlays data on the defaults and validates the result.
func ParseRobotConfig(data []byte) (RobotConfig, error) {
	cfg := DefaultRobotConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return RobotConfig{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RobotConfig{}, err
	}
	return cfg, nil
}

func LoadRobotConfig(path string) (RobotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RobotConfig{}, fmt.Errorf("read file: %w", err)
	}
	return ParseRobotConfig(data)
}

func (c RobotConfig) Validate() error {
	if c.Version != robotConfigVersion {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}
	if c.CycleMS <= 0 {
		return fmt.Errorf("invalid cycle_ms: %d", c.CycleMS)
	}
	if c.InputTimeoutMS < c.CycleMS {
		return fmt.Errorf("input_timeout_ms %d shorter than cycle_ms %d", c.InputTimeoutMS, c.CycleMS)
	}
	if c.Drive.Mode != DriveTank && c.Drive.Mode != DriveArcade {
		return fmt.Errorf("invalid drive.mode %q (tank|arcade)", c.Drive.Mode)
	}
	if c.Drive.Deadband < 0 {
		return fmt.Errorf("invalid drive.deadband: %d", c.Drive.Deadband)
	}
	for name, v := range map[string]string{
		"frames.driver_input": c.Frames.DriverInput,
		"frames.field_state":  c.Frames.FieldState,
		"frames.motor_cmd":    c.Frames.MotorCmd,
		"frames.piston_cmd":   c.Frames.PistonCmd,
	} {
		if v == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}
	return nil
}

// CycleConfig extracts the settings the per-cycle mixing needs.
func (c RobotConfig) CycleConfig() CycleConfig {
	return CycleConfig{
		Mode:              c.Drive.Mode,
		Deadband:          c.Drive.Deadband,
		IntakePower:       c.Intake.Power,
		RampPower:         c.Ramp.Power,
		FullPowerOverride: c.FullPowerRamp.Override,
		FullPowerLevel:    c.FullPowerRamp.Power,
	}
}
