package main

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const testYaml = `
version: 1
cycle_ms: 10
drive:
  mode: arcade
  deadband: 8
full_power_ramp:
  override: false
  power: 60
`

func TestParseRobotConfig(t *testing.T) {
	Convey("parsing is successful", t, func() {
		cfg, err := ParseRobotConfig([]byte(testYaml))
		So(err, ShouldBeNil)

		Convey("set fields override defaults", func() {
			So(cfg.CycleMS, ShouldEqual, 10)
			So(cfg.Drive.Mode, ShouldEqual, DriveArcade)
			So(cfg.Drive.Deadband, ShouldEqual, 8)
			So(cfg.FullPowerRamp.Override, ShouldBeFalse)
			So(cfg.FullPowerRamp.Power, ShouldEqual, 60)
		})

		Convey("missing fields keep their defaults", func() {
			So(cfg.InputTimeoutMS, ShouldEqual, 500)
			So(cfg.Intake.Power, ShouldEqual, 100)
			So(cfg.Frames.MotorCmd, ShouldEqual, "MOTOR_CMD")
		})

		Convey("the cycle config carries the mixing settings", func() {
			cc := cfg.CycleConfig()
			So(cc.Mode, ShouldEqual, DriveArcade)
			So(cc.Deadband, ShouldEqual, 8)
			So(cc.FullPowerLevel, ShouldEqual, 60)
			So(cc.FullPowerOverride, ShouldBeFalse)
		})
	})

	Convey("an empty document is the default config", t, func() {
		cfg, err := ParseRobotConfig(nil)
		So(err, ShouldBeNil)
		So(cfg, ShouldResemble, DefaultRobotConfig())
	})

	Convey("invalid configs are rejected", t, func() {
		cases := map[string]string{
			"version":       "version: 2\n",
			"cycle":         "cycle_ms: 0\n",
			"timeout":       "cycle_ms: 50\ninput_timeout_ms: 20\n",
			"mode":          "drive:\n  mode: swerve\n",
			"deadband":      "drive:\n  deadband: -1\n",
			"frame":         "frames:\n  motor_cmd: \"\"\n",
			"unknown field": "drive:\n  speed: 3\n",
		}
		for name, src := range cases {
			src := src
			Convey(name, func() {
				_, err := ParseRobotConfig([]byte(src))
				So(err, ShouldNotBeNil)
			})
		}
	})
}

func TestLoadRobotConfig(t *testing.T) {
	Convey("the shipped robot config loads", t, func() {
		cfg, err := LoadRobotConfig(filepath.Join("..", "config", "robot.yaml"))
		So(err, ShouldBeNil)
		So(cfg, ShouldResemble, DefaultRobotConfig())
	})

	Convey("a missing file is an error", t, func() {
		_, err := LoadRobotConfig(filepath.Join(t.TempDir(), "robot.yaml"))
		So(err, ShouldNotBeNil)
	})
}

func TestLoadEnv(t *testing.T) {
	Convey("environment overrides", t, func() {
		t.Setenv("ROBOT_IFACE", "vcan0")
		t.Setenv("ROBOT_SIM", "true")

		cfg, err := loadEnv()
		So(err, ShouldBeNil)
		So(cfg.Iface, ShouldEqual, "vcan0")
		So(cfg.Sim, ShouldBeTrue)
		So(cfg.MapPath, ShouldEqual, "config/can/can_map.csv")

		Convey("a malformed bool is an error", func() {
			t.Setenv("ROBOT_SIM", "maybe")
			_, err := loadEnv()
			So(err, ShouldNotBeNil)
		})
	})
}
