package control

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFullPowerRamp(t *testing.T) {
	Convey("full power ramp", t, func() {
		Convey("stop is zero with or without override", func() {
			So(FullPowerRamp(Stop, true, 50), ShouldEqual, 0)
			So(FullPowerRamp(Stop, false, 50), ShouldEqual, 0)
			So(FullPowerRamp(Stop, true, -999), ShouldEqual, 0)
		})

		Convey("override ignores the level entirely", func() {
			for _, level := range []int{-50, 0, 25, 100, 500} {
				So(FullPowerRamp(Forward, true, level), ShouldEqual, 100)
				So(FullPowerRamp(Reverse, true, level), ShouldEqual, -100)
			}
		})

		Convey("without override the level is used", func() {
			So(FullPowerRamp(Forward, false, 75), ShouldEqual, 75)
			So(FullPowerRamp(Reverse, false, 75), ShouldEqual, -75)
			So(FullPowerRamp(Forward, false, 150), ShouldEqual, 100)
			So(FullPowerRamp(Reverse, false, -10), ShouldEqual, 0)
		})
	})
}
