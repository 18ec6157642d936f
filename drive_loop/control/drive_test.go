package control

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTankDrive(t *testing.T) {
	tests := []struct {
		name        string
		left, right int
		want        DrivePower
	}{
		{"forward", 50, 50, DrivePower{50, 50}},
		{"reverse", -50, -50, DrivePower{-50, -50}},
		{"turn left", -50, 50, DrivePower{-50, 50}},
		{"over range", 150, -150, DrivePower{100, -100}},
		{"at limits", 100, -100, DrivePower{100, -100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TankDrive(tt.left, tt.right)
			if got != tt.want {
				t.Errorf("TankDrive(%d, %d) = %+v, want %+v", tt.left, tt.right, got, tt.want)
			}
		})
	}
}

func TestArcadeDrive(t *testing.T) {
	tests := []struct {
		name          string
		forward, turn int
		want          DrivePower
	}{
		{"straight", 50, 0, DrivePower{50, 50}},
		{"turn right", 50, 25, DrivePower{75, 25}},
		{"turn left", 50, -25, DrivePower{25, 75}},
		{"left side saturates", 80, 50, DrivePower{100, 30}},
		{"right side saturates", 80, -50, DrivePower{30, 100}},
		{"spin in place", 0, 100, DrivePower{100, -100}},
		{"full reverse with turn", -100, 40, DrivePower{-60, -100}},
		{"large opposing axes", 300, -250, DrivePower{50, 100}},
		{"max forward", math.MaxInt, 1, DrivePower{100, 100}},
		{"min forward", math.MinInt, 1, DrivePower{-100, -100}},
		{"min turn", 0, math.MinInt, DrivePower{-100, 100}},
		{"max both", math.MaxInt, math.MaxInt, DrivePower{100, 0}},
		{"min both", math.MinInt, math.MinInt, DrivePower{-100, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ArcadeDrive(tt.forward, tt.turn)
			if got != tt.want {
				t.Errorf("ArcadeDrive(%d, %d) = %+v, want %+v", tt.forward, tt.turn, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	Convey("clamping to the motor range", t, func() {
		So(Clamp(50, -100, 100), ShouldEqual, 50)
		So(Clamp(150, -100, 100), ShouldEqual, 100)
		So(Clamp(-150, -100, 100), ShouldEqual, -100)

		Convey("the result always lies inside the bounds", func() {
			for v := -300; v <= 300; v += 7 {
				got := Clamp(v, -100, 100)
				So(got, ShouldBeBetweenOrEqual, -100, 100)
				if v >= -100 && v <= 100 {
					So(got, ShouldEqual, v)
				}
			}
		})

		Convey("clamping twice changes nothing", func() {
			for _, v := range []int{-1000, -101, -100, 0, 99, 100, 101, 1000} {
				once := Clamp(v, -100, 100)
				So(Clamp(once, -100, 100), ShouldEqual, once)
			}
		})

		Convey("a degenerate range pins every value", func() {
			So(Clamp(-5, 3, 3), ShouldEqual, 3)
			So(Clamp(8, 3, 3), ShouldEqual, 3)
		})
	})
}

func TestDeadband(t *testing.T) {
	Convey("with a threshold of 5", t, func() {
		Convey("small stick drift is zeroed", func() {
			for v := -4; v <= 4; v++ {
				So(Deadband(v, 5), ShouldEqual, 0)
			}
		})

		Convey("the threshold itself passes through", func() {
			So(Deadband(5, 5), ShouldEqual, 5)
			So(Deadband(-5, 5), ShouldEqual, -5)
		})

		Convey("larger input passes through unchanged", func() {
			So(Deadband(10, 5), ShouldEqual, 10)
			So(Deadband(-10, 5), ShouldEqual, -10)
			So(Deadband(127, 5), ShouldEqual, 127)
		})
	})

	Convey("a zero threshold disables the deadband", t, func() {
		So(Deadband(0, 0), ShouldEqual, 0)
		So(Deadband(1, 0), ShouldEqual, 1)
		So(Deadband(-1, 0), ShouldEqual, -1)
	})
}

func TestSaturatingArithmetic(t *testing.T) {
	Convey("sums that overflow int are pinned", t, func() {
		So(addSat(math.MaxInt, 1), ShouldEqual, math.MaxInt)
		So(addSat(math.MinInt, -1), ShouldEqual, math.MinInt)
		So(subSat(0, math.MinInt), ShouldEqual, math.MaxInt)
		So(subSat(math.MinInt, 1), ShouldEqual, math.MinInt)
	})
	Convey("sums in range are exact", t, func() {
		So(addSat(math.MaxInt, -1), ShouldEqual, math.MaxInt-1)
		So(addSat(-40, 25), ShouldEqual, -15)
		So(subSat(-1, math.MaxInt), ShouldEqual, math.MinInt)
		So(subSat(30, 80), ShouldEqual, -50)
	})
}
