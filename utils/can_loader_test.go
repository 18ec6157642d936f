package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const header = "direction,frame_id,frame_name,cycle_ms,dlc,signal_name,start_bit,bit_length,endianness,signed,factor,offset,min,max,default,unit,comment\n"

func TestParseCANMap(t *testing.T) {
	Convey("a valid map", t, func() {
		m, err := ParseCANMap(strings.NewReader(testMap))
		So(err, ShouldBeNil)
		So(m.FrameNames(), ShouldResemble, []string{"DRIVER_INPUT", "MOTOR_CMD"})

		fd, err := m.FrameByName("DRIVER_INPUT")
		So(err, ShouldBeNil)
		So(fd.ID, ShouldEqual, uint32(0x100))
		So(fd.Direction, ShouldEqual, DirRX)
		So(fd.CycleMS, ShouldEqual, 20)
		So(len(fd.Signals), ShouldEqual, 3)

		Convey("signals are ordered by start bit", func() {
			So(fd.Signals[0].Name, ShouldEqual, "axis1")
			So(fd.Signals[2].Name, ShouldEqual, "btn_b")
		})

		Convey("signals can be looked up by name", func() {
			s, ok := fd.Signal("btn_b")
			So(ok, ShouldBeTrue)
			So(s.Default, ShouldEqual, 1.0)
			_, ok = fd.Signal("btn_z")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("invalid maps are rejected", t, func() {
		cases := map[string]string{
			"missing column":   "direction,frame_id\nrx,0x1\n",
			"bad id":           header + "rx,0xZZ,F,20,1,s,0,1,little,false,1,0,0,1,0,,\n",
			"bad direction":    header + "up,0x1,F,20,1,s,0,1,little,false,1,0,0,1,0,,\n",
			"big endian":       header + "rx,0x1,F,20,1,s,0,1,big,false,1,0,0,1,0,,\n",
			"bit length":       header + "rx,0x1,F,20,1,s,0,0,little,false,1,0,0,1,0,,\n",
			"dlc":              header + "rx,0x1,F,20,9,s,0,1,little,false,1,0,0,1,0,,\n",
			"past dlc":         header + "rx,0x1,F,20,1,s,4,8,little,false,1,0,0,1,0,,\n",
			"zero factor":      header + "rx,0x1,F,20,1,s,0,1,little,false,0,0,0,1,0,,\n",
			"min above max":    header + "rx,0x1,F,20,1,s,0,1,little,false,1,0,2,1,0,,\n",
			"not a number":     header + "rx,0x1,F,20,1,s,0,1,little,false,one,0,0,1,0,,\n",
			"inconsistent dlc": header + "rx,0x1,F,20,1,s,0,1,little,false,1,0,0,1,0,,\nrx,0x1,F,20,2,t,1,1,little,false,1,0,0,1,0,,\n",
			"duplicate name":   header + "rx,0x1,F,20,1,s,0,1,little,false,1,0,0,1,0,,\nrx,0x2,F,20,1,t,0,1,little,false,1,0,0,1,0,,\n",
		}
		for name, src := range cases {
			src := src
			Convey(name, func() {
				_, err := ParseCANMap(strings.NewReader(src))
				So(err, ShouldNotBeNil)
			})
		}
	})
}

func TestLoadCANMap(t *testing.T) {
	Convey("loading from disk", t, func() {
		path := filepath.Join(t.TempDir(), "can_map.csv")
		So(os.WriteFile(path, []byte(testMap), 0644), ShouldBeNil)

		m, err := LoadCANMap(path)
		So(err, ShouldBeNil)
		_, err = m.FrameByID(0x200)
		So(err, ShouldBeNil)

		Convey("a missing file is an error", func() {
			_, err := LoadCANMap(filepath.Join(t.TempDir(), "nope.csv"))
			So(err, ShouldNotBeNil)
		})
	})

	Convey("the shipped robot map loads", t, func() {
		m, err := LoadCANMap(filepath.Join("..", "config", "can", "can_map.csv"))
		So(err, ShouldBeNil)
		for _, name := range []string{"DRIVER_INPUT", "FIELD_STATE", "MOTOR_CMD", "PNEUMATIC_CMD"} {
			_, err := m.FrameByName(name)
			So(err, ShouldBeNil)
		}
	})
}
