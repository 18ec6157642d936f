package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abiosoft/ishell"
	"go.einride.tech/can"

	"robot-ctrl-core/utils"
)

// SimBus is an in-memory CAN link for bench runs. Frames written by the
// runner are kept per ID; frames injected by the panel are read back by
// the runner.
type SimBus struct {
	rx     chan can.Frame
	closed chan struct{}
	once   sync.Once

	mu   sync.Mutex
	last map[uint32]can.Frame
	sent uint64
}

func NewSimBus() *SimBus {
	return &SimBus{
		rx:     make(chan can.Frame, 16),
		closed: make(chan struct{}),
		last:   map[uint32]can.Frame{},
	}
}

func (b *SimBus) ReadFrame(ctx context.Context) (can.Frame, error) {
	select {
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case <-b.closed:
		return can.Frame{}, utils.ErrReaderClosed
	case f := <-b.rx:
		return f, nil
	}
}

func (b *SimBus) WriteFrame(ctx context.Context, f can.Frame) error {
	select {
	case <-b.closed:
		return fmt.Errorf("sim bus closed")
	default:
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[f.ID] = f
	b.sent++
	return nil
}

// Inject queues a frame for the reader side.
func (b *SimBus) Inject(ctx context.Context, f can.Frame) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("inject: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.closed:
		return utils.ErrReaderClosed
	case b.rx <- f:
		return nil
	}
}

// LastFrame returns the most recent frame written with id.
func (b *SimBus) LastFrame(id uint32) (can.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.last[id]
	return f, ok
}

func (b *SimBus) Sent() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sent
}

func (b *SimBus) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

// SimPanel plays the part of the driver controller and field control. It
// keeps the current stick and button state and re-sends it at the input
// frame's cycle rate, as the real controller does.
type SimPanel struct {
	bus   *SimBus
	cmap  *utils.CANMap
	robot RobotConfig

	mu    sync.Mutex
	input DriverInput
	phase Phase
}

func NewSimPanel(bus *SimBus, cmap *utils.CANMap, robot RobotConfig) *SimPanel {
	return &SimPanel{bus: bus, cmap: cmap, robot: robot, phase: PhaseDriver}
}

func (p *SimPanel) Input() DriverInput {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

// SetAxis sets axis n (1-4) to v.
func (p *SimPanel) SetAxis(n, v int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch n {
	case 1:
		p.input.Axis1 = v
	case 2:
		p.input.Axis2 = v
	case 3:
		p.input.Axis3 = v
	case 4:
		p.input.Axis4 = v
	default:
		return fmt.Errorf("no axis %d (1-4)", n)
	}
	return nil
}

// SetButton presses or releases a button by its controller name.
func (p *SimPanel) SetButton(name string, down bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var b *bool
	switch strings.ToLower(name) {
	case "r1":
		b = &p.input.R1
	case "r2":
		b = &p.input.R2
	case "l1":
		b = &p.input.L1
	case "l2":
		b = &p.input.L2
	case "x":
		b = &p.input.X
	case "y":
		b = &p.input.Y
	case "a":
		b = &p.input.A
	case "b":
		b = &p.input.B
	default:
		return fmt.Errorf("no button %q", name)
	}
	*b = down
	return nil
}

// SetPhase changes the field phase and announces it right away.
func (p *SimPanel) SetPhase(ctx context.Context, phase Phase) error {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()
	return p.sendPhase(ctx)
}

// SendInput transmits the current controller state once.
func (p *SimPanel) SendInput(ctx context.Context) error {
	f, err := p.cmap.EncodeEinrideFrame(p.robot.Frames.DriverInput, encodeDriverInput(p.Input()))
	if err != nil {
		return err
	}
	return p.bus.Inject(ctx, f)
}

func (p *SimPanel) sendPhase(ctx context.Context) error {
	p.mu.Lock()
	phase := p.phase
	p.mu.Unlock()
	f, err := p.cmap.EncodeEinrideFrame(p.robot.Frames.FieldState, encodePhase(phase))
	if err != nil {
		return err
	}
	return p.bus.Inject(ctx, f)
}

// Run re-sends the controller and field state until ctx ends.
func (p *SimPanel) Run(ctx context.Context) error {
	inputFrame, err := p.cmap.FrameByName(p.robot.Frames.DriverInput)
	if err != nil {
		return err
	}
	fieldFrame, err := p.cmap.FrameByName(p.robot.Frames.FieldState)
	if err != nil {
		return err
	}

	inputTick := time.NewTicker(cyclePeriod(inputFrame.CycleMS, p.robot.CycleMS))
	defer inputTick.Stop()
	fieldTick := time.NewTicker(cyclePeriod(fieldFrame.CycleMS, p.robot.CycleMS))
	defer fieldTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-inputTick.C:
			err = p.SendInput(ctx)
		case <-fieldTick.C:
			err = p.sendPhase(ctx)
		}
		if err != nil {
			return err
		}
	}
}

func cyclePeriod(ms, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// Status decodes the last command frames the runner put on the bus.
func (p *SimPanel) Status() (Outputs, error) {
	motorFrame, err := p.cmap.FrameByName(p.robot.Frames.MotorCmd)
	if err != nil {
		return Outputs{}, err
	}
	pistonFrame, err := p.cmap.FrameByName(p.robot.Frames.PistonCmd)
	if err != nil {
		return Outputs{}, err
	}
	mf, ok := p.bus.LastFrame(motorFrame.ID)
	if !ok {
		return Outputs{}, fmt.Errorf("no %s sent yet", motorFrame.Name)
	}
	pf, ok := p.bus.LastFrame(pistonFrame.ID)
	if !ok {
		return Outputs{}, fmt.Errorf("no %s sent yet", pistonFrame.Name)
	}
	_, motor, err := p.cmap.DecodeEinrideFrame(mf)
	if err != nil {
		return Outputs{}, err
	}
	_, piston, err := p.cmap.DecodeEinrideFrame(pf)
	if err != nil {
		return Outputs{}, err
	}
	return outputsFromValues(motor, piston), nil
}

func parsePhase(s string) (Phase, error) {
	switch strings.ToLower(s) {
	case "driver", "drive":
		return PhaseDriver, nil
	case "auto", "autonomous":
		return PhaseAutonomous, nil
	case "disabled", "off":
		return PhaseDisabled, nil
	default:
		return 0, fmt.Errorf("unknown phase %q (driver|auto|disabled)", s)
	}
}

// newSimShell builds the bench shell around a panel.
func newSimShell(ctx context.Context, panel *SimPanel, log *utils.Logger) *ishell.Shell {
	shell := ishell.New()
	shell.Println("Robot bench shell (sim bus)")

	shell.AddCmd(&ishell.Cmd{
		Name: "axis",
		Help: "axis <1-4> <value>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Println("usage: axis <1-4> <value>")
				return
			}
			n, err1 := strconv.Atoi(c.Args[0])
			v, err2 := strconv.Atoi(c.Args[1])
			if err1 != nil || err2 != nil {
				c.Println("axis and value must be integers")
				return
			}
			if err := panel.SetAxis(n, v); err != nil {
				c.Println(err.Error())
			}
		},
	})

	button := func(down bool) func(c *ishell.Context) {
		return func(c *ishell.Context) {
			for _, name := range c.Args {
				if err := panel.SetButton(name, down); err != nil {
					c.Println(err.Error())
				}
			}
		}
	}
	shell.AddCmd(&ishell.Cmd{Name: "press", Help: "press <r1|r2|l1|l2|x|y|a|b>...", Func: button(true)})
	shell.AddCmd(&ishell.Cmd{Name: "release", Help: "release <r1|r2|l1|l2|x|y|a|b>...", Func: button(false)})

	shell.AddCmd(&ishell.Cmd{
		Name: "tap",
		Help: "tap <button>: press, hold for 100 ms, release",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: tap <button>")
				return
			}
			if err := panel.SetButton(c.Args[0], true); err != nil {
				c.Println(err.Error())
				return
			}
			time.Sleep(100 * time.Millisecond)
			_ = panel.SetButton(c.Args[0], false)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "field",
		Help: "field <driver|auto|disabled>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: field <driver|auto|disabled>")
				return
			}
			phase, err := parsePhase(c.Args[0])
			if err != nil {
				c.Println(err.Error())
				return
			}
			if err := panel.SetPhase(ctx, phase); err != nil {
				c.Println(err.Error())
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "show the last transmitted commands",
		Func: func(c *ishell.Context) {
			out, err := panel.Status()
			if err != nil {
				c.Println(err.Error())
				return
			}
			in := panel.Input()
			c.Printf("input: axes=[%d %d %d %d] buttons=%+v\n", in.Axis1, in.Axis2, in.Axis3, in.Axis4, in)
			c.Printf("drive: left=%d right=%d\n", out.Drive.Left, out.Drive.Right)
			c.Printf("intake=%d ramp=%d top=%d\n", out.Intake, out.Ramp, out.FullPowerRamp)
			c.Printf("height=%s pistons=%v\n", out.Height, out.Piston())
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "log",
		Help: "log <trace|debug|info|warn|error|critical>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: log <level>")
				return
			}
			level := utils.ParseLevel(c.Args[0])
			log.SetMinLevel(level)
			c.Printf("log level %s\n", level)
		},
	})

	return shell
}
