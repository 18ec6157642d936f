package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.einride.tech/can"

	"robot-ctrl-core/utils"
)

type RunnerConfig struct {
	Interface   string
	MapPath     string
	RoutinePath string
	Robot       RobotConfig
}

// Transport is the CAN link the runner talks through.
type Transport struct {
	Reader utils.CANReader
	Writer utils.CANWriter
}

// rxEvent is a decoded frame handed from the RX goroutine to the loop.
type rxEvent struct {
	input *DriverInput
	phase *Phase
	at    time.Time
}

type Runner struct {
	cfg     RunnerConfig
	log     *utils.Logger
	cmap    *utils.CANMap
	routine Routine
	tr      Transport
	cycle   *Cycle

	inputFrame *utils.FrameDef
	fieldFrame *utils.FrameDef

	// loop state, owned by Run
	input       DriverInput
	lastInputAt time.Time
	stale       bool
	phase       Phase
	phaseStart  time.Time
	sent        uint64

	mu   sync.Mutex
	last Outputs
}

func NewRunner(cfg RunnerConfig, tr Transport, log *utils.Logger) (*Runner, error) {
	cmap, err := utils.LoadCANMap(cfg.MapPath)
	if err != nil {
		return nil, fmt.Errorf("load can map: %w", err)
	}

	routine, err := LoadRoutine(cfg.RoutinePath)
	if err != nil {
		return nil, fmt.Errorf("load routine: %w", err)
	}

	return newRunner(cfg, cmap, routine, tr, log)
}

func newRunner(cfg RunnerConfig, cmap *utils.CANMap, routine Routine, tr Transport, log *utils.Logger) (*Runner, error) {
	if err := cfg.Robot.Validate(); err != nil {
		return nil, fmt.Errorf("robot config: %w", err)
	}

	frames := cfg.Robot.Frames
	want := []struct{ name, dir string }{
		{frames.DriverInput, utils.DirRX},
		{frames.FieldState, utils.DirRX},
		{frames.MotorCmd, utils.DirTX},
		{frames.PistonCmd, utils.DirTX},
	}
	for _, w := range want {
		fd, err := cmap.FrameByName(w.name)
		if err != nil {
			return nil, fmt.Errorf("frame: %w", err)
		}
		if fd.Direction != w.dir {
			return nil, fmt.Errorf("frame %s has direction %s, want %s", fd.Name, fd.Direction, w.dir)
		}
	}
	inputFrame, _ := cmap.FrameByName(frames.DriverInput)
	fieldFrame, _ := cmap.FrameByName(frames.FieldState)

	r := &Runner{
		cfg:        cfg,
		log:        log,
		cmap:       cmap,
		routine:    routine,
		tr:         tr,
		cycle:      NewCycle(cfg.Robot.CycleConfig()),
		inputFrame: inputFrame,
		fieldFrame: fieldFrame,
		phase:      PhaseDriver,
	}
	r.last = r.cycle.Init()
	return r, nil
}

func (r *Runner) Close() {
	if r.tr.Reader != nil {
		_ = r.tr.Reader.Close()
	}
	if r.tr.Writer != nil {
		_ = r.tr.Writer.Close()
	}
}

// Last returns the most recently transmitted outputs.
func (r *Runner) Last() Outputs {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Runner) Run(ctx context.Context) error {
	robot := r.cfg.Robot
	r.log.Info("Starting control loop: cycle_ms=%d mode=%s deadband=%d iface=%s routine=%s duration=%.2fs",
		robot.CycleMS, robot.Drive.Mode, robot.Drive.Deadband, r.cfg.Interface,
		r.routine.Meta.Name, r.routine.Timing.DurationS)

	start := time.Now()
	r.phaseStart = start

	// Pistons start retracted before the first cycle.
	if err := r.transmit(ctx, r.cycle.Init()); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(robot.CycleMS) * time.Millisecond)
	defer ticker.Stop()

	rxChan := make(chan rxEvent, 100)
	go r.receiveLoop(ctx, rxChan)

	for {
		select {
		case <-ctx.Done():
			r.log.Warn("Context canceled; stopping motors")
			r.stopAll()
			r.log.Info("Completed. frames_sent=%d", r.sent)
			return ctx.Err()

		case ev := <-rxChan:
			r.apply(ev)

		case now := <-ticker.C:
			if err := r.tick(ctx, now); err != nil {
				return err
			}
		}
	}
}

// apply folds a received frame into the loop state.
func (r *Runner) apply(ev rxEvent) {
	if ev.input != nil {
		r.input = *ev.input
		r.lastInputAt = ev.at
	}
	if ev.phase != nil && *ev.phase != r.phase {
		r.log.Info("Field phase %s -> %s", r.phase, *ev.phase)
		r.phase = *ev.phase
		r.phaseStart = ev.at
	}
}

// tick runs one control cycle at now and transmits the result.
func (r *Runner) tick(ctx context.Context, now time.Time) error {
	var out Outputs

	switch r.phase {
	case PhaseDisabled:
		out = r.cycle.Hold()

	case PhaseAutonomous:
		t := now.Sub(r.phaseStart).Seconds()
		out = EvalRoutine(&r.routine, t, r.cycle.Height())
		r.cycle.SetHeight(out.Height)

	default:
		out = r.cycle.Step(r.freshInput(now))
	}

	return r.transmit(ctx, out)
}

// freshInput returns the latest driver input, or a neutral one when the
// controller has gone quiet for longer than input_timeout_ms.
func (r *Runner) freshInput(now time.Time) DriverInput {
	timeout := time.Duration(r.cfg.Robot.InputTimeoutMS) * time.Millisecond
	age := now.Sub(r.lastInputAt)
	if r.lastInputAt.IsZero() || age > timeout {
		if !r.stale {
			if r.lastInputAt.IsZero() {
				r.log.Warn("No driver input yet; holding neutral sticks")
			} else {
				r.log.Warn("No driver input for %.1f ms; holding neutral sticks", age.Seconds()*1000)
			}
			r.stale = true
		}
		return DriverInput{}
	}
	if r.stale {
		r.log.Info("Driver input restored")
		r.stale = false
	}
	return r.input
}

func (r *Runner) transmit(ctx context.Context, out Outputs) error {
	motor, err := r.cmap.EncodeEinrideFrame(r.cfg.Robot.Frames.MotorCmd, motorValues(out))
	if err != nil {
		r.log.Error("Encode %s failed: %v", r.cfg.Robot.Frames.MotorCmd, err)
		return err
	}
	piston, err := r.cmap.EncodeEinrideFrame(r.cfg.Robot.Frames.PistonCmd, pistonValues(out))
	if err != nil {
		r.log.Error("Encode %s failed: %v", r.cfg.Robot.Frames.PistonCmd, err)
		return err
	}

	for _, f := range []can.Frame{motor, piston} {
		if err := r.tr.Writer.WriteFrame(ctx, f); err != nil {
			r.log.Critical("Transmit 0x%X failed: %v", f.ID, err)
			return err
		}
		r.sent++
		if r.log.Enabled(utils.TRACE) {
			r.log.Trace("TX id=0x%X len=%d data=% X", f.ID, f.Length, f.Data[:f.Length])
		}
	}

	r.mu.Lock()
	prev := r.last
	r.last = out
	r.mu.Unlock()

	if prev.Height != out.Height {
		r.log.Info("Height %s -> %s (pistons %v)", prev.Height, out.Height, out.Piston())
	}
	r.log.Trace("OUT phase=%s left=%d right=%d intake=%d ramp=%d top=%d height=%s",
		r.phase, out.Drive.Left, out.Drive.Right, out.Intake, out.Ramp, out.FullPowerRamp, out.Height)
	return nil
}

// stopAll commands zero power on a fresh context since ctx is already done.
func (r *Runner) stopAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := r.transmit(ctx, r.cycle.Hold()); err != nil {
		r.log.Error("Final stop failed: %v", err)
	}
}

// receiveLoop reads CAN frames and decodes the ones the loop uses until ctx
// ends or the reader fails. A failed reader is not retried.
func (r *Runner) receiveLoop(ctx context.Context, events chan<- rxEvent) {
	r.log.Debug("RX loop started")
	defer r.log.Debug("RX loop stopped")

	for {
		frame, err := r.tr.Reader.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() == nil {
				// Driver input goes stale from here and the watchdog neutralizes it.
				r.log.Critical("RX stopped: %v", err)
			}
			return
		}

		ev, ok := r.decode(frame, time.Now())
		if !ok {
			continue
		}
		select {
		case events <- ev:
		default:
			r.log.Warn("RX queue full; dropped 0x%X", frame.ID)
		}
	}
}

// decode turns a frame into an rxEvent. Frames the loop does not consume
// are ignored.
func (r *Runner) decode(frame can.Frame, at time.Time) (rxEvent, bool) {
	if err := frame.Validate(); err != nil {
		r.log.Error("RX dropped malformed frame: %v", err)
		return rxEvent{}, false
	}
	if r.log.Enabled(utils.TRACE) {
		r.log.Trace("RX id=0x%X len=%d data=% X", frame.ID, frame.Length, frame.Data[:frame.Length])
	}

	if frame.ID != r.inputFrame.ID && frame.ID != r.fieldFrame.ID {
		return rxEvent{}, false
	}
	name, values, err := r.cmap.DecodeEinrideFrame(frame)
	if err != nil {
		r.log.Error("RX decode 0x%X: %v", frame.ID, err)
		return rxEvent{}, false
	}

	ev := rxEvent{at: at}
	switch name {
	case r.inputFrame.Name:
		in := decodeDriverInput(values)
		ev.input = &in
	case r.fieldFrame.Name:
		p := decodePhase(values)
		ev.phase = &p
	default:
		return rxEvent{}, false
	}
	return ev, true
}
