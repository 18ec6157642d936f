package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"robot-ctrl-core/utils"
)

func main() {
	envCfg, err := loadEnv()
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: " + err.Error() + "\n")
		os.Exit(1)
	}

	var (
		iface       = flag.String("iface", envCfg.Iface, "SocketCAN interface name")
		mapPath     = flag.String("map", envCfg.MapPath, "Path to can_map.csv")
		configPath  = flag.String("config", envCfg.ConfigPath, "Robot YAML config")
		routinePath = flag.String("routine", envCfg.RoutinePath, "Autonomous routine JSON file")
		logLevel    = flag.String("log", envCfg.LogLevel, "trace|debug|info|warn|error|critical")
		logFile     = flag.String("logfile", envCfg.LogFile, "Log file path")
		sim         = flag.Bool("sim", envCfg.Sim, "Run against an in-memory bus with a bench shell")
	)
	flag.Parse()

	log, err := utils.NewFileLogger(*logFile, utils.ParseLevel(*logLevel), !*sim)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: cannot open " + *logFile + ": " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()

	robot, err := LoadRobotConfig(*configPath)
	if err != nil {
		log.Critical("Load robot config %s: %v", *configPath, err)
		os.Exit(1)
	}

	cfg := RunnerConfig{
		Interface:   *iface,
		MapPath:     *mapPath,
		RoutinePath: *routinePath,
		Robot:       robot,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *sim {
		err = runSim(ctx, cfg, log)
	} else {
		err = runCAN(ctx, cfg, log)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Critical("Run failed: %v", err)
		os.Exit(1)
	}
}

func runCAN(ctx context.Context, cfg RunnerConfig, log *utils.Logger) error {
	writer, err := utils.NewSocketCANWriter(ctx, cfg.Interface)
	if err != nil {
		return err
	}
	reader, err := utils.NewSocketCANReader(ctx, cfg.Interface)
	if err != nil {
		writer.Close()
		return err
	}

	runner, err := NewRunner(cfg, Transport{Reader: reader, Writer: writer}, log)
	if err != nil {
		reader.Close()
		writer.Close()
		return err
	}
	defer runner.Close()

	return runner.Run(ctx)
}

func runSim(ctx context.Context, cfg RunnerConfig, log *utils.Logger) error {
	bus := NewSimBus()
	runner, err := NewRunner(cfg, Transport{Reader: bus, Writer: bus}, log)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	panel := NewSimPanel(bus, runner.cmap, cfg.Robot)
	go func() {
		if err := panel.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("Sim panel stopped: %v", err)
		}
	}()

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	shell := newSimShell(ctx, panel, log)
	shell.Run()
	cancel()

	return <-done
}
