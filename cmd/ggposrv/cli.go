package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcaderelay/ggposrv/internal/config"
)

// flags holds the external-interface CLI surface: start/stop/restart
// plus the listen address/port and logging overrides, each layered on
// top of whatever config.Load reads from --config.
type flags struct {
	configPath string
	address    string
	port       int
	verbose    bool
	logStdout  bool
	foreground bool
	udpHole    bool
	pidFile    string
}

func newRootCommand() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "ggposrv",
		Short:         "Matchmaking and relay server for arcade-fighting emulator clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), f)
		},
	}

	root.PersistentFlags().StringVar(&f.configPath, "config", "config/ggposrv.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&f.pidFile, "pidfile", "", "PID file path (overrides the config file's pid_file)")
	root.PersistentFlags().StringVar(&f.address, "address", "", "listen address (overrides the config file)")
	root.PersistentFlags().IntVar(&f.port, "port", 0, "listen port, default 7000 (overrides the config file)")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "enable debug-level logging")
	root.PersistentFlags().BoolVar(&f.logStdout, "log-to-stdout", false, "log to stdout instead of stderr")
	root.PersistentFlags().BoolVar(&f.foreground, "foreground", false, "run attached to the terminal instead of daemonizing")
	root.PersistentFlags().BoolVar(&f.udpHole, "udp-holepunch", false, "enable the UDP rendezvous service (overrides the config file)")

	root.AddCommand(newStopCommand(&f))
	root.AddCommand(newRestartCommand(&f))

	return root
}

func newStopCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:           "stop",
		Short:         "Stop a running ggposrv daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(*f)
		},
	}
}

func newRestartCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:           "restart",
		Short:         "Restart a running ggposrv daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runStop(*f); err != nil {
				slog.Warn("restart: stop failed, continuing to start", "err", err)
			}
			return runStart(cmd.Context(), *f)
		},
	}
}

// loadConfig reads the config file and layers the CLI overrides on top,
// per the external interface's "listen address, listen port ...
// (overrides the config file)" flags.
func loadConfig(f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if f.address != "" {
		cfg.BindAddress = f.address
	}
	if f.port != 0 {
		cfg.Port = f.port
	}
	if f.pidFile != "" {
		cfg.PIDFile = f.pidFile
	}
	if f.udpHole {
		cfg.UDPHolepunch = true
	}
	return cfg, nil
}

func setupLogging(f flags) {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	out := os.Stderr
	if f.logStdout {
		out = os.Stdout
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

// runStart implements the default action and the "foreground" flag: by
// default it daemonizes (re-execs detached and returns immediately),
// unless --foreground keeps it attached to the terminal.
func runStart(ctx context.Context, f flags) error {
	setupLogging(f)

	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !f.foreground {
		if err := daemonize(cfg.PIDFile); err != nil {
			return err
		}
		slog.Info("ggposrv daemonized", "pidfile", cfg.PIDFile)
		return nil
	}

	if err := writePIDFile(cfg.PIDFile); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	defer removePIDFile(cfg.PIDFile)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	return run(runCtx, cfg)
}

// runStop implements the "stop" verb: SIGTERM the daemon named by the
// PID file and wait briefly for the file to disappear.
func runStop(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := signalProcess(cfg.PIDFile, syscall.SIGTERM); err != nil {
		return err
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(cfg.PIDFile); os.IsNotExist(err) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}
