package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arcaderelay/ggposrv/internal/auth"
	"github.com/arcaderelay/ggposrv/internal/challenge"
	"github.com/arcaderelay/ggposrv/internal/channel"
	"github.com/arcaderelay/ggposrv/internal/config"
	"github.com/arcaderelay/ggposrv/internal/geo"
	"github.com/arcaderelay/ggposrv/internal/quark"
	"github.com/arcaderelay/ggposrv/internal/rendezvous"
	"github.com/arcaderelay/ggposrv/internal/server"
)

// run assembles every collaborator named in the component design and
// blocks until ctx is cancelled or a fatal startup error occurs.
// Grounded on loginserver's run(ctx): connect, migrate, construct,
// serve — extended with the UDP rendezvous service and CLI-overridden
// listen address/port this server additionally exposes.
func run(ctx context.Context, cfg config.Config) error {
	slog.Info("ggposrv starting", "bind", cfg.BindAddress, "port", cfg.Port, "udp_holepunch", cfg.UDPHolepunch)

	store, err := auth.NewStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer store.Close()
	slog.Info("database connected")

	if err := auth.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	recorder, err := quark.NewRecorder(cfg.RecordingsDir)
	if err != nil {
		return fmt.Errorf("opening recordings directory %s: %w", cfg.RecordingsDir, err)
	}

	channels := channel.NewRegistry(channel.DefaultCatalog())
	quarks := quark.NewManager()
	broker := challenge.NewBroker(quarks)
	locator := geo.NullLocator{}

	state := server.NewState(cfg, channels, quarks, broker, recorder, store, locator)
	srv := server.New(state)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return srv.Run(gctx, cfg.BindAddress, cfg.Port)
	})

	group.Go(func() error {
		server.RunMetrics(gctx, state, 30*time.Second)
		return nil
	})

	if cfg.UDPHolepunch {
		rdv, err := rendezvous.NewServer(fmt.Sprintf("%s:%d", cfg.UDPAddress, cfg.UDPPort))
		if err != nil {
			return fmt.Errorf("starting rendezvous service: %w", err)
		}
		slog.Info("rendezvous: listening", "address", rdv.Addr())
		group.Go(func() error {
			<-gctx.Done()
			return rdv.Close()
		})
		group.Go(func() error {
			if err := rdv.Serve(gctx); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// exitCode maps a run() failure to the process exit codes the external
// interface promises: 0 normal, -1 a bad PID file, -2 a socket or fork
// failure. Anything else run() can fail with (database, config) falls
// under the socket/fork bucket: a process that can't stand up its
// collaborators never got as far as binding a socket either.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := err.(*pidFileError); ok {
		return -1
	}
	return -2
}

func fatal(err error) {
	slog.Error("fatal", "err", err)
	os.Exit(exitCode(err))
}
