package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nlemesios/smenos/internal/builtin"
	"github.com/nlemesios/smenos/internal/config"
	"github.com/nlemesios/smenos/internal/eventbus"
	"github.com/nlemesios/smenos/internal/registry"
	"github.com/nlemesios/smenos/internal/scheduler"
	"github.com/nlemesios/smenos/internal/store"
	"github.com/nlemesios/smenos/internal/swarm"
	"github.com/nlemesios/smenos/internal/web"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("smenos %s\n", version)
	case "gateway":
		if err := runGateway(); err != nil {
			slog.Error("gateway failed", "error", err)
			os.Exit(1)
		}
	case "run":
		if err := runRun(os.Args[2:]); err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
	case "export":
		if err := runExport(os.Args[2:]); err != nil {
			slog.Error("export failed", "error", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: smenos <command>\n\nCommands:\n  gateway    Start the smenos gateway service\n  run        Execute a swarm or task against a running gateway\n  export     Export the swarm event log as compressed JSON\n  version    Print version\n")
}

func runGateway() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("starting smenos gateway", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SQLite event log
	db, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()
	slog.Info("store initialized", "path", cfg.Store.Path)

	// Embedded NATS
	bus, err := eventbus.New(cfg.NATS)
	if err != nil {
		return fmt.Errorf("init nats: %w", err)
	}
	defer bus.Close()
	slog.Info("nats started", "port", cfg.NATS.Port)

	// Agent registry with built-in handlers; configured definitions
	// override the built-in ones
	defs := builtin.Definitions()
	for agentType, def := range cfg.Agents {
		defs[agentType] = def
	}
	reg, err := registry.FromConfig(defs, builtin.Handlers(), cfg.Defaults)
	if err != nil {
		return fmt.Errorf("init agent registry: %w", err)
	}
	slog.Info("agents registered", "types", reg.Types())

	// Swarm coordinator with bus and store sinks
	busClient, err := eventbus.NewClient(bus)
	if err != nil {
		return fmt.Errorf("init nats client: %w", err)
	}
	defer busClient.Close()

	coord := swarm.NewCoordinator(reg,
		swarm.WithEventSink(eventbus.NewSink(busClient)),
		swarm.WithEventSink(db),
		swarm.WithHistoryCapacity(cfg.History.Capacity),
	)

	// Recurring swarms
	sched := scheduler.New(coord, cfg.Scheduler, cfg.Swarms)
	go sched.Start(ctx)

	// NATS request/reply surface
	rpc := newRPC(busClient, coord)
	if err := rpc.subscribe(ctx); err != nil {
		return fmt.Errorf("init rpc: %w", err)
	}

	// Web API
	if cfg.Web.Enabled {
		srv := web.NewServer(db, bus, reg, coord, cfg.Web, version)
		go func() {
			if err := srv.Start(ctx); err != nil {
				slog.Error("web server error", "error", err)
			}
		}()
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig)
	cancel()

	return nil
}
