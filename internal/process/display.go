package process

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/courtside/internal/config"
	"github.com/charleschow/courtside/internal/core/display"
	"github.com/charleschow/courtside/internal/events"
	"github.com/charleschow/courtside/internal/fanout"
	"github.com/charleschow/courtside/internal/telemetry"
)

// RunDisplay follows a session on a scoreboard server and prints it to the
// terminal. With no DISPLAY_SESSION it follows every session.
func RunDisplay() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	printer := display.NewPrinter(os.Stdout, display.DefaultTickThrottle)
	bus.SubscribeAll(printer.HandleEvent)

	target := cfg.DisplaySession
	if target == "" {
		target = "all sessions"
	}
	telemetry.Infof("Display following %s on %s", target, cfg.DisplayAddr)

	fanout.NewClient(cfg.DisplayAddr, cfg.DisplaySession, bus).ConnectWithRetry(ctx)
	telemetry.Infof("Display stopped")
}
