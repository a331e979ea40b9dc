package process

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/courtside/internal/adapters/inbound/httpapi"
	"github.com/charleschow/courtside/internal/adapters/outbound/discord"
	"github.com/charleschow/courtside/internal/adapters/outbound/kvstore"
	"github.com/charleschow/courtside/internal/adapters/outbound/redispub"
	"github.com/charleschow/courtside/internal/config"
	"github.com/charleschow/courtside/internal/core/clock"
	"github.com/charleschow/courtside/internal/core/display"
	"github.com/charleschow/courtside/internal/core/roster"
	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/core/session"
	"github.com/charleschow/courtside/internal/core/store"
	"github.com/charleschow/courtside/internal/events"
	"github.com/charleschow/courtside/internal/fanout"
	"github.com/charleschow/courtside/internal/telemetry"
)

// RunServer boots the scoreboard server: roster store, session registry,
// REST API, display fanout and the optional Redis relay. It blocks until
// SIGINT or SIGTERM.
func RunServer() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting scoreboard server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Roster store ───────────────────────────────────────────
	kv, err := kvstore.Open(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		telemetry.Errorf("Roster store: %v", err)
		os.Exit(1)
	}
	defer kv.Close()

	repo := roster.NewRepository(kv)
	presets, err := roster.LoadPresets(cfg.PresetsPath)
	if err != nil {
		telemetry.Errorf("Sport presets: %v", err)
		os.Exit(1)
	}
	added, err := repo.Seed(ctx, presets)
	if err != nil {
		telemetry.Errorf("Seeding sports: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("Roster store ready  presets=%d  new=%d", len(presets), added)

	// ── Sessions + bus ─────────────────────────────────────────
	bus := events.NewBus()
	sessions := store.New()

	console := display.NewPrinter(os.Stderr, display.DefaultTickThrottle).
		Observer(events.EventPeriodEnd, events.EventMatchEnd, events.EventSessionClosed)

	fan := fanout.NewServer(bus, func(id string) (scoreboard.Snapshot, bool) {
		sess, ok := sessions.Get(id)
		if !ok {
			return scoreboard.Snapshot{}, false
		}
		snap, err := sess.Snapshot()
		return snap, err == nil
	})

	// ── Redis relay (optional) ─────────────────────────────────
	var relay *redispub.Relay
	if cfg.RedisAddr != "" {
		client, err := redispub.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			telemetry.Warnf("Redis relay disabled: %v", err)
		} else {
			defer client.Close()
			relay = redispub.NewRelay(client, cfg.RedisChannelPrefix)
			bus.SubscribeAll(relay.HandleEvent)
			telemetry.Infof("Redis relay on %s  channels=%s:<session>", cfg.RedisAddr, cfg.RedisChannelPrefix)
		}
	}

	// ── Discord results (optional) ─────────────────────────────
	var notifier *discord.Notifier
	if cfg.DiscordWebhookURL != "" {
		notifier = discord.NewNotifier(cfg.DiscordWebhookURL)
		bus.Subscribe(events.EventPeriodEnd, notifier.HandleEvent)
		bus.Subscribe(events.EventMatchEnd, notifier.HandleEvent)
		telemetry.Infof("Discord results enabled")
	}

	// ── HTTP ───────────────────────────────────────────────────
	api := httpapi.New(httpapi.Deps{
		Repo:              repo,
		Sessions:          sessions,
		Bus:               bus,
		Fanout:            fan,
		Scheduler:         clock.WallScheduler{},
		Observers:         []session.Observer{console},
		CommandRatePerSec: cfg.CommandRatePerSec,
		CommandBurst:      cfg.CommandBurst,
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort)
	if err := api.ListenAndServe(ctx, addr); err != nil {
		telemetry.Errorf("HTTP server: %v", err)
	}

	// ── Shutdown ───────────────────────────────────────────────
	telemetry.Infof("Shutting down  sessions=%d  displays=%d", sessions.Count(), fan.Clients())
	sessions.CloseAll()
	if relay != nil {
		relay.Close()
	}
	if notifier != nil {
		notifier.Close()
	}
	telemetry.Infof("Shutdown complete")
}
