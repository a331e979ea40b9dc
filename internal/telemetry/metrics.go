package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the global metrics registry. Everything is registered with the
// default Prometheus registerer and served by promhttp on /metrics.
var Metrics = struct {
	Commands       *prometheus.CounterVec
	CommandLatency prometheus.Histogram
	Ticks          prometheus.Counter
	PeriodEnds     prometheus.Counter
	MatchEnds      prometheus.Counter
	ActiveSessions prometheus.Gauge
	RateLimited    prometheus.Counter
	FanoutClients  prometheus.Gauge
	FanoutDropped  prometheus.Counter
	RelayPublished prometheus.Counter
	RelayErrors    prometheus.Counter
	RosterLoads    prometheus.Counter
}{
	Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courtside_commands_total",
		Help: "Session commands by op and whether they changed state.",
	}, []string{"op", "applied"}),
	CommandLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "courtside_command_seconds",
		Help:    "Time from command submission to snapshot.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	}),
	Ticks: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courtside_clock_ticks_total",
		Help: "Clock ticks applied to running sessions.",
	}),
	PeriodEnds: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courtside_period_ends_total",
		Help: "Periods that ran out.",
	}),
	MatchEnds: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courtside_match_ends_total",
		Help: "Matches that ran out on the final period.",
	}),
	ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "courtside_active_sessions",
		Help: "Live match sessions.",
	}),
	RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courtside_commands_rate_limited_total",
		Help: "Commands refused by the per-session limiter.",
	}),
	FanoutClients: prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "courtside_fanout_clients",
		Help: "Connected WebSocket displays.",
	}),
	FanoutDropped: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courtside_fanout_dropped_total",
		Help: "Messages dropped for slow WebSocket displays.",
	}),
	RelayPublished: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courtside_relay_published_total",
		Help: "Events published to Redis.",
	}),
	RelayErrors: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courtside_relay_errors_total",
		Help: "Redis publish failures and dropped relay events.",
	}),
	RosterLoads: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courtside_roster_loads_total",
		Help: "Sport records read from the key-value store.",
	}),
}

func init() {
	prometheus.MustRegister(
		Metrics.Commands,
		Metrics.CommandLatency,
		Metrics.Ticks,
		Metrics.PeriodEnds,
		Metrics.MatchEnds,
		Metrics.ActiveSessions,
		Metrics.RateLimited,
		Metrics.FanoutClients,
		Metrics.FanoutDropped,
		Metrics.RelayPublished,
		Metrics.RelayErrors,
		Metrics.RosterLoads,
	)
}
