// Package metrics exposes Prometheus counters for bot commands.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for RecordCommand.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeNotFound    = "not_found"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Recorder is what the command adapter needs. Nop satisfies it when
// metrics are disabled.
type Recorder interface {
	RecordCommand(command, outcome string, took time.Duration)
	RecordAutocomplete(command string)
	RecordCheckIn(mood string)
	RecordJournalEntry()
}

type Collector struct {
	commands     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	autocomplete *prometheus.CounterVec
	checkIns     *prometheus.CounterVec
	journal      prometheus.Counter
}

// NewCollector registers every metric on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mellow_commands_total",
			Help: "Slash commands handled, by command and outcome.",
		}, []string{"command", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mellow_command_duration_seconds",
			Help:    "Time from interaction receipt to reply.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		autocomplete: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mellow_autocomplete_total",
			Help: "Autocomplete requests answered.",
		}, []string{"command"}),
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mellow_checkins_total",
			Help: "Check-ins recorded, by mood.",
		}, []string{"mood"}),
		journal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mellow_journal_entries_total",
			Help: "Journal entries written.",
		}),
	}

	reg.MustRegister(c.commands, c.latency, c.autocomplete, c.checkIns, c.journal)
	return c
}

func (c *Collector) RecordCommand(command, outcome string, took time.Duration) {
	c.commands.WithLabelValues(command, outcome).Inc()
	c.latency.WithLabelValues(command).Observe(took.Seconds())
}

func (c *Collector) RecordAutocomplete(command string) {
	c.autocomplete.WithLabelValues(command).Inc()
}

func (c *Collector) RecordCheckIn(mood string) {
	c.checkIns.WithLabelValues(mood).Inc()
}

func (c *Collector) RecordJournalEntry() {
	c.journal.Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type Nop struct{}

func (Nop) RecordCommand(string, string, time.Duration) {}
func (Nop) RecordAutocomplete(string)                   {}
func (Nop) RecordCheckIn(string)                        {}
func (Nop) RecordJournalEntry()                         {}
