package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EngagementTasks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solofeed_engagement_tasks_total",
		Help: "Synthetic engagement tasks run, by kind",
	}, []string{"kind"})
	OracleRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solofeed_oracle_requests_total",
		Help: "Text oracle calls by outcome (ok, error, fallback)",
	}, []string{"outcome"})
	OracleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solofeed_oracle_duration_seconds",
		Help:    "Text oracle call duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solofeed_notifications_total",
		Help: "Notifications emitted, by kind",
	}, []string{"kind"})
	StoreMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solofeed_store_mutations_total",
		Help: "Store mutations applied, by operation",
	}, []string{"op"})
	TaskPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solofeed_task_panics_total",
		Help: "Scheduled tasks that panicked",
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solofeed_command_runs_total",
		Help: "CLI command runs",
	}, []string{"cmd"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solofeed_command_errors_total",
		Help: "CLI command errors",
	}, []string{"cmd"})
)

func init() {
	prometheus.MustRegister(EngagementTasks, OracleRequests, OracleDuration, Notifications,
		StoreMutations, TaskPanics, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObserveOracle records one oracle call.
func ObserveOracle(start time.Time, outcome string) {
	OracleDuration.Observe(time.Since(start).Seconds())
	OracleRequests.WithLabelValues(outcome).Inc()
}

func IncTask(kind string)         { EngagementTasks.WithLabelValues(kind).Inc() }
func IncNotification(kind string) { Notifications.WithLabelValues(kind).Inc() }
func IncMutation(op string)       { StoreMutations.WithLabelValues(op).Inc() }
func IncCommandRun(cmd string)    { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string)  { CommandErrors.WithLabelValues(cmd).Inc() }
