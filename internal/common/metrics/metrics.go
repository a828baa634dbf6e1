// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchRankings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_rankings_total",
			Help: "Rankings produced, by direction and outcome (ok, empty, error)",
		},
		[]string{"direction", "outcome"},
	)

	MatchCandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_candidates_scored_total",
			Help: "Candidates scored by the ranker",
		},
		[]string{"direction"},
	)

	MatchRankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_ranking_duration_seconds",
			Help:    "Time spent loading and ranking a candidate pool",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	StatsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_requests_total",
			Help: "Dashboard stats computed, by organization role",
		},
		[]string{"role"},
	)

	StoreCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_cache_requests_total",
			Help: "Read-through cache lookups, by entity and result (hit, miss, error)",
		},
		[]string{"entity", "result"},
	)
)
