package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	contractorstats "tender-matching/internal/workers/analytics/contractor-stats"
	tendererstats "tender-matching/internal/workers/analytics/tenderer-stats"
	matchcontractors "tender-matching/internal/workers/matching/match-contractors"
	matchtenders "tender-matching/internal/workers/matching/match-tenders"
	scorebid "tender-matching/internal/workers/matching/score-bid"

	"tender-matching/internal/api"
	"tender-matching/internal/common/camunda"
	"tender-matching/internal/common/config"
	"tender-matching/internal/common/database"
	"tender-matching/internal/common/logger"
	"tender-matching/internal/common/observability"
	"tender-matching/internal/matching"
	"tender-matching/internal/search"
	"tender-matching/pkg/registry"
)

const connectAttempts = 5

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Zeebe job workers and the HTTP API until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApplication()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func (a *application) serve(ctx context.Context) error {
	if err := a.cfg.ValidateForServe(); err != nil {
		return err
	}

	a.log.Info("Starting worker manager", map[string]interface{}{
		"app":         a.cfg.App.Name,
		"version":     a.cfg.App.Version,
		"environment": a.cfg.App.Environment,
	})

	obs, err := observability.New(a.cfg.App.Name, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	a.onClose(func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return obs.Shutdown(shutdownCtx)
	})

	pg, err := a.connectPostgres(ctx, connectAttempts)
	if err != nil {
		return err
	}
	rdb, err := a.connectRedis(ctx, connectAttempts)
	if err != nil {
		return err
	}
	es, err := a.connectElasticsearch(ctx, connectAttempts)
	if err != nil {
		return err
	}

	var zc *camunda.Client
	err = database.RetryWithBackoff(ctx, func(context.Context) error {
		var err error
		zc, err = camunda.NewClient(camunda.ConfigFrom(a.cfg.Camunda))
		return err
	}, connectAttempts, 2*time.Second, a.log, "Zeebe connection")
	if err != nil {
		return err
	}
	a.onClose(zc.Close)

	st := a.newStore(pg, rdb)
	ranker := matching.NewRanker(st, matchingOptions(a.cfg.Matching), a.log)
	stats := matching.NewStatsAggregator(st, a.log)

	index := search.NewContractorIndex(es.Client, a.cfg.Search.Index, a.log)
	if err := index.EnsureIndex(ctx); err != nil {
		a.log.Warn("Contractor index unavailable, search will fail until reindexed", map[string]interface{}{
			"index": a.cfg.Search.Index,
			"error": err.Error(),
		})
	}

	reg, err := registry.Default()
	if err != nil {
		return err
	}

	manager := camunda.NewManager(zc.Zeebe(), a.log)
	if err := startWorkers(manager, a.cfg, reg, ranker, stats, st, obs, a.log); err != nil {
		manager.Close()
		return err
	}
	a.log.Info("Workers running", map[string]interface{}{"count": manager.Running()})

	srv := api.NewServer(api.Deps{
		Ranker: ranker,
		Stats:  stats,
		Search: index,
		Checks: map[string]api.Pinger{
			"postgres":      pg,
			"redis":         rdb,
			"elasticsearch": es,
			"zeebe":         zc,
		},
		Obs: obs,
	}, a.log)

	httpServer := &http.Server{
		Addr:         a.cfg.HTTP.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(a.cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(a.cfg.HTTP.WriteTimeout),
	}

	return a.runHTTP(ctx, httpServer, manager.Close)
}

// runHTTP serves until ctx is cancelled or the listener fails, then shuts the
// server down and calls stopWorkers. A listener failure is returned.
func (a *application) runHTTP(ctx context.Context, httpServer *http.Server, stopWorkers func()) error {
	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server listening", map[string]interface{}{"address": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("Shutdown signal received", nil)
	case runErr = <-serveErr:
		if runErr != nil {
			a.log.Error("HTTP server failed", map[string]interface{}{"error": runErr.Error()})
			runErr = fmt.Errorf("http server: %w", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("HTTP server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	stopWorkers()

	a.log.Info("Worker manager stopped", nil)
	return runErr
}

// startWorkers builds every job handler and opens a worker for each enabled task type.
func startWorkers(
	manager *camunda.Manager,
	cfg *config.Config,
	reg *registry.ActivityRegistry,
	ranker *matching.Ranker,
	stats *matching.StatsAggregator,
	writer scorebid.BidScoreWriter,
	recorder camunda.JobRecorder,
	log logger.Logger,
) error {
	mc, err := matchcontractors.NewHandler(matchcontractors.HandlerOptions{
		AppConfig: cfg, Registry: reg, Ranker: ranker, Logger: log, Recorder: recorder,
	})
	if err != nil {
		return err
	}
	mt, err := matchtenders.NewHandler(matchtenders.HandlerOptions{
		AppConfig: cfg, Registry: reg, Ranker: ranker, Logger: log, Recorder: recorder,
	})
	if err != nil {
		return err
	}
	sb, err := scorebid.NewHandler(scorebid.HandlerOptions{
		AppConfig: cfg, Registry: reg, Scorer: ranker, Writer: writer, Logger: log Recorder: recorder,
	})
	if err != nil {
		return err
	}
	ts, err := tendererstats.NewHandler(tendererstats.HandlerOptions{
		AppConfig: cfg, Registry: reg, Stats: stats, Logger: log Recorder: recorder,
	})
	if err != nil {
		return err
	}
	cs, err := contractorstats.NewHandler(contractorstats.HandlerOptions{
		AppConfig: cfg, Registry: reg, Stats: stats, Logger: log Recorder: recorder,
	})
	if err != nil {
		return err
	}

	handlers := map[string]worker.JobHandler{
		matchcontractors.TaskType: mc.Handle,
		matchtenders.TaskType:     mt.Handle,
		scorebid.TaskType:         sb.Handle,
		tendererstats.TaskType:    ts.Handle,
		contractorstats.TaskType:  cs.Handle,
	}
	for taskType, handle := range handlers {
		manager.Start(taskType, config.GetWorkerConfig(cfg, taskType), handle)
	}
	return nil
}
