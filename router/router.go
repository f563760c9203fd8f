// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/closed-ballot/clock"
	"github.com/danielhkuo/closed-ballot/cliparse"
	"github.com/danielhkuo/closed-ballot/handlers"
	"github.com/danielhkuo/closed-ballot/ledger"
	"github.com/danielhkuo/closed-ballot/lifecycle"
	"github.com/danielhkuo/closed-ballot/metrics"
	"github.com/danielhkuo/closed-ballot/middleware"
	"github.com/danielhkuo/closed-ballot/results"
	"github.com/danielhkuo/closed-ballot/store"
	"github.com/danielhkuo/closed-ballot/voters"
)

// Services holds everything the routes are served from.
type Services struct {
	Store      *store.SQLStore
	Clock      clock.Clock
	Lifecycle  *lifecycle.Service
	Issuer     *voters.Issuer
	Ledger     *ledger.Ledger
	Aggregator *results.Aggregator
	Gatherer   prometheus.Gatherer
}

// NewServices builds the election services over one database connection.
// Collectors are registered on registry.
func NewServices(conn *sql.DB, cfg cliparse.Config, clk clock.Clock, registry *prometheus.Registry, logger *slog.Logger) Services {
	st := store.New(conn)
	m := metrics.New(registry)

	return Services{
		Store:     st,
		Clock:     clk,
		Lifecycle: lifecycle.NewService(st, clk, m, logger),
		Issuer: voters.NewIssuer(st, voters.Options{
			CodeLength:  cfg.VoterCodeLength,
			BatchSize:   cfg.VoterCodeBatchSize,
			MaxAttempts: cfg.VoterCodeMaxAttempts,
		}, m, logger),
		Ledger:     ledger.New(st, clk, m, logger),
		Aggregator: results.NewAggregator(st, clk, logger),
		Gatherer:   registry,
	}
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(svc.Store, svc.Lifecycle, svc.Clock, cfg)
	voterHandler := handlers.NewVoterHandler(svc.Store, svc.Issuer, cfg)
	ballotHandler := handlers.NewBallotHandler(svc.Ledger)
	resultsHandler := handlers.NewResultsHandler(svc.Aggregator)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	if svc.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(svc.Gatherer, promhttp.HandlerOpts{}))
	}

	// Election administration
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections", middleware.WithLogging(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/stats", middleware.WithLogging(electionHandler.GetStats))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("DELETE /elections/{id}", middleware.WithLogging(electionHandler.DeleteElection))
	mux.HandleFunc("POST /elections/{id}/end", middleware.WithLogging(electionHandler.EndElection))

	// Setup (admin, UPCOMING only)
	mux.HandleFunc("POST /elections/{id}/positions", middleware.WithLogging(electionHandler.AddPosition))
	mux.HandleFunc("POST /elections/{id}/positions/{positionID}/candidates", middleware.WithLogging(electionHandler.AddCandidate))

	// Voter codes (admin)
	mux.HandleFunc("POST /elections/{id}/voters", middleware.WithLogging(voterHandler.GenerateVoters))
	mux.HandleFunc("GET /elections/{id}/voters", middleware.WithLogging(voterHandler.ListVoters))

	// Voting (public, uses voter code)
	mux.HandleFunc("POST /elections/{id}/sign-in", middleware.WithLogging(ballotHandler.SignIn))
	mux.HandleFunc("POST /elections/{id}/ballots", middleware.WithLogging(ballotHandler.SubmitBallot))

	// Results (public, computed fresh)
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("closed-ballot API v1"))
	})

	return mux
}
