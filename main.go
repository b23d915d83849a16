package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/votexhq/votex/cliparse"
	"github.com/votexhq/votex/db"
	"github.com/votexhq/votex/live"
	"github.com/votexhq/votex/middleware"
	"github.com/votexhq/votex/router"
	"github.com/votexhq/votex/store"
	"github.com/votexhq/votex/tally"
	"github.com/votexhq/votex/vote"
)

func main() {
	// Load .env if present (dev convenience; env wins in production)
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Wire the domain: durable stores, tally projections, live fan-out
	ballots := store.NewBallotStore(dbConn)
	elections := store.NewElectionStore(dbConn)
	broadcaster := live.NewBroadcaster()
	engine := tally.NewEngine(ballots, broadcaster.Publish)
	gateway := vote.NewGateway(ballots, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic recount keeps projections honest after crashes
	go engine.ReconcileLoop(ctx, cfg.ReconcileEvery)

	// Create router
	mux := router.NewRouter(cfg, gateway, ballots, elections, engine, broadcaster)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
