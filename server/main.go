package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	loadDotEnv()
	cfg, err := ParseConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	var (
		db     *DB
		auth   *Auth
		ledger *Ledger
		rec    Recorder
	)
	if cfg.DBPath != "" {
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("open db %s: %v", cfg.DBPath, err)
		}
		defer db.Close()
		auth = NewAuth(db, cfg.JWTSecret)
		ledger = NewLedger(db)
		defer ledger.Stop()
		rec = ledger
		log.Printf("Accounts and ledger stored in %s", cfg.DBPath)
	}

	arena := NewArena(rec)
	go arena.Run(ctx)

	hub := NewHub(arena, db, auth, ledger)
	go hub.Run(ctx)

	mux := SetupRoutes(hub, cfg.ClientDir)
	server := &http.Server{Addr: cfg.Addr, Handler: otelhttp.NewHandler(mux, "arena")}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		log.Printf("Serving client files from %s", cfg.ClientDir)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
		server.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}
