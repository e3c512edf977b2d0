package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds server settings. Flags win over environment variables,
// which win over built-in defaults.
type Config struct {
	Addr         string
	ClientDir    string
	DBPath       string
	JWTSecret    string
	OTLPEndpoint string
}

// loadDotEnv reads .env files if present; a missing file is not an error
func loadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: could not load .env: %v", err)
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// ParseConfig parses command line args on top of the environment
func ParseConfig(args []string) (Config, error) {
	var cfg Config
	fset := flag.NewFlagSet("arena", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", getEnv("ADDR", ":8080"), "HTTP listen address")
	fset.StringVar(&cfg.ClientDir, "client", getEnv("CLIENT_DIR", ""), "Path to client directory (default: ../client)")
	fset.StringVar(&cfg.DBPath, "db", getEnv("DB_PATH", "arena.db"), "SQLite path for accounts and the career ledger; empty disables both")
	fset.StringVar(&cfg.JWTSecret, "jwt-secret", getEnv("JWT_SECRET", ""), "Token signing secret (default: generated and stored in the database)")
	fset.StringVar(&cfg.OTLPEndpoint, "otlp", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "OTLP gRPC endpoint for traces; empty disables tracing")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.ClientDir == "" {
		exe, _ := os.Executable()
		cfg.ClientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		// Fallback for development
		if _, err := os.Stat(cfg.ClientDir); os.IsNotExist(err) {
			cfg.ClientDir = "../client"
		}
	}
	return cfg, nil
}
