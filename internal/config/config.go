package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DatabaseURL string // empty runs the in-memory store
}

// Load reads .env when present; a missing file is fine in production where
// the environment is set by the deployment.
func Load() Config {
	_ = godotenv.Load()

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}
