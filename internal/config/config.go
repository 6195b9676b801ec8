package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDriver      string // sqlite | mysql
	DBDSN         string
	RedisAddr     string // empty disables the Redis idempotency store
	DeckCopyLimit int    // max copies of one card across all printings in a deck
	LogFile       string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "cardbazaar.db"
	}
	limit := 3
	if v := os.Getenv("DECK_COPY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./cardbazaar.log"
	}

	cfg := Config{
		Port:          port,
		DBDriver:      driver,
		DBDSN:         dsn,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		DeckCopyLimit: limit,
		LogFile:       logFile,
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s REDIS_ADDR=%s DECK_COPY_LIMIT=%d",
		cfg.Port, cfg.DBDriver, cfg.DBDSN, cfg.RedisAddr, cfg.DeckCopyLimit)
	return cfg
}
