package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathgames/internal/db"
	"github.com/robalobadob/mathgames/internal/game"
	"github.com/robalobadob/mathgames/internal/httpserver"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	conn, err := db.Open(getEnv("DB_PATH", db.MemoryDSN))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer conn.Close()
	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	srv := httpserver.New(configFromEnv(), conn, game.DefaultSource)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting mathgames server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func configFromEnv() httpserver.Config {
	cfg := httpserver.DefaultConfig()
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpiry = time.Duration(envInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour
	cfg.CookieName = getEnv("COOKIE_NAME", cfg.CookieName)
	cfg.ClientOrigin = getEnv("CLIENT_ORIGIN", cfg.ClientOrigin)
	cfg.SecureCookies = getEnv("NODE_ENV", "") == "production"
	cfg.DailySalt = getEnv("DAILY_SALT", cfg.DailySalt)
	cfg.ComputerDelay = time.Duration(envInt("COMPUTER_DELAY_MS", 1000)) * time.Millisecond
	cfg.FinishedTTL = time.Duration(envInt("FINISHED_TTL_SECONDS", 300)) * time.Second
	cfg.IdleTTL = time.Duration(envInt("IDLE_TTL_MINUTES", 30)) * time.Minute
	if cfg.JWTSecret == "dev_secret_change_me" && cfg.SecureCookies {
		log.Warn().Msg("JWT_SECRET is the development default")
	}
	return cfg
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring invalid integer env var")
		return def
	}
	return n
}
