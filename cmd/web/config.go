package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the web frontend's runtime configuration, sourced from the
// environment with an optional .env overlay for local development.
type Config struct {
	ListenAddr     string
	BackendURL     string
	ViewsDir       string
	PublicDir      string
	JWKSURL        string
	CookieDuration time.Duration
	RequestTimeout time.Duration
	Debug          bool
}

func LoadConfig() Config {
	// missing .env is fine, the environment wins either way
	godotenv.Load()

	return Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":3000"),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8080"),
		ViewsDir:       getEnv("VIEWS_DIR", "./views"),
		PublicDir:      getEnv("PUBLIC_DIR", "./public"),
		JWKSURL:        getEnv("JWKS_URL", ""),
		CookieDuration: getEnvDuration("COOKIE_DURATION", 24*time.Hour),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		Debug:          getEnvBool("DEBUG", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
