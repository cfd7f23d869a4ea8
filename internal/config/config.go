// Package config reads the server settings from the environment.
//
// A .env file in the working directory is loaded first when present. Values
// already set in the real environment take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port        int
	DBPath      string
	DatabaseURL string
	TemplateDir string
	StaticDir   string
	LogLevel    slog.Level
	StrictDates bool
}

const (
	defaultPort        = 8080
	defaultDBPath      = "data/rsvp.db"
	defaultTemplateDir = "web/templates"
	defaultStaticDir   = "web/static"
)

// Load reads .env (if any) and then the environment. An unparsable PORT,
// LOG_LEVEL or RSVP_STRICT_DATES is an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults for
// unset or empty variables.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:        defaultPort,
		DBPath:      withDefault(getenv("DB_PATH"), defaultDBPath),
		DatabaseURL: strings.TrimSpace(getenv("DATABASE_URL")),
		TemplateDir: withDefault(getenv("TEMPLATE_DIR"), defaultTemplateDir),
		StaticDir:   withDefault(getenv("STATIC_DIR"), defaultStaticDir),
		LogLevel:    slog.LevelInfo,
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	if v := getenv("RSVP_STRICT_DATES"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RSVP_STRICT_DATES %q: %w", v, err)
		}
		cfg.StrictDates = strict
	}

	return cfg, nil
}

func withDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
