// Package config reads the bot's settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/keyring"
)

var ErrNoToken = errors.New("no bot token: set TOKEN or run 'mellow token set'")

type Config struct {
	Token     string
	OwnerID   int64
	Store     string
	CopingMap string
	LogDir    string
	OpsAddr   string
	DevGuild  string
	Debug     bool
}

// LoadDotEnv loads .env files into the environment. A missing file is not
// an error; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load %s: %w", strings.Join(present, ", "), err)
	}
	return nil
}

// Load reads the environment, filling defaults for unset values.
func Load() (*Config, error) {
	cfg := &Config{
		Token:     strings.TrimSpace(os.Getenv("TOKEN")),
		Store:     getEnv("MELLOW_STORE", constants.DefaultDataDir),
		CopingMap: getEnv("MELLOW_COPING_MAP", constants.DefaultCopingMap),
		LogDir:    getEnv("MELLOW_LOG_DIR", constants.DefaultLogDir),
		OpsAddr:   getEnvAllowEmpty("MELLOW_OPS_ADDR", constants.DefaultOpsAddr),
		DevGuild:  os.Getenv("MELLOW_DEV_GUILD"),
	}

	if raw := os.Getenv("OWNER_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("OWNER_ID must be a numeric user id, got %q", raw)
		}
		cfg.OwnerID = id
	}

	if raw := os.Getenv("MELLOW_DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("MELLOW_DEBUG must be a boolean, got %q", raw)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}

// ResolveToken returns the configured token, falling back to the OS keyring.
func (c *Config) ResolveToken() (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}
	token, err := keyring.GetToken()
	if errors.Is(err, keyring.ErrNotFound) || errors.Is(err, keyring.ErrKeyringUnavailable) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getEnvAllowEmpty treats an explicitly empty variable as a value, so
// MELLOW_OPS_ADDR= disables the ops server.
func getEnvAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}
