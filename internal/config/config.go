// Package config loads application configuration from environment variables,
// validates it, and provides sensible defaults.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDataDir is the default root directory for the database file.
	DefaultDataDir = "./data"

	// DefaultDBFile is the default database filename.
	DefaultDBFile = "notes.db"

	// DefaultFolderName is the folder created on first run when no folders
	// exist yet.
	DefaultFolderName = "Notes"
)

// Config holds all application configuration.
type Config struct {
	DataDir       string // NOTEFOLD_DATA_DIR
	DBFile        string // NOTEFOLD_DB_FILE
	DBKey         string // NOTEFOLD_DB_KEY: optional, 64 hex chars, enables SQLCipher
	DefaultFolder string // NOTEFOLD_DEFAULT_FOLDER
}

// DatabasePath returns the full path of the database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:       getEnvOrDefault("NOTEFOLD_DATA_DIR", DefaultDataDir),
		DBFile:        getEnvOrDefault("NOTEFOLD_DB_FILE", DefaultDBFile),
		DBKey:         strings.TrimSpace(os.Getenv("NOTEFOLD_DB_KEY")),
		DefaultFolder: getEnvOrDefault("NOTEFOLD_DEFAULT_FOLDER", DefaultFolderName),
	}

	if cfg.DBKey != "" {
		if len(cfg.DBKey) != 64 {
			return nil, fmt.Errorf("NOTEFOLD_DB_KEY must be 64 hex characters (32 bytes), got %d", len(cfg.DBKey))
		}
		if _, err := hex.DecodeString(cfg.DBKey); err != nil {
			return nil, fmt.Errorf("NOTEFOLD_DB_KEY must be valid hex: %w", err)
		}
	}
	if strings.TrimSpace(cfg.DefaultFolder) == "" {
		return nil, fmt.Errorf("NOTEFOLD_DEFAULT_FOLDER must not be blank")
	}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
