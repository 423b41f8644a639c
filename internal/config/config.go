// Package config holds the ambient knobs for the CLI and batch scanner:
// which persistence backend (if any) to write to, its connection details,
// and the scan's worker-pool size.
package config

import (
	"errors"
	"strconv"
)

type StorageType string

const (
	StorageNone     StorageType = "none"
	StoragePostgres StorageType = "postgres"
	StorageBigQuery StorageType = "bigquery"
)

type Config struct {
	Debug         bool
	Storage       StorageType
	PostgresDSN   string
	BQProjectID   string
	BQDataset     string
	BQTable       string
	BQCredentials string // optional if GCP auth happens ambiently
	Parallelism   int
}

// LoadConfigWithEnv builds a Config from getenv, defaulting Storage to
// "none" and Parallelism to 1 when unset. Unlike a tool that always talks
// to a database, every field here is optional at this layer — validation
// is a separate step invoked only once a storage backend is chosen.
func LoadConfigWithEnv(getenv func(string) string) Config {
	storage := StorageType(getenv("GEMLINT_STORAGE"))
	if storage == "" {
		storage = StorageNone
	}

	parallelism := 1
	if pStr := getenv("GEMLINT_PARALLELISM"); pStr != "" {
		if p, err := strconv.Atoi(pStr); err == nil && p > 0 {
			parallelism = p
		}
	}

	return Config{
		Debug:         getenv("GEMLINT_DEBUG") == "true",
		Storage:       storage,
		PostgresDSN:   getenv("POSTGRES_DSN"),
		BQProjectID:   getenv("BQ_PROJECT_ID"),
		BQDataset:     getenv("BQ_DATASET"),
		BQTable:       getenv("BQ_TABLE"),
		BQCredentials: getenv("BQ_CREDENTIALS"),
		Parallelism:   parallelism,
	}
}

// ValidateConfig checks only the fields required by the chosen storage
// backend. StorageNone always validates — the ad hoc CLI/local-file case
// needs no configuration at all.
func ValidateConfig(cfg Config) error {
	switch cfg.Storage {
	case StorageNone, "":
		return nil
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN must be set for postgres storage")
		}
		return nil
	case StorageBigQuery:
		if cfg.BQProjectID == "" || cfg.BQDataset == "" || cfg.BQTable == "" {
			return errors.New("BQ_PROJECT_ID, BQ_DATASET and BQ_TABLE must be set for bigquery storage")
		}
		return nil
	default:
		return errors.New("invalid storage value: must be 'postgres', 'bigquery', or 'none'")
	}
}
