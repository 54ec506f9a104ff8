package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/focusnest/prep-service/internal/progress"
	sharedauth "github.com/focusnest/prep-service/shared-libs/auth"
	"github.com/focusnest/prep-service/shared-libs/envconfig"
)

// Config encapsulates the runtime configuration for the prep service.
type Config struct {
	Port         string `validate:"required,numeric"`
	GCPProjectID string
	DataStore    DataStore
	Auth         AuthConfig
	Firestore    FirestoreConfig
	SQL          SQLConfig
	Progress     ProgressConfig
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps journeys in-memory (useful for local development/testing).
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore stores journeys in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
	// DataStoreSQLite stores journeys in a local SQLite file.
	DataStoreSQLite DataStore = "sqlite"
	// DataStorePostgres stores journeys in PostgreSQL.
	DataStorePostgres DataStore = "postgres"
)

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     sharedauth.Mode
	JWKSURL  string
	Audience string
	Issuer   string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	Database     string
	EmulatorHost string
}

// SQLConfig locates the SQL backends.
type SQLConfig struct {
	SQLitePath  string
	PostgresDSN string
}

// ProgressConfig tunes the progress rules.
type ProgressConfig struct {
	TimeZone    string
	Location    *time.Location
	JourneyDays int `validate:"gte=1,lte=3650"`
	// CatalogPath optionally points at a YAML list of milestones seeding new journeys.
	CatalogPath string
}

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	journeyDays, err := envconfig.GetInt("JOURNEY_DAYS", progress.DefaultJourneyDays)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		Auth: AuthConfig{
			Mode:     sharedauth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop)))),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			Database:     envconfig.Get("FIRESTORE_DATABASE", "(default)"),
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		SQL: SQLConfig{
			SQLitePath:  envconfig.Get("SQLITE_PATH", "data/prep.db"),
			PostgresDSN: envconfig.Get("POSTGRES_DSN", ""),
		},
		Progress: ProgressConfig{
			TimeZone:    envconfig.Get("PROGRESS_TIMEZONE", "UTC"),
			JourneyDays: journeyDays,
			CatalogPath: envconfig.Get("MILESTONE_CATALOG", ""),
		},
	}

	loc, err := time.LoadLocation(cfg.Progress.TimeZone)
	if err != nil {
		return Config{}, fmt.Errorf("PROGRESS_TIMEZONE: %w", err)
	}
	cfg.Progress.Location = loc

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if err := envconfig.Validate(cfg); err != nil {
		return err
	}

	switch cfg.DataStore {
	case DataStoreMemory:
		// no-op
	case DataStoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("gcp project id required when datastore=firestore")
		}
	case DataStoreSQLite:
		if strings.TrimSpace(cfg.SQL.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when DATASTORE=sqlite")
		}
	case DataStorePostgres:
		if strings.TrimSpace(cfg.SQL.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required when DATASTORE=postgres")
		}
	default:
		return fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}

	switch cfg.Auth.Mode {
	case sharedauth.ModeClerk:
		if cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("CLERK_JWKS_URL is required when AUTH_MODE=clerk")
		}
	case sharedauth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	return nil
}

type catalogFile struct {
	Milestones []progress.Milestone `yaml:"milestones"`
}

// LoadMilestoneCatalog reads a YAML milestone catalog:
//
//	milestones:
//	  - title: DSA Foundation
//	    description: Complete 400 DSA problems
//	    category: DSA
//	    target: 400
//	    xp: 500
func LoadMilestoneCatalog(path string) ([]progress.Milestone, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read milestone catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse milestone catalog: %w", err)
	}
	if len(file.Milestones) == 0 {
		return nil, fmt.Errorf("milestone catalog %s has no milestones", path)
	}

	for i, m := range file.Milestones {
		category, ok := progress.ParseCategory(string(m.Category))
		switch {
		case strings.TrimSpace(m.Title) == "":
			return nil, fmt.Errorf("milestone %d: title is required", i)
		case !ok:
			return nil, fmt.Errorf("milestone %q: unknown category %q", m.Title, m.Category)
		case m.Target < 0 || m.XP < 0:
			return nil, fmt.Errorf("milestone %q: target and xp must be non-negative", m.Title)
		}
		file.Milestones[i].Category = category
	}
	return file.Milestones, nil
}
