package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/focusnest/prep-service/internal/progress"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATASTORE", "AUTH_MODE", "PROGRESS_TIMEZONE", "JOURNEY_DAYS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DataStore != DataStoreMemory || cfg.Auth.Mode != "noop" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Progress.Location.String() != "UTC" || cfg.Progress.JourneyDays != progress.DefaultJourneyDays {
		t.Fatalf("unexpected progress defaults: %+v", cfg.Progress)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"firestore without project", map[string]string{"DATASTORE": "firestore", "GCP_PROJECT_ID": ""}, "gcp project id"},
		{"postgres without dsn", map[string]string{"DATASTORE": "postgres", "POSTGRES_DSN": ""}, "POSTGRES_DSN"},
		{"unknown datastore", map[string]string{"DATASTORE": "redis"}, "unsupported datastore"},
		{"clerk without jwks", map[string]string{"AUTH_MODE": "clerk", "CLERK_JWKS_URL": ""}, "CLERK_JWKS_URL"},
		{"bad timezone", map[string]string{"PROGRESS_TIMEZONE": "Mars/Olympus"}, "PROGRESS_TIMEZONE"},
		{"bad journey days", map[string]string{"JOURNEY_DAYS": "soon"}, "JOURNEY_DAYS"},
		{"zero journey days", map[string]string{"JOURNEY_DAYS": "0"}, "JourneyDays"},
		{"non numeric port", map[string]string{"PORT": "http"}, "Port"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range []string{"PORT", "DATASTORE", "AUTH_MODE", "PROGRESS_TIMEZONE", "JOURNEY_DAYS"} {
				t.Setenv(key, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_TimeZoneAndSQLite(t *testing.T) {
	t.Setenv("DATASTORE", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/prep.db")
	t.Setenv("PROGRESS_TIMEZONE", "Asia/Jakarta")
	t.Setenv("AUTH_MODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataStore != DataStoreSQLite || cfg.Progress.Location.String() != "Asia/Jakarta" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadMilestoneCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "milestones.yaml")
	doc := `milestones:
  - title: Graph Sprint
    description: Solve 50 graph problems
    category: dsa
    target: 50
    xp: 300
  - title: Two Projects
    category: Web Dev
    target: 2
    xp: 900
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadMilestoneCatalog(path)
	if err != nil {
		t.Fatalf("LoadMilestoneCatalog: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 milestones, got %d", len(got))
	}
	if got[0].Category != progress.CategoryDSA || got[0].Target != 50 || got[0].XP != 300 {
		t.Fatalf("unexpected first milestone: %+v", got[0])
	}
	if got[1].Category != progress.CategoryWebDev {
		t.Fatalf("unexpected second milestone: %+v", got[1])
	}
}

func TestLoadMilestoneCatalog_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":            "milestones: []\n",
		"unknown category": "milestones:\n  - title: X\n    category: Cooking\n    target: 1\n",
		"missing title":    "milestones:\n  - category: DSA\n    target: 1\n",
		"negative target":  "milestones:\n  - title: X\n    category: DSA\n    target: -1\n",
		"not yaml":         "milestones: [unterminated\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadMilestoneCatalog(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
