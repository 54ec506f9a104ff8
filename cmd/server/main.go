package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/focusnest/prep-service/internal/config"
	"github.com/focusnest/prep-service/internal/httpapi"
	"github.com/focusnest/prep-service/internal/progress"
	"github.com/focusnest/prep-service/internal/tracker"
	sharedauth "github.com/focusnest/prep-service/shared-libs/auth"
	"github.com/focusnest/prep-service/shared-libs/envconfig"
	"github.com/focusnest/prep-service/shared-libs/logging"
	sharedserver "github.com/focusnest/prep-service/shared-libs/server"
)

const serviceName = "prep-service"

func main() {
	ctx := context.Background()
	if err := envconfig.LoadDotEnv(); err != nil {
		panic(fmt.Errorf("dotenv: %w", err))
	}
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName)

	store, closer, err := openStore(ctx, cfg, logger)
	if err != nil {
		panic(fmt.Errorf("datastore: %w", err))
	}
	defer closer.Close()

	var catalog []progress.Milestone
	if cfg.Progress.CatalogPath != "" {
		catalog, err = config.LoadMilestoneCatalog(cfg.Progress.CatalogPath)
		if err != nil {
			panic(fmt.Errorf("milestone catalog: %w", err))
		}
		logger.Info("milestone catalog loaded", "path", cfg.Progress.CatalogPath, "milestones", len(catalog))
	}

	prepService, err := tracker.NewService(store, tracker.NewSystemClock(), tracker.NewUUIDGenerator(), tracker.Options{
		Location:    cfg.Progress.Location,
		Catalog:     catalog,
		JourneyDays: cfg.Progress.JourneyDays,
		Logger:      logger,
	})
	if err != nil {
		panic(fmt.Errorf("tracker service: %w", err))
	}

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
		Logger:   logger,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := sharedserver.NewRouter(serviceName, logger, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sharedauth.Middleware(verifier))
			httpapi.RegisterRoutes(r, prepService)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("prep service configured",
		"datastore", cfg.DataStore,
		"auth", cfg.Auth.Mode,
		"timezone", cfg.Progress.Location.String(),
	)

	if err := sharedserver.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (tracker.Store, io.Closer, error) {
	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			// The Firestore client picks the emulator up from the environment.
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, err
			}
			logger.Info("using firestore emulator", "host", cfg.Firestore.EmulatorHost)
		}
		client, err := firestore.NewClientWithDatabase(ctx, cfg.GCPProjectID, cfg.Firestore.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		return tracker.NewFirestoreStore(client), client, nil
	case config.DataStoreSQLite:
		store, db, err := tracker.OpenSQLite(cfg.SQL.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, db, nil
	case config.DataStorePostgres:
		store, db, err := tracker.OpenPostgres(ctx, cfg.SQL.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, db, nil
	default:
		logger.Warn("using in-memory datastore; journeys are lost on restart")
		return tracker.NewMemoryStore(), nopCloser{}, nil
	}
}
