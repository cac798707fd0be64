package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sectorpulse/config"
	"github.com/guttosm/sectorpulse/internal/api"
	"github.com/guttosm/sectorpulse/internal/service"
	"github.com/guttosm/sectorpulse/internal/storage"
)

// InitializeApp sets up all API dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL and migrates the snapshot schema (OpenSnapshotStore).
//   - Initializes the repository and snapshot service layers.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close the DB connection.
func InitializeApp(ctx context.Context) (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	db, err := OpenSnapshotStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	repo := storage.NewSnapshotRepository(db)
	svc := service.NewSnapshotService(repo)
	handler := api.NewHandler(svc)

	router := api.NewRouter(handler)
	api.NewHealthHandler(db.PingContext).Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
