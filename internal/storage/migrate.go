package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/guttosm/sectorpulse/internal/logger"
	"github.com/guttosm/sectorpulse/migrations"
	goose "github.com/pressly/goose/v3"
)

// gooseLogger routes goose progress lines through the application logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.L().Info().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.L().Fatal().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Migrate applies the embedded schema migrations to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
