package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guttosm/sectorpulse/config"
)

func TestOpenSnapshotStore(t *testing.T) {
	openErr := errors.New("open failed")
	migrateErr := errors.New("bad migration")

	cases := []struct {
		name       string
		openErr    error
		migrateErr error
		wantErr    error
	}{
		{name: "ok"},
		{name: "open error", openErr: openErr, wantErr: openErr},
		{name: "migrate error", migrateErr: migrateErr, wantErr: migrateErr},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock new: %v", err)
			}
			if tc.migrateErr != nil {
				mock.ExpectClose()
			}

			oldOpen, oldMigrate := postgresOpener, migrator
			t.Cleanup(func() { postgresOpener, migrator = oldOpen, oldMigrate })

			postgresOpener = func(config.Config) (*sql.DB, error) {
				if tc.openErr != nil {
					return nil, tc.openErr
				}
				return db, nil
			}
			migrated := false
			migrator = func(_ context.Context, got *sql.DB) error {
				migrated = got == db
				return tc.migrateErr
			}

			out, err := OpenSnapshotStore(context.Background(), config.Config{})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) || out != nil {
					t.Fatalf("want %v, got db=%v err=%v", tc.wantErr, out, err)
				}
				if tc.migrateErr != nil {
					if err := mock.ExpectationsWereMet(); err != nil {
						t.Fatalf("db not closed after migrate failure: %v", err)
					}
				}
				return
			}
			if err != nil || out != db || !migrated {
				t.Fatalf("unexpected result: db=%v err=%v migrated=%v", out, err, migrated)
			}
			_ = db.Close()
		})
	}
}
