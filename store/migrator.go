package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/ifmtech/event-planning/internal/version"
)

// The migration system keeps the schema versioned per driver:
//
//   - migration/{driver}/LATEST.sql holds the full current schema and is
//     applied as a whole on fresh databases.
//   - migration/{driver}/{version}/NN__description.sql are incremental
//     patches, applied in order to databases recorded at an older version.
//
// The applied schema version is tracked in the migration_history table.

//go:embed migration
var migrationFS embed.FS

const latestSchemaFileName = "LATEST.sql"

// Migrate brings the database schema up to the current version.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}

	currentVersion := version.GetCurrentVersion(s.profile.Mode)

	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if err := s.recordSchemaVersion(ctx, currentVersion); err != nil {
			return errors.Wrap(err, "failed to record schema version")
		}
		slog.Info("database initialized", "driver", s.profile.Driver, "version", currentVersion)
		return nil
	}

	schemaVersion, err := s.currentSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	applied, err := s.applyMigrations(ctx, schemaVersion, currentVersion)
	if err != nil {
		return err
	}
	if applied > 0 {
		if err := s.recordSchemaVersion(ctx, currentVersion); err != nil {
			return errors.Wrap(err, "failed to record schema version")
		}
		slog.Info("database migrated", "from", schemaVersion, "to", currentVersion, "patches", applied)
	}
	return nil
}

func (s *Store) migrationRoot() string {
	return "migration/" + s.profile.Driver
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	buf, err := migrationFS.ReadFile(s.migrationRoot() + "/" + latestSchemaFileName)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", latestSchemaFileName)
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to execute latest schema")
	}
	return nil
}

// applyMigrations executes every patch whose version is newer than the
// recorded schema version and not newer than the target version.
func (s *Store) applyMigrations(ctx context.Context, schemaVersion, targetVersion string) (int, error) {
	root := s.migrationRoot()
	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read migration directory")
	}

	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v := entry.Name()
		if version.IsVersionGreaterThan(v, schemaVersion) && version.IsVersionGreaterOrEqualThan(targetVersion, v) {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return version.IsVersionGreaterThan(versions[j], versions[i])
	})

	applied := 0
	for _, v := range versions {
		files, err := fs.Glob(migrationFS, fmt.Sprintf("%s/%s/*.sql", root, v))
		if err != nil {
			return applied, errors.Wrap(err, "failed to glob migration files")
		}
		sort.Strings(files)
		for _, file := range files {
			buf, err := migrationFS.ReadFile(file)
			if err != nil {
				return applied, errors.Wrapf(err, "failed to read %s", file)
			}
			if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
				return applied, errors.Wrapf(err, "failed to execute %s", file)
			}
			applied++
		}
	}
	return applied, nil
}

func (s *Store) currentSchemaVersion(ctx context.Context) (string, error) {
	var v string
	row := s.driver.GetDB().QueryRowContext(ctx,
		"SELECT version FROM migration_history ORDER BY created_ts DESC LIMIT 1")
	if err := row.Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) recordSchemaVersion(ctx context.Context, v string) error {
	stmt := "INSERT INTO migration_history (version) VALUES (?)"
	if s.profile.Driver == "postgres" {
		stmt = "INSERT INTO migration_history (version) VALUES ($1)"
	}
	_, err := s.driver.GetDB().ExecContext(ctx, stmt, v)
	return err
}
