package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"homevault/internal/export"
	"homevault/internal/migrate"
)

// ImportFromFile reads a snapshot file, validates it structurally, runs the
// migration chain when the document is behind the current schema version,
// and delegates to ImportData. Malformed input never panics; it is reported
// as a single-error result with zero counts.
func (m *Manager) ImportFromFile(ctx context.Context, r io.Reader, userID string, opts Options) *Result {
	raw, err := io.ReadAll(r)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to read file: %v", err))
	}

	snap, generic, err := export.ParseSnapshot(raw)
	if err != nil {
		return errorResult(fmt.Sprintf("Invalid file format: %v", err))
	}

	if migrate.CompareVersions(snap.Version, export.SchemaVersion) < 0 {
		log.Printf("IMPORT: Snapshot at version %s, migrating to %s", snap.Version, export.SchemaVersion)
		migrated := migrate.MigrateData(generic)
		if !migrated.Success {
			return errorResult(fmt.Sprintf("Migration failed: %s", strings.Join(migrated.Errors, "; ")))
		}
		if defects := migrate.ValidateMigratedData(migrated.Snapshot); len(defects) > 0 {
			return errorResult(fmt.Sprintf("Migrated data is invalid: %s", strings.Join(defects, "; ")))
		}
		snap = migrated.Snapshot
	}

	return m.ImportData(ctx, snap, userID, opts)
}
