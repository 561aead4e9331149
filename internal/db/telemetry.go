package db

import (
	"context"
	"time"

	"homevault/internal/models"
)

// InsertTelemetry logs one device telemetry row
func (d *DB) InsertTelemetry(ctx context.Context, t *models.TelemetryEntry) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO device_telemetry (id, device_id, user_id, event, state, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.DeviceID, t.UserID, t.Event, t.State, t.Timestamp)
	return err
}

// ListTelemetrySince fetches a user's telemetry rows after a cutoff, newest first
func (d *DB) ListTelemetrySince(ctx context.Context, userID string, since time.Time) ([]models.TelemetryEntry, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, device_id, user_id, event, state, timestamp
		 FROM device_telemetry WHERE user_id = $1 AND timestamp >= $2 ORDER BY timestamp DESC`,
		userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TelemetryEntry
	for rows.Next() {
		var t models.TelemetryEntry
		if err := rows.Scan(&t.ID, &t.DeviceID, &t.UserID, &t.Event, &t.State, &t.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}
