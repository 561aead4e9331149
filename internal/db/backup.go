package db

import (
	"context"
	"time"

	"homevault/internal/models"
)

const backupColumns = `id, user_id, schedule_id, created_at, size, status, error, object_key, download_url, expires_at`

// InsertBackupRecord creates a new backup record
func (d *DB) InsertBackupRecord(ctx context.Context, b *models.BackupRecord) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO backup_records (id, user_id, schedule_id, created_at, size, status, error, object_key, download_url, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.UserID, b.ScheduleID, b.CreatedAt, b.Size, b.Status, b.Error, b.ObjectKey, b.DownloadURL, b.ExpiresAt)
	return err
}

// UpdateBackupRecord persists the terminal state of a backup record
func (d *DB) UpdateBackupRecord(ctx context.Context, b *models.BackupRecord) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE backup_records SET size = $2, status = $3, error = $4, object_key = $5, download_url = $6, expires_at = $7
		 WHERE id = $1`,
		b.ID, b.Size, b.Status, b.Error, b.ObjectKey, b.DownloadURL, b.ExpiresAt)
	return err
}

// GetBackupRecord fetches a backup record by ID
func (d *DB) GetBackupRecord(ctx context.Context, id string) (*models.BackupRecord, error) {
	var b models.BackupRecord
	err := d.pool.QueryRow(ctx, "SELECT "+backupColumns+" FROM backup_records WHERE id = $1", id).
		Scan(&b.ID, &b.UserID, &b.ScheduleID, &b.CreatedAt, &b.Size, &b.Status, &b.Error,
			&b.ObjectKey, &b.DownloadURL, &b.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBackupRecords fetches a user's backup records, newest first
func (d *DB) ListBackupRecords(ctx context.Context, userID string) ([]models.BackupRecord, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT "+backupColumns+" FROM backup_records WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.BackupRecord
	for rows.Next() {
		var b models.BackupRecord
		if err := rows.Scan(&b.ID, &b.UserID, &b.ScheduleID, &b.CreatedAt, &b.Size, &b.Status,
			&b.Error, &b.ObjectKey, &b.DownloadURL, &b.ExpiresAt); err != nil {
			return nil, err
		}
		records = append(records, b)
	}
	return records, rows.Err()
}

// DeleteBackupRecord removes a backup record
func (d *DB) DeleteBackupRecord(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM backup_records WHERE id = $1", id)
	return err
}

const scheduleColumns = `id, user_id, name, frequency, time, day_of_week, day_of_month, enabled,
	retention_days, last_run, next_run, created_at, updated_at`

// InsertBackupSchedule creates a new backup schedule
func (d *DB) InsertBackupSchedule(ctx context.Context, s *models.BackupSchedule) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO backup_schedules (id, user_id, name, frequency, time, day_of_week, day_of_month,
			enabled, retention_days, last_run, next_run, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.UserID, s.Name, s.Frequency, s.Time, s.DayOfWeek, s.DayOfMonth,
		s.Enabled, s.RetentionDays, s.LastRun, s.NextRun, s.CreatedAt, s.UpdatedAt)
	return err
}

// UpdateBackupSchedule updates a backup schedule in place
func (d *DB) UpdateBackupSchedule(ctx context.Context, s *models.BackupSchedule) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE backup_schedules SET name = $2, frequency = $3, time = $4, day_of_week = $5,
			day_of_month = $6, enabled = $7, retention_days = $8, last_run = $9, next_run = $10, updated_at = $11
		 WHERE id = $1`,
		s.ID, s.Name, s.Frequency, s.Time, s.DayOfWeek, s.DayOfMonth,
		s.Enabled, s.RetentionDays, s.LastRun, s.NextRun, s.UpdatedAt)
	return err
}

// GetBackupSchedule fetches a schedule by ID
func (d *DB) GetBackupSchedule(ctx context.Context, id string) (*models.BackupSchedule, error) {
	var s models.BackupSchedule
	err := d.pool.QueryRow(ctx, "SELECT "+scheduleColumns+" FROM backup_schedules WHERE id = $1", id).
		Scan(&s.ID, &s.UserID, &s.Name, &s.Frequency, &s.Time, &s.DayOfWeek, &s.DayOfMonth,
			&s.Enabled, &s.RetentionDays, &s.LastRun, &s.NextRun, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListBackupSchedules fetches a user's schedules
func (d *DB) ListBackupSchedules(ctx context.Context, userID string) ([]models.BackupSchedule, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT "+scheduleColumns+" FROM backup_schedules WHERE user_id = $1 ORDER BY name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

// ListDueBackupSchedules fetches all enabled schedules due at or before now, across users
func (d *DB) ListDueBackupSchedules(ctx context.Context, now time.Time) ([]models.BackupSchedule, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT "+scheduleColumns+" FROM backup_schedules WHERE enabled = true AND next_run <= $1", now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

// DeleteBackupSchedule removes a schedule record only; existing backups stay
func (d *DB) DeleteBackupSchedule(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM backup_schedules WHERE id = $1", id)
	return err
}

func scanSchedules(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]models.BackupSchedule, error) {
	var schedules []models.BackupSchedule
	for rows.Next() {
		var s models.BackupSchedule
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Frequency, &s.Time, &s.DayOfWeek, &s.DayOfMonth,
			&s.Enabled, &s.RetentionDays, &s.LastRun, &s.NextRun, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
