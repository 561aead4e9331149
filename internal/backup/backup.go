package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"homevault/internal/export"
	"homevault/internal/importer"
	"homevault/internal/models"

	"github.com/google/uuid"
)

const (
	// maxBackups caps the retained backup history per user
	maxBackups = 50
	// signedURLTTL is the default retention window for a backup record. The
	// object store caps the actual URL signature at its own maximum; restore
	// re-presigns when the stored URL has gone stale.
	signedURLTTL = 365 * 24 * time.Hour
)

// Store is the record store holding backup records and schedules
type Store interface {
	InsertBackupRecord(ctx context.Context, b *models.BackupRecord) error
	UpdateBackupRecord(ctx context.Context, b *models.BackupRecord) error
	GetBackupRecord(ctx context.Context, id string) (*models.BackupRecord, error)
	ListBackupRecords(ctx context.Context, userID string) ([]models.BackupRecord, error)
	DeleteBackupRecord(ctx context.Context, id string) error
	InsertBackupSchedule(ctx context.Context, s *models.BackupSchedule) error
	UpdateBackupSchedule(ctx context.Context, s *models.BackupSchedule) error
	GetBackupSchedule(ctx context.Context, id string) (*models.BackupSchedule, error)
	ListBackupSchedules(ctx context.Context, userID string) ([]models.BackupSchedule, error)
	ListDueBackupSchedules(ctx context.Context, now time.Time) ([]models.BackupSchedule, error)
	DeleteBackupSchedule(ctx context.Context, id string) error
}

// ObjectStore persists backup artifacts
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

// Exporter produces snapshot documents
type Exporter interface {
	ExportData(ctx context.Context, userID string, opts export.Options) (*models.Snapshot, error)
}

// Importer restores snapshot documents
type Importer interface {
	ImportFromFile(ctx context.Context, r io.Reader, userID string, opts importer.Options) *importer.Result
}

// Service orchestrates backup creation, restore, schedules and retention
type Service struct {
	store    Store
	objects  ObjectStore
	exporter Exporter
	importer Importer
	client   *http.Client
	now      func() time.Time
}

// NewService creates a backup service
func NewService(store Store, objects ObjectStore, exporter Exporter, imp Importer) *Service {
	return &Service{
		store:    store,
		objects:  objects,
		exporter: exporter,
		importer: imp,
		client:   &http.Client{Timeout: 2 * time.Minute},
		now:      time.Now,
	}
}

// CreateBackup exports all categories, uploads the artifact and issues a
// download URL. The record is persisted in_progress first and always reaches
// a terminal state; failures are re-thrown to the caller after the record is
// marked failed.
func (s *Service) CreateBackup(ctx context.Context, userID string, manual bool, scheduleID string) (*models.BackupRecord, error) {
	record := &models.BackupRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.now(),
		Status:    models.BackupInProgress,
	}
	if scheduleID != "" {
		record.ScheduleID = &scheduleID
	}
	if err := s.store.InsertBackupRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}
	log.Printf("BACKUP: Started backup %s (manual=%t)", record.ID, manual)

	snap, err := s.exporter.ExportData(ctx, userID, export.DefaultOptions())
	if err != nil {
		return nil, s.fail(ctx, record, err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, s.fail(ctx, record, err)
	}

	key := artifactKey(record.CreatedAt)
	if err := s.objects.Upload(ctx, key, data); err != nil {
		return nil, s.fail(ctx, record, err)
	}
	url, err := s.objects.PresignedURL(ctx, key, signedURLTTL)
	if err != nil {
		return nil, s.fail(ctx, record, err)
	}

	expiry := record.CreatedAt.Add(s.retentionFor(ctx, scheduleID))
	record.Status = models.BackupSuccess
	record.Size = int64(len(data))
	record.ObjectKey = key
	record.DownloadURL = url
	record.ExpiresAt = &expiry
	if err := s.store.UpdateBackupRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("finalize backup record: %w", err)
	}
	log.Printf("BACKUP: Completed backup %s (%d bytes)", record.ID, record.Size)

	if err := s.CleanupOldBackups(ctx, userID); err != nil {
		log.Printf("BACKUP: Cleanup after backup %s failed: %v", record.ID, err)
	}
	return record, nil
}

func (s *Service) fail(ctx context.Context, record *models.BackupRecord, cause error) error {
	record.Status = models.BackupFailed
	record.Error = cause.Error()
	if err := s.store.UpdateBackupRecord(ctx, record); err != nil {
		log.Printf("BACKUP: Could not mark backup %s failed: %v", record.ID, err)
	}
	return fmt.Errorf("backup failed: %w", cause)
}

// retentionFor resolves the expiry window: a schedule's retention when the
// backup is scheduled, otherwise the download URL lifetime.
func (s *Service) retentionFor(ctx context.Context, scheduleID string) time.Duration {
	if scheduleID == "" {
		return signedURLTTL
	}
	schedule, err := s.store.GetBackupSchedule(ctx, scheduleID)
	if err != nil || schedule.RetentionDays <= 0 {
		return signedURLTTL
	}
	return time.Duration(schedule.RetentionDays) * 24 * time.Hour
}

// artifactKey derives the object storage key from the backup timestamp,
// with ':' and '.' replaced so the key stays filesystem-friendly.
func artifactKey(ts time.Time) string {
	stamp := ts.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.ReplaceAll(stamp, ":", "-")
	stamp = strings.ReplaceAll(stamp, ".", "-")
	return "backup-" + stamp + ".json"
}

// RestoreBackup downloads a backup artifact and re-imports it with overwrite
// enabled for every category. The download URL is re-signed from the object
// key because stored signatures outlive their validity window.
func (s *Service) RestoreBackup(ctx context.Context, userID, backupID string) error {
	record, err := s.store.GetBackupRecord(ctx, backupID)
	if err != nil {
		return fmt.Errorf("backup not found: %w", err)
	}
	url := record.DownloadURL
	if record.ObjectKey != "" {
		url, err = s.objects.PresignedURL(ctx, record.ObjectKey, time.Hour)
		if err != nil {
			return fmt.Errorf("sign download: %w", err)
		}
	}
	if url == "" {
		return fmt.Errorf("backup %s has no artifact to restore", backupID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download backup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download backup: unexpected status %d", resp.StatusCode)
	}

	opts := importer.DefaultOptions()
	opts.OverwriteExisting = true
	result := s.importer.ImportFromFile(ctx, resp.Body, userID, opts)
	if !result.Success {
		return fmt.Errorf("restore failed: %s", strings.Join(result.Errors, "; "))
	}
	log.Printf("BACKUP: Restored backup %s (%d devices, %d automations, %d scenes)",
		backupID, result.Imported.Devices, result.Imported.Automations, result.Imported.Scenes)
	return nil
}

// CleanupOldBackups enforces the retained-count cap and purges expired
// records. Object removal is best-effort; the record is deleted either way.
func (s *Service) CleanupOldBackups(ctx context.Context, userID string) error {
	records, err := s.store.ListBackupRecords(ctx, userID)
	if err != nil {
		return err
	}
	now := s.now()
	for i, record := range records {
		expired := record.ExpiresAt != nil && record.ExpiresAt.Before(now)
		if i < maxBackups && !expired {
			continue
		}
		if record.ObjectKey != "" {
			if err := s.objects.Remove(ctx, record.ObjectKey); err != nil {
				log.Printf("BACKUP: Could not remove artifact %s: %v", record.ObjectKey, err)
			}
		}
		if err := s.store.DeleteBackupRecord(ctx, record.ID); err != nil {
			log.Printf("BACKUP: Could not delete backup record %s: %v", record.ID, err)
			continue
		}
		log.Printf("BACKUP: Purged backup %s (expired=%t)", record.ID, expired)
	}
	return nil
}
