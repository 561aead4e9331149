package backup

import (
	"context"
	"fmt"
	"log"
	"time"

	"homevault/internal/models"

	"github.com/google/uuid"
)

// CreateSchedule stores a new recurring backup definition with its first
// run time computed.
func (s *Service) CreateSchedule(ctx context.Context, schedule *models.BackupSchedule) error {
	if err := validateSchedule(schedule); err != nil {
		return err
	}
	now := s.now()
	schedule.ID = uuid.NewString()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	schedule.NextRun = computeNextRun(schedule, now)
	return s.store.InsertBackupSchedule(ctx, schedule)
}

// UpdateSchedule updates a schedule, recomputing next run whenever any of
// the timing fields changed.
func (s *Service) UpdateSchedule(ctx context.Context, schedule *models.BackupSchedule) error {
	if err := validateSchedule(schedule); err != nil {
		return err
	}
	current, err := s.store.GetBackupSchedule(ctx, schedule.ID)
	if err != nil {
		return fmt.Errorf("schedule not found: %w", err)
	}
	now := s.now()
	schedule.UserID = current.UserID
	schedule.CreatedAt = current.CreatedAt
	schedule.LastRun = current.LastRun
	schedule.UpdatedAt = now
	if timingChanged(current, schedule) {
		schedule.NextRun = computeNextRun(schedule, now)
	} else {
		schedule.NextRun = current.NextRun
	}
	return s.store.UpdateBackupSchedule(ctx, schedule)
}

// DeleteSchedule removes the schedule only; backups it created stay
func (s *Service) DeleteSchedule(ctx context.Context, id string) error {
	return s.store.DeleteBackupSchedule(ctx, id)
}

// ListSchedules returns a user's schedules
func (s *Service) ListSchedules(ctx context.Context, userID string) ([]models.BackupSchedule, error) {
	return s.store.ListBackupSchedules(ctx, userID)
}

// ListBackups returns a user's backup records, newest first
func (s *Service) ListBackups(ctx context.Context, userID string) ([]models.BackupRecord, error) {
	return s.store.ListBackupRecords(ctx, userID)
}

// RunScheduledBackups executes every enabled schedule that is due. Each
// schedule runs independently; one failure is logged and does not block the
// rest, and a failed schedule is not retried within the same sweep.
func (s *Service) RunScheduledBackups(ctx context.Context) {
	now := s.now()
	due, err := s.store.ListDueBackupSchedules(ctx, now)
	if err != nil {
		log.Printf("BACKUP: Could not list due schedules: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	log.Printf("BACKUP: %d schedule(s) due", len(due))

	for _, schedule := range due {
		if _, err := s.CreateBackup(ctx, schedule.UserID, false, schedule.ID); err != nil {
			log.Printf("BACKUP: Scheduled backup for %s failed: %v", schedule.ID, err)
			continue
		}
		ranAt := s.now()
		schedule.LastRun = &ranAt
		schedule.NextRun = computeNextRun(&schedule, ranAt)
		schedule.UpdatedAt = ranAt
		if err := s.store.UpdateBackupSchedule(ctx, &schedule); err != nil {
			log.Printf("BACKUP: Could not advance schedule %s: %v", schedule.ID, err)
		}
	}
}

func validateSchedule(schedule *models.BackupSchedule) error {
	switch schedule.Frequency {
	case "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("unknown frequency %q", schedule.Frequency)
	}
	if _, err := time.Parse("15:04", schedule.Time); err != nil {
		return fmt.Errorf("invalid time %q: %w", schedule.Time, err)
	}
	if schedule.Frequency == "weekly" {
		if schedule.DayOfWeek == nil || *schedule.DayOfWeek < 0 || *schedule.DayOfWeek > 6 {
			return fmt.Errorf("weekly schedule needs a day of week between 0 and 6")
		}
	}
	if schedule.Frequency == "monthly" {
		if schedule.DayOfMonth == nil || *schedule.DayOfMonth < 1 || *schedule.DayOfMonth > 31 {
			return fmt.Errorf("monthly schedule needs a day of month between 1 and 31")
		}
	}
	return nil
}

func timingChanged(a, b *models.BackupSchedule) bool {
	if a.Frequency != b.Frequency || a.Time != b.Time {
		return true
	}
	if !intPtrEqual(a.DayOfWeek, b.DayOfWeek) || !intPtrEqual(a.DayOfMonth, b.DayOfMonth) {
		return true
	}
	return false
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// computeNextRun finds the next run strictly after now: today at the
// schedule's HH:MM, pushed forward by a day if already past, then aligned to
// the schedule's weekday or day of month.
func computeNextRun(schedule *models.BackupSchedule, now time.Time) time.Time {
	at, _ := time.Parse("15:04", schedule.Time)
	candidate := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	switch schedule.Frequency {
	case "weekly":
		for int(candidate.Weekday()) != *schedule.DayOfWeek {
			candidate = candidate.AddDate(0, 0, 1)
		}
	case "monthly":
		day := *schedule.DayOfMonth
		candidate = time.Date(candidate.Year(), candidate.Month(), day, at.Hour(), at.Minute(), 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = time.Date(candidate.Year(), candidate.Month()+1, day, at.Hour(), at.Minute(), 0, 0, now.Location())
		}
	}
	return candidate
}
