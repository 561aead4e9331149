package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"homevault/internal/backup"

	"github.com/hibiken/asynq"
)

const (
	// TypeBackupCreate runs one manual backup for a user
	TypeBackupCreate = "backup:create"
	// TypeBackupSweep runs all due scheduled backups
	TypeBackupSweep = "backup:sweep"
)

// Global instances - these should be initialized by the main application
var backupService *backup.Service

// SetBackupService wires the backup service the workers call into
func SetBackupService(s *backup.Service) {
	backupService = s
}

// BackupTaskPayload identifies whose data to back up
type BackupTaskPayload struct {
	UserID string
}

// EnqueueBackup queues a manual backup for a user
func EnqueueBackup(userID string) error {
	if asynqClient == nil {
		return fmt.Errorf("task queue client not initialized")
	}
	payload, _ := json.Marshal(BackupTaskPayload{UserID: userID})
	task := asynq.NewTask(TypeBackupCreate, payload)
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
	if err != nil {
		log.Printf("TASKQUEUE: Failed to enqueue backup for user %s: %v", userID, err)
		return err
	}
	log.Printf("TASKQUEUE: Enqueued backup task %s for user %s", info.ID, userID)
	return nil
}

// EnqueueSweep queues one scheduled-backup sweep
func EnqueueSweep() error {
	if asynqClient == nil {
		return fmt.Errorf("task queue client not initialized")
	}
	task := asynq.NewTask(TypeBackupSweep, nil)
	_, err := asynqClient.Enqueue(task, asynq.MaxRetry(0), asynq.Timeout(10*time.Minute))
	if err != nil {
		log.Printf("TASKQUEUE: Failed to enqueue sweep: %v", err)
	}
	return err
}

func processBackupTask(ctx context.Context, t *asynq.Task) error {
	if backupService == nil {
		return fmt.Errorf("backup service not initialized")
	}
	var payload BackupTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	log.Printf("TASKQUEUE: Running manual backup for user %s", payload.UserID)
	_, err := backupService.CreateBackup(ctx, payload.UserID, true, "")
	return err
}

func processSweepTask(ctx context.Context, t *asynq.Task) error {
	if backupService == nil {
		return fmt.Errorf("backup service not initialized")
	}
	backupService.RunScheduledBackups(ctx)
	return nil
}
