package scheduler

import (
	"log"

	"homevault/internal/taskqueue"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the recurring backup sweep
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Start begins the per-minute sweep over due backup schedules. The sweep
// itself decides which schedules run; this only triggers the check.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := taskqueue.EnqueueSweep(); err != nil {
			log.Printf("SCHEDULER: Failed to enqueue backup sweep: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Println("SCHEDULER: Cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("SCHEDULER: Cron scheduler stopped")
}
