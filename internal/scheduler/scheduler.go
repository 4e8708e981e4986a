package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is the work triggered on each schedule tick
type Job func(ctx context.Context)

// Scheduler runs the daily batch on a cron expression in daemon mode
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Schedule registers the job under a standard 5-field cron spec
func (s *Scheduler) Schedule(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		log.Printf("[SCHEDULER] triggering daily batch")
		job(context.Background())
	})
	return err
}

// Start begins dispatching scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
