package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"daypilot/internal/logging"
	"daypilot/internal/store"
)

// Scheduler generates digests on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	store  *store.Store
	userID string
	// Deliver receives each generated report. Defaults to a no-op.
	Deliver func(*Report)
}

// NewScheduler creates a scheduler for one user. spec is a standard cron
// expression; the default config fires Monday 08:00 ("0 8 * * 1").
func NewScheduler(st *store.Store, userID, spec string, deliver func(*Report)) (*Scheduler, error) {
	if deliver == nil {
		deliver = func(*Report) {}
	}
	s := &Scheduler{
		cron:    cron.New(),
		store:   st,
		userID:  userID,
		Deliver: deliver,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	log := logging.Get(logging.CategoryDigest)

	report, err := Build(context.Background(), s.store, s.userID, time.Now())
	if err != nil {
		log.Error("digest build failed: %v", err)
		return
	}
	log.Info("digest generated for %s: %d created, %d completed",
		s.userID, report.Created, report.Completed)
	s.Deliver(report)
}

// Start begins the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
