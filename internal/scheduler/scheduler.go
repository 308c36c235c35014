package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"salemre/backend/internal/logging"
)

// DigestEnqueuer queues the inquiry digest.
type DigestEnqueuer interface {
	EnqueueDigest(ctx context.Context) error
}

// Scheduler fires the periodic jobs. Jobs only enqueue tasks; the asynq
// workers do the work.
type Scheduler struct {
	spec    string
	digests DigestEnqueuer
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

func New(spec string, digests DigestEnqueuer) *Scheduler {
	return &Scheduler{
		spec:    spec,
		digests: digests,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		log:     logging.Component("scheduler"),
		timeout: 10 * time.Second,
	}
}

// Start registers the digest job and starts the cron loop. An empty spec
// disables the digest.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		s.log.Info().Msg("no digest schedule configured")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunDigest(ctx) }); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.spec, err)
	}
	s.log.Info().Str("cron", s.spec).Msg("starting scheduler")
	s.cron.Start()
	return nil
}

// RunDigest enqueues one digest.
func (s *Scheduler) RunDigest(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.digests.EnqueueDigest(ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled digest failed")
	}
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Stop halts the cron loop and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
