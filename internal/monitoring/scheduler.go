package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const refreshTimeout = 10 * time.Second

// CatalogCounter counts the records in the catalog.
type CatalogCounter interface {
	CountUsers(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
}

// StatsSink receives catalog counts.
type StatsSink interface {
	SetCatalogCounts(users, products int)
}

// Scheduler periodically refreshes catalog statistics on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	counter CatalogCounter
	sink    StatsSink
}

// NewScheduler creates a scheduler running on spec, a standard cron
// expression or descriptor such as "@every 1m".
func NewScheduler(spec string, counter CatalogCounter, sink StatsSink) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		counter: counter,
		sink:    sink,
	}
	if _, err := s.cron.AddFunc(spec, s.refresh); err != nil {
		return nil, fmt.Errorf("invalid stats schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start refreshes the statistics once and then starts the cron loop in
// the background.
func (s *Scheduler) Start() {
	log.Info().Msg("Starting catalog stats scheduler...")
	s.refresh()
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped catalog stats scheduler.")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.RefreshCatalogStats(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh catalog stats")
	}
}

// RefreshCatalogStats counts users and products and hands them to the sink.
func (s *Scheduler) RefreshCatalogStats(ctx context.Context) error {
	users, err := s.counter.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	products, err := s.counter.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	s.sink.SetCatalogCounts(users, products)
	log.Debug().Int("users", users).Int("products", products).Msg("Refreshed catalog stats")
	return nil
}
