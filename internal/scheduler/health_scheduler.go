package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	StatusUnknown = "unknown"
	StatusUp      = "up"
	StatusDown    = "down"

	probeTimeout = 5 * time.Second
)

// Pinger checks that the storefront API answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthScheduler periodically probes the storefront API and remembers the
// last result.
type HealthScheduler struct {
	cron     *cron.Cron
	spec     string
	pinger   Pinger
	onResult func(up bool)

	mu        sync.RWMutex
	status    string
	checkedAt time.Time
}

// NewHealthScheduler creates the scheduler. onResult may be nil.
func NewHealthScheduler(spec string, pinger Pinger, onResult func(up bool)) *HealthScheduler {
	if spec == "" {
		spec = "@every 30s"
	}
	return &HealthScheduler{
		cron:     cron.New(),
		spec:     spec,
		pinger:   pinger,
		onResult: onResult,
		status:   StatusUnknown,
	}
}

// Start registers the probe and starts the cron runner.
func (s *HealthScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.Check); err != nil {
		logger.Error("Failed to add cron job for upstream health check", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Upstream health scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop stops the cron runner and waits for a running probe to finish.
func (s *HealthScheduler) Stop() {
	logger.Info("Stopping upstream health scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Upstream health scheduler stopped")
}

// Check probes once.
func (s *HealthScheduler) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	err := s.pinger.Ping(ctx)
	up := err == nil

	s.mu.Lock()
	previous := s.status
	if up {
		s.status = StatusUp
	} else {
		s.status = StatusDown
	}
	s.checkedAt = time.Now()
	current := s.status
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(up)
	}

	switch {
	case !up && previous != StatusDown:
		logger.Error("Storefront API health check failed", err)
	case up && previous == StatusDown:
		logger.Info("Storefront API recovered")
	default:
		logger.Debug("Storefront API health check", map[string]interface{}{
			"status": current,
		})
	}
}

// Status returns the last probe result and when it ran.
func (s *HealthScheduler) Status() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.checkedAt
}
