package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultExpirerInterval = time.Minute
	expirerPassTimeout     = 30 * time.Second
)

// PoolExpirer freezes pools whose expiry has passed.
type PoolExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// ExpirerService sweeps due markets on a ticker. The first pass runs as
// soon as Start is called so pools that lapsed while nothing was running
// are settled without waiting a full interval.
type ExpirerService struct {
	markets PoolExpirer
	logger  *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewExpirerService(markets PoolExpirer, logger *zap.Logger) *ExpirerService {
	return &ExpirerService{
		markets:  markets,
		logger:   logger,
		interval: defaultExpirerInterval,
		stopCh:   make(chan struct{}),
	}
}

// SetInterval ignores non-positive durations.
func (s *ExpirerService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

func (s *ExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("pool expirer started", zap.Duration("interval", s.interval))

		s.pass()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.pass()
			case <-s.stopCh:
				s.logger.Info("pool expirer stopped")
				return
			}
		}
	}()
}

// Stop waits for an in-flight pass. Calling it twice is safe.
func (s *ExpirerService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *ExpirerService) pass() {
	ctx, cancel := context.WithTimeout(context.Background(), expirerPassTimeout)
	defer cancel()
	_, _ = s.RunOnce(ctx)
}

// RunOnce expires every due pool now and reports how many it froze.
func (s *ExpirerService) RunOnce(ctx context.Context) (int, error) {
	n, err := s.markets.ExpireDue(ctx)
	if err != nil {
		expirerRuns.WithLabelValues("error").Inc()
		s.logger.Error("failed to expire pools", zap.Error(err))
		return n, err
	}
	expirerRuns.WithLabelValues("ok").Inc()
	if n > 0 {
		s.logger.Info("expired pools", zap.Int("count", n))
	}
	return n, nil
}
