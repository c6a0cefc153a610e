package service

import (
	"context"
	"sync"
	"time"

	"github.com/Adv1cer/infirmary/internal/telemetry/logger"
)

// sweepTimeout bounds a single background sweep.
const sweepTimeout = time.Minute

// Sweeper periodically removes expired tokens, independent of validation.
type Sweeper struct {
	guard    *GuardService
	interval time.Duration
	logger   logger.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSweeper creates a sweeper. An interval <= 0 disables the background loop.
func NewSweeper(guard *GuardService, interval time.Duration, log logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{
		guard:    guard,
		interval: interval,
		logger:   log.With("component", "sweeper"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background loop. Calling Start more than once is a no-op.
func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		if s.interval <= 0 {
			close(s.doneCh)
			s.logger.Info("background sweep disabled")
			return
		}
		go s.loop()
	})
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.startOnce.Do(func() { close(s.doneCh) })
	<-s.doneCh
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	n, err := s.guard.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("swept expired tokens", "count", n)
	} else {
		s.logger.Debug("sweep found nothing to remove")
	}
	return n, nil
}

func (s *Sweeper) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
			cancel()

		case <-s.stopCh:
			return
		}
	}
}
