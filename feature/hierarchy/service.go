package hierarchy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCrawlRunning is returned when a crawl is requested while one runs.
var ErrCrawlRunning = errors.New("a crawl is already running")

// Status describes the crawl state served by the API.
type Status struct {
	Running   bool    `json:"running"`
	RunID     string  `json:"run_id,omitempty"`
	Last      *Report `json:"last,omitempty"`
	LastError string  `json:"last_error,omitempty"`
}

// Service serializes crawls and keeps the last report.
type Service struct {
	resolver *Resolver
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	running string
	last    *Report
	lastErr error
	wg      sync.WaitGroup
}

// NewService creates a new crawl service.
func NewService(resolver *Resolver, interval time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver: resolver,
		interval: interval,
		logger:   logger,
		ctx:      context.Background(),
	}
}

// Run performs a crawl synchronously.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	runID, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return s.run(ctx, runID)
}

// Trigger starts a crawl in the background and returns its run id.
func (s *Service) Trigger() (string, error) {
	runID, err := s.acquire()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Crawl panicked", zap.String("run_id", runID), zap.Any("panic", r))
				s.release(nil, errors.New("crawl panicked"))
			}
		}()
		_, _ = s.run(ctx, runID)
	}()
	return runID, nil
}

// Start binds background crawls to ctx and, when an interval is configured,
// crawls on that schedule until ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if s.interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.schedule(ctx)
	}()
}

// Wait blocks until background crawls and the scheduler have returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Status returns the current crawl state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Running: s.running != "", RunID: s.running, Last: s.last}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

func (s *Service) schedule(ctx context.Context) {
	s.logger.Info("Crawl scheduler started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Trigger(); errors.Is(err, ErrCrawlRunning) {
				s.logger.Info("Skipping scheduled crawl, previous crawl still running")
			}
		}
	}
}

func (s *Service) acquire() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running != "" {
		return "", ErrCrawlRunning
	}
	s.running = uuid.NewString()
	return s.running, nil
}

func (s *Service) release(report *Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = ""
	if report != nil {
		s.last = report
	}
	s.lastErr = err
}

func (s *Service) run(ctx context.Context, runID string) (*Report, error) {
	report, err := s.resolver.Run(ctx, runID)
	if err != nil {
		s.logger.Error("Crawl failed", zap.String("run_id", runID), zap.Error(err))
	}
	s.release(report, err)
	return report, err
}
