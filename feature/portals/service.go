package portals

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// SummaryFile is the name of the rendered table under the output directory.
const SummaryFile = "index.txt"

// Service reads published portal records.
type Service struct {
	sink   Sink
	dir    string
	logger *zap.Logger
}

// NewService creates a new portals service.
func NewService(sink Sink, dir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sink: sink, dir: dir, logger: logger}
}

// List returns all records sorted by name, then cohort name.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	records, err := s.sink.List(ctx)
	if err != nil {
		return nil, err
	}
	SortRecords(records)
	return records, nil
}

// Get returns the record for identity id.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.sink.Load(ctx, id)
}

// Summary renders all records as a text table.
func (s *Service) Summary(ctx context.Context) (string, error) {
	records, err := s.sink.List(ctx)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteSummary renders records into <dir>/index.txt and returns its path.
func (s *Service) WriteSummary(records []Record) (string, error) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, records); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, SummaryFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	s.logger.Info("Summary written", zap.String("path", path), zap.Int("records", len(records)))
	return path, nil
}
