package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/csvrecords/internal/config"
	"github.com/JonMunkholm/csvrecords/internal/csvparse"
	"github.com/JonMunkholm/csvrecords/internal/logging"
	"github.com/google/uuid"
)

// RunStore persists parse runs. *Store is the PostgreSQL implementation.
type RunStore interface {
	SaveRun(ctx context.Context, run RunInfo, records []csvparse.Record) error
	GetRun(ctx context.Context, runID string) (RunInfo, error)
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)
	ListRecords(ctx context.Context, runID string, offset, limit int) ([]csvparse.Record, error)
	DeleteRun(ctx context.Context, runID string) error
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// Service runs parses and serves stored runs. It is safe for concurrent use.
type Service struct {
	store   RunStore // nil when persistence is disabled
	limiter *ParseLimiter
	cfg     config.ParseConfig
	now     func() time.Time
}

// NewService creates a Service. store may be nil.
func NewService(store RunStore, cfg config.ParseConfig) (*Service, error) {
	if _, err := csvparse.ParseCoercion(string(cfg.ValueCoercion)); err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}
	if _, err := DecoderFor(cfg.DefaultEncoding); err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}

	return &Service{
		store:   store,
		limiter: NewParseLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// PersistenceEnabled reports whether runs can be stored.
func (s *Service) PersistenceEnabled() bool {
	return s.store != nil
}

// DefaultCoercion returns the configured coercion policy.
func (s *Service) DefaultCoercion() csvparse.Coercion {
	c, _ := csvparse.ParseCoercion(string(s.cfg.ValueCoercion))
	return c
}

// Parse reads, decodes and parses req.Input. When persistence is requested
// and a store is configured the run is saved before returning; a store
// failure fails the whole call.
func (s *Service) Parse(ctx context.Context, req ParseRequest) (*ParseResult, error) {
	if req.Input == nil {
		return nil, ErrNoInput
	}

	coercion := s.DefaultCoercion()
	if req.Coercion != "" {
		c, err := csvparse.ParseCoercion(req.Coercion)
		if err != nil {
			return nil, err
		}
		coercion = c
	}

	encoding := req.Encoding
	if encoding == "" {
		encoding = s.cfg.DefaultEncoding
	}
	encoding = strings.ToLower(strings.TrimSpace(encoding))

	persist := s.cfg.PersistByDefault
	if req.Persist != nil {
		persist = *req.Persist
	}
	if persist && s.store == nil {
		return nil, ErrPersistenceDisabled
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := s.now()
	runID := uuid.NewString()
	logger := logging.WithFields(ctx, "run_id", runID, "name", req.Name)

	counter := &countingReader{r: req.Input}
	text, err := ReadInput(counter, encoding, s.cfg.MaxInputSize)
	if err != nil {
		logger.Warn("read input failed", "error", err)
		return nil, err
	}

	records, err := csvparse.NewParser(csvparse.WithCoercion(coercion)).Parse(text)
	if err != nil {
		logger.Info("input rejected", "error", err)
		return nil, fmt.Errorf("parse %s: %w", displayName(req.Name), err)
	}

	result := &ParseResult{
		Run: RunInfo{
			ID:          runID,
			Name:        req.Name,
			Coercion:    coercion,
			Encoding:    encoding,
			Headers:     csvparse.Headers(text),
			RecordCount: len(records),
			InputBytes:  counter.n,
			IPAddress:   IPAddressFromContext(ctx),
			UserAgent:   UserAgentFromContext(ctx),
			CreatedAt:   start.UTC(),
		},
		Records: records,
	}
	if result.Run.Headers == nil {
		result.Run.Headers = []string{}
	}

	if persist {
		if err := s.store.SaveRun(ctx, result.Run, records); err != nil {
			logger.Error("save run failed", "error", err)
			return nil, err
		}
		result.Persisted = true
	}

	result.Duration = s.now().Sub(start)
	logger.Info("parse completed",
		"records", len(records),
		"columns", len(result.Run.Headers),
		"coercion", coercion,
		"bytes", counter.n,
		"persisted", result.Persisted,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// GetRun returns a stored run.
func (s *Service) GetRun(ctx context.Context, runID string) (RunInfo, error) {
	if s.store == nil {
		return RunInfo{}, ErrPersistenceDisabled
	}
	return s.store.GetRun(ctx, runID)
}

// ListRuns returns the most recent stored runs. limit is clamped to
// [1, MaxListLimit]; zero means DefaultListLimit.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if s.store == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.store.ListRuns(ctx, clampLimit(limit))
}

// ListRecords returns a page of a stored run's records.
func (s *Service) ListRecords(ctx context.Context, runID string, offset, limit int) ([]csvparse.Record, error) {
	if s.store == nil {
		return nil, ErrPersistenceDisabled
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListRecords(ctx, runID, offset, clampLimit(limit))
}

// DeleteRun removes a stored run.
func (s *Service) DeleteRun(ctx context.Context, runID string) error {
	if s.store == nil {
		return ErrPersistenceDisabled
	}
	if err := s.store.DeleteRun(ctx, runID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("run deleted", "run_id", runID)
	return nil
}

// LimiterStatus reports parse concurrency for health checks.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForParses blocks until in-flight parses finish or ctx ends.
func (s *Service) WaitForParses(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func displayName(name string) string {
	if name == "" {
		return "input"
	}
	return name
}

// countingReader counts the raw bytes handed to the decoder.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
