// Package numerator provides PostgreSQL implementation of document auto-numbering.
// This is the infrastructure layer - it implements core/numerator.Generator interface.
package numerator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"quotero/internal/core/apperror"
	corenumerator "quotero/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// maxAttempts bounds the retry loop on transient conflicts. The atomic
// upsert itself cannot hand out duplicates; retries only cover
// serialization failures under concurrent load.
const maxAttempts = 3

type cachedRange struct {
	current int64
	max     int64
}

// Service provides document numbering using PostgreSQL.
//
// Every number comes from a single atomic upsert on the
// sys_sequences(sequence_type, period) counter row, so concurrent
// creations can never observe the same value. Counting existing rows
// to compute the next number is exactly the race this table exists to
// prevent.
type Service struct {
	querier Querier

	// cacheMu protects ranges map
	cacheMu sync.Mutex
	// ranges stores active ranges for each key (Cached strategy)
	ranges map[string]*cachedRange
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a new numerator service.
func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*cachedRange),
	}
}

// GetNextNumber generates the next document number.
// Pattern: PREFIX-YEAR-MM-XXX (e.g., TEK-2025-03-001)
//
// Supports Strict (DB-level) and Cached (Memory-level) strategies.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, opts *corenumerator.Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	if opts == nil {
		opts = corenumerator.DefaultOptions()
	}

	var num int64
	var err error

	switch opts.Strategy {
	case corenumerator.StrategyCached:
		num, err = s.getNextCached(ctx, cfg, period, opts)
	case corenumerator.StrategyStrict:
		fallthrough
	default:
		num, err = s.getNextStrict(ctx, cfg, period)
	}

	if err != nil {
		return "", err
	}

	return cfg.Format(period, num), nil
}

// getNextStrict fetches the next number directly from DB using UPSERT + RETURNING.
// Transient conflicts are retried up to maxAttempts, then surfaced as a
// numbering conflict the caller may retry.
func (s *Service) getNextStrict(ctx context.Context, cfg corenumerator.Config, period time.Time) (int64, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var num int64
		err := s.querier.QueryRow(ctx, `
	        INSERT INTO sys_sequences (sequence_type, period, current_val)
	        VALUES ($1, $2, 1)
	        ON CONFLICT (sequence_type, period) DO UPDATE SET current_val = sys_sequences.current_val + 1
	        RETURNING current_val
		`, cfg.Prefix, periodValue(cfg, period)).Scan(&num)
		if err == nil {
			return num, nil
		}

		if !isRetryable(err) {
			return 0, fmt.Errorf("strict next: %w", err)
		}
		lastErr = err
	}

	return 0, apperror.NewNumberingConflict(cfg.Prefix, periodValue(cfg, period)).WithCause(lastErr)
}

// getNextCached fetches next number from memory, refilling from DB if needed.
func (s *Service) getNextCached(ctx context.Context, cfg corenumerator.Config, period time.Time, opts *corenumerator.Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	key := cfg.PeriodKey(period)
	rng, exists := s.ranges[key]
	if !exists {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	// allocate new range if needed
	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50 // default
		}

		var newMax int64
		err := s.querier.QueryRow(ctx, `
	        INSERT INTO sys_sequences (sequence_type, period, current_val)
	        VALUES ($1, $2, $3)
	        ON CONFLICT (sequence_type, period) DO UPDATE SET current_val = sys_sequences.current_val + $3
	        RETURNING current_val
		`, cfg.Prefix, periodValue(cfg, period), size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		// newMax ends our range, the first valid number is newMax - size + 1.
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNextNumber sets the next number value (for migration purposes).
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (sequence_type, period, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (sequence_type, period) DO UPDATE SET current_val = $3
		RETURNING current_val
	`, cfg.Prefix, periodValue(cfg, period), value).Scan(&result)

	// Invalidate cached range for this key if exists
	s.cacheMu.Lock()
	delete(s.ranges, cfg.PeriodKey(period))
	s.cacheMu.Unlock()

	return err
}

// periodValue renders the period column for the sequence row, e.g.
// "2025-03" for month-scoped sequences.
func periodValue(cfg corenumerator.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return period.Format("2006-01")
	case "year":
		return period.Format("2006")
	default:
		return "all"
	}
}

// isRetryable reports whether the error is a transient conflict worth
// another attempt (serialization failure, deadlock, unique race).
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}

// ParseNumber extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	patterns := []string{
		"%*[^-]-%*d-%*d-%d",
		"%*[^-]-%*d-%d",
		"%*[^-]-%d",
	}

	for _, pattern := range patterns {
		if _, err := fmt.Sscanf(formatted, pattern, &num); err == nil {
			return num
		}
	}

	return -1
}
