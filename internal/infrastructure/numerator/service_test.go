package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "quotero/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the atomic counter upsert: every call increments
// the per-key value under a mutex, like the DB row lock would.
type mockQuerier struct {
	mu   sync.Mutex
	vals map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{vals: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	// args: (sequence_type, period) plus an optional increment / value
	key := args[0].(string) + "|" + args[1].(string)

	var increment int64 = 1
	if len(args) == 3 {
		if v, ok := args[2].(int64); ok {
			increment = v
		} else if v, ok := args[2].(int); ok {
			increment = int64(v)
		}
	}

	m.vals[key] += increment
	return &mockRow{val: m.vals[key]}
}

func march() time.Time {
	return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
}

func TestGetNextNumber_Strict(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("TEK")

	num, err := svc.GetNextNumber(ctx, cfg, nil, march())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEK-2025-03-001" {
		t.Errorf("expected TEK-2025-03-001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, march())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEK-2025-03-002" {
		t.Errorf("expected TEK-2025-03-002, got %s", num)
	}
}

func TestGetNextNumber_SeparatePeriods(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("TEK")

	april := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, nil, march())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEK-2025-03-001" {
		t.Errorf("expected TEK-2025-03-001, got %s", num)
	}

	// April restarts at 1
	num, err = svc.GetNextNumber(ctx, cfg, nil, april)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEK-2025-04-001" {
		t.Errorf("expected TEK-2025-04-001, got %s", num)
	}
}

func TestGetNextNumber_SeparatePrefixes(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()

	if _, err := svc.GetNextNumber(ctx, corenumerator.DefaultConfig("TEK"), nil, march()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	num, err := svc.GetNextNumber(ctx, corenumerator.DefaultConfig("FTR"), nil, march())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "FTR-2025-03-001" {
		t.Errorf("FTR sequence must be independent of TEK, got %s", num)
	}
}

// TestGetNextNumber_Concurrent verifies the core guarantee: no two
// callers ever receive the same number for the same (type, period).
func TestGetNextNumber_Concurrent(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("TEK")

	const callers = 100

	var wg sync.WaitGroup
	results := make(chan string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.GetNextNumber(ctx, cfg, nil, march())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		if seen[num] {
			t.Fatalf("duplicate number issued: %s", num)
		}
		seen[num] = true
	}
	if len(seen) != callers {
		t.Errorf("expected %d unique numbers, got %d", callers, len(seen))
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("WRK")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	for i := int64(1); i <= 15; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, march())
		if err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
		want := "WRK-2025-03-0" // 001..015 share this prefix
		if len(num) == 0 || num[:len(want)] != want {
			t.Errorf("unexpected number %s", num)
		}
	}

	// Two range allocations of 10 expected for 15 numbers
	if got := q.vals["WRK|2025-03"]; got != 20 {
		t.Errorf("expected 20 reserved in DB, got %d", got)
	}
}

func TestSetNextNumber(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("TEK")

	if err := svc.SetNextNumber(ctx, cfg, march(), 41); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// mockQuerier adds instead of sets, so just verify the call shape
	if q.vals["TEK|2025-03"] != 41 {
		t.Errorf("expected 41, got %d", q.vals["TEK|2025-03"])
	}
}

func TestParseNumber(t *testing.T) {
	if got := ParseNumber("TEK-2025-03-042"); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := ParseNumber("CUS-00007"); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := ParseNumber("garbage"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}
