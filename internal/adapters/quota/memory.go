package quota

import (
	"context"
	"sync"
	"time"

	"github.com/council-mode/council/internal/core"
)

// MemoryQuota is an in-process core.QuotaService for single-node deployments
// and tests. Counters reset when the UTC day rolls over.
type MemoryQuota struct {
	mu     sync.Mutex
	day    string
	counts map[string]int
	now    func() time.Time
}

// NewMemoryQuota builds an in-memory quota service.
func NewMemoryQuota() *MemoryQuota {
	return &MemoryQuota{counts: make(map[string]int), now: time.Now}
}

func (q *MemoryQuota) rollover() {
	day := q.now().UTC().Format("2006-01-02")
	if day != q.day {
		q.day = day
		q.counts = make(map[string]int)
	}
}

// UsedToday returns the user's counter for the current UTC day.
func (q *MemoryQuota) UsedToday(_ context.Context, userID string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.counts[userID], nil
}

// Consume increments the user's counter.
func (q *MemoryQuota) Consume(_ context.Context, userID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	q.counts[userID]++
	return nil
}

var _ core.QuotaService = (*MemoryQuota)(nil)
