package qpu

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/qcs-runtime/api"
)

// Engager creates engagements.
type Engager interface {
	Engage(ctx context.Context, processorID string) (*api.Engagement, error)
}

// EngagementCache reuses an engagement until it expires.
type EngagementCache struct {
	entries map[string]*api.Engagement
	now     func() time.Time
	mu      sync.Mutex
}

// NewEngagementCache returns an empty cache.
func NewEngagementCache() *EngagementCache {
	return &EngagementCache{entries: make(map[string]*api.Engagement), now: time.Now}
}

// Get returns a live engagement for processorID, creating one when the cache
// has none. Engagements without a parseable expiry are not cached.
func (c *EngagementCache) Get(ctx context.Context, eng Engager, processorID string) (*api.Engagement, error) {
	c.mu.Lock()
	cached, ok := c.entries[processorID]
	if ok && !c.live(cached) {
		delete(c.entries, processorID)
		ok = false
	}
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	e, err := eng.Engage(ctx, processorID)
	if err != nil {
		return nil, err
	}
	Logger().Debug("engaged quantum processor",
		zap.String("processor", processorID),
		zap.String("address", e.Address),
		zap.String("expires", e.ExpiresAt))

	if c.live(e) {
		c.mu.Lock()
		c.entries[processorID] = e
		c.mu.Unlock()
	}
	return e, nil
}

// Forget drops the cached engagement for processorID.
func (c *EngagementCache) Forget(processorID string) {
	c.mu.Lock()
	delete(c.entries, processorID)
	c.mu.Unlock()
}

func (c *EngagementCache) live(e *api.Engagement) bool {
	exp, ok := e.Expiry()
	return ok && c.now().Before(exp)
}
