package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/events"
	"github.com/migueg98/empleo-portal/internal/models"
	"github.com/migueg98/empleo-portal/internal/store"
	"github.com/migueg98/empleo-portal/internal/workflow"
)

const refetchTimeout = 15 * time.Second

// Candidates owns the in-memory candidate list the admin board renders
// from: one authoritative slice, a loading flag, an error flag, and a feed
// subscription that patches rows in place. Fail-closed: a failed fetch
// empties the cache rather than leaving stale rows visible without an
// error.
type Candidates struct {
	mu      sync.RWMutex
	items   []models.Candidate
	loading bool
	err     error

	// Confirmed values shadowing in-flight optimistic status patches.
	pending map[string]pendingPatch

	store  store.CandidateStore
	feed   events.Feed
	logger *zap.Logger
	unsub  events.Unsubscribe
}

type pendingPatch struct {
	status    workflow.Status
	updatedAt time.Time
}

func NewCandidates(st store.CandidateStore, feed events.Feed, logger *zap.Logger) *Candidates {
	return &Candidates{
		pending: make(map[string]pendingPatch),
		store:   st,
		feed:    feed,
		logger:  logger,
		loading: true,
	}
}

// FetchAll replaces the whole cached list from the store. On failure the
// cache is emptied and the error flag set; old rows never linger.
func (c *Candidates) FetchAll(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	items, err := c.store.All(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.items = nil
		c.err = err
		c.logger.Error("candidate fetch failed, cache cleared", zap.Error(err))
		return err
	}

	c.items = items
	c.err = nil
	return nil
}

// Subscribe opens the change-feed subscription. Events carrying a row
// payload are applied as single-row patches; anything else falls back to a
// full refetch.
func (c *Candidates) Subscribe() error {
	unsub, err := c.feed.Subscribe(store.TableCandidates, c.applyChange)
	if err != nil {
		return err
	}
	c.unsub = unsub
	return nil
}

func (c *Candidates) Close() {
	if c.unsub != nil {
		if err := c.unsub(); err != nil {
			c.logger.Warn("unsubscribe failed", zap.Error(err))
		}
		c.unsub = nil
	}
}

func (c *Candidates) applyChange(ev events.ChangeEvent) {
	switch ev.Type {
	case events.ChangeDelete:
		c.mu.Lock()
		c.items = removeByID(c.items, ev.ID)
		delete(c.pending, ev.ID)
		c.mu.Unlock()
		return
	case events.ChangeInsert, events.ChangeUpdate:
		var row models.Candidate
		if len(ev.Row) > 0 && json.Unmarshal(ev.Row, &row) == nil && row.ID != "" {
			c.mu.Lock()
			c.items = upsert(c.items, row)
			// The server row is authoritative; the patch is settled.
			delete(c.pending, row.ID)
			c.mu.Unlock()
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
	defer cancel()
	if err := c.FetchAll(ctx); err != nil {
		c.logger.Warn("refetch after change event failed", zap.Error(err))
	}
}

// Create inserts through the store then resynchronizes the whole list
// (write-then-refetch; only the status path patches locally).
func (c *Candidates) Create(ctx context.Context, candidate *models.Candidate) error {
	if err := c.store.Insert(ctx, candidate); err != nil {
		return err
	}
	return c.FetchAll(ctx)
}

func (c *Candidates) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	return c.FetchAll(ctx)
}

// Items returns a copy of the cached list.
func (c *Candidates) Items() []models.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Candidate, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Candidates) Get(id string) (models.Candidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.Candidate{}, false
}

func (c *Candidates) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Candidates) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Status implements the workflow engine's cache view.
func (c *Candidates) Status(id string) (workflow.Status, bool) {
	item, ok := c.Get(id)
	if !ok {
		return "", false
	}
	return item.Status, true
}

// ApplyStatusPatch optimistically sets a candidate's status and timestamp,
// remembering the confirmed value for a possible rollback.
func (c *Candidates) ApplyStatusPatch(id string, status workflow.Status, updatedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		if _, inFlight := c.pending[id]; !inFlight {
			c.pending[id] = pendingPatch{
				status:    c.items[i].Status,
				updatedAt: c.items[i].UpdatedAt,
			}
		}
		c.items[i].Status = status
		c.items[i].UpdatedAt = updatedAt
		return
	}
}

// ConfirmStatusPatch promotes the optimistic value to confirmed.
func (c *Candidates) ConfirmStatusPatch(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// RollbackStatusPatch restores the confirmed value after a failed
// write-through.
func (c *Candidates) RollbackStatusPatch(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prior, ok := c.pending[id]
	if !ok {
		return
	}
	delete(c.pending, id)
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Status = prior.status
			c.items[i].UpdatedAt = prior.updatedAt
			return
		}
	}
}

func removeByID(items []models.Candidate, id string) []models.Candidate {
	out := items[:0]
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

func upsert(items []models.Candidate, row models.Candidate) []models.Candidate {
	for i := range items {
		if items[i].ID == row.ID {
			items[i] = row
			return items
		}
	}
	// New rows sort first, matching the created_at DESC fetch order.
	return append([]models.Candidate{row}, items...)
}
