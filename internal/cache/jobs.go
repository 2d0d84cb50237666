package cache

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/events"
	"github.com/migueg98/empleo-portal/internal/models"
	"github.com/migueg98/empleo-portal/internal/store"
)

// Jobs mirrors the Candidates cache for the public job listing. Only
// active postings are cached; the admin vacancy screens read the store
// directly.
type Jobs struct {
	mu      sync.RWMutex
	items   []models.JobPosting
	loading bool
	err     error

	store  store.JobStore
	feed   events.Feed
	logger *zap.Logger
	unsub  events.Unsubscribe
}

func NewJobs(st store.JobStore, feed events.Feed, logger *zap.Logger) *Jobs {
	return &Jobs{store: st, feed: feed, logger: logger, loading: true}
}

func (j *Jobs) FetchAll(ctx context.Context) error {
	j.mu.Lock()
	j.loading = true
	j.mu.Unlock()

	items, err := j.store.Active(ctx)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.loading = false
	if err != nil {
		j.items = nil
		j.err = err
		j.logger.Error("job fetch failed, cache cleared", zap.Error(err))
		return err
	}

	j.items = items
	j.err = nil
	return nil
}

func (j *Jobs) Subscribe() error {
	unsub, err := j.feed.Subscribe(store.TableJobs, j.applyChange)
	if err != nil {
		return err
	}
	j.unsub = unsub
	return nil
}

func (j *Jobs) Close() {
	if j.unsub != nil {
		if err := j.unsub(); err != nil {
			j.logger.Warn("unsubscribe failed", zap.Error(err))
		}
		j.unsub = nil
	}
}

func (j *Jobs) applyChange(ev events.ChangeEvent) {
	switch ev.Type {
	case events.ChangeDelete:
		j.mu.Lock()
		j.items = removeJobByID(j.items, ev.ID)
		j.mu.Unlock()
		return
	case events.ChangeInsert, events.ChangeUpdate:
		var row models.JobPosting
		if len(ev.Row) > 0 && json.Unmarshal(ev.Row, &row) == nil && row.ID != "" {
			j.mu.Lock()
			if row.IsActive {
				j.items = upsertJob(j.items, row)
			} else {
				// Deactivated postings drop out of the public cache.
				j.items = removeJobByID(j.items, row.ID)
			}
			j.mu.Unlock()
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
	defer cancel()
	if err := j.FetchAll(ctx); err != nil {
		j.logger.Warn("refetch after change event failed", zap.Error(err))
	}
}

func (j *Jobs) Create(ctx context.Context, job *models.JobPosting) error {
	if err := j.store.Insert(ctx, job); err != nil {
		return err
	}
	return j.FetchAll(ctx)
}

func (j *Jobs) Update(ctx context.Context, id string, patch map[string]any) (models.JobPosting, error) {
	job, err := j.store.Update(ctx, id, patch)
	if err != nil {
		return models.JobPosting{}, err
	}
	if err := j.FetchAll(ctx); err != nil {
		return models.JobPosting{}, err
	}
	return job, nil
}

func (j *Jobs) Delete(ctx context.Context, id string) error {
	if err := j.store.Delete(ctx, id); err != nil {
		return err
	}
	return j.FetchAll(ctx)
}

func (j *Jobs) Items() []models.JobPosting {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]models.JobPosting, len(j.items))
	copy(out, j.items)
	return out
}

func (j *Jobs) Get(id string) (models.JobPosting, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, item := range j.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.JobPosting{}, false
}

func (j *Jobs) Loading() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.loading
}

func (j *Jobs) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}

func removeJobByID(items []models.JobPosting, id string) []models.JobPosting {
	out := items[:0]
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

func upsertJob(items []models.JobPosting, row models.JobPosting) []models.JobPosting {
	for i := range items {
		if items[i].ID == row.ID {
			items[i] = row
			return items
		}
	}
	return append([]models.JobPosting{row}, items...)
}
