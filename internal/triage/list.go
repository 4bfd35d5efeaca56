package triage

import (
	"context"
	"sync"
	"time"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/issueapi"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/querycache"
)

// ListView is what the issue table renders. While Loading, Page is nil so
// stale and fresh rows are never shown together.
type ListView struct {
	Filter  models.IssueFilter
	Loading bool
	Page    *models.IssuePage
	Err     error
}

// IssueList is the filtered, paginated issue table.
type IssueList struct {
	api    API
	notify Notifier
	cache  *querycache.Cache[*models.IssuePage]

	mu     sync.Mutex
	filter models.IssueFilter
	view   ListView
	seq    uint64
	closed bool
}

func NewIssueList(api API, notify Notifier, cacheTTL time.Duration) *IssueList {
	f := models.IssueFilter{Page: 1}
	return &IssueList{
		api:    api,
		notify: notify,
		cache:  querycache.New[*models.IssuePage](cacheTTL),
		filter: f,
		view:   ListView{Filter: f},
	}
}

func (l *IssueList) View() ListView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

func (l *IssueList) Filter() models.IssueFilter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Load shows the current filter, from cache when fresh.
func (l *IssueList) Load(ctx context.Context) error { return l.fetch(ctx, false) }

// Refresh re-fetches the current filter regardless of the cache.
func (l *IssueList) Refresh(ctx context.Context) error { return l.fetch(ctx, true) }

func (l *IssueList) SetStatus(ctx context.Context, s models.Status) error {
	return l.change(ctx, func(f *models.IssueFilter) { f.Status = s })
}

func (l *IssueList) SetCategory(ctx context.Context, c models.Category) error {
	return l.change(ctx, func(f *models.IssueFilter) { f.Category = c })
}

func (l *IssueList) SetPriority(ctx context.Context, p models.Priority) error {
	return l.change(ctx, func(f *models.IssueFilter) { f.Priority = p })
}

func (l *IssueList) SetSearch(ctx context.Context, q string) error {
	return l.change(ctx, func(f *models.IssueFilter) { f.Search = q })
}

// SetFilter replaces the whole filter in one query, page included.
func (l *IssueList) SetFilter(ctx context.Context, f models.IssueFilter) error {
	l.mu.Lock()
	l.filter = f.Normalize()
	l.mu.Unlock()
	return l.fetch(ctx, false)
}

// SetPage moves to page n keeping the other filters.
func (l *IssueList) SetPage(ctx context.Context, n int) error {
	l.mu.Lock()
	l.filter.Page = n
	l.filter = l.filter.Normalize()
	l.mu.Unlock()
	return l.fetch(ctx, false)
}

// change applies a filter edit; any filter edit goes back to page 1.
func (l *IssueList) change(ctx context.Context, edit func(*models.IssueFilter)) error {
	l.mu.Lock()
	edit(&l.filter)
	l.filter.Page = 1
	l.filter = l.filter.Normalize()
	l.mu.Unlock()
	return l.fetch(ctx, false)
}

// Invalidate drops every cached page.
func (l *IssueList) Invalidate() { l.cache.InvalidateAll() }

// Invalidations counts how many times the cache has been dropped.
func (l *IssueList) Invalidations() uint64 { return l.cache.Generation() }

func (l *IssueList) fetch(ctx context.Context, force bool) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	f := l.filter
	key := f.Key()
	if !force {
		if page, ok := l.cache.Fresh(key); ok {
			l.view = ListView{Filter: f, Page: page}
			l.mu.Unlock()
			return nil
		}
	}
	l.view = ListView{Filter: f, Loading: true}
	l.mu.Unlock()

	page, _, err := l.cache.Fetch(ctx, key, force, func(ctx context.Context) (*models.IssuePage, error) {
		return l.api.List(ctx, f)
	})

	l.mu.Lock()
	if l.closed || seq != l.seq {
		// superseded by a newer query or the screen is gone
		l.mu.Unlock()
		return err
	}
	if err != nil {
		l.view = ListView{Filter: f, Err: err}
		l.mu.Unlock()
		l.notify.Error(issueapi.Message(err, msgLoadFailed))
		return err
	}
	l.view = ListView{Filter: f, Page: page}
	l.mu.Unlock()
	return nil
}

func (l *IssueList) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}
