package triage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recorder) lastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errors) == 0 {
		return ""
	}
	return r.errors[len(r.errors)-1]
}

// fakeAPI keeps issues in memory and counts calls per method.
type fakeAPI struct {
	mu     sync.Mutex
	issues map[string]*models.Issue
	calls  map[string]int
	nextID int

	// failWith, when set, is returned by every mutation and Create.
	failWith error
	// listErr is returned by List.
	listErr error
	// createGate, when set, blocks Create until closed.
	createGate chan struct{}
	// listGate and assignGate, when set, run before List or Assign answer
	// and may block.
	listGate   func(models.IssueFilter)
	assignGate func()
	lastFilter models.IssueFilter
	lastFiles  int
	lastNote   string
}

func newFakeAPI(seed ...models.Issue) *fakeAPI {
	f := &fakeAPI{issues: map[string]*models.Issue{}, calls: map[string]int{}}
	for i := range seed {
		is := seed[i]
		f.issues[is.ID] = &is
	}
	return f
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Create(ctx context.Context, in models.NewIssue, files []models.Upload) (*models.Issue, error) {
	f.mu.Lock()
	f.calls["Create"]++
	gate := f.createGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.nextID++
	is := &models.Issue{
		ID: fmt.Sprintf("new-%d", f.nextID), Title: in.Title, Description: in.Description,
		Category: in.Category, Priority: in.Priority, Status: models.StatusOpen,
		ReportedBy: in.ReportedBy, CreatedAt: time.Now(),
	}
	f.issues[is.ID] = is
	f.lastFiles = len(files)
	cp := *is
	return &cp, nil
}

func (f *fakeAPI) List(ctx context.Context, flt models.IssueFilter) (*models.IssuePage, error) {
	f.mu.Lock()
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		gate(flt)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["List"]++
	f.lastFilter = flt
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := &models.IssuePage{Page: flt.Page, Limit: 10}
	for _, is := range f.issues {
		if flt.Status != "" && is.Status != flt.Status {
			continue
		}
		page.Data = append(page.Data, *is)
	}
	page.Total = len(page.Data)
	page.TotalPages = 1
	return page, nil
}

func (f *fakeAPI) Get(ctx context.Context, id string) (*models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Get"]++
	is, ok := f.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %s not found", id)
	}
	cp := *is
	return &cp, nil
}

func (f *fakeAPI) UpdateStatus(ctx context.Context, id string, status models.Status, resolution string) (*models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateStatus"]++
	f.lastNote = resolution
	if f.failWith != nil {
		return nil, f.failWith
	}
	is := f.issues[id]
	is.Status = status
	is.Resolution = resolution
	cp := *is
	return &cp, nil
}

func (f *fakeAPI) Assign(ctx context.Context, id, assignedTo string) (*models.Issue, error) {
	f.mu.Lock()
	gate := f.assignGate
	f.mu.Unlock()
	if gate != nil {
		gate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Assign"]++
	if f.failWith != nil {
		return nil, f.failWith
	}
	is := f.issues[id]
	is.AssignedTo = assignedTo
	cp := *is
	return &cp, nil
}

func (f *fakeAPI) AddComment(ctx context.Context, id, text string) (*models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["AddComment"]++
	if f.failWith != nil {
		return nil, f.failWith
	}
	is := f.issues[id]
	is.Comments = append(is.Comments, models.Comment{Text: text, CreatedAt: time.Now()})
	cp := *is
	cp.Comments = append([]models.Comment(nil), is.Comments...)
	return &cp, nil
}
