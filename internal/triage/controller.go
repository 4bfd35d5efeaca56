package triage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/issueapi"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

// Controller is the admin triage screen: the issue list, at most one open
// detail view, and the comment draft scoped to that view.
type Controller struct {
	api    API
	notify Notifier
	list   *IssueList
	form   *ReportForm

	mu          sync.Mutex
	selected    *models.Issue
	draft       string
	statusModal bool
	selSeq      uint64
	closed      bool
}

func NewController(api API, notify Notifier, cacheTTL time.Duration) *Controller {
	c := &Controller{
		api:    api,
		notify: notify,
		list:   NewIssueList(api, notify, cacheTTL),
		form:   NewReportForm(api, notify),
	}
	c.form.OnCreated = func(*models.Issue) { c.list.Invalidate() }
	return c
}

func (c *Controller) Issues() *IssueList  { return c.list }
func (c *Controller) Report() *ReportForm { return c.form }

// -----------------------------------------------------------------------------
// Selection
// -----------------------------------------------------------------------------

// Select opens the detail view for an issue already at hand (a list row).
// Any unsent draft of the previous view is discarded.
func (c *Controller) Select(issue models.Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selSeq++
	c.selected = &issue
	c.draft = ""
	c.statusModal = false
}

// Open fetches an issue and shows it in the detail view, discarding any
// unsent draft of the previous view.
func (c *Controller) Open(ctx context.Context, id string) error {
	c.mu.Lock()
	c.selSeq++
	seq := c.selSeq
	c.selected = nil
	c.draft = ""
	c.statusModal = false
	c.mu.Unlock()

	issue, err := c.api.Get(ctx, id)

	c.mu.Lock()
	if c.closed || seq != c.selSeq {
		c.mu.Unlock()
		return err
	}
	if err != nil {
		c.mu.Unlock()
		c.notify.Error(issueapi.Message(err, msgIssueFailed))
		return err
	}
	c.selected = issue
	c.mu.Unlock()
	return nil
}

func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selSeq++
	c.selected = nil
	c.draft = ""
	c.statusModal = false
}

// Selected returns a copy of the issue in the detail view.
func (c *Controller) Selected() (models.Issue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return models.Issue{}, false
	}
	return *c.selected, true
}

func (c *Controller) SetDraft(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = s
}

func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) OpenStatusModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil {
		c.statusModal = true
	}
}

func (c *Controller) StatusModalOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusModal
}

// -----------------------------------------------------------------------------
// Mutations
// -----------------------------------------------------------------------------

// UpdateStatus moves the selected issue to status. Resolved and Closed carry
// a default note unless resolution is set. Only transitions offered from the
// displayed status are sent; the server has the final word.
func (c *Controller) UpdateStatus(ctx context.Context, status models.Status, resolution string) error {
	cur, seq, err := c.current()
	if err != nil {
		return err
	}
	if !models.CanTransition(cur.Status, status) {
		c.notify.Error(msgNotOffered)
		return ErrTransitionNotOffered
	}
	updated, err := c.api.UpdateStatus(ctx, cur.ID, status, models.ResolutionFor(status, resolution))
	if err != nil {
		c.fail(seq, issueapi.Message(err, msgStatusFailed))
		return err
	}
	c.afterMutation(ctx, seq, updated, func() { c.statusModal = false })
	c.notify.Success(msgStatusUpdated)
	return nil
}

// Assign sets or overwrites the owner of the selected issue. Status is untouched.
func (c *Controller) Assign(ctx context.Context, userID string) error {
	cur, seq, err := c.current()
	if err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		c.notify.Error(msgAssigneeNeeded)
		return ErrEmptyAssignee
	}
	updated, err := c.api.Assign(ctx, cur.ID, userID)
	if err != nil {
		c.fail(seq, issueapi.Message(err, msgAssignFailed))
		return err
	}
	c.afterMutation(ctx, seq, updated, nil)
	c.notify.Success(msgAssigned)
	return nil
}

// AddComment sends the current draft. A blank draft is rejected without a request.
func (c *Controller) AddComment(ctx context.Context) error {
	cur, seq, err := c.current()
	if err != nil {
		return err
	}
	c.mu.Lock()
	text := strings.TrimSpace(c.draft)
	c.mu.Unlock()
	if text == "" {
		c.notify.Error(msgCommentEmpty)
		return ErrEmptyComment
	}
	updated, err := c.api.AddComment(ctx, cur.ID, text)
	if err != nil {
		c.fail(seq, issueapi.Message(err, msgCommentFailed))
		return err
	}
	c.afterMutation(ctx, seq, updated, func() { c.draft = "" })
	c.notify.Success(msgCommentAdded)
	return nil
}

func (c *Controller) current() (models.Issue, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.selected == nil {
		return models.Issue{}, 0, ErrNoSelection
	}
	return *c.selected, c.selSeq, nil
}

func (c *Controller) fail(seq uint64, msg string) {
	c.mu.Lock()
	gone := c.closed || seq != c.selSeq
	c.mu.Unlock()
	if !gone {
		c.notify.Error(msg)
	}
}

// afterMutation drops the list cache once, then reloads the detail and the
// current list page from the server. apply runs under the lock only if the
// same detail view is still open.
func (c *Controller) afterMutation(ctx context.Context, seq uint64, returned *models.Issue, apply func()) {
	c.list.Invalidate()

	fresh := returned
	if returned != nil {
		if got, err := c.api.Get(ctx, returned.ID); err == nil {
			fresh = got
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if seq == c.selSeq && c.selected != nil {
		if fresh != nil {
			c.selected = fresh
		}
		if apply != nil {
			apply()
		}
	}
	c.mu.Unlock()

	_ = c.list.Refresh(ctx)
}

// Close models the screen going away: late responses are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.list.Close()
	c.form.Close()
}
