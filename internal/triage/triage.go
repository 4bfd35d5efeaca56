// Package triage holds the state of the issue reporting and triage screens:
// the report form, the filtered issue list and the single open detail view.
// Every operation blocks on the network and takes a context; callers that
// drive a UI event loop run them on their own goroutine.
package triage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

var (
	ErrSubmitInFlight       = errors.New("submission already in progress")
	ErrEmptyComment         = errors.New("comment text is empty")
	ErrNoSelection          = errors.New("no issue selected")
	ErrTransitionNotOffered = errors.New("status transition not offered")
	ErrEmptyAssignee        = errors.New("assignee is empty")
)

// API is the issues endpoint surface the screens depend on.
type API interface {
	Create(ctx context.Context, in models.NewIssue, files []models.Upload) (*models.Issue, error)
	List(ctx context.Context, f models.IssueFilter) (*models.IssuePage, error)
	Get(ctx context.Context, id string) (*models.Issue, error)
	UpdateStatus(ctx context.Context, id string, status models.Status, resolution string) (*models.Issue, error)
	Assign(ctx context.Context, id, assignedTo string) (*models.Issue, error)
	AddComment(ctx context.Context, id, text string) (*models.Issue, error)
}

// Notifier shows transient user-visible messages (toasts).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to a zerolog logger.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Success(msg string) { n.Log.Info().Str("toast", "success").Msg(msg) }
func (n LogNotifier) Error(msg string)   { n.Log.Warn().Str("toast", "error").Msg(msg) }

const (
	msgSubmitFailed   = "Failed to submit issue"
	msgSubmitted      = "Issue reported successfully"
	msgTooManyFiles   = "You can only upload up to 5 files"
	msgLoadFailed     = "Failed to load issues"
	msgIssueFailed    = "Failed to load issue"
	msgStatusFailed   = "Failed to update status"
	msgStatusUpdated  = "Status updated successfully"
	msgAssignFailed   = "Failed to assign issue"
	msgAssigned       = "Issue assigned successfully"
	msgCommentFailed  = "Failed to add comment"
	msgCommentAdded   = "Comment added successfully"
	msgCommentEmpty   = "Comment cannot be empty"
	msgNotOffered     = "This status change is not available"
	msgAssigneeNeeded = "Select a user to assign"
)
