package repository

import (
	"context"
	"errors"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

var (
	ErrNotFound = errors.New("issue not found")
	// ErrConflict means the issue no longer has the status the caller read.
	ErrConflict = errors.New("issue status changed concurrently")
)

type IssueRepository interface {
	List(ctx context.Context, f IssueFilter) ([]models.Issue, int, error)
	// Get returns nil, nil when no issue has the id.
	Get(ctx context.Context, id string) (*models.Issue, error)
	Create(ctx context.Context, is *models.Issue) error
	// UpdateStatus moves the issue from status from to status to, and fails
	// with ErrConflict when it is no longer at from.
	UpdateStatus(ctx context.Context, id string, from, to models.Status, resolution string) error
	Assign(ctx context.Context, id, assignedTo string) error
	AddComment(ctx context.Context, id string, c models.Comment) error
	Stats(ctx context.Context) (models.IssueStats, error)
	Ping(ctx context.Context) error
}
