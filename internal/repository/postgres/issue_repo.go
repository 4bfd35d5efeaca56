package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository"
)

type IssueRepo struct{ db *pgxpool.Pool }

var _ repository.IssueRepository = (*IssueRepo)(nil)

func NewIssueRepo(db *pgxpool.Pool) *IssueRepo { return &IssueRepo{db: db} }

const issueColumns = `
	i.id::text, i.title, i.description, i.category, i.priority, i.status,
	i.reporter_name, i.reporter_email, COALESCE(i.reporter_phone, ''),
	COALESCE(i.assigned_to, ''), COALESCE(i.resolution, ''), i.created_at, i.updated_at`

func scanIssue(row pgx.Row, is *models.Issue) error {
	return row.Scan(
		&is.ID, &is.Title, &is.Description, &is.Category, &is.Priority, &is.Status,
		&is.ReportedBy.Name, &is.ReportedBy.Email, &is.ReportedBy.Phone,
		&is.AssignedTo, &is.Resolution, &is.CreatedAt, &is.UpdatedAt,
	)
}

// -----------------------------------------------------------------------------
// Listing
// -----------------------------------------------------------------------------

// List returns one page, newest first, plus the total for the same filter.
// Rows carry no comments or attachments; Get loads those.
func (r *IssueRepo) List(ctx context.Context, f repository.IssueFilter) ([]models.Issue, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	whereSQL, args := buildIssueWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM issues i `+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM issues i
		%s
		ORDER BY i.created_at DESC
		LIMIT $%d OFFSET $%d
	`, issueColumns, whereSQL, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Issue{}
	for rows.Next() {
		var is models.Issue
		if err := scanIssue(rows, &is); err != nil {
			return nil, 0, err
		}
		out = append(out, is)
	}
	return out, total, rows.Err()
}

// -----------------------------------------------------------------------------
// Single issue
// -----------------------------------------------------------------------------

func (r *IssueRepo) Get(ctx context.Context, id string) (*models.Issue, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	var is models.Issue
	err := scanIssue(r.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues i WHERE i.id = $1`, key), &is)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT filename, url, size
		FROM issue_attachments
		WHERE issue_id = $1
		ORDER BY position ASC
	`, is.ID)
	if err != nil {
		return nil, err
	}
	is.Attachments = []models.Attachment{}
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.Filename, &a.URL, &a.Size); err != nil {
			rows.Close()
			return nil, err
		}
		is.Attachments = append(is.Attachments, a)
	}
	rows.Close()

	rows, err = r.db.Query(ctx, `
		SELECT text, COALESCE(author, ''), created_at
		FROM issue_comments
		WHERE issue_id = $1
		ORDER BY created_at ASC, id ASC
	`, is.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	is.Comments = []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.Text, &c.Author, &c.CreatedAt); err != nil {
			return nil, err
		}
		is.Comments = append(is.Comments, c)
	}
	return &is, rows.Err()
}

func (r *IssueRepo) Create(ctx context.Context, is *models.Issue) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	err = tx.QueryRow(ctx, `
		INSERT INTO issues (title, description, category, priority, status,
			reporter_name, reporter_email, reporter_phone, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id::text, created_at, updated_at
	`,
		is.Title, is.Description, is.Category, is.Priority, models.StatusOpen,
		is.ReportedBy.Name, is.ReportedBy.Email, nullIfEmpty(is.ReportedBy.Phone), now, now,
	).Scan(&is.ID, &is.CreatedAt, &is.UpdatedAt)
	if err != nil {
		return err
	}
	is.Status = models.StatusOpen

	for i, a := range is.Attachments {
		if _, err := tx.Exec(ctx, `
			INSERT INTO issue_attachments (issue_id, position, filename, url, size)
			VALUES ($1,$2,$3,$4,$5)
		`, is.ID, i, a.Filename, a.URL, a.Size); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *IssueRepo) UpdateStatus(ctx context.Context, id string, from, to models.Status, resolution string) error {
	key, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	ct, err := r.db.Exec(ctx, `
		UPDATE issues SET status=$1, resolution=COALESCE($2, resolution), updated_at=$3
		WHERE id=$4 AND status=$5
	`, to, nullIfEmpty(resolution), time.Now(), key, from)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, key)
	}
	return nil
}

func (r *IssueRepo) missingOrConflict(ctx context.Context, key string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM issues WHERE id=$1)`, key).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

func (r *IssueRepo) Assign(ctx context.Context, id, assignedTo string) error {
	key, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	ct, err := r.db.Exec(ctx, `
		UPDATE issues SET assigned_to=$1, updated_at=$2 WHERE id=$3
	`, nullIfEmpty(assignedTo), time.Now(), key)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *IssueRepo) AddComment(ctx context.Context, id string, c models.Comment) error {
	key, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `UPDATE issues SET updated_at=$1 WHERE id=$2`, time.Now(), key)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO issue_comments (issue_id, text, author, created_at)
		VALUES ($1, $2, $3, $4)
	`, key, c.Text, nullIfEmpty(c.Author), c.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// -----------------------------------------------------------------------------
// Reporting
// -----------------------------------------------------------------------------

func (r *IssueRepo) Stats(ctx context.Context) (models.IssueStats, error) {
	var s models.IssueStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'Open'),
			COUNT(*) FILTER (WHERE status = 'In Progress'),
			COUNT(*) FILTER (WHERE status = 'Resolved'),
			COUNT(*) FILTER (WHERE status = 'Closed'),
			COUNT(*) FILTER (WHERE status NOT IN ('Resolved','Closed') AND priority = ANY($1))
		FROM issues
	`, []string{string(models.PriorityHigh), string(models.PriorityCritical)}).
		Scan(&s.Open, &s.InProgress, &s.Resolved, &s.Closed, &s.HighCriticalOpen)
	return s, err
}

func (r *IssueRepo) Ping(ctx context.Context) error { return r.db.Ping(ctx) }

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// buildIssueWhere composes the WHERE clause and args for the list filters.
func buildIssueWhere(f repository.IssueFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(i.title ILIKE $"+itoa(len(args)-1)+" OR i.description ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "i.status = $"+itoa(len(args)))
	}
	if p := strings.TrimSpace(f.Priority); p != "" {
		args = append(args, p)
		clauses = append(clauses, "i.priority = $"+itoa(len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		clauses = append(clauses, "i.category = $"+itoa(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// parseID returns the canonical form of a UUID id, so lookups compare the
// key column directly.
func parseID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func itoa(i int) string { return strconv.Itoa(i) }
