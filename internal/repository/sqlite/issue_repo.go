// Package sqlite stores issues through gorm on a pure-Go SQLite driver. It
// backs local development and the HTTP tests.
package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository"
)

type issueRecord struct {
	ID            string `gorm:"primaryKey;size:36"`
	Title         string `gorm:"not null"`
	Description   string `gorm:"not null"`
	Category      string `gorm:"not null;index"`
	Priority      string `gorm:"not null;index"`
	Status        string `gorm:"not null;index"`
	ReporterName  string `gorm:"not null"`
	ReporterEmail string `gorm:"not null"`
	ReporterPhone string
	AssignedTo    string
	Resolution    string
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
	Attachments   []attachmentRecord `gorm:"foreignKey:IssueID"`
	Comments      []commentRecord    `gorm:"foreignKey:IssueID"`
}

func (issueRecord) TableName() string { return "issues" }

type attachmentRecord struct {
	IssueID  string `gorm:"primaryKey;size:36"`
	Position int    `gorm:"primaryKey"`
	Filename string `gorm:"not null"`
	URL      string `gorm:"not null"`
	Size     int64
}

func (attachmentRecord) TableName() string { return "issue_attachments" }

type commentRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	IssueID   string `gorm:"not null;index;size:36"`
	Text      string `gorm:"not null"`
	Author    string
	CreatedAt time.Time
}

func (commentRecord) TableName() string { return "issue_comments" }

// Open connects to dsn (a file path or "file::memory:") and migrates the
// issue tables.
func Open(dsn string, verbose bool) (*gorm.DB, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&issueRecord{}, &attachmentRecord{}, &commentRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}

type IssueRepo struct{ db *gorm.DB }

var _ repository.IssueRepository = (*IssueRepo)(nil)

func NewIssueRepo(db *gorm.DB) *IssueRepo { return &IssueRepo{db: db} }

func (r *IssueRepo) List(ctx context.Context, f repository.IssueFilter) ([]models.Issue, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.filtered(ctx, f)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []issueRecord
	if err := r.filtered(ctx, f).
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]models.Issue, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, int(total), nil
}

func (r *IssueRepo) filtered(ctx context.Context, f repository.IssueFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&issueRecord{})
	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", p, p)
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		q = q.Where("status = ?", s)
	}
	if p := strings.TrimSpace(f.Priority); p != "" {
		q = q.Where("priority = ?", p)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	return q
}

func (r *IssueRepo) Get(ctx context.Context, id string) (*models.Issue, error) {
	var row issueRecord
	err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	is := row.toModel()
	return &is, nil
}

func (r *IssueRepo) Create(ctx context.Context, is *models.Issue) error {
	now := time.Now().UTC()
	row := issueRecord{
		ID:            uuid.NewString(),
		Title:         is.Title,
		Description:   is.Description,
		Category:      string(is.Category),
		Priority:      string(is.Priority),
		Status:        string(models.StatusOpen),
		ReporterName:  is.ReportedBy.Name,
		ReporterEmail: is.ReportedBy.Email,
		ReporterPhone: is.ReportedBy.Phone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i, a := range is.Attachments {
		row.Attachments = append(row.Attachments, attachmentRecord{
			IssueID: row.ID, Position: i, Filename: a.Filename, URL: a.URL, Size: a.Size,
		})
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	is.ID = row.ID
	is.Status = models.StatusOpen
	is.CreatedAt = row.CreatedAt
	is.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *IssueRepo) UpdateStatus(ctx context.Context, id string, from, to models.Status, resolution string) error {
	updates := map[string]any{"status": string(to), "updated_at": time.Now().UTC()}
	if strings.TrimSpace(resolution) != "" {
		updates["resolution"] = resolution
	}
	res := r.db.WithContext(ctx).Model(&issueRecord{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrConflict(ctx, id)
	}
	return nil
}

func (r *IssueRepo) missingOrConflict(ctx context.Context, id string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&issueRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

func (r *IssueRepo) Assign(ctx context.Context, id, assignedTo string) error {
	return r.update(ctx, id, map[string]any{"assigned_to": assignedTo, "updated_at": time.Now().UTC()})
}

func (r *IssueRepo) update(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&issueRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *IssueRepo) AddComment(ctx context.Context, id string, c models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&issueRecord{}).Where("id = ?", id).Update("updated_at", time.Now().UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return tx.Create(&commentRecord{
			IssueID: id, Text: c.Text, Author: c.Author, CreatedAt: c.CreatedAt,
		}).Error
	})
}

func (r *IssueRepo) Stats(ctx context.Context) (models.IssueStats, error) {
	type bucket struct {
		Status   string
		Priority string
		N        int
	}
	var rows []bucket
	if err := r.db.WithContext(ctx).Model(&issueRecord{}).
		Select("status, priority, COUNT(*) AS n").
		Group("status, priority").
		Scan(&rows).Error; err != nil {
		return models.IssueStats{}, err
	}

	var s models.IssueStats
	for _, b := range rows {
		switch models.Status(b.Status) {
		case models.StatusOpen:
			s.Open += b.N
		case models.StatusInProgress:
			s.InProgress += b.N
		case models.StatusResolved:
			s.Resolved += b.N
		case models.StatusClosed:
			s.Closed += b.N
		}
		open := b.Status != string(models.StatusResolved) && b.Status != string(models.StatusClosed)
		hot := b.Priority == string(models.PriorityHigh) || b.Priority == string(models.PriorityCritical)
		if open && hot {
			s.HighCriticalOpen += b.N
		}
	}
	return s, nil
}

func (r *IssueRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (row issueRecord) toModel() models.Issue {
	is := models.Issue{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Category:    models.Category(row.Category),
		Priority:    models.Priority(row.Priority),
		Status:      models.Status(row.Status),
		ReportedBy:  models.Reporter{Name: row.ReporterName, Email: row.ReporterEmail, Phone: row.ReporterPhone},
		AssignedTo:  row.AssignedTo,
		Resolution:  row.Resolution,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Attachments: []models.Attachment{},
		Comments:    []models.Comment{},
	}
	for _, a := range row.Attachments {
		is.Attachments = append(is.Attachments, models.Attachment{Filename: a.Filename, URL: a.URL, Size: a.Size})
	}
	for _, c := range row.Comments {
		is.Comments = append(is.Comments, models.Comment{Text: c.Text, Author: c.Author, CreatedAt: c.CreatedAt})
	}
	return is
}
