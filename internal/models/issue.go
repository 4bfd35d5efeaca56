package models

import (
	"io"
	"time"
)

type Category string

const (
	CategoryTechnical    Category = "Technical"
	CategoryContent      Category = "Content"
	CategoryPayment      Category = "Payment"
	CategoryRegistration Category = "Registration"
	CategoryOther        Category = "Other"
)

var Categories = []Category{CategoryTechnical, CategoryContent, CategoryPayment, CategoryRegistration, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// DefaultPriority is what a fresh report form starts with.
const DefaultPriority = PriorityMedium

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

type Issue struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	Priority    Priority     `json:"priority"`
	Status      Status       `json:"status"`
	ReportedBy  Reporter     `json:"reportedBy"`
	Attachments []Attachment `json:"attachments"`
	AssignedTo  string       `json:"assignedTo,omitempty"`
	Comments    []Comment    `json:"comments"`
	Resolution  string       `json:"resolution,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Assigned reports whether someone owns the issue.
func (i Issue) Assigned() bool { return i.AssignedTo != "" }

type Reporter struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
}

type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
}

type Comment struct {
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IssuePage is one page of a filtered issue listing.
type IssuePage struct {
	Data       []Issue `json:"data"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// IssueStats backs the triage dashboard counters.
type IssueStats struct {
	Open             int `json:"open"`
	InProgress       int `json:"inProgress"`
	Resolved         int `json:"resolved"`
	Closed           int `json:"closed"`
	HighCriticalOpen int `json:"highCriticalOpen"`
}

const (
	MaxAttachments    = 5
	MaxAttachmentSize = 5 << 20
)

// NewIssue is the payload of a fresh report.
type NewIssue struct {
	Title       string   `json:"title" validate:"required,min=5,max=200"`
	Description string   `json:"description" validate:"required,min=20,max=5000"`
	Category    Category `json:"category" validate:"required,category"`
	Priority    Priority `json:"priority" validate:"required,priority"`
	ReportedBy  Reporter `json:"reportedBy"`
}

// Upload is a local file picked for attachment. Open is called once per
// submission attempt so a failed submit can be retried with the same selection.
type Upload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}
