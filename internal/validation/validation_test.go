package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

func validIssue() models.NewIssue {
	return models.NewIssue{
		Title:       "Login broken",
		Description: "Cannot log in after password reset, error 500",
		Category:    models.CategoryTechnical,
		Priority:    models.PriorityHigh,
		ReportedBy:  models.Reporter{Name: "A Kumar", Email: "a@example.com"},
	}
}

func TestValidateIssueAcceptsMinimalPayload(t *testing.T) {
	if errs := ValidateIssue(validIssue()); len(errs) != 0 {
		t.Fatalf("ValidateIssue() = %v, want no errors", errs)
	}
}

func TestValidateIssueRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.NewIssue)
		field  string
	}{
		{"short title", func(in *models.NewIssue) { in.Title = "Bug" }, "title"},
		{"short description", func(in *models.NewIssue) { in.Description = "Too short" }, "description"},
		{"bad email", func(in *models.NewIssue) { in.ReportedBy.Email = "not-an-email" }, "reportedBy.email"},
		{"short name", func(in *models.NewIssue) { in.ReportedBy.Name = "A" }, "reportedBy.name"},
		{"unknown category", func(in *models.NewIssue) { in.Category = "Billing" }, "category"},
		{"unknown priority", func(in *models.NewIssue) { in.Priority = "Urgent" }, "priority"},
		{"empty category", func(in *models.NewIssue) { in.Category = "" }, "category"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := validIssue()
			c.mutate(&in)
			errs := ValidateIssue(in)
			if _, ok := errs[c.field]; !ok {
				t.Fatalf("ValidateIssue() = %v, want error on %q", errs, c.field)
			}
			if len(errs) != 1 {
				t.Fatalf("ValidateIssue() = %v, want only %q", errs, c.field)
			}
		})
	}
}

func TestValidateIssueChecksEveryField(t *testing.T) {
	errs := ValidateIssue(models.NewIssue{Priority: models.PriorityMedium})
	for _, f := range []string{"title", "description", "category", "reportedBy.name", "reportedBy.email"} {
		if _, ok := errs[f]; !ok {
			t.Fatalf("missing error for %q in %v", f, errs)
		}
	}
	if _, ok := errs["priority"]; ok {
		t.Fatalf("priority should be valid, got %q", errs["priority"])
	}
	if _, ok := errs["reportedBy.phone"]; ok {
		t.Fatalf("phone is optional, got %q", errs["reportedBy.phone"])
	}
}

func TestValidateIssueMessages(t *testing.T) {
	in := validIssue()
	in.Title = "Bug"
	in.ReportedBy.Email = "nope"
	errs := ValidateIssue(in)
	if got := errs["title"]; got != "Title must be at least 5 characters" {
		t.Fatalf("title message = %q", got)
	}
	if got := errs["reportedBy.email"]; got != "Please enter a valid email address" {
		t.Fatalf("email message = %q", got)
	}
	if !strings.Contains(errs.Error(), "title: ") {
		t.Fatalf("Error() = %q", errs.Error())
	}
}

func TestValidateFiles(t *testing.T) {
	six := make([]models.Upload, 6)
	if err := ValidateFiles(six); !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("ValidateFiles(6) = %v, want ErrTooManyFiles", err)
	}
	if err := ValidateFiles(make([]models.Upload, 5)); err != nil {
		t.Fatalf("ValidateFiles(5) = %v", err)
	}
	big := []models.Upload{{Name: "dump.log", Size: models.MaxAttachmentSize + 1}}
	if err := ValidateFiles(big); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("ValidateFiles(big) = %v, want ErrFileTooLarge", err)
	}
}
