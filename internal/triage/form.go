package triage

import (
	"context"
	"errors"
	"sync"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/issueapi"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/validation"
)

// ReportForm is the submission screen: form values, the picked attachments
// and the single in-flight submit.
type ReportForm struct {
	api    API
	notify Notifier

	// OnCreated runs after a successful submit, outside the form lock.
	OnCreated func(*models.Issue)

	mu         sync.Mutex
	values     models.NewIssue
	files      []models.Upload
	fieldErrs  validation.FieldErrors
	submitting bool
	closed     bool
}

func NewReportForm(api API, notify Notifier) *ReportForm {
	return &ReportForm{api: api, notify: notify, values: defaultValues()}
}

func defaultValues() models.NewIssue {
	return models.NewIssue{Priority: models.DefaultPriority}
}

func (f *ReportForm) Values() models.NewIssue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *ReportForm) SetValues(v models.NewIssue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = v
}

// FieldErrors returns the messages from the last rejected submit.
func (f *ReportForm) FieldErrors() validation.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs
}

// Submitting reports whether the submit control must be disabled.
func (f *ReportForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *ReportForm) Files() []models.Upload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Upload(nil), f.files...)
}

// SelectFiles replaces the attachment selection. A selection over the limits
// is rejected with a notification and leaves the selection empty.
func (f *ReportForm) SelectFiles(files []models.Upload) error {
	if err := validation.ValidateFiles(files); err != nil {
		f.mu.Lock()
		f.files = nil
		f.mu.Unlock()
		if errors.Is(err, validation.ErrTooManyFiles) {
			f.notify.Error(msgTooManyFiles)
		} else {
			f.notify.Error(err.Error())
		}
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append([]models.Upload(nil), files...)
	return nil
}

func (f *ReportForm) ClearFiles() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = nil
}

// Submit validates and posts the report. A second call while one is in flight
// returns ErrSubmitInFlight without sending anything. On failure the values
// are kept so the user can retry.
func (f *ReportForm) Submit(ctx context.Context) (*models.Issue, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if errs := validation.ValidateIssue(f.values); len(errs) > 0 {
		f.fieldErrs = errs
		f.mu.Unlock()
		return nil, errs
	}
	f.fieldErrs = nil
	f.submitting = true
	values := f.values
	files := append([]models.Upload(nil), f.files...)
	f.mu.Unlock()

	issue, err := f.api.Create(ctx, values, files)

	f.mu.Lock()
	f.submitting = false
	if f.closed {
		f.mu.Unlock()
		return issue, err
	}
	if err != nil {
		f.mu.Unlock()
		f.notify.Error(issueapi.Message(err, msgSubmitFailed))
		return nil, err
	}
	f.values = defaultValues()
	f.files = nil
	f.mu.Unlock()

	f.notify.Success(msgSubmitted)
	if f.OnCreated != nil {
		f.OnCreated(issue)
	}
	return issue, nil
}

// Close detaches the form; a submit completing afterwards is not applied.
func (f *ReportForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
