package validation

import (
	"errors"
	"fmt"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

var (
	ErrTooManyFiles = fmt.Errorf("you can only upload up to %d files", models.MaxAttachments)
	ErrFileTooLarge = errors.New("file exceeds the 5MB limit")
)

// ValidateFiles enforces the attachment limits that are checked before any
// request is built.
func ValidateFiles(files []models.Upload) error {
	if len(files) > models.MaxAttachments {
		return ErrTooManyFiles
	}
	for _, f := range files {
		if f.Size > models.MaxAttachmentSize {
			return fmt.Errorf("%s: %w", f.Name, ErrFileTooLarge)
		}
	}
	return nil
}
