package issueapi

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

// FileUpload stats path and returns an Upload that reopens it on every
// submission attempt.
func FileUpload(path string) (models.Upload, error) {
	st, err := os.Stat(path)
	if err != nil {
		return models.Upload{}, err
	}
	return models.Upload{
		Name: filepath.Base(path),
		Size: st.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// BytesUpload wraps in-memory content.
func BytesUpload(name string, data []byte) models.Upload {
	return models.Upload{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
