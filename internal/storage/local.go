// Package storage keeps uploaded attachments on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrTooLarge = errors.New("attachment exceeds size limit")

type Local struct {
	dir     string
	baseURL string
	maxSize int64
}

// NewLocal stores files under dir and addresses them as baseURL/<name>.
func NewLocal(dir, baseURL string, maxSize int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxSize: maxSize}, nil
}

func (s *Local) Dir() string { return s.dir }

// Save copies src under a fresh random name keeping the original extension,
// and returns the public URL and stored size. Nothing is kept when src is
// over the limit.
func (s *Local) Save(filename string, src io.Reader) (string, int64, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > s.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return s.baseURL + "/" + name, n, nil
}

// Remove deletes a stored file by its URL; used to roll back a failed create.
func (s *Local) Remove(url string) error {
	name := filepath.Base(url)
	return os.Remove(filepath.Join(s.dir, name))
}
