// Package issueapi is a typed client for the issues HTTP API.
package issueapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx response. Message carries the server's `error`
// string and is empty when the body had none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.StatusCode)
	}
	return e.Message
}

// Message returns the server-supplied error text of err, or fallback when err
// is a transport failure or the server sent no message.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	actor      string
	log        zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient uses c as the transport template. The client is copied, so
// c itself is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the per-request timeout, whatever the option order. There
// is no retry.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithActor names the acting user on every request (X-User-ID), which the
// server records as comment author.
func WithActor(userID string) Option {
	return func(cl *Client) { cl.actor = strings.TrimSpace(userID) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var hc http.Client
	if c.httpClient != nil {
		hc = *c.httpClient
	} else {
		hc.Timeout = DefaultTimeout
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc
	return c
}

// -----------------------------------------------------------------------------
// Issues
// -----------------------------------------------------------------------------

// Create posts a new report with its attachments as one multipart request.
// reportedBy travels as a single JSON-encoded field.
func (c *Client) Create(ctx context.Context, in models.NewIssue, files []models.Upload) (*models.Issue, error) {
	body, contentType, err := encodeReport(in, files)
	if err != nil {
		return nil, err
	}
	var out models.Issue
	if err := c.do(ctx, http.MethodPost, "/api/issues", contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) List(ctx context.Context, f models.IssueFilter) (*models.IssuePage, error) {
	var out models.IssuePage
	if err := c.do(ctx, http.MethodGet, "/api/issues?"+f.Values().Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.Issue, error) {
	var out models.Issue
	if err := c.do(ctx, http.MethodGet, "/api/issues/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status models.Status, resolution string) (*models.Issue, error) {
	return c.patchJSON(ctx, id, "status", map[string]string{
		"status":     string(status),
		"resolution": resolution,
	})
}

func (c *Client) Assign(ctx context.Context, id, assignedTo string) (*models.Issue, error) {
	return c.patchJSON(ctx, id, "assign", map[string]string{"assignedTo": assignedTo})
}

func (c *Client) AddComment(ctx context.Context, id, text string) (*models.Issue, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	var out models.Issue
	path := "/api/issues/" + url.PathEscape(id) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*models.IssueStats, error) {
	var out models.IssueStats
	if err := c.do(ctx, http.MethodGet, "/api/issues/stats", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) patchJSON(ctx context.Context, id, action string, payload any) (*models.Issue, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out models.Issue
	path := "/api/issues/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, http.MethodPatch, path, "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// -----------------------------------------------------------------------------
// Transport
// -----------------------------------------------------------------------------

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.actor != "" {
		req.Header.Set("X-User-ID", c.actor)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseAPIError(status int, body []byte) error {
	var env struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &env)
	return &APIError{StatusCode: status, Message: strings.TrimSpace(env.Error)}
}

func encodeReport(in models.NewIssue, files []models.Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	reporter, err := json.Marshal(in.ReportedBy)
	if err != nil {
		return nil, "", err
	}
	fields := [][2]string{
		{"title", in.Title},
		{"description", in.Description},
		{"category", string(in.Category)},
		{"priority", string(in.Priority)},
		{"reportedBy", string(reporter)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		if err := writeFile(mw, f); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func writeFile(mw *multipart.Writer, f models.Upload) error {
	if f.Open == nil {
		return fmt.Errorf("attachment %q has no content", f.Name)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open attachment %q: %w", f.Name, err)
	}
	defer src.Close()

	part, err := mw.CreateFormFile("attachments", f.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("read attachment %q: %w", f.Name, err)
	}
	return nil
}
