package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/middleware"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/utils"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/validation"
)

// AttachmentStore persists uploaded files and hands back their public URL.
type AttachmentStore interface {
	Save(filename string, src io.Reader) (url string, size int64, err error)
	Remove(url string) error
}

// IssueHTTP wires the issue endpoints to a repository.
type IssueHTTP struct {
	issues   repository.IssueRepository
	files    AttachmentStore
	pageSize int
	log      zerolog.Logger
}

func NewIssueHTTP(issues repository.IssueRepository, files AttachmentStore, pageSize int, log zerolog.Logger) *IssueHTTP {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &IssueHTTP{issues: issues, files: files, pageSize: pageSize, log: log}
}

// -----------------------------------------------------------------------------
// GET /api/issues?status=&category=&priority=&search=&page=&limit=
// -----------------------------------------------------------------------------
func (h *IssueHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		status := strings.TrimSpace(qv.Get("status"))
		category := strings.TrimSpace(qv.Get("category"))
		priority := strings.TrimSpace(qv.Get("priority"))
		search := strings.TrimSpace(qv.Get("search"))

		if status != "" && !models.Status(status).Valid() {
			utils.Error(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		if category != "" && !models.Category(category).Valid() {
			utils.Error(w, http.StatusBadRequest, "invalid category filter")
			return
		}
		if priority != "" && !models.Priority(priority).Valid() {
			utils.Error(w, http.StatusBadRequest, "invalid priority filter")
			return
		}

		page, limit := utils.Pagination(qv, h.pageSize, 100)

		items, total, err := h.issues.List(r.Context(), repository.IssueFilter{
			Q:        search,
			Status:   status,
			Priority: priority,
			Category: category,
			Limit:    limit,
			Offset:   (page - 1) * limit,
		})
		if err != nil {
			h.log.Error().Err(err).Msg("list issues")
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch issues")
			return
		}

		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, models.IssuePage{
			Data:       items,
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		})
	}
}

// -----------------------------------------------------------------------------
// GET /api/issues/{id}
// -----------------------------------------------------------------------------
func (h *IssueHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		is, ok := h.load(w, r)
		if !ok {
			return
		}
		utils.JSON(w, http.StatusOK, is)
	}
}

// -----------------------------------------------------------------------------
// POST /api/issues (multipart: fields + reportedBy JSON + attachments[])
// -----------------------------------------------------------------------------
func (h *IssueHTTP) Create() http.HandlerFunc {
	const maxBody = models.MaxAttachments*models.MaxAttachmentSize + 1<<20
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		in := models.NewIssue{
			Title:       strings.TrimSpace(r.FormValue("title")),
			Description: strings.TrimSpace(r.FormValue("description")),
			Category:    models.Category(strings.TrimSpace(r.FormValue("category"))),
			Priority:    models.Priority(strings.TrimSpace(r.FormValue("priority"))),
		}
		if in.Priority == "" {
			in.Priority = models.DefaultPriority
		}
		if raw := r.FormValue("reportedBy"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &in.ReportedBy); err != nil {
				utils.Error(w, http.StatusBadRequest, "reportedBy must be a JSON object")
				return
			}
		}
		if fe := validation.ValidateIssue(in); len(fe) > 0 {
			utils.ErrorDetails(w, http.StatusBadRequest, fe.Summary(), fe)
			return
		}

		headers := r.MultipartForm.File["attachments"]
		if len(headers) > models.MaxAttachments {
			utils.Error(w, http.StatusBadRequest, fmt.Sprintf("You can only upload up to %d files", models.MaxAttachments))
			return
		}
		for _, fh := range headers {
			if fh.Size > models.MaxAttachmentSize {
				utils.Error(w, http.StatusBadRequest, fh.Filename+" exceeds the 5MB limit")
				return
			}
		}

		is := &models.Issue{
			Title:       in.Title,
			Description: in.Description,
			Category:    in.Category,
			Priority:    in.Priority,
			ReportedBy:  in.ReportedBy,
			Attachments: []models.Attachment{},
			Comments:    []models.Comment{},
		}
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				h.discard(is.Attachments)
				utils.Error(w, http.StatusBadRequest, "could not read "+fh.Filename)
				return
			}
			url, size, err := h.files.Save(fh.Filename, f)
			_ = f.Close()
			if err != nil {
				h.discard(is.Attachments)
				h.log.Error().Err(err).Str("file", fh.Filename).Msg("store attachment")
				utils.Error(w, http.StatusInternalServerError, "Failed to store attachment")
				return
			}
			is.Attachments = append(is.Attachments, models.Attachment{Filename: fh.Filename, URL: url, Size: size})
		}

		if err := h.issues.Create(r.Context(), is); err != nil {
			h.discard(is.Attachments)
			h.log.Error().Err(err).Msg("create issue")
			utils.Error(w, http.StatusInternalServerError, "Failed to create issue")
			return
		}
		h.log.Info().Str("issue", is.ID).Str("category", string(is.Category)).Int("attachments", len(is.Attachments)).Msg("issue reported")
		utils.JSON(w, http.StatusCreated, is)
	}
}

func (h *IssueHTTP) discard(atts []models.Attachment) {
	for _, a := range atts {
		if err := h.files.Remove(a.URL); err != nil {
			h.log.Warn().Err(err).Str("url", a.URL).Msg("remove attachment")
		}
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/issues/{id}/status
// -----------------------------------------------------------------------------
func (h *IssueHTTP) UpdateStatus() http.HandlerFunc {
	type inDTO struct {
		Status     string `json:"status" validate:"required,status"`
		Resolution string `json:"resolution" validate:"max=1000"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if !decode(w, r, &in) {
			return
		}
		in.Resolution = strings.TrimSpace(in.Resolution)

		cur, ok := h.load(w, r)
		if !ok {
			return
		}
		to := models.Status(in.Status)
		if !models.CanTransition(cur.Status, to) {
			utils.Error(w, http.StatusConflict, fmt.Sprintf("Cannot change status from %s to %s", cur.Status, to))
			return
		}
		err := h.issues.UpdateStatus(r.Context(), cur.ID, cur.Status, to, models.ResolutionFor(to, in.Resolution))
		if errors.Is(err, repository.ErrConflict) {
			utils.Error(w, http.StatusConflict, "Issue status changed, reload and try again")
			return
		}
		if err != nil {
			h.mutationError(w, err, "Failed to update status")
			return
		}
		h.respondFresh(w, r, cur.ID)
	}
}

// -----------------------------------------------------------------------------
// PATCH /api/issues/{id}/assign
// -----------------------------------------------------------------------------
func (h *IssueHTTP) Assign() http.HandlerFunc {
	type inDTO struct {
		AssignedTo string `json:"assignedTo" validate:"required,max=100"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.AssignedTo = strings.TrimSpace(in.AssignedTo)
		if fe := validation.Struct(in); len(fe) > 0 {
			utils.ErrorDetails(w, http.StatusBadRequest, fe.Summary(), fe)
			return
		}
		id := chi.URLParam(r, "id")
		if err := h.issues.Assign(r.Context(), id, in.AssignedTo); err != nil {
			h.mutationError(w, err, "Failed to assign issue")
			return
		}
		h.respondFresh(w, r, id)
	}
}

// -----------------------------------------------------------------------------
// POST /api/issues/{id}/comments
// -----------------------------------------------------------------------------
func (h *IssueHTTP) AddComment() http.HandlerFunc {
	type inDTO struct {
		Text string `json:"text" validate:"required,max=2000"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.Text = strings.TrimSpace(in.Text)
		if fe := validation.Struct(in); len(fe) > 0 {
			utils.ErrorDetails(w, http.StatusBadRequest, fe.Summary(), fe)
			return
		}
		id := chi.URLParam(r, "id")
		c := models.Comment{
			Text:      in.Text,
			Author:    middleware.Actor(r.Context()),
			CreatedAt: time.Now().UTC(),
		}
		if err := h.issues.AddComment(r.Context(), id, c); err != nil {
			h.mutationError(w, err, "Failed to add comment")
			return
		}
		h.respondFresh(w, r, id)
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// decode reads a JSON body and runs its validate tags, writing the 400 itself.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if fe := validation.Struct(dst); len(fe) > 0 {
		utils.ErrorDetails(w, http.StatusBadRequest, fe.Summary(), fe)
		return false
	}
	return true
}

func (h *IssueHTTP) load(w http.ResponseWriter, r *http.Request) (*models.Issue, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.Error(w, http.StatusBadRequest, "missing id")
		return nil, false
	}
	is, err := h.issues.Get(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("issue", id).Msg("get issue")
		utils.Error(w, http.StatusInternalServerError, "Failed to fetch issue")
		return nil, false
	}
	if is == nil {
		utils.Error(w, http.StatusNotFound, "Issue not found")
		return nil, false
	}
	return is, true
}

func (h *IssueHTTP) respondFresh(w http.ResponseWriter, r *http.Request, id string) {
	is, err := h.issues.Get(r.Context(), id)
	if err != nil || is == nil {
		utils.Error(w, http.StatusInternalServerError, "issue not found after update")
		return
	}
	utils.JSON(w, http.StatusOK, is)
}

func (h *IssueHTTP) mutationError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, repository.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "Issue not found")
		return
	}
	h.log.Error().Err(err).Msg(msg)
	utils.Error(w, http.StatusInternalServerError, msg)
}
