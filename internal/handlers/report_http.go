package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/utils"
)

type ReportsHTTP struct {
	repo repository.IssueRepository
	log  zerolog.Logger
}

func NewReportsHTTP(r repository.IssueRepository, log zerolog.Logger) *ReportsHTTP {
	return &ReportsHTTP{repo: r, log: log}
}

// GET /api/issues/stats
// Returns: { open, inProgress, resolved, closed, highCriticalOpen }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.repo.Stats(r.Context())
		if err != nil {
			h.log.Error().Err(err).Msg("issue stats")
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch stats")
			return
		}
		utils.JSON(w, http.StatusOK, s)
	}
}
