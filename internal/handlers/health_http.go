package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/utils"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports ok while the issue store answers within two seconds.
func Health(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": err.Error()})
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
