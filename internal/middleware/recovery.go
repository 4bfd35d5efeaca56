package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/utils"
)

func Recoverer(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					rid, _ := utils.GetString(r.Context(), CtxRequestID)
					l.Error().Interface("panic", rec).Str("rid", rid).Str("path", r.URL.Path).Msg("panic")
					utils.Error(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
