package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/utils"
)

type ctxKey string

const (
	CtxActor     ctxKey = "actor"
	CtxRequestID ctxKey = "rid"

	ActorHeader = "X-User-ID"
)

// WithActor records who is acting, from the X-User-ID header, so comments can
// carry an author. It is attribution only; nothing is verified here.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(ActorHeader))
		if actor == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), CtxActor, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Actor returns the acting user id, if the request named one.
func Actor(ctx context.Context) string {
	s, _ := utils.GetString(ctx, CtxActor)
	return s
}
