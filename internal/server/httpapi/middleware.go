package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/server/auth"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type ctxKey string

const requestIDKey ctxKey = "requestID"

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// tracing keeps the caller's X-Request-ID or assigns a new one, and echoes
// it in the response.
func (h *Handler) tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		args := []any{
			"request_id", requestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"size", rec.size,
			"duration", time.Since(start),
		}
		switch {
		case rec.status >= 500:
			h.logger.Error(r.Context(), "request", args...)
		case rec.status >= 400:
			h.logger.Warn(r.Context(), "request", args...)
		default:
			h.logger.Info(r.Context(), "request", args...)
		}
	})
}

// rescue is the router's panic handler.
func (h *Handler) rescue(w http.ResponseWriter, r *http.Request, v any) {
	h.writeError(w, r, fmt.Errorf("%w: panic: %v", common.ErrorInternal, v))
}

// requireUser rejects requests without a valid bearer token and passes the
// resolved user on in the request context.
func (h *Handler) requireUser(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token, err := auth.ParseBearer(r.Header.Get(common.AuthorizationHeader))
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		user, err := h.guard.Resolve(r.Context(), token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		next(w, r.WithContext(auth.WithUser(r.Context(), user)), ps)
	}
}

// currentUser returns the user put in the context by requireUser.
func currentUser(r *http.Request) *models.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}
