package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mediabox/internal/common"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorKind struct {
	err    error
	status int
	kind   string
}

// errorKinds is ordered: the first match wins.
var errorKinds = []errorKind{
	{common.ErrDuplicateIdentity, http.StatusBadRequest, "DuplicateIdentity"},
	{common.ErrInvalidCredentials, http.StatusBadRequest, "InvalidCredentials"},
	{common.ErrValidation, http.StatusBadRequest, "ValidationError"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "InvalidToken"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "TokenExpired"},
	{common.ErrUserNotFound, http.StatusUnauthorized, "UserNotFound"},
	{common.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{common.ErrorNotFound, http.StatusNotFound, "ResourceNotFound"},
}

// classify maps a service error to a status code and an error kind.
// Unknown errors are internal.
func classify(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.kind
		}
	}
	return http.StatusInternalServerError, "Internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "request_id", requestID(r.Context()), "error", err)
		msg = "internal server error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", common.BearerScheme)
	}

	writeJSON(w, status, errorResponse{Kind: kind, Message: msg})
}
