package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/metagraph/pkg/errors"
	"github.com/matzehuels/metagraph/pkg/observability"
	"github.com/matzehuels/metagraph/pkg/session"
)

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

// statusFor maps an error to its HTTP status and wire code. Parameter and
// definition errors are 422: the request was well formed but the graph
// refused it.
func statusFor(err error) (int, errors.Code) {
	switch {
	case stderrors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, errors.ErrCodeNotFound
	case stderrors.Is(err, session.ErrExpired):
		return http.StatusGone, errors.ErrCodeClosed
	}

	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound, code
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest, code
	case errors.ErrCodeClosed:
		return http.StatusGone, code
	case errors.ErrCodeRange, errors.ErrCodeUnknownParam, errors.ErrCodeUnknownNode,
		errors.ErrCodeUnknownMode, errors.ErrCodeConfiguration:
		return http.StatusUnprocessableEntity, code
	case "":
		return http.StatusInternalServerError, errors.ErrCodeInternal
	}
	if errors.IsStructural(err) {
		return http.StatusUnprocessableEntity, code
	}
	return http.StatusInternalServerError, code
}

// observe reports every request to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
