package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"huntbrief/internal/providers"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "HB-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status == http.StatusBadGateway:
		return apiError{Code: "HB-API-5020", Message: "Upstream service unavailable. Retry shortly."}
	case status == http.StatusServiceUnavailable:
		return apiError{Code: "HB-API-5030", Message: "This feature is disabled. Configure Postgres and Temporal to enable it."}
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{Code: "HB-DB-5001", Message: "Database schema is not initialized. Restart the server to apply it."}
		case strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{Code: "HB-DB-5002", Message: "Database connection is unavailable. Check local services and retry."}
		default:
			return apiError{Code: "HB-API-5000", Message: "Internal server error. Please retry or check service logs."}
		}
	case status == http.StatusBadRequest:
		code = "HB-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "HB-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "HB-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	// Only user-safe validation context is echoed for 4xx.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "invalid limit"), strings.Contains(raw, "limit must be"):
			msg = "Limit must be a positive number."
		case strings.Contains(raw, "detailed must"):
			msg = "Detailed must not be negative."
		case strings.Contains(raw, "invalid digest id"):
			msg = "Digest id must be a UUID."
		}
	}
	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestLog tags each request with an id, echoed in X-Request-Id and
// forwarded to LLM calls, and logs it once it completes.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(providers.WithRequestID(r.Context(), id)))
		s.logger.Info("http request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
