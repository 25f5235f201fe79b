package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunen/internal/shared"
)

const (
	loginPath        = "/spotify-login"
	loginRequiredMsg = "login required"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
	Body    any    `json:"upstream,omitempty"`
}

type unauthorizedBody struct {
	Unauthorized string `json:"unauthorized"`
	LoginURL     string `json:"login_url"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw writes an upstream JSON body unchanged; an empty body becomes 204.
func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	if len(body) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// errorWriter maps domain errors to HTTP responses and logs them with secrets removed.
type errorWriter struct {
	logger  *log.Logger
	secrets []string
}

func (e *errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	msg := shared.Redact(err.Error(), e.secrets...)
	if status >= 500 {
		e.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", msg)
	} else {
		e.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", msg)
	}

	writeJSON(w, status, body)
}

// classify picks the status code and response body for err.
func classify(err error) (int, any) {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized, unauthorizedBody{Unauthorized: loginRequiredMsg, LoginURL: loginPath}
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest, errorBody{Error: "bad_request", Message: err.Error()}
	case errors.Is(err, shared.ErrInvalidState):
		return http.StatusBadRequest, errorBody{Error: "invalid_state", Message: err.Error()}
	case errors.Is(err, shared.ErrMissingCode):
		return http.StatusBadRequest, errorBody{Error: "missing_code", Message: err.Error()}
	}

	if upstream, ok := shared.AsUpstream(err); ok {
		code := "upstream_error"
		if errors.Is(err, shared.ErrTokenExchange) {
			code = "token_exchange_failed"
		}
		return upstream.Status, errorBody{Error: code, Message: err.Error(), Status: upstream.Status, Body: upstreamBody(upstream.Body)}
	}
	if _, ok := shared.AsNetwork(err); ok {
		return http.StatusBadGateway, errorBody{Error: "network_error", Message: "spotify could not be reached"}
	}
	if errors.Is(err, shared.ErrNotImplemented) {
		return http.StatusNotImplemented, errorBody{Error: "not_implemented", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "internal server error"}
}

// upstreamBody embeds a JSON body as-is and anything else as a string.
func upstreamBody(body string) any {
	if body == "" {
		return nil
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}
