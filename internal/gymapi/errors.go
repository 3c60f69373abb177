package gymapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNoToken      = errors.New("no access token")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx answer of the remote gym API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// HTTPStatus maps an error coming out of the client to the status gymdash
// answers its own callers with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNoToken) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}

	return http.StatusBadGateway
}

// WriteHTTPError answers a failed proxied call: remote client errors keep
// their status and detail, anything else is logged and hidden.
func WriteHTTPError(w http.ResponseWriter, action string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %s", action, err)
		http.Error(w, action+" failed", status)
		return
	}
	log.Debugf("%s: %s", action, err)
	http.Error(w, fmt.Sprintf("%s failed: %s", action, err), status)
}

func newAPIError(method, path string, statusCode int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Detail:     parseDetail(body),
	}
}

// parseDetail reads {"detail": ...}, where detail is either a message or a
// list of validation errors.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var msg string
	if err := json.Unmarshal(payload.Detail, &msg); err == nil {
		return msg
	}

	var validationErrs []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &validationErrs); err == nil {
		msgs := make([]string, 0, len(validationErrs))
		for _, ve := range validationErrs {
			if ve.Msg == "" {
				continue
			}
			if len(ve.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", ve.Loc[len(ve.Loc)-1], ve.Msg))
			} else {
				msgs = append(msgs, ve.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(payload.Detail)
}
