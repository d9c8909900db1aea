package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

// errorBody is the stable error shape every failure response carries.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func statusFor(kind simpledocs.Kind) int {
	switch kind {
	case simpledocs.KindUnauthorized:
		return http.StatusUnauthorized
	case simpledocs.KindForbidden:
		return http.StatusForbidden
	case simpledocs.KindNotFound:
		return http.StatusNotFound
	case simpledocs.KindBadRequest:
		return http.StatusBadRequest
	case simpledocs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a typed error to its status code and renders the
// error body. Untyped errors collapse to 500 with no detail leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := simpledocs.KindOf(err)
	status := statusFor(kind)

	detail := errorDetail{Code: status, Message: "Internal server error"}
	if kind != simpledocs.KindInternal {
		var typed *simpledocs.Error
		if errors.As(err, &typed) {
			detail.Message = typed.Message
			// Details only accompany validation failures.
			if kind == simpledocs.KindBadRequest {
				detail.Details = typed.Details
			}
		}
	} else {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: detail})
}
