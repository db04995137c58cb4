package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/myrjola/routinegen/internal/contexthelpers"
	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/routine"
)

const maxRequestBody = 1 << 20 // 1 MiB

// errorResponse is the uniform error envelope. FallbackRecommendations is
// populated only when the language model failed and metrics-derived advice is
// still possible.
type errorResponse struct {
	Kind                    string   `json:"kind"`
	Message                 string   `json:"message"`
	FallbackRecommendations []string `json:"fallback_recommendations,omitempty"`
}

func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.WithKind(errors.Wrap(err, "decode request body"), errors.KindInputInvalid)
	}
	if err := app.validate.Struct(dst); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			return errors.WithKind(errors.Wrap(err, "validate request body"), errors.KindInputInvalid)
		}
		return errors.Wrap(err, "validate request body")
	}
	return nil
}

func (app *application) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.respondJSON(w, r, http.StatusInternalServerError, errorResponse{
		Kind:    "Internal",
		Message: "internal server error",
	})
}

// sendError maps an annotated error to the envelope and status the caller
// sees. Internal detail stays in the log; the message is the outermost
// annotation only.
func (app *application) sendError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errors.KindOf(err)
	if kind == "" {
		app.serverError(w, r, err)
		return
	}
	app.logger.LogAttrs(r.Context(), slog.LevelWarn, "request failed",
		slog.String("kind", string(kind)), errors.SlogError(err))
	app.respondJSON(w, r, statusForKind(kind), errorResponse{
		Kind:    string(kind),
		Message: err.Error(),
	})
}

// sendSynthesisError behaves like sendError but attaches metrics-derived
// fallback advice when the model was unreachable or produced garbage, so a
// degraded client still has something to show.
func (app *application) sendSynthesisError(w http.ResponseWriter, r *http.Request, err error, logs []metrics.LogEntry) {
	kind := errors.KindOf(err)
	if kind != errors.KindChatUnavailable && kind != errors.KindResponseMalformed {
		app.sendError(w, r, err)
		return
	}
	app.logger.LogAttrs(r.Context(), slog.LevelWarn, "synthesis failed, serving fallback",
		slog.String("kind", string(kind)), errors.SlogError(err))
	app.respondJSON(w, r, statusForKind(kind), errorResponse{
		Kind:                    string(kind),
		Message:                 err.Error(),
		FallbackRecommendations: routine.FallbackRecommendations(metrics.Build(logs)),
	})
}

func statusForKind(kind errors.Kind) int {
	switch kind {
	case errors.KindInputInvalid:
		return http.StatusUnprocessableEntity
	case errors.KindChatUnavailable, errors.KindEmbeddingUnavailable, errors.KindResponseMalformed:
		return http.StatusBadGateway
	case errors.KindRequestCanceled:
		return http.StatusServiceUnavailable
	case errors.KindVocabularyViolation, errors.KindCatalogInconsistent:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// requireUserID returns the caller identity or rejects the request.
func (app *application) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := contexthelpers.UserID(r.Context())
	if userID == "" {
		app.sendError(w, r, errors.WithKind(
			errors.New("missing X-User-ID header"), errors.KindInputInvalid))
		return "", false
	}
	return userID, true
}
