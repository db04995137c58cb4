package main

import (
	"net/http"

	"github.com/myrjola/routinegen/internal/metrics"
)

type weeklyPatternRequest struct {
	Logs    []metrics.LogEntry  `json:"logs" validate:"required,min=1,max=7,dive"`
	Profile metrics.UserProfile `json:"profile"`
}

func (app *application) weeklyPatternPOST(w http.ResponseWriter, r *http.Request) {
	var req weeklyPatternRequest
	if err := app.decodeJSON(w, r, &req); err != nil {
		app.sendError(w, r, err)
		return
	}

	result, err := app.routines.WeeklyPattern(r.Context(), req.Logs, req.Profile)
	if err != nil {
		app.sendSynthesisError(w, r, err, req.Logs)
		return
	}
	app.respondJSON(w, r, http.StatusOK, result)
}
