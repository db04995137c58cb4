package main

import (
	"net/http"

	"github.com/myrjola/routinegen/internal/metrics"
)

type recommendRoutineRequest struct {
	Logs      []metrics.LogEntry  `json:"logs" validate:"required,min=1,dive"`
	Days      int                 `json:"days" validate:"required,min=1,max=14"`
	Frequency int                 `json:"frequency" validate:"required,min=1,max=7"`
	Profile   metrics.UserProfile `json:"profile"`
}

func (app *application) recommendRoutinePOST(w http.ResponseWriter, r *http.Request) {
	var req recommendRoutineRequest
	if err := app.decodeJSON(w, r, &req); err != nil {
		app.sendError(w, r, err)
		return
	}

	recommended, err := app.routines.Recommend(r.Context(), req.Logs, req.Days, req.Frequency, req.Profile)
	if err != nil {
		app.sendSynthesisError(w, r, err, req.Logs)
		return
	}
	app.respondJSON(w, r, http.StatusOK, recommended)
}
