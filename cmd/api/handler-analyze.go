package main

import (
	"net/http"

	"github.com/myrjola/routinegen/internal/metrics"
)

type analyzeJournalRequest struct {
	Log     metrics.LogEntry    `json:"log"`
	Profile metrics.UserProfile `json:"profile"`
}

func (app *application) analyzeJournalPOST(w http.ResponseWriter, r *http.Request) {
	var req analyzeJournalRequest
	if err := app.decodeJSON(w, r, &req); err != nil {
		app.sendError(w, r, err)
		return
	}

	analysis, err := app.routines.Analyze(r.Context(), req.Log, req.Profile)
	if err != nil {
		app.sendSynthesisError(w, r, err, []metrics.LogEntry{req.Log})
		return
	}
	app.respondJSON(w, r, http.StatusOK, analysis)
}
