package main

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/errors"
)

type goalRequest struct {
	Description string `json:"description" validate:"required,max=500"`
	TargetDate  string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
}

func (app *application) goalsGET(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUserID(w, r)
	if !ok {
		return
	}
	goals, err := app.store.ListGoals(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if goals == nil {
		goals = []catalog.Goal{}
	}
	app.respondJSON(w, r, http.StatusOK, goals)
}

func (app *application) goalPOST(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUserID(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if err := app.decodeJSON(w, r, &req); err != nil {
		app.sendError(w, r, err)
		return
	}

	goal := catalog.Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: req.Description,
		TargetDate:  req.TargetDate,
	}
	if err := app.store.AddGoal(r.Context(), goal); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.respondJSON(w, r, http.StatusCreated, goal)
}

func (app *application) goalDELETE(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUserID(w, r)
	if !ok {
		return
	}
	if err := app.store.DeleteGoal(r.Context(), r.PathValue("id"), userID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
