package main

import (
	"net/http"
	"strconv"

	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type exerciseListResponse struct {
	Exercises []catalog.Exercise `json:"exercises"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPageSize {
			app.sendError(w, r, errors.WithKind(
				errors.New("limit must be an integer in 1-200"), errors.KindInputInvalid))
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			app.sendError(w, r, errors.WithKind(
				errors.New("offset must be a non-negative integer"), errors.KindInputInvalid))
			return
		}
		offset = parsed
	}

	exercises, err := app.store.ListExercises(r.Context(), limit, offset)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if exercises == nil {
		exercises = []catalog.Exercise{}
	}
	app.respondJSON(w, r, http.StatusOK, exerciseListResponse{
		Exercises: exercises,
		Limit:     limit,
		Offset:    offset,
	})
}

func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	exercise, err := app.store.GetExercise(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.respondJSON(w, r, http.StatusOK, exercise)
}
