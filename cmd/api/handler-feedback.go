package main

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/myrjola/routinegen/internal/catalog"
)

type feedbackRequest struct {
	RoutineDigest string `json:"routine_digest" validate:"required,max=128"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"max=2000"`
}

func (app *application) feedbackPOST(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUserID(w, r)
	if !ok {
		return
	}
	var req feedbackRequest
	if err := app.decodeJSON(w, r, &req); err != nil {
		app.sendError(w, r, err)
		return
	}

	feedback := catalog.Feedback{
		ID:            uuid.NewString(),
		UserID:        userID,
		RoutineDigest: req.RoutineDigest,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	if err := app.store.AddFeedback(r.Context(), feedback); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.respondJSON(w, r, http.StatusCreated, feedback)
}
