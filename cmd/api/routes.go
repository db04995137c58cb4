package main

import "net/http"

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze-journal", app.analyzeJournalPOST)
	mux.HandleFunc("POST /recommend-routine", app.recommendRoutinePOST)
	mux.HandleFunc("POST /weekly-pattern", app.weeklyPatternPOST)

	mux.HandleFunc("GET /exercises", app.exercisesGET)
	mux.HandleFunc("GET /exercises/{id}", app.exerciseGET)

	mux.HandleFunc("POST /feedback", app.feedbackPOST)
	mux.HandleFunc("GET /goals", app.goalsGET)
	mux.HandleFunc("POST /goals", app.goalPOST)
	mux.HandleFunc("DELETE /goals/{id}", app.goalDELETE)

	mux.HandleFunc("GET /api/healthy", app.healthyGET)

	return app.recoverPanic(app.logAndTraceRequest(app.userContext(mux)))
}
