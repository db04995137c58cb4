package main

import "net/http"

type healthyResponse struct {
	Status      string `json:"status"`
	CatalogRows int    `json:"catalog_rows"`
}

func (app *application) healthyGET(w http.ResponseWriter, r *http.Request) {
	app.respondJSON(w, r, http.StatusOK, healthyResponse{
		Status:      "ok",
		CatalogRows: app.catalogRows,
	})
}
