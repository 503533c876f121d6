package api

import (
	"net/http"
	"parcel-dispatch-service/internal/api/handlers"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/services"
)

// NewRouter exposes a finished simulation over HTTP. All endpoints are reads.
func NewRouter(view *services.ReportView, day domain.Day) http.Handler {
	mux := http.NewServeMux()

	reportHandler := &handlers.ReportHandler{View: view, Day: day}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/report", reportHandler.Report)
	mux.HandleFunc("/packages/{id}", reportHandler.Package)
	mux.HandleFunc("/trucks", reportHandler.Trucks)

	return loggingMiddleware(mux)
}
