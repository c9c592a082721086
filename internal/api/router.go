package api

import (
	"net/http"
	"parcel-dispatch-service/internal/api/handlers"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/ports"
	"time"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// day is the service date that ?at= times of day resolve on.
func NewRouter(sim ports.DispatchQuery, day time.Time, collector *metrics.Collector) http.Handler {
	mux := http.NewServeMux()

	pkgHandler := &handlers.PackageHandler{Sim: sim, Day: day}
	truckHandler := &handlers.TruckHandler{Sim: sim}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/packages", pkgHandler.List)
	mux.HandleFunc("/packages/{id}", pkgHandler.Get)
	mux.HandleFunc("/snapshot", pkgHandler.Snapshot)
	mux.HandleFunc("/trucks", truckHandler.List)
	if collector != nil {
		mux.Handle("/metrics", collector.Handler())
	}

	return loggingMiddleware(mux, collector)
}
