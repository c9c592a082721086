package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/platform/obs"
	"strings"
	"time"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// parseAt resolves the "at" query parameter ("10:30 AM") on day.
// present is false when the parameter is missing.
func parseAt(r *http.Request, day time.Time) (at time.Time, present bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get("at"))
	if raw == "" {
		return time.Time{}, false, nil
	}
	at, err = config.OnDay(day, raw)
	if err != nil {
		return time.Time{}, true, err
	}
	return at, true, nil
}
