package handlers

import (
	"net/http"
	"parcel-dispatch-service/internal/api/dto"
	"parcel-dispatch-service/internal/ports"
)

// TruckHandler reports the final statistics of the dispatch run.
type TruckHandler struct {
	Sim ports.DispatchQuery
}

func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	report := h.Sim.Report()
	if report == nil {
		writeError(w, r, http.StatusServiceUnavailable, "dispatch run has not finished")
		return
	}

	res := dto.RunResponse{
		RunID:        report.RunID,
		Trucks:       make([]dto.TruckResponse, 0, len(report.Trucks)),
		TotalMiles:   report.TotalMiles,
		Rounds:       report.Rounds,
		Delivered:    report.Delivered,
		PackagesLeft: report.PackagesLeft,
		Late:         append([]string{}, report.Late...),
	}
	for _, t := range report.Trucks {
		res.Trucks = append(res.Trucks, dto.TruckResponse{
			TruckID:    t.TruckID,
			FinishedAt: t.FinishedAt,
			Miles:      t.Miles,
			Delivered:  t.Delivered,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
