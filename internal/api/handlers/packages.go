package handlers

import (
	"errors"
	"log"
	"net/http"
	"parcel-dispatch-service/internal/api/dto"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"time"
)

// PackageHandler exposes read-only package state, final or as of a time
// of day on the service date.
type PackageHandler struct {
	Sim ports.DispatchQuery
	Day time.Time
}

// endOfDay is late enough that every recorded event has happened.
func (h *PackageHandler) endOfDay() time.Time {
	return h.Day.Add(24*time.Hour - time.Nanosecond)
}

// List returns every package, as of ?at= when given.
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	at, ok, err := parseAt(r, h.Day)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "at must look like 10:30 AM")
		return
	}
	if !ok {
		at = h.endOfDay()
	}

	writeJSON(w, r, http.StatusOK, h.list(at))
}

// Snapshot returns every package as of the required ?at= time.
func (h *PackageHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	at, ok, err := parseAt(r, h.Day)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "at is required")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "at must look like 10:30 AM")
		return
	}

	writeJSON(w, r, http.StatusOK, h.list(at))
}

// Get returns one package by the {id} path value.
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	at, ok, err := parseAt(r, h.Day)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "at must look like 10:30 AM")
		return
	}
	if !ok {
		at = h.endOfDay()
	}

	snap, err := h.Sim.Package(r.PathValue("id"), at)
	if errors.Is(err, domain.ErrPackageNotFound) {
		writeError(w, r, http.StatusNotFound, "package not found")
		return
	}
	if err != nil {
		log.Printf("get package failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toPackageResponse(snap))
}

func (h *PackageHandler) list(at time.Time) dto.ListPackagesResponse {
	snaps := h.Sim.Packages(at)
	res := dto.ListPackagesResponse{
		At:       at,
		Packages: make([]dto.PackageResponse, 0, len(snaps)),
	}
	for _, s := range snaps {
		res.Packages = append(res.Packages, toPackageResponse(s))
	}
	return res
}

func toPackageResponse(s domain.PackageSnapshot) dto.PackageResponse {
	res := dto.PackageResponse{
		PackageID:     s.PackageID,
		Address:       s.Address,
		Deadline:      s.Deadline,
		Tier:          s.Tier.String(),
		WeightKg:      s.WeightKg,
		RequiredTruck: s.RequiredTruck,
		Status:        s.Status.String(),
		ReleaseAt:     timePtr(s.ReleaseAt),
		AtHubAt:       timePtr(s.AtHubAt),
		EnRouteAt:     timePtr(s.EnRouteAt),
		DeliveredAt:   timePtr(s.DeliveredAt),
		TruckID:       s.TruckID,
	}
	if s.Status == domain.StatusDelivered {
		onTime := s.OnTime
		res.OnTime = &onTime
	}
	return res
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
