package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

func listStaffHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, err := svc.ListStaff(r.Context(), callerFrom(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, staff)
	}
}

func createStaffHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateStaffRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		u, err := svc.CreateStaff(r.Context(), callerFrom(r), req.toInput())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

func updateStaffHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateStaffRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		u, err := svc.UpdateStaff(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req.toPatch())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func removeStaffHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RemoveStaff(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func dashboardMetricsHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.DashboardMetrics(r.Context(), callerFrom(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}
