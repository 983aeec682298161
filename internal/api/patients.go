package api

import (
	"net/http"
	"strings"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

const minSearchLength = 2

func listPatientsHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patients, err := svc.ListPatients(r.Context(), callerFrom(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, patients)
	}
}

func searchPatientsHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if len([]rune(q)) < minSearchLength {
			handleError(w, r, invalid("q must be at least %d characters", minSearchLength))
			return
		}

		patients, err := svc.SearchPatients(r.Context(), callerFrom(r), q)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, patients)
	}
}

func getPatientHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		p, err := svc.GetPatient(r.Context(), callerFrom(r), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func createPatientHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		p, err := svc.CreatePatient(r.Context(), callerFrom(r), req.toInput())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func updatePatientHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		var req UpdatePatientRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		p, err := svc.UpdatePatient(r.Context(), callerFrom(r), id, req.toPatch())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func deletePatientHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		if err := svc.DeletePatient(r.Context(), callerFrom(r), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
