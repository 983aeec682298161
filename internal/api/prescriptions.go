package api

import (
	"net/http"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

func listPrescriptionsHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rxs, err := svc.ListPrescriptions(r.Context(), callerFrom(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rxs)
	}
}

func prescriptionsByPatientHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := int64Param(r, "patientId")
		if err != nil {
			handleError(w, r, err)
			return
		}

		rxs, err := svc.ListPrescriptionsByPatient(r.Context(), callerFrom(r), patientID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rxs)
	}
}

func getPrescriptionHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		rx, err := svc.GetPrescription(r.Context(), callerFrom(r), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rx)
	}
}

func createPrescriptionHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePrescriptionRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		rx, err := svc.CreatePrescription(r.Context(), callerFrom(r), req.toInput())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, rx)
	}
}

func updatePrescriptionHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		var req UpdatePrescriptionRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		rx, err := svc.UpdatePrescription(r.Context(), callerFrom(r), id, req.toPatch())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rx)
	}
}

func deletePrescriptionHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		if err := svc.DeletePrescription(r.Context(), callerFrom(r), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
