package api

import (
	"net/http"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

func listClinicalNotesHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes, err := svc.ListClinicalNotes(r.Context(), callerFrom(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

func clinicalNotesByPatientHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := int64Param(r, "patientId")
		if err != nil {
			handleError(w, r, err)
			return
		}

		notes, err := svc.ListClinicalNotesByPatient(r.Context(), callerFrom(r), patientID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

func getClinicalNoteHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		note, err := svc.GetClinicalNote(r.Context(), callerFrom(r), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

func createClinicalNoteHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateClinicalNoteRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		note, err := svc.CreateClinicalNote(r.Context(), callerFrom(r), req.toInput())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, note)
	}
}

func updateClinicalNoteHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		var req UpdateClinicalNoteRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		note, err := svc.UpdateClinicalNote(r.Context(), callerFrom(r), id, req.toPatch())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

func deleteClinicalNoteHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		if err := svc.DeleteClinicalNote(r.Context(), callerFrom(r), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
