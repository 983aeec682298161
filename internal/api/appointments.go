package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

func listAppointmentsHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.ListAppointments(r.Context(), callerFrom(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func todaysAppointmentsHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.ListTodaysAppointments(r.Context(), callerFrom(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func appointmentsByDateHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := chi.URLParam(r, "date")
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			handleError(w, r, invalid("date must be YYYY-MM-DD, got %q", date))
			return
		}

		appts, err := svc.ListAppointmentsByDate(r.Context(), callerFrom(r), date)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func appointmentsByDoctorHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.ListAppointmentsByDoctor(r.Context(), callerFrom(r), chi.URLParam(r, "doctorId"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func getAppointmentHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		appt, err := svc.GetAppointment(r.Context(), callerFrom(r), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func createAppointmentHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), callerFrom(r), req.toInput())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, appt)
	}
}

func updateAppointmentHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		var req UpdateAppointmentRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		appt, err := svc.UpdateAppointment(r.Context(), callerFrom(r), id, req.toPatch())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func deleteAppointmentHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			handleError(w, r, err)
			return
		}

		if err := svc.DeleteAppointment(r.Context(), callerFrom(r), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
