package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HouseOfSounds/VitaeEMR/internal/config"
	"github.com/HouseOfSounds/VitaeEMR/internal/records"
	"github.com/HouseOfSounds/VitaeEMR/internal/session"
)

const testSecret = "test-identity-secret"

type testServer struct {
	t       *testing.T
	handler http.Handler
	svc     *records.Service
}

func newTestServer(t *testing.T, postgres, redis Pinger) *testServer {
	t.Helper()

	svc := records.NewService(
		records.NewMemoryRepositories(),
		config.Config{Location: time.UTC, MonthlyRevenue: 47250},
		records.WithClock(func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }),
	)

	handler := NewRouter(RouterConfig{
		Service:  svc,
		Sessions: session.NewMemoryStore(time.Hour),
		Verifier: session.NewVerifier(testSecret, ""),
		Cookies:  CookieSettings{Name: "emr_sid", TTL: time.Hour},
		Logger:   zerolog.Nop(),
		Postgres: postgres,
		Redis:    redis,
		Env:      "test",
		Version:  "dev",
	})

	return &testServer{t: t, handler: handler, svc: svc}
}

func (s *testServer) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(sub string, extra identity) *http.Cookie {
	s.t.Helper()

	claims := session.IdentityClaims{
		Email:            extra.Email,
		FirstName:        extra.FirstName,
		LastName:         extra.LastName,
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(s.t, err)

	rec := s.do(http.MethodPost, "/api/login", LoginRequest{Assertion: token}, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "emr_sid" {
			assert.True(s.t, c.HttpOnly)
			return c
		}
	}
	s.t.Fatal("login did not set a session cookie")
	return nil
}

type identity struct {
	Email, FirstName, LastName string
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, nil, nil)

	for _, path := range []string{"/api/patients", "/api/dashboard/metrics", "/api/auth/user"} {
		rec := s.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(http.MethodGet, "/api/patients", nil, &http.Cookie{Name: "emr_sid", Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsBadAssertion(t *testing.T) {
	s := newTestServer(t, nil, nil)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).
		SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	rec := s.do(http.MethodPost, "/api/login", LoginRequest{Assertion: token}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_assertion", decodeBody[ErrorResponse](t, rec).Error)

	rec = s.do(http.MethodPost, "/api/login", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginLogoutAndCurrentUser(t *testing.T) {
	s := newTestServer(t, nil, nil)
	cookie := s.login("doc-1", identity{Email: "grace@clinic.test", FirstName: "Grace", LastName: "Hopper"})

	rec := s.do(http.MethodGet, "/api/auth/user", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "doc-1", me["id"])
	assert.Equal(t, "doctor", me["role"])
	assert.Equal(t, "Grace", me["firstName"])

	rec = s.do(http.MethodPost, "/api/logout", nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/auth/user", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPatientLifecycle(t *testing.T) {
	s := newTestServer(t, nil, nil)
	cookie := s.login("doc-1", identity{})

	rec := s.do(http.MethodPost, "/api/patients", map[string]any{
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"email":       "ada@example.com",
		"dateOfBirth": "1815-12-10",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[records.Patient](t, rec)
	assert.Equal(t, records.PatientActive, created.Status)
	assert.Equal(t, "1815-12-10", *created.DateOfBirth)

	rec = s.do(http.MethodPut, "/api/patients/"+itoa(created.ID), map[string]any{"status": "follow-up"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[records.Patient](t, rec)
	assert.Equal(t, records.PatientFollowUp, updated.Status)
	assert.Equal(t, "Ada", updated.FirstName)

	rec = s.do(http.MethodGet, "/api/patients/search?q=LOVE", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]records.Patient](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/patients/search?q=a", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/patients/"+itoa(created.ID), nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/patients/"+itoa(created.ID), nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "patient_not_found", decodeBody[ErrorResponse](t, rec).Error)
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, nil, nil)
	cookie := s.login("doc-1", identity{})

	rec := s.do(http.MethodPost, "/api/patients", map[string]any{
		"lastName": "Lovelace",
		"email":    "not-an-email",
		"status":   "deceased",
	}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", body.Error)
	assert.ElementsMatch(t, []FieldError{
		{Field: "firstName", Rule: "required"},
		{Field: "email", Rule: "email"},
		{Field: "status", Rule: "oneof=active inactive follow-up"},
	}, body.Fields)

	rec = s.do(http.MethodPost, "/api/appointments", map[string]any{
		"patientId": 1, "date": "06/01/2024", "time": "10:00", "type": "checkup",
	}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []FieldError{{Field: "date", Rule: "datetime=2006-01-02"}}, decodeBody[ErrorResponse](t, rec).Fields)

	for _, duration := range []string{"-30", "7.5", "half an hour"} {
		rec = s.do(http.MethodPost, "/api/appointments", map[string]any{
			"patientId": 1, "date": "2024-06-01", "time": "10:00", "type": "checkup", "duration": duration,
		}, cookie)
		require.Equal(t, http.StatusBadRequest, rec.Code, duration)
		assert.Equal(t, []FieldError{{Field: "duration", Rule: "number"}}, decodeBody[ErrorResponse](t, rec).Fields, duration)
	}

	rec = s.do(http.MethodGet, "/api/patients/abc", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/appointments/date/tomorrow", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppointmentsAndDashboard(t *testing.T) {
	s := newTestServer(t, nil, nil)
	cookie := s.login("doc-1", identity{FirstName: "Grace"})

	rec := s.do(http.MethodPost, "/api/patients", map[string]any{"firstName": "Ada", "lastName": "Lovelace"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	patient := decodeBody[records.Patient](t, rec)

	rec = s.do(http.MethodPost, "/api/appointments", map[string]any{
		"patientId": patient.ID, "date": "2024-06-01", "time": "10:00", "type": "consultation",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := decodeBody[records.Appointment](t, rec)
	assert.Equal(t, "doc-1", appt.DoctorID)
	assert.Equal(t, "30", appt.Duration)

	rec = s.do(http.MethodPost, "/api/appointments", map[string]any{
		"patientId": 999, "date": "2024-06-01", "time": "11:00", "type": "consultation",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_reference", decodeBody[ErrorResponse](t, rec).Error)

	rec = s.do(http.MethodGet, "/api/appointments/today", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	today := decodeBody[[]map[string]any](t, rec)
	require.Len(t, today, 1)
	assert.Equal(t, "Ada", today[0]["patient"].(map[string]any)["firstName"])
	assert.Equal(t, "Grace", today[0]["doctor"].(map[string]any)["firstName"])

	rec = s.do(http.MethodGet, "/api/appointments/doctor/doc-1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = s.do(http.MethodPost, "/api/clinical-notes", map[string]any{
		"patientId": patient.ID, "appointmentId": appt.ID,
		"title": "Bloods", "content": "awaiting lab", "type": "pending-report",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/clinical-notes/patient/"+itoa(patient.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decodeBody[[]map[string]any](t, rec)
	require.Len(t, notes, 1)
	assert.NotNil(t, notes[0]["appointment"])

	rec = s.do(http.MethodGet, "/api/dashboard/metrics", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, records.DashboardMetrics{
		TodayAppointments: 1, ActivePatients: 1, PendingReports: 1, MonthlyRevenue: 47250,
	}, decodeBody[records.DashboardMetrics](t, rec))

	rec = s.do(http.MethodDelete, "/api/appointments/"+itoa(appt.ID), nil, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "has_dependents", decodeBody[ErrorResponse](t, rec).Error)
}

func TestPrescriptionRoutes(t *testing.T) {
	s := newTestServer(t, nil, nil)
	cookie := s.login("doc-1", identity{})

	rec := s.do(http.MethodPost, "/api/patients", map[string]any{"firstName": "Ada", "lastName": "Lovelace"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	patient := decodeBody[records.Patient](t, rec)

	rec = s.do(http.MethodPost, "/api/prescriptions", map[string]any{
		"patientId": patient.ID, "medicationName": "Amoxicillin", "dosage": "500mg",
		"frequency": "3x daily", "duration": "7 days", "startDate": "2024-06-01",
		"refillsRemaining": -1,
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/prescriptions", map[string]any{
		"patientId": patient.ID, "medicationName": "Amoxicillin", "dosage": "500mg",
		"frequency": "3x daily", "duration": "7 days", "startDate": "2024-06-01",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rx := decodeBody[records.Prescription](t, rec)
	assert.Equal(t, 0, rx.RefillsRemaining)

	rec = s.do(http.MethodPut, "/api/prescriptions/"+itoa(rx.ID), map[string]any{"status": "completed"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, records.PrescriptionCompleted, decodeBody[records.Prescription](t, rec).Status)

	rec = s.do(http.MethodGet, "/api/prescriptions/patient/"+itoa(patient.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	_, hasAppointment := list[0]["appointment"]
	assert.False(t, hasAppointment)

	rec = s.do(http.MethodDelete, "/api/prescriptions/"+itoa(rx.ID), nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/api/prescriptions/"+itoa(rx.ID), nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaffRoutesAreAdminOnly(t *testing.T) {
	s := newTestServer(t, nil, nil)
	ctx := context.Background()

	doctor := s.login("doc-1", identity{})
	rec := s.do(http.MethodGet, "/api/staff", nil, doctor)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := s.svc.UpsertUser(ctx, records.UserProfile{ID: "admin-1", Role: ptrTo(records.RoleAdmin)})
	require.NoError(t, err)
	admin := s.login("admin-1", identity{})

	rec = s.do(http.MethodPost, "/api/staff", map[string]any{
		"firstName": "Florence", "lastName": "Nightingale", "email": "florence@clinic.test", "role": "nurse",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	nurse := decodeBody[records.User](t, rec)
	assert.True(t, strings.HasPrefix(nurse.ID, "staff-"))

	rec = s.do(http.MethodPost, "/api/staff", map[string]any{
		"firstName": "Again", "lastName": "Nightingale", "email": "florence@clinic.test", "role": "nurse",
	}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, "/api/staff/doc-1", map[string]any{"role": "admin"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/staff", nil, doctor)
	assert.Equal(t, http.StatusOK, rec.Code, "promotion applies without a new login")

	rec = s.do(http.MethodDelete, "/api/staff/"+nurse.ID, nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }
	up := func(context.Context) error { return nil }

	s := newTestServer(t, up, nil)
	rec := s.do(http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decodeBody[ReadinessResponse](t, rec)
	assert.Equal(t, "ok", ready.Status)
	assert.Equal(t, map[string]string{"postgres": "ok", "redis": "disabled"}, ready.Dependencies)

	s = newTestServer(t, up, down)
	rec = s.do(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", decodeBody[ReadinessResponse](t, rec).Status)

	s = newTestServer(t, down, up)
	rec = s.do(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.do(http.MethodGet, "/health/live", nil, nil)
	s.do(http.MethodGet, "/api/patients/7", nil, nil)

	rec := s.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `emr_http_requests_total{method="GET",route="/health/live",status="200"} 1`)
	assert.Contains(t, body, "emr_http_request_duration_seconds")
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/health/live", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func ptrTo[T any](v T) *T {
	return &v
}

func TestLoginClaimsStaffCreatedByAdmin(t *testing.T) {
	s := newTestServer(t, nil, nil)

	_, err := s.svc.UpsertUser(context.Background(), records.UserProfile{ID: "admin-1", Role: ptrTo(records.RoleAdmin)})
	require.NoError(t, err)
	admin := s.login("admin-1", identity{})

	rec := s.do(http.MethodPost, "/api/staff", map[string]any{
		"firstName": "Florence", "lastName": "Nightingale", "email": "florence@clinic.test", "role": "nurse",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[records.User](t, rec)

	nurse := s.login("idp-florence", identity{Email: "florence@clinic.test"})

	rec = s.do(http.MethodGet, "/api/auth/user", nil, nurse)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "idp-florence", me["id"])
	assert.Equal(t, "nurse", me["role"])
	assert.Equal(t, "Florence", me["firstName"])

	rec = s.do(http.MethodGet, "/api/staff", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var ids []string
	for _, u := range decodeBody[[]records.User](t, rec) {
		ids = append(ids, u.ID)
	}
	assert.Contains(t, ids, "idp-florence")
	assert.NotContains(t, ids, created.ID)
}
