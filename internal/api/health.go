package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks one backing service. A nil Pinger means the service is not
// configured for this deployment.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	postgres Pinger
	redis    Pinger
	env      string
	version  string
}

func NewHealthHandler(postgres, redis Pinger, env, version string) *HealthHandler {
	return &HealthHandler{
		postgres: postgres,
		redis:    redis,
		env:      env,
		version:  version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

// Readiness fails when Postgres is down and reports degraded when only
// Redis is down.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	if probe(ctx, h.postgres, "postgres", deps) {
		status = "error"
	}
	if probe(ctx, h.redis, "redis", deps) && status == "ok" {
		status = "degraded"
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	})
}

// probe records the dependency state and reports whether it is down.
func probe(ctx context.Context, ping Pinger, name string, deps map[string]string) bool {
	if ping == nil {
		deps[name] = "disabled"
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := ping(ctx); err != nil {
		deps[name] = "down"
		return true
	}
	deps[name] = "ok"
	return false
}
