package api

import (
	"context"
	"net/http"
	"time"
)

const checkTimeout = time.Second

// DependencyCheck is one entry in the readiness report. A failing critical
// check turns readiness into 503; any other failure only degrades it.
type DependencyCheck struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

type HealthHandler struct {
	checks  []DependencyCheck
	env     string
	version string
}

func NewHealthHandler(env, version string, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{checks: checks, env: env, version: version}
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
	writeJSON(w, http.StatusOK, LivenessResponse{Status: "ok", Version: h.version, Env: h.env})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{
		Status:       "ok",
		Version:      h.version,
		Env:          h.env,
		Dependencies: make(map[string]string, len(h.checks)),
	}

	for _, c := range h.checks {
		if err := ping(r.Context(), c); err != nil {
			resp.Dependencies[c.Name] = "down"
			switch {
			case c.Critical:
				resp.Status = "error"
			case resp.Status == "ok":
				resp.Status = "degraded"
			}
			continue
		}
		resp.Dependencies[c.Name] = "ok"
	}

	code := http.StatusOK
	if resp.Status == "error" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func ping(ctx context.Context, c DependencyCheck) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return c.Ping(ctx)
}
