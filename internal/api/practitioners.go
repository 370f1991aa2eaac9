package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/practitioner"
)

type PractitionerService interface {
	Create(ctx context.Context, in practitioner.Input) (*practitioner.Practitioner, error)
	Update(ctx context.Context, id uuid.UUID, in practitioner.Input) (*practitioner.Practitioner, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*practitioner.Practitioner, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*practitioner.Practitioner, error)
	List(ctx context.Context, f practitioner.ListFilter) ([]practitioner.Practitioner, error)
	CountActive(ctx context.Context) (int64, error)
}

type practitionerHandler struct {
	svc PractitionerService
	loc *time.Location
	log *zap.Logger
}

func (h *practitionerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req PractitionerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "could not parse JSON")
		return
	}

	p, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPractitionerResponse(p, h.loc))
}

func (h *practitionerHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req PractitionerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "could not parse JSON")
		return
	}

	p, err := h.svc.Update(r.Context(), id, req.input())
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPractitionerResponse(p, h.loc))
}

func (h *practitionerHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Deactivate(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPractitionerResponse(p, h.loc))
}

func (h *practitionerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *practitionerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPractitionerResponse(p, h.loc))
}

func (h *practitionerHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := practitioner.ListFilter{
		Name:      q.Get("name"),
		Specialty: q.Get("specialty"),
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(w, "active must be true or false")
			return
		}
		f.Active = &active
	}

	ps, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	out := make([]PractitionerResponse, len(ps))
	for i := range ps {
		out[i] = toPractitionerResponse(&ps[i], h.loc)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *practitionerHandler) countActive(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.CountActive(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}
