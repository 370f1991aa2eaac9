package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/appointment"
)

type AppointmentService interface {
	Schedule(ctx context.Context, cmd appointment.ScheduleCommand) (*appointment.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, cmd appointment.ScheduleCommand) (*appointment.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status appointment.Status) (*appointment.Appointment, error)
	Availability(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*appointment.Availability, error)
	IsAvailable(ctx context.Context, practitionerID uuid.UUID, at time.Time) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	List(ctx context.Context, f appointment.Filter) ([]appointment.Appointment, error)
	Upcoming(ctx context.Context) ([]appointment.Appointment, error)
	Today(ctx context.Context) ([]appointment.Appointment, error)
}

type appointmentHandler struct {
	svc AppointmentService
	loc *time.Location
	log *zap.Logger
}

func (h *appointmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "could not parse JSON")
		return
	}
	cmd, err := req.command(h.loc)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	appt, err := h.svc.Schedule(r.Context(), cmd)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt, h.loc))
}

func (h *appointmentHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "could not parse JSON")
		return
	}
	cmd, err := req.command(h.loc)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	appt, err := h.svc.Update(r.Context(), id, cmd)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appt, h.loc))
}

func (h *appointmentHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	appt, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appt, h.loc))
}

func (h *appointmentHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "could not parse JSON")
		return
	}

	appt, err := h.svc.SetStatus(r.Context(), id, appointment.Status(req.Status))
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appt, h.loc))
}

func (h *appointmentHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	appt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appt, h.loc))
}

func (h *appointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	appts, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponses(appts, h.loc))
}

func (h *appointmentHandler) upcoming(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.Upcoming(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponses(appts, h.loc))
}

func (h *appointmentHandler) today(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.Today(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponses(appts, h.loc))
}

func (h *appointmentHandler) availability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"), h.loc)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	av, err := h.svc.Availability(r.Context(), id, date)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		PractitionerID:   av.PractitionerID,
		PractitionerName: av.PractitionerName,
		Date:             av.Date.Format(dateLayout),
		Available:        formatTimes(av.Available, h.loc),
		Occupied:         formatTimes(av.Occupied, h.loc),
	})
}

func (h *appointmentHandler) isAvailable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	at, err := parseTimestamp(r.URL.Query().Get("at"), h.loc)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	free, err := h.svc.IsAvailable(r.Context(), id, at)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, IsAvailableResponse{
		PractitionerID: id,
		At:             formatTime(at, h.loc),
		Available:      free,
	})
}

func (h *appointmentHandler) filterFromQuery(r *http.Request) (appointment.Filter, error) {
	q := r.URL.Query()
	var f appointment.Filter

	if v := q.Get("status"); v != "" {
		st := appointment.Status(v)
		if !st.IsValid() {
			return f, appointment.ErrInvalidStatus
		}
		f.Status = &st
	}
	if v := q.Get("type"); v != "" {
		t := appointment.Type(v)
		if !t.IsValid() {
			return f, appointment.ErrInvalidType
		}
		f.Type = &t
	}
	if v := q.Get("practitioner_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, errInvalidQueryID("practitioner_id")
		}
		f.PractitionerID = &id
	}
	if v := q.Get("subject_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, errInvalidQueryID("subject_id")
		}
		f.SubjectID = &id
	}
	if v := q.Get("from"); v != "" {
		t, err := parseTimestamp(v, h.loc)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseTimestamp(v, h.loc)
		if err != nil {
			return f, err
		}
		f.To = &t
	}
	return f, nil
}

type errInvalidQueryID string

func (e errInvalidQueryID) Error() string { return string(e) + " must be a valid UUID" }

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
