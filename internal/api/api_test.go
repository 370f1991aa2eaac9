package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hackgods/vet-appointment-scheduling/internal/appointment"
	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
	"github.com/hackgods/vet-appointment-scheduling/internal/auth"
	"github.com/hackgods/vet-appointment-scheduling/internal/metrics"
	"github.com/hackgods/vet-appointment-scheduling/internal/practitioner"
)

var clinic = time.FixedZone("BRT", -3*60*60)

type stubAppointments struct {
	err      error
	got      appointment.ScheduleCommand
	filter   appointment.Filter
	avail    *appointment.Availability
	statusTo appointment.Status
}

func (s *stubAppointments) appt(cmd appointment.ScheduleCommand) *appointment.Appointment {
	return &appointment.Appointment{
		ID:             uuid.New(),
		SubjectID:      cmd.SubjectID,
		PractitionerID: cmd.PractitionerID,
		ScheduledAt:    cmd.ScheduledAt,
		Type:           cmd.Type,
		Status:         appointment.StatusScheduled,
	}
}

func (s *stubAppointments) Schedule(_ context.Context, cmd appointment.ScheduleCommand) (*appointment.Appointment, error) {
	s.got = cmd
	if s.err != nil {
		return nil, s.err
	}
	return s.appt(cmd), nil
}

func (s *stubAppointments) Update(_ context.Context, id uuid.UUID, cmd appointment.ScheduleCommand) (*appointment.Appointment, error) {
	s.got = cmd
	if s.err != nil {
		return nil, s.err
	}
	a := s.appt(cmd)
	a.ID = id
	return a, nil
}

func (s *stubAppointments) Cancel(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &appointment.Appointment{ID: id, Status: appointment.StatusCancelled}, nil
}

func (s *stubAppointments) SetStatus(_ context.Context, id uuid.UUID, st appointment.Status) (*appointment.Appointment, error) {
	s.statusTo = st
	if s.err != nil {
		return nil, s.err
	}
	return &appointment.Appointment{ID: id, Status: st}, nil
}

func (s *stubAppointments) Availability(context.Context, uuid.UUID, time.Time) (*appointment.Availability, error) {
	return s.avail, s.err
}

func (s *stubAppointments) IsAvailable(context.Context, uuid.UUID, time.Time) (bool, error) {
	return s.err == nil, nil
}

func (s *stubAppointments) Get(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &appointment.Appointment{ID: id}, nil
}

func (s *stubAppointments) List(_ context.Context, f appointment.Filter) ([]appointment.Appointment, error) {
	s.filter = f
	return nil, s.err
}

func (s *stubAppointments) Upcoming(context.Context) ([]appointment.Appointment, error) {
	return []appointment.Appointment{}, s.err
}

func (s *stubAppointments) Today(context.Context) ([]appointment.Appointment, error) {
	return []appointment.Appointment{}, s.err
}

type stubPractitioners struct {
	err error
}

func (s *stubPractitioners) Create(_ context.Context, in practitioner.Input) (*practitioner.Practitioner, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &practitioner.Practitioner{ID: uuid.New(), Name: in.Name, NationalID: in.NationalID, Active: true}, nil
}

func (s *stubPractitioners) Update(_ context.Context, id uuid.UUID, in practitioner.Input) (*practitioner.Practitioner, error) {
	return &practitioner.Practitioner{ID: id, Name: in.Name}, s.err
}

func (s *stubPractitioners) Deactivate(_ context.Context, id uuid.UUID) (*practitioner.Practitioner, error) {
	return &practitioner.Practitioner{ID: id}, s.err
}

func (s *stubPractitioners) Delete(context.Context, uuid.UUID) error { return s.err }

func (s *stubPractitioners) Get(_ context.Context, id uuid.UUID) (*practitioner.Practitioner, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &practitioner.Practitioner{ID: id}, nil
}

func (s *stubPractitioners) List(context.Context, practitioner.ListFilter) ([]practitioner.Practitioner, error) {
	return nil, s.err
}

func (s *stubPractitioners) CountActive(context.Context) (int64, error) { return 3, s.err }

type stubValidator struct{ err error }

func (v stubValidator) Validate(_ context.Context, token string) (auth.Identity, error) {
	if v.err != nil {
		return auth.Identity{}, v.err
	}
	if token == "" {
		return auth.Identity{}, auth.ErrInvalidCredential
	}
	return auth.Identity{Subject: "tester"}, nil
}

func newTestRouter(appts *stubAppointments, vets *stubPractitioners, v auth.Validator) http.Handler {
	return NewRouter(RouterConfig{
		Appointments:  appts,
		Practitioners: vets,
		Validator:     v,
		Location:      clinic,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestCreateAppointment(t *testing.T) {
	appts := &stubAppointments{}
	h := newTestRouter(appts, &stubPractitioners{}, nil)

	body := `{"subject_id":"` + uuid.NewString() + `","practitioner_id":"` + uuid.NewString() +
		`","scheduled_at":"2026-10-20T10:30:00","type":"vaccination"}`
	rec := do(t, h, http.MethodPost, "/api/v1/appointments", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	want := time.Date(2026, 10, 20, 10, 30, 0, 0, clinic)
	if !appts.got.ScheduledAt.Equal(want) {
		t.Errorf("expected %s, got %s", want, appts.got.ScheduledAt)
	}

	var resp AppointmentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ScheduledAt != "2026-10-20T10:30:00" {
		t.Errorf("expected local wall time, got %s", resp.ScheduledAt)
	}
	if resp.Type != "vaccination" || resp.Status != "scheduled" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCreateAppointment_RFC3339ConvertedToClinicZone(t *testing.T) {
	appts := &stubAppointments{}
	h := newTestRouter(appts, &stubPractitioners{}, nil)

	body := `{"subject_id":"` + uuid.NewString() + `","practitioner_id":"` + uuid.NewString() +
		`","scheduled_at":"2026-10-20T13:30:00Z","type":"exam"}`
	rec := do(t, h, http.MethodPost, "/api/v1/appointments", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if appts.got.ScheduledAt.Hour() != 10 || appts.got.ScheduledAt.Location() != clinic {
		t.Errorf("expected 10:30 clinic time, got %s", appts.got.ScheduledAt)
	}
}

func TestCreateAppointment_BadInput(t *testing.T) {
	h := newTestRouter(&stubAppointments{}, &stubPractitioners{}, nil)

	cases := map[string]string{
		"malformed json":   `{`,
		"bad subject":      `{"subject_id":"x","practitioner_id":"` + uuid.NewString() + `","scheduled_at":"2026-10-20T10:30:00"}`,
		"bad timestamp":    `{"subject_id":"` + uuid.NewString() + `","practitioner_id":"` + uuid.NewString() + `","scheduled_at":"tomorrow"}`,
		"bad practitioner": `{"subject_id":"` + uuid.NewString() + `","practitioner_id":"","scheduled_at":"2026-10-20T10:30:00"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/appointments", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if got := decodeError(t, rec).Error; got != "VALIDATION" {
				t.Errorf("expected VALIDATION, got %s", got)
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{appointment.ErrSlotConflict, http.StatusConflict, "CONFLICT"},
		{appointment.ErrOutOfHours, http.StatusUnprocessableEntity, "OUT_OF_HOURS"},
		{appointment.ErrMisalignedSlot, http.StatusUnprocessableEntity, "MISALIGNED_SLOT"},
		{appointment.ErrPastTimestamp, http.StatusUnprocessableEntity, "PAST_TIMESTAMP"},
		{appointment.ErrPractitionerNotFound, http.StatusNotFound, "NOT_FOUND"},
		{appointment.ErrPractitionerInactive, http.StatusUnprocessableEntity, "INACTIVE"},
		{appointment.ErrSchedulingUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := newTestRouter(&stubAppointments{err: tc.err}, &stubPractitioners{}, nil)
			body := `{"subject_id":"` + uuid.NewString() + `","practitioner_id":"` + uuid.NewString() +
				`","scheduled_at":"2026-10-20T10:30:00","type":"exam"}`

			rec := do(t, h, http.MethodPost, "/api/v1/appointments", body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if got := decodeError(t, rec).Error; got != tc.code {
				t.Errorf("expected %s, got %s", tc.code, got)
			}
		})
	}
}

func TestStatusFor_EveryKindMapped(t *testing.T) {
	for _, k := range apperr.Kinds() {
		status := statusFor(k)
		if k != apperr.Internal && status == http.StatusInternalServerError {
			t.Errorf("%s falls through to 500", k)
		}
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	h := newTestRouter(&stubAppointments{err: errors.New("pq: password authentication failed")}, &stubPractitioners{}, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("internal error text leaked to client")
	}
}

func TestCancelAndStatus(t *testing.T) {
	appts := &stubAppointments{}
	h := newTestRouter(appts, &stubPractitioners{}, nil)
	id := uuid.NewString()

	rec := do(t, h, http.MethodPost, "/api/v1/appointments/"+id+"/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPatch, "/api/v1/appointments/"+id+"/status", `{"status":"completed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if appts.statusTo != appointment.StatusCompleted {
		t.Errorf("expected completed, got %s", appts.statusTo)
	}

	appts.err = appointment.ErrUseCancel
	rec = do(t, h, http.MethodPatch, "/api/v1/appointments/"+id+"/status", `{"status":"cancelled"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "USE_CANCEL_ENDPOINT" {
		t.Errorf("expected USE_CANCEL_ENDPOINT, got %s", got)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/appointments/not-a-uuid/cancel", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestListAppointments_Filters(t *testing.T) {
	appts := &stubAppointments{}
	h := newTestRouter(appts, &stubPractitioners{}, nil)
	vet := uuid.New()

	rec := do(t, h, http.MethodGet, "/api/v1/appointments?status=scheduled&type=surgery&practitioner_id="+vet.String()+"&from=2026-10-20T00:00:00", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	f := appts.filter
	if f.Status == nil || *f.Status != appointment.StatusScheduled {
		t.Errorf("status filter not applied: %+v", f)
	}
	if f.Type == nil || *f.Type != appointment.TypeSurgery {
		t.Errorf("type filter not applied: %+v", f)
	}
	if f.PractitionerID == nil || *f.PractitionerID != vet {
		t.Errorf("practitioner filter not applied: %+v", f)
	}
	if f.From == nil || f.To != nil {
		t.Errorf("unexpected range %+v", f)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/v1/appointments?status=pending", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestAvailability(t *testing.T) {
	vet := uuid.New()
	appts := &stubAppointments{avail: &appointment.Availability{
		PractitionerID:   vet,
		PractitionerName: "Dra. Ana Souza",
		Date:             time.Date(2026, 10, 20, 0, 0, 0, 0, clinic),
		Available:        []time.Time{time.Date(2026, 10, 20, 8, 0, 0, 0, clinic)},
		Occupied:         []time.Time{time.Date(2026, 10, 20, 8, 30, 0, 0, clinic)},
	}}
	h := newTestRouter(appts, &stubPractitioners{}, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/practitioners/"+vet.String()+"/availability?date=2026-10-20", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AvailabilityResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Date != "2026-10-20" {
		t.Errorf("unexpected date %s", resp.Date)
	}
	if len(resp.Available) != 1 || resp.Available[0] != "2026-10-20T08:00:00" {
		t.Errorf("unexpected available %v", resp.Available)
	}
	if len(resp.Occupied) != 1 || resp.Occupied[0] != "2026-10-20T08:30:00" {
		t.Errorf("unexpected occupied %v", resp.Occupied)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/practitioners/"+vet.String()+"/availability?date=20/10/2026", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestIsAvailable(t *testing.T) {
	h := newTestRouter(&stubAppointments{}, &stubPractitioners{}, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/practitioners/"+uuid.NewString()+"/available?at=2026-10-20T09:00:00", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp IsAvailableResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Available || resp.At != "2026-10-20T09:00:00" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestPractitionerEndpoints(t *testing.T) {
	vets := &stubPractitioners{}
	h := newTestRouter(&stubAppointments{}, vets, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/practitioners", `{"name":"Ana","sex":"female","national_id":"1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/practitioners/count-active", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":3`) {
		t.Fatalf("unexpected count response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/practitioners/"+uuid.NewString(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/practitioners?active=maybe", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad active flag, got %d", rec.Code)
	}

	vets.err = practitioner.ErrDuplicateNationalID
	rec = do(t, h, http.MethodPost, "/api/v1/practitioners", `{"name":"Ana","national_id":"1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "DUPLICATE_IDENTIFIER" {
		t.Errorf("expected DUPLICATE_IDENTIFIER, got %s", got)
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestRouter(&stubAppointments{}, &stubPractitioners{}, stubValidator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/today", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/appointments/today", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	down := newTestRouter(&stubAppointments{}, &stubPractitioners{},
		stubValidator{err: apperr.Wrap(apperr.ServiceUnavailable, "identity service", errors.New("refused"))})
	rec = do(t, down, http.MethodGet, "/api/v1/appointments/today", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when identity is down, got %d", rec.Code)
	}
}

func pingErr(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestHealth(t *testing.T) {
	ok := NewRouter(RouterConfig{Health: NewHealthHandler("test", "0.1.0",
		DependencyCheck{Name: "postgres", Critical: true, Ping: pingErr(nil)},
	)})

	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp ReadinessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Dependencies["postgres"] != "ok" {
		t.Errorf("unexpected readiness %+v", resp)
	}

	down := NewRouter(RouterConfig{Health: NewHealthHandler("test", "0.1.0",
		DependencyCheck{Name: "postgres", Critical: true, Ping: pingErr(errors.New("down"))},
	)})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected liveness to stay 200, got %d", rec.Code)
	}
}

func TestHealth_NonCriticalDegrades(t *testing.T) {
	h := NewRouter(RouterConfig{Health: NewHealthHandler("test", "0.1.0",
		DependencyCheck{Name: "postgres", Critical: true, Ping: pingErr(nil)},
		DependencyCheck{Name: "redis", Ping: pingErr(errors.New("refused"))},
	)})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp ReadinessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["redis"] != "down" {
		t.Errorf("unexpected readiness %+v", resp)
	}
}

func TestMetricsRecordRoutePattern(t *testing.T) {
	c := metrics.NewCollector("vet")
	h := NewRouter(RouterConfig{
		Appointments:  &stubAppointments{},
		Practitioners: &stubPractitioners{},
		Metrics:       c,
		Location:      clinic,
	})

	do(t, h, http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `route="/api/v1/appointments/{id}"`) {
		t.Errorf("expected route pattern label in metrics output")
	}
}

func TestRequestID(t *testing.T) {
	h := newTestRouter(&stubAppointments{}, &stubPractitioners{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/today", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("expected request id to be echoed, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestLoggingMiddlewareRecordsSubject(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewRouter(RouterConfig{
		Appointments:  &stubAppointments{},
		Practitioners: &stubPractitioners{},
		Validator:     stubValidator{},
		Location:      clinic,
		Logger:        zap.New(core),
	})

	do(t, h, http.MethodGet, "/api/v1/appointments/today", "")

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["subject"]; got != "tester" {
		t.Errorf("expected subject tester, got %v", got)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	entries = logs.FilterMessage("http request").All()
	if _, ok := entries[len(entries)-1].ContextMap()["subject"]; ok {
		t.Error("expected no subject on an unauthenticated route")
	}
}

func TestInternalErrorLogsSubject(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewRouter(RouterConfig{
		Appointments:  &stubAppointments{err: errors.New("db exploded")},
		Practitioners: &stubPractitioners{},
		Validator:     stubValidator{},
		Location:      clinic,
		Logger:        zap.New(core),
	})

	rec := do(t, h, http.MethodGet, "/api/v1/appointments/today", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one failure log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["subject"]; got != "tester" {
		t.Errorf("expected subject tester, got %v", got)
	}
}
