package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/vet-appointment-scheduling/internal/appointment"
	"github.com/hackgods/vet-appointment-scheduling/internal/practitioner"
)

// Timestamps travel as clinic-local wall time without an offset.
const (
	timestampLayout = "2006-01-02T15:04:05"
	dateLayout      = time.DateOnly
)

type AppointmentRequest struct {
	SubjectID      string `json:"subject_id"`
	PractitionerID string `json:"practitioner_id"`
	ScheduledAt    string `json:"scheduled_at"`
	Type           string `json:"type"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	SubjectID      uuid.UUID `json:"subject_id"`
	PractitionerID uuid.UUID `json:"practitioner_id"`
	ScheduledAt    string    `json:"scheduled_at"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	CreatedAt      string    `json:"created_at"`
	UpdatedAt      string    `json:"updated_at"`
}

type AvailabilityResponse struct {
	PractitionerID   uuid.UUID `json:"practitioner_id"`
	PractitionerName string    `json:"practitioner_name"`
	Date             string    `json:"date"`
	Available        []string  `json:"available"`
	Occupied         []string  `json:"occupied"`
}

type IsAvailableResponse struct {
	PractitionerID uuid.UUID `json:"practitioner_id"`
	At             string    `json:"at"`
	Available      bool      `json:"available"`
}

type PractitionerRequest struct {
	Name       string  `json:"name"`
	Sex        string  `json:"sex"`
	NationalID string  `json:"national_id"`
	Specialty  *string `json:"specialty"`
	Active     *bool   `json:"active"`
}

type PractitionerResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Sex        string    `json:"sex"`
	NationalID string    `json:"national_id"`
	Specialty  *string   `json:"specialty,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// parseTimestamp accepts clinic-local wall time, or RFC 3339 which is then
// converted into the clinic zone.
func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(timestampLayout, raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a timestamp (want %s)", raw, timestampLayout)
	}
	return t.In(loc), nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date (want %s)", raw, dateLayout)
	}
	return t, nil
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(timestampLayout)
}

func formatTimes(ts []time.Time, loc *time.Location) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = formatTime(t, loc)
	}
	return out
}

func (req AppointmentRequest) command(loc *time.Location) (appointment.ScheduleCommand, error) {
	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		return appointment.ScheduleCommand{}, fmt.Errorf("subject_id must be a valid UUID")
	}
	practitionerID, err := uuid.Parse(req.PractitionerID)
	if err != nil {
		return appointment.ScheduleCommand{}, fmt.Errorf("practitioner_id must be a valid UUID")
	}
	at, err := parseTimestamp(req.ScheduledAt, loc)
	if err != nil {
		return appointment.ScheduleCommand{}, fmt.Errorf("scheduled_at: %w", err)
	}
	return appointment.ScheduleCommand{
		SubjectID:      subjectID,
		PractitionerID: practitionerID,
		ScheduledAt:    at,
		Type:           appointment.Type(req.Type),
	}, nil
}

func (req PractitionerRequest) input() practitioner.Input {
	return practitioner.Input{
		Name:       req.Name,
		Sex:        practitioner.Sex(req.Sex),
		NationalID: req.NationalID,
		Specialty:  req.Specialty,
		Active:     req.Active,
	}
}

func toAppointmentResponse(a *appointment.Appointment, loc *time.Location) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		SubjectID:      a.SubjectID,
		PractitionerID: a.PractitionerID,
		ScheduledAt:    formatTime(a.ScheduledAt, loc),
		Type:           string(a.Type),
		Status:         string(a.Status),
		CreatedAt:      formatTime(a.CreatedAt, loc),
		UpdatedAt:      formatTime(a.UpdatedAt, loc),
	}
}

func toAppointmentResponses(as []appointment.Appointment, loc *time.Location) []AppointmentResponse {
	out := make([]AppointmentResponse, len(as))
	for i := range as {
		out[i] = toAppointmentResponse(&as[i], loc)
	}
	return out
}

func toPractitionerResponse(p *practitioner.Practitioner, loc *time.Location) PractitionerResponse {
	return PractitionerResponse{
		ID:         p.ID,
		Name:       p.Name,
		Sex:        string(p.Sex),
		NationalID: p.NationalID,
		Specialty:  p.Specialty,
		Active:     p.Active,
		CreatedAt:  formatTime(p.CreatedAt, loc),
		UpdatedAt:  formatTime(p.UpdatedAt, loc),
	}
}
