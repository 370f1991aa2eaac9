package appointment

import "github.com/hackgods/vet-appointment-scheduling/internal/apperr"

var (
	ErrAppointmentNotFound   = apperr.New(apperr.NotFound, "appointment not found")
	ErrPractitionerNotFound  = apperr.New(apperr.NotFound, "practitioner not found")
	ErrPractitionerInactive  = apperr.New(apperr.Inactive, "practitioner is not active")
	ErrPastTimestamp         = apperr.New(apperr.PastTimestamp, "cannot schedule appointments in the past")
	ErrPastDate              = apperr.New(apperr.PastTimestamp, "cannot list slots for a past date")
	ErrSlotConflict          = apperr.New(apperr.Conflict, "practitioner already has an appointment in this slot")
	ErrOutOfHours            = apperr.New(apperr.OutOfHours, "time is outside business hours")
	ErrMisalignedSlot        = apperr.New(apperr.MisalignedSlot, "time is not on a slot boundary")
	ErrImmutableState        = apperr.New(apperr.ImmutableState, "appointment can no longer be changed")
	ErrAlreadyCancelled      = apperr.New(apperr.AlreadyCancelled, "appointment is already cancelled")
	ErrAlreadyCompleted      = apperr.New(apperr.AlreadyCompleted, "appointment is already completed")
	ErrCancellationWindow    = apperr.New(apperr.CancellationWindowClosed, "cancellation window has closed")
	ErrUseCancel             = apperr.New(apperr.UseCancelEndpoint, "use cancel to cancel an appointment")
	ErrInvalidStatus         = apperr.New(apperr.Validation, "invalid appointment status")
	ErrInvalidType           = apperr.New(apperr.Validation, "invalid appointment type")
	ErrSchedulingUnavailable = apperr.New(apperr.ServiceUnavailable, "scheduling is busy, try again")
)
