package workflow

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-client/internal/api"
	"github.com/spec-kit/clinic-client/internal/domain"
	"github.com/spec-kit/clinic-client/internal/session"
)

// BookingState is the per-attempt state of the booking form.
type BookingState int

const (
	// StateIdle means no booking form is open.
	StateIdle BookingState = iota
	// StateDraftOpen means the form is open and editable.
	StateDraftOpen
	// StateSubmitting means a creation request is in flight; input and
	// cancellation are suppressed until it resolves.
	StateSubmitting
)

// Form validation and notice messages.
const (
	MsgMissingFields     = "Please fill in all required fields"
	MsgDoctorRequired    = "Doctor selection is required"
	MsgAgeNotNumeric     = "Age must be a number"
	NoticeBookingSuccess = "Appointment booked successfully!"

	bookingErrorPrefix = "Error booking appointment: "
)

// Field names a draft booking input.
type Field int

const (
	FieldPatientName Field = iota
	FieldAge
	FieldAppointmentDate
)

// ValidationError is a client-side form validation failure. No network call
// was made; the message is shown inline and the draft is left untouched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BookingAPI is the slice of the API client the booking workflow needs.
type BookingAPI interface {
	CreateAppointment(ctx context.Context, access string, request api.CreateAppointmentRequest) (*domain.Appointment, error)
}

// BookingWorkflow drives one booking attempt at a time: pick a doctor, fill
// in the draft, submit, and reconcile the server's answer into the local
// appointment cache. Client-side validation is a cheap first pass; the
// server validates again authoritatively, and its field errors are surfaced
// verbatim because it owns business rules (doctor existence, age bounds)
// the client does not duplicate.
type BookingWorkflow struct {
	api       BookingAPI
	store     *session.Store
	directory *Directory
	logger    *zap.Logger

	state     BookingState
	doctor    domain.Doctor
	draft     domain.DraftBooking
	formError string
}

// NewBookingWorkflow builds an idle workflow writing into the given
// directory's appointment cache.
func NewBookingWorkflow(api BookingAPI, store *session.Store, directory *Directory, logger *zap.Logger) *BookingWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingWorkflow{api: api, store: store, directory: directory, logger: logger}
}

// State returns the current form state.
func (w *BookingWorkflow) State() BookingState { return w.state }

// Doctor returns the doctor the open draft targets.
func (w *BookingWorkflow) Doctor() domain.Doctor { return w.doctor }

// Draft returns the current draft input.
func (w *BookingWorkflow) Draft() domain.DraftBooking { return w.draft }

// FormError returns the inline form error, empty when there is none. It
// persists until the next submit attempt or cancel.
func (w *BookingWorkflow) FormError() string { return w.formError }

// Open starts a draft for the given doctor: the draft is reset to empty
// fields and any prior form error is cleared. A doctor without an ID is
// refused.
func (w *BookingWorkflow) Open(doctor domain.Doctor) {
	if w.state == StateSubmitting || doctor.ID == 0 {
		return
	}
	w.state = StateDraftOpen
	w.doctor = doctor
	w.draft = domain.DraftBooking{DoctorID: doctor.ID}
	w.formError = ""
}

// UpdateField mutates the draft in place. No validation happens here;
// validation is deferred to submit.
func (w *BookingWorkflow) UpdateField(field Field, value string) {
	if w.state != StateDraftOpen {
		return
	}
	switch field {
	case FieldPatientName:
		w.draft.PatientName = value
	case FieldAge:
		w.draft.Age = value
	case FieldAppointmentDate:
		w.draft.AppointmentDate = value
	}
}

// Cancel discards the draft and returns to idle without a network call.
// Ignored while a submission is in flight.
func (w *BookingWorkflow) Cancel() {
	if w.state == StateSubmitting {
		return
	}
	w.state = StateIdle
	w.doctor = domain.Doctor{}
	w.draft = domain.DraftBooking{}
	w.formError = ""
}

// BeginSubmit validates the draft and, if it passes, transitions to
// Submitting and returns the request payload to send. On a validation
// failure the workflow stays in DraftOpen with the inline error set, the
// draft untouched, and a *ValidationError is returned; no network call is
// to be made.
func (w *BookingWorkflow) BeginSubmit() (api.CreateAppointmentRequest, error) {
	w.formError = ""

	if w.draft.PatientName == "" || w.draft.Age == "" || w.draft.AppointmentDate == "" {
		return w.failValidation(MsgMissingFields)
	}
	if w.doctor.ID == 0 {
		return w.failValidation(MsgDoctorRequired)
	}
	age, err := strconv.Atoi(strings.TrimSpace(w.draft.Age))
	if err != nil {
		return w.failValidation(MsgAgeNotNumeric)
	}

	w.state = StateSubmitting
	return api.CreateAppointmentRequest{
		PatientName:     strings.TrimSpace(w.draft.PatientName),
		Age:             age,
		AppointmentDate: w.draft.AppointmentDate,
		DoctorID:        w.doctor.ID,
	}, nil
}

func (w *BookingWorkflow) failValidation(message string) (api.CreateAppointmentRequest, error) {
	w.state = StateDraftOpen
	w.formError = message
	return api.CreateAppointmentRequest{}, &ValidationError{Message: message}
}

// Resolve consumes the result of the creation call started by BeginSubmit.
// On success the confirmed appointment is appended to the directory exactly
// once, the draft is cleared, and the transient success notice is returned.
// On rejection the draft is preserved so the user can correct and resubmit,
// and the server's most specific error message is set inline.
func (w *BookingWorkflow) Resolve(appointment *domain.Appointment, err error) (notice string) {
	if w.state != StateSubmitting {
		return ""
	}
	if err != nil {
		w.logger.Warn("booking rejected", zap.Error(err))
		w.state = StateDraftOpen
		w.formError = bookingErrorPrefix + rejectionMessage(err)
		return ""
	}

	w.directory.AppendAppointment(*appointment)
	w.state = StateIdle
	w.doctor = domain.Doctor{}
	w.draft = domain.DraftBooking{}
	w.formError = ""
	return NoticeBookingSuccess
}

// Submit runs the full submit path synchronously: validate, call the server,
// resolve. The TUI splits this into BeginSubmit plus an asynchronous Resolve
// so the interaction thread never blocks; synchronous callers and tests use
// this form.
func (w *BookingWorkflow) Submit(ctx context.Context) (notice string, err error) {
	request, err := w.BeginSubmit()
	if err != nil {
		return "", err
	}
	access, _ := w.store.Access()
	appointment, err := w.api.CreateAppointment(ctx, access, request)
	if notice := w.Resolve(appointment, err); notice != "" {
		return notice, nil
	}
	return "", err
}

// rejectionMessage picks the most specific message out of a server error:
// the first matching field error in a fixed order, then the detail string,
// then the raw body, then the bare error text.
func rejectionMessage(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	for _, field := range []struct {
		name  string
		label string
	}{
		{"doctor_id", "Doctor ID error: "},
		{"patient_name", "Patient name error: "},
		{"age", "Age error: "},
		{"appointment_date", "Date error: "},
	} {
		if messages := apiErr.FieldMessages(field.name); messages != "" {
			return field.label + messages
		}
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	if apiErr.Body != "" {
		return apiErr.Body
	}
	return err.Error()
}
