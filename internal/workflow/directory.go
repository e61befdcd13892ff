package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-client/internal/domain"
	"github.com/spec-kit/clinic-client/internal/session"
)

// User-visible notices for directory loading. These match what the clinic
// server's web client historically showed.
const (
	NoticeDoctorsUnavailable      = "Unable to load doctors."
	NoticeAppointmentsUnavailable = "Unable to load appointments."
)

// DirectoryAPI is the slice of the API client the directory needs.
type DirectoryAPI interface {
	ListDoctors(ctx context.Context, access string) ([]domain.Doctor, error)
	ListAppointments(ctx context.Context, access string) ([]domain.Appointment, error)
}

// Directory holds the protected screen's initial data set: the doctor
// listing and the user's appointments, plus a per-resource error notice.
// The two fetches are independent; failure of one never blocks the other,
// and a failed fetch leaves any previously loaded data untouched.
//
// The appointment slice is a client-side cache of server state; the booking
// workflow appends each newly confirmed appointment to it exactly once.
type Directory struct {
	api    DirectoryAPI
	store  *session.Store
	logger *zap.Logger

	Doctors         []domain.Doctor
	Appointments    []domain.Appointment
	DoctorsErr      string
	AppointmentsErr string
}

// NewDirectory builds an empty directory over the given API and session.
func NewDirectory(api DirectoryAPI, store *session.Store, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{api: api, store: store, logger: logger}
}

// FetchDoctors issues the doctor listing call with the current credential.
// It does not touch directory state, so it is safe to call from a background
// goroutine; pass the result to ApplyDoctors on the interaction thread.
func (d *Directory) FetchDoctors(ctx context.Context) ([]domain.Doctor, error) {
	access, _ := d.store.Access()
	return d.api.ListDoctors(ctx, access)
}

// FetchAppointments is the appointment-side counterpart of FetchDoctors.
func (d *Directory) FetchAppointments(ctx context.Context) ([]domain.Appointment, error) {
	access, _ := d.store.Access()
	return d.api.ListAppointments(ctx, access)
}

// ApplyDoctors merges a fetch result. On error the previous list is kept and
// a non-fatal notice is set; errors are terminal per attempt, retry happens
// only by re-entering the screen.
func (d *Directory) ApplyDoctors(doctors []domain.Doctor, err error) {
	if err != nil {
		d.logger.Warn("doctor listing failed", zap.Error(err))
		d.DoctorsErr = NoticeDoctorsUnavailable
		return
	}
	d.Doctors = doctors
	d.DoctorsErr = ""
}

// ApplyAppointments merges a fetch result, isolated from the doctor side.
func (d *Directory) ApplyAppointments(appointments []domain.Appointment, err error) {
	if err != nil {
		d.logger.Warn("appointment listing failed", zap.Error(err))
		d.AppointmentsErr = NoticeAppointmentsUnavailable
		return
	}
	d.Appointments = appointments
	d.AppointmentsErr = ""
}

// Load issues both listing calls concurrently and applies the results. The
// calls race; each updates its own piece of state without waiting for the
// other. Used by callers without their own event loop — the TUI instead
// drives Fetch/Apply pairs through its message loop.
func (d *Directory) Load(ctx context.Context) {
	var wg sync.WaitGroup
	var (
		doctors         []domain.Doctor
		doctorsErr      error
		appointments    []domain.Appointment
		appointmentsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		doctors, doctorsErr = d.FetchDoctors(ctx)
	}()
	go func() {
		defer wg.Done()
		appointments, appointmentsErr = d.FetchAppointments(ctx)
	}()
	wg.Wait()

	d.ApplyDoctors(doctors, doctorsErr)
	d.ApplyAppointments(appointments, appointmentsErr)
}

// AppendAppointment adds a just-created appointment to the local cache. No
// deduplication against the server is performed; the cache is append-only
// per successful submit.
func (d *Directory) AppendAppointment(appointment domain.Appointment) {
	d.Appointments = append(d.Appointments, appointment)
}
