package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spec-kit/clinic-client/internal/domain"
	"github.com/spec-kit/clinic-client/internal/session"
)

type fakeDirectoryAPI struct {
	doctors         []domain.Doctor
	doctorsErr      error
	appointments    []domain.Appointment
	appointmentsErr error
	lastAccess      string
}

func (f *fakeDirectoryAPI) ListDoctors(_ context.Context, access string) ([]domain.Doctor, error) {
	f.lastAccess = access
	return f.doctors, f.doctorsErr
}

func (f *fakeDirectoryAPI) ListAppointments(_ context.Context, access string) ([]domain.Appointment, error) {
	return f.appointments, f.appointmentsErr
}

func newDirectoryFixture(t *testing.T, fake *fakeDirectoryAPI) *Directory {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"), nil)
	if err := store.Set("access-1", "refresh-1"); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return NewDirectory(fake, store, nil)
}

func TestLoadPopulatesBothResources(t *testing.T) {
	fake := &fakeDirectoryAPI{
		doctors:      []domain.Doctor{{ID: 1, Name: "Smith"}},
		appointments: []domain.Appointment{{ID: 7, PatientName: "Bob"}},
	}
	directory := newDirectoryFixture(t, fake)

	directory.Load(context.Background())
	if len(directory.Doctors) != 1 || directory.Doctors[0].Name != "Smith" {
		t.Errorf("doctors = %+v", directory.Doctors)
	}
	if len(directory.Appointments) != 1 || directory.Appointments[0].ID != 7 {
		t.Errorf("appointments = %+v", directory.Appointments)
	}
	if directory.DoctorsErr != "" || directory.AppointmentsErr != "" {
		t.Errorf("unexpected notices: %q %q", directory.DoctorsErr, directory.AppointmentsErr)
	}
	if fake.lastAccess != "access-1" {
		t.Errorf("listing used credential %q", fake.lastAccess)
	}
}

func TestLoadFailuresAreIsolated(t *testing.T) {
	fake := &fakeDirectoryAPI{
		doctorsErr:   errors.New("boom"),
		appointments: []domain.Appointment{{ID: 7}},
	}
	directory := newDirectoryFixture(t, fake)

	directory.Load(context.Background())
	if directory.DoctorsErr != NoticeDoctorsUnavailable {
		t.Errorf("doctors notice = %q", directory.DoctorsErr)
	}
	if directory.AppointmentsErr != "" {
		t.Errorf("appointment fetch must not be blocked: %q", directory.AppointmentsErr)
	}
	if len(directory.Appointments) != 1 {
		t.Errorf("appointments = %+v", directory.Appointments)
	}
}

func TestApplyFailureKeepsPreviousData(t *testing.T) {
	directory := newDirectoryFixture(t, &fakeDirectoryAPI{})
	directory.ApplyDoctors([]domain.Doctor{{ID: 1, Name: "Smith"}}, nil)

	directory.ApplyDoctors(nil, errors.New("boom"))
	if len(directory.Doctors) != 1 {
		t.Errorf("previous doctors lost: %+v", directory.Doctors)
	}
	if directory.DoctorsErr != NoticeDoctorsUnavailable {
		t.Errorf("doctors notice = %q", directory.DoctorsErr)
	}

	// A later success clears the notice.
	directory.ApplyDoctors([]domain.Doctor{{ID: 2}}, nil)
	if directory.DoctorsErr != "" {
		t.Errorf("notice not cleared: %q", directory.DoctorsErr)
	}
}

func TestApplyAppointmentsFailure(t *testing.T) {
	directory := newDirectoryFixture(t, &fakeDirectoryAPI{})
	directory.ApplyAppointments([]domain.Appointment{{ID: 7}}, nil)

	directory.ApplyAppointments(nil, errors.New("boom"))
	if len(directory.Appointments) != 1 {
		t.Errorf("previous appointments lost: %+v", directory.Appointments)
	}
	if directory.AppointmentsErr != NoticeAppointmentsUnavailable {
		t.Errorf("appointments notice = %q", directory.AppointmentsErr)
	}
}

func TestAppendAppointment(t *testing.T) {
	directory := newDirectoryFixture(t, &fakeDirectoryAPI{})
	directory.AppendAppointment(domain.Appointment{ID: 7})
	directory.AppendAppointment(domain.Appointment{ID: 8})
	if len(directory.Appointments) != 2 {
		t.Errorf("appointments = %+v", directory.Appointments)
	}
}
