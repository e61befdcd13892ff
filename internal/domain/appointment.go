package domain

// Appointment is a server-owned booking record. Created through the booking
// workflow, read-only afterwards. Doctor is nil when the server returns a
// null reference.
type Appointment struct {
	ID              int     `json:"id"`
	PatientName     string  `json:"patient_name"`
	Age             int     `json:"age"`
	AppointmentDate string  `json:"appointment_date"`
	Doctor          *Doctor `json:"doctor"`
}

// DraftBooking is transient client-only input state. It exists only between
// opening the booking form and submit/cancel, and is never persisted.
type DraftBooking struct {
	PatientName     string
	Age             string
	AppointmentDate string
	DoctorID        int
}

// Empty reports whether every user-entered field is blank.
func (d DraftBooking) Empty() bool {
	return d.PatientName == "" && d.Age == "" && d.AppointmentDate == ""
}
