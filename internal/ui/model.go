package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-client/internal/domain"
	"github.com/spec-kit/clinic-client/internal/session"
	"github.com/spec-kit/clinic-client/internal/workflow"
)

// Screen identifies which view is active. The login screen is the
// authentication entry point; the directory screen is protected and only
// reachable through the session guard.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDirectory
)

// noticeFadeDelay is how long transient notices stay visible. Inline form
// errors are not transient and persist until the next submit or cancel.
const noticeFadeDelay = 5 * time.Second

// API is the slice of the clinic API client the TUI drives.
type API interface {
	workflow.AuthAPI
	workflow.DirectoryAPI
	workflow.BookingAPI
}

// Messages delivered through the bubbletea loop. Each result message
// carries the generation current when its request was issued; results from
// a superseded screen are discarded rather than applied.
type (
	loginResultMsg struct {
		generation int
		identity   domain.Identity
		err        error
	}
	doctorsMsg struct {
		generation int
		doctors    []domain.Doctor
		err        error
	}
	appointmentsMsg struct {
		generation   int
		appointments []domain.Appointment
		err          error
	}
	bookingResultMsg struct {
		generation  int
		appointment *domain.Appointment
		err         error
	}
	noticeFadeMsg struct {
		id int
	}
)

// Deps are the collaborators the model renders and drives. All state lives
// in these explicit objects; the model adds only interaction state (cursor,
// focus, in-flight flags).
type Deps struct {
	API       API
	Store     *session.Store
	Guard     *session.Guard
	Auth      *workflow.AuthWorkflow
	Directory *workflow.Directory
	Booking   *workflow.BookingWorkflow
	Logger    *zap.Logger
}

// Model is the bubbletea model for the clinic client.
type Model struct {
	api       API
	store     *session.Store
	guard     *session.Guard
	auth      *workflow.AuthWorkflow
	directory *workflow.Directory
	booking   *workflow.BookingWorkflow
	logger    *zap.Logger

	keys  KeyMap
	theme Theme

	screen Screen
	// generation is bumped on every screen change; async results tagged
	// with an older generation are stale and ignored.
	generation int

	// Login screen.
	username   textinput.Model
	password   textinput.Model
	loginFocus int
	loggingIn  bool
	loginError string

	// Directory screen.
	identity            domain.Identity
	cursor              int
	loadingDoctors      bool
	loadingAppointments bool

	// Booking form, active while the booking workflow is not idle.
	form      [3]textinput.Model
	formFocus int

	// Transient notice bar.
	notice    string
	noticeErr bool
	noticeID  int

	width  int
	height int
	ready  bool
}

// New builds the model. On startup an existing unexpired session resumes
// straight into the directory screen; an expired one is cleared with the
// session-expired notice; no session at all lands on a clean login screen.
func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	username := textinput.New()
	username.Placeholder = "Username"
	username.Focus()
	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword

	patient := textinput.New()
	patient.Placeholder = "Patient name"
	age := textinput.New()
	age.Placeholder = "Age"
	age.CharLimit = 3
	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"

	m := Model{
		api:       deps.API,
		store:     deps.Store,
		guard:     deps.Guard,
		auth:      deps.Auth,
		directory: deps.Directory,
		booking:   deps.Booking,
		logger:    logger,
		keys:      DefaultKeyMap,
		theme:     DefaultTheme,
		username:  username,
		password:  password,
		form:      [3]textinput.Model{patient, age, date},
	}

	if _, ok := m.store.Access(); !ok {
		m.screen = ScreenLogin
		return m
	}
	if m.guard.Check() == session.StatusAuthorized {
		m.screen = ScreenDirectory
		m.identity = m.store.CurrentIdentity()
		return m
	}
	m.screen = ScreenLogin
	m.setNotice(workflow.NoticeSessionExpired, true)
	return m
}

// Init starts cursor blinking, the initial directory load when resuming,
// and the fade timer for any startup notice.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.notice != "" {
		cmds = append(cmds, m.fadeCmd())
	}
	if m.screen == ScreenDirectory {
		cmds = append(cmds, m.loadDirectoryCmds()...)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case ScreenLogin:
			return m.updateLogin(message)
		case ScreenDirectory:
			if m.booking.State() != workflow.StateIdle {
				return m.updateBookingForm(message)
			}
			return m.updateDirectory(message)
		}

	case loginResultMsg:
		if message.generation != m.generation {
			return m, nil
		}
		m.loggingIn = false
		if message.err != nil {
			m.loginError = workflow.MsgInvalidCredentials
			return m, nil
		}
		m.identity = message.identity
		return m, m.enterDirectory()

	case doctorsMsg:
		if message.generation != m.generation {
			return m, nil
		}
		m.loadingDoctors = false
		m.directory.ApplyDoctors(message.doctors, message.err)
		m.clampCursor()
		return m, nil

	case appointmentsMsg:
		if message.generation != m.generation {
			return m, nil
		}
		m.loadingAppointments = false
		m.directory.ApplyAppointments(message.appointments, message.err)
		return m, nil

	case bookingResultMsg:
		if message.generation != m.generation {
			return m, nil
		}
		if notice := m.booking.Resolve(message.appointment, message.err); notice != "" {
			m.setNotice(notice, false)
			return m, m.fadeCmd()
		}
		return m, nil

	case noticeFadeMsg:
		if message.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateLogin(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC, key.Matches(message, m.keys.Cancel):
		return m, tea.Quit

	case key.Matches(message, m.keys.Submit):
		if m.loginFocus == 0 {
			m.focusLoginField(1)
			return m, nil
		}
		return m.submitLogin()

	case key.Matches(message, m.keys.NextField):
		m.focusLoginField((m.loginFocus + 1) % 2)
		return m, nil

	case key.Matches(message, m.keys.PrevField):
		m.focusLoginField((m.loginFocus + 1) % 2)
		return m, nil
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(message)
	} else {
		m.password, cmd = m.password.Update(message)
	}
	return m, cmd
}

func (m *Model) focusLoginField(index int) {
	m.loginFocus = index
	if index == 0 {
		m.username.Focus()
		m.password.Blur()
	} else {
		m.username.Blur()
		m.password.Focus()
	}
}

// submitLogin starts a login attempt. Repeated submission while one is in
// flight is suppressed.
func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.loggingIn {
		return m, nil
	}
	if m.username.Value() == "" || m.password.Value() == "" {
		m.loginError = workflow.MsgMissingFields
		return m, nil
	}
	m.loggingIn = true
	m.loginError = ""

	generation := m.generation
	auth := m.auth
	username := m.username.Value()
	password := m.password.Value()
	return m, func() tea.Msg {
		identity, err := auth.Login(context.Background(), username, password)
		return loginResultMsg{generation: generation, identity: identity, err: err}
	}
}

func (m Model) updateDirectory(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(message, m.keys.Down):
		if m.cursor < len(m.directory.Doctors)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(message, m.keys.Book):
		if m.cursor < len(m.directory.Doctors) {
			m.openBookingForm(m.directory.Doctors[m.cursor])
		}
		return m, nil

	case key.Matches(message, m.keys.Refresh):
		return m, m.enterDirectory()

	case key.Matches(message, m.keys.Logout):
		if err := m.auth.Logout(); err != nil {
			m.logger.Warn("logout failed", zap.Error(err))
		}
		return m, m.enterLogin(workflow.NoticeLoggedOut, false)
	}
	return m, nil
}

func (m *Model) openBookingForm(doctor domain.Doctor) {
	m.booking.Open(doctor)
	if m.booking.State() != workflow.StateDraftOpen {
		return
	}
	for i := range m.form {
		m.form[i].SetValue("")
		m.form[i].Blur()
	}
	m.formFocus = 0
	m.form[0].Focus()
}

func (m Model) updateBookingForm(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.booking.State() == workflow.StateSubmitting {
		// A submission is in flight; nothing to do but wait.
		return m, nil
	}

	switch {
	case message.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(message, m.keys.Cancel):
		m.booking.Cancel()
		return m, nil

	case key.Matches(message, m.keys.Submit):
		if m.formFocus < len(m.form)-1 {
			m.focusFormField(m.formFocus + 1)
			return m, nil
		}
		return m.submitBooking()

	case key.Matches(message, m.keys.NextField):
		m.focusFormField((m.formFocus + 1) % len(m.form))
		return m, nil

	case key.Matches(message, m.keys.PrevField):
		m.focusFormField((m.formFocus + len(m.form) - 1) % len(m.form))
		return m, nil
	}

	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(message)
	m.syncDraft()
	return m, cmd
}

func (m *Model) focusFormField(index int) {
	m.form[m.formFocus].Blur()
	m.formFocus = index
	m.form[index].Focus()
}

// syncDraft pushes the current input values into the booking draft after
// every edit, keeping the workflow the single owner of draft state.
func (m *Model) syncDraft() {
	m.booking.UpdateField(workflow.FieldPatientName, m.form[0].Value())
	m.booking.UpdateField(workflow.FieldAge, m.form[1].Value())
	m.booking.UpdateField(workflow.FieldAppointmentDate, m.form[2].Value())
}

func (m Model) submitBooking() (tea.Model, tea.Cmd) {
	request, err := m.booking.BeginSubmit()
	if err != nil {
		// Validation failure: the inline form error is already set and no
		// network call is made.
		return m, nil
	}

	generation := m.generation
	store := m.store
	client := m.api
	return m, func() tea.Msg {
		access, _ := store.Access()
		appointment, err := client.CreateAppointment(context.Background(), access, request)
		return bookingResultMsg{generation: generation, appointment: appointment, err: err}
	}
}

// enterDirectory is the protected screen activation: the guard runs once,
// and an invalid or expired session routes back to login with the store
// already cleared.
func (m *Model) enterDirectory() tea.Cmd {
	if m.guard.Check() != session.StatusAuthorized {
		return m.enterLogin(workflow.NoticeSessionExpired, true)
	}
	m.screen = ScreenDirectory
	m.generation++
	m.identity = m.store.CurrentIdentity()
	m.cursor = 0
	return tea.Batch(m.loadDirectoryCmds()...)
}

func (m *Model) enterLogin(notice string, isError bool) tea.Cmd {
	m.screen = ScreenLogin
	m.generation++
	m.booking.Cancel()
	m.username.SetValue("")
	m.password.SetValue("")
	m.focusLoginField(0)
	m.loggingIn = false
	m.loginError = ""
	if notice == "" {
		return nil
	}
	m.setNotice(notice, isError)
	return m.fadeCmd()
}

// loadDirectoryCmds issues both listing fetches at once. They race: each
// result lands in its own message and updates its own piece of state.
func (m *Model) loadDirectoryCmds() []tea.Cmd {
	m.loadingDoctors = true
	m.loadingAppointments = true

	generation := m.generation
	directory := m.directory
	return []tea.Cmd{
		func() tea.Msg {
			doctors, err := directory.FetchDoctors(context.Background())
			return doctorsMsg{generation: generation, doctors: doctors, err: err}
		},
		func() tea.Msg {
			appointments, err := directory.FetchAppointments(context.Background())
			return appointmentsMsg{generation: generation, appointments: appointments, err: err}
		},
	}
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.directory.Doctors) {
		m.cursor = len(m.directory.Doctors) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.noticeErr = isError
	m.noticeID++
}

// fadeCmd schedules clearing of the current notice. The id guard keeps an
// old timer from wiping a newer notice.
func (m Model) fadeCmd() tea.Cmd {
	id := m.noticeID
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{id: id}
	})
}
