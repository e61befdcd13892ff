package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/clinic-client/internal/workflow"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	var sections []string
	sections = append(sections, m.headerView())
	if m.notice != "" {
		sections = append(sections, m.noticeView())
	}

	switch m.screen {
	case ScreenLogin:
		sections = append(sections, m.loginView())
	case ScreenDirectory:
		if m.booking.State() != workflow.StateIdle {
			sections = append(sections, m.bookingFormView())
		} else {
			sections = append(sections, m.directoryView())
		}
	}

	sections = append(sections, m.helpView())
	return strings.Join(sections, "\n")
}

func (m Model) headerView() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.HeaderForeground).
		Render("MediCare — Healthcare Dashboard")

	if m.screen != ScreenDirectory {
		return title
	}
	user := lipgloss.NewStyle().
		Foreground(m.theme.FaintText).
		Render(fmt.Sprintf("%s (%s)", m.identity.Name, m.identity.Role))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(user)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + user
}

func (m Model) noticeView() string {
	color := m.theme.Success
	if m.noticeErr {
		color = m.theme.Error
	}
	return lipgloss.NewStyle().Foreground(color).Render(m.notice)
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(m.theme.NormalText).Render("Login"))
	b.WriteString("\n\n")
	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n")
	if m.loggingIn {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Signing in..."))
	}
	if m.loginError != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.loginError))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(1, 2).
		Render(b.String())
}

func (m Model) directoryView() string {
	paneWidth := m.width/2 - 2
	if paneWidth < 24 {
		paneWidth = 24
	}
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(0, 1).
		Width(paneWidth)

	doctors := pane.Render(m.doctorsPane())
	appointments := pane.Render(m.appointmentsPane())
	return lipgloss.JoinHorizontal(lipgloss.Top, doctors, " ", appointments)
}

func (m Model) doctorsPane() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(m.theme.NormalText).Render("Available Doctors"))
	b.WriteString("\n")

	switch {
	case m.directory.DoctorsErr != "":
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.directory.DoctorsErr))
	case m.loadingDoctors:
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Loading..."))
	case len(m.directory.Doctors) == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("No doctors available at the moment"))
	default:
		selected := lipgloss.NewStyle().
			Background(m.theme.SelectedBackground).
			Foreground(m.theme.SelectedForeground)
		faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
		for i, doctor := range m.directory.Doctors {
			line := fmt.Sprintf("Dr. %s", doctor.Name)
			if i == m.cursor {
				b.WriteString(selected.Render("> " + line))
			} else {
				b.WriteString("  " + lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(line))
			}
			b.WriteString("\n")
			b.WriteString(faint.Render(fmt.Sprintf("    %s · %s", doctor.Speciality, doctor.Department)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) appointmentsPane() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(m.theme.NormalText).Render("My Appointments"))
	b.WriteString("\n")

	switch {
	case m.directory.AppointmentsErr != "":
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.directory.AppointmentsErr))
	case m.loadingAppointments:
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Loading..."))
	case len(m.directory.Appointments) == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("No appointments scheduled"))
	default:
		normal := lipgloss.NewStyle().Foreground(m.theme.NormalText)
		faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
		for _, appointment := range m.directory.Appointments {
			doctorName := "N/A"
			if appointment.Doctor != nil {
				doctorName = "Dr. " + appointment.Doctor.Name
			}
			b.WriteString(normal.Render(fmt.Sprintf("%s · Age %d", appointment.PatientName, appointment.Age)))
			b.WriteString("\n")
			b.WriteString(faint.Render(fmt.Sprintf("  %s · %s", appointment.AppointmentDate, doctorName)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) bookingFormView() string {
	doctor := m.booking.Doctor()

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(m.theme.NormalText).Render("Book Appointment"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Booking with"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Accent).Render(fmt.Sprintf("Dr. %s · %s", doctor.Name, doctor.Speciality)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(fmt.Sprintf("Doctor ID: %d", doctor.ID)))
	b.WriteString("\n\n")
	for i := range m.form {
		b.WriteString(m.form[i].View())
		b.WriteString("\n")
	}
	if m.booking.State() == workflow.StateSubmitting {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Booking..."))
	}
	if formError := m.booking.FormError(); formError != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Error).Render(formError))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(1, 2).
		Render(b.String())
}

func (m Model) helpView() string {
	help := lipgloss.NewStyle().Foreground(m.theme.HelpText)
	switch {
	case m.screen == ScreenLogin:
		return help.Render("Tab: switch field · ⏎: sign in · Esc: quit")
	case m.booking.State() != workflow.StateIdle:
		return help.Render("Tab: next field · ⏎: submit · Esc: cancel")
	default:
		return help.Render("j/k: move · b/⏎: book · r: reload · C-l: logout · q: quit")
	}
}
