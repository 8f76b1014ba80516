package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// DoctorReminder is what a staff member sends to nudge a doctor to close an appointment.
type DoctorReminder struct {
	ToEmail       string
	AppointmentId string
	EndTime       string
	Message       string
}

type IEmailService interface {
	SendDoctorReminder(r DoctorReminder) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendDoctorReminder(r DoctorReminder) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", r.ToEmail)
	m.SetHeader("Subject", "Please mark your appointment as completed")

	note := ""
	if r.Message != "" {
		note = fmt.Sprintf(`<p style="border-left: 3px solid #ccc; padding-left: 10px;">%s</p>`, html.EscapeString(r.Message))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Appointment waiting for completion</h2>
			<p>Appointment <strong>%s</strong> (ended %s) is still open.</p>
			%s
			<p>Mark it as completed so the cashier can settle the balance.</p>
		</div>
	`, html.EscapeString(r.AppointmentId), html.EscapeString(r.EndTime), note)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send doctor reminder to %s: %w", r.ToEmail, err)
	}
	return nil
}
