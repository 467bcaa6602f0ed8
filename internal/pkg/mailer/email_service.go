package mailer

import (
	"fmt"
	"html"
	"strings"

	"order-card-bot/internal/entity"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendCommitReport(toEmail string, report *entity.CommitReport) error
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

func (s *emailService) SendCommitReport(toEmail string, report *entity.CommitReport) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", ReportSubject(report))
	m.SetBody("text/html", ReportBody(report))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send commit report to %s: %w", toEmail, err)
	}
	return nil
}

func ReportSubject(report *entity.CommitReport) string {
	return fmt.Sprintf("Cards created: %d of %d", len(report.Created), report.Total())
}

func ReportBody(report *entity.CommitReport) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">`)
	fmt.Fprintf(&b, "<h2>Commit to %s</h2>", html.EscapeString(report.ListName))
	fmt.Fprintf(&b, "<p>Operator %d, %s to %s (UTC)</p>",
		report.OperatorID,
		report.StartedAt.Format("02/01/2006 15:04"),
		report.FinishedAt.Format("15:04"))

	if len(report.Created) > 0 {
		b.WriteString(`<h3 style="color: #4CAF50;">Created</h3><ul>`)
		for _, name := range report.Created {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(name))
		}
		b.WriteString("</ul>")
	}
	if len(report.Failed) > 0 {
		b.WriteString(`<h3 style="color: #D32F2F;">Failed</h3><ul>`)
		for _, f := range report.Failed {
			fmt.Fprintf(&b, "<li>%s: %s</li>", html.EscapeString(f.Name), html.EscapeString(f.Reason))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</div>")
	return b.String()
}
