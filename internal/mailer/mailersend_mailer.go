package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client    *mailersend.Mailersend
	from      mailersend.From
	leadInbox string
	enabled   bool
}

func NewMailerSend(apiKey, fromName, fromEmail, leadInbox string) *MailerSendClient {
	m := &MailerSendClient{
		enabled:   apiKey != "" && fromEmail != "" && leadInbox != "",
		leadInbox: leadInbox,
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendLeadNotification(lead Lead) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("New lead: %s - %s on %s", lead.Name, lead.Service, lead.Date)
	html := fmt.Sprintf(`
		<h2>New booking lead</h2>
		<p><strong>%s</strong> finished the quote flow and was handed to the booking form.</p>
		<ul>
			<li>Email: %s</li>
			<li>Phone: %s</li>
			<li>Address: %s (%s)</li>
			<li>Service: %s</li>
			<li>Date: %s, %s</li>
			<li>Frequency: %s</li>
			<li>Estimated total: <strong>$%d</strong></li>
		</ul>
		<p>Notes: %s</p>
	`, lead.Name, lead.Email, lead.Phone, lead.Address, lead.Zip,
		lead.Service, lead.Date, lead.TimeWindow, lead.Frequency, lead.Total, lead.Notes)

	text := fmt.Sprintf("New lead: %s <%s> %s\nService: %s\nDate: %s (%s)\nFrequency: %s\nEstimated total: $%d\nNotes: %s",
		lead.Name, lead.Email, lead.Phone, lead.Service, lead.Date, lead.TimeWindow, lead.Frequency, lead.Total, lead.Notes)

	return m.sendEmail(m.leadInbox, "", subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
