package mailer

import (
	"fmt"

	"github.com/manhattanmint/mint-bookings/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendLeadNotification(lead Lead) error {
	logger.Info("📧 [DEV MAIL] Lead Notification",
		"name", lead.Name,
		"email", lead.Email,
		"phone", lead.Phone,
		"service", lead.Service,
		"date", lead.Date,
		"total", lead.Total,
	)

	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"📧 NEW LEAD (DEV MODE)\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"Name: %s\n"+
		"Email: %s\n"+
		"Phone: %s\n"+
		"Service: %s\n"+
		"Date: %s (%s)\n"+
		"Frequency: %s\n"+
		"Estimated total: $%d\n"+
		"Notes: %s\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		lead.Name, lead.Email, lead.Phone, lead.Service,
		lead.Date, lead.TimeWindow, lead.Frequency, lead.Total, lead.Notes)

	return nil
}
