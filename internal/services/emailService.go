package services

import (
	"gopkg.in/gomail.v2"

	"github.com/Infinite-Loop-Club/club-site-api/internal/config"
)

type EmailService interface {
	SendEmail(to, subject, htmlBody string) error
}

type emailService struct {
	from   string
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) EmailService {
	return &emailService{
		from:   cfg.MailFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

func (e *emailService) SendEmail(to, subject, htmlBody string) error {
	m := gomail.NewMessage()

	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := e.dialer.DialAndSend(m); err != nil {
		return err
	}
	return nil
}
