package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/lexora/lexora_backend/config"
	"github.com/lexora/lexora_backend/models"
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailService sends transactional email over SMTP
type MailService struct {
	from   string
	dialer mailDialer
	log    *zap.Logger
}

// NewMailService returns nil when SMTP is not configured
func NewMailService(s *config.Settings, log *zap.Logger) *MailService {
	if s.SMTPHost == "" || s.SMTPUser == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MailService{
		from:   s.SMTPFrom,
		dialer: gomail.NewDialer(s.SMTPHost, s.SMTPPort, s.SMTPUser, s.SMTPPass),
		log:    log,
	}
}

func (m *MailService) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// OnSignup tells the referrer that someone joined their team
func (m *MailService) OnSignup(ctx context.Context, user *models.User, referrer *models.User) error {
	if referrer == nil || referrer.Email == "" {
		return nil
	}
	body := fmt.Sprintf("Hello %s,\n\n%s has joined your LEXORA team as %s.\n",
		referrer.FullName, user.FullName, user.Role.Label())
	if err := m.Send(referrer.Email, "New member in your team", body); err != nil {
		return err
	}
	m.log.Debug("signup notice sent", zap.String("referrerId", referrer.ID), zap.String("userId", user.ID))
	return nil
}
