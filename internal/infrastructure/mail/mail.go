// Package mail delivers sign-up codes and password reset links.
package mail

import (
	"context"
	"fmt"

	"seyyar/internal/config"
	"seyyar/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender is the transport a Mailer hands finished messages to.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer renders Seyyar emails and sends them over SMTP.
type Mailer struct {
	from   string
	sender Sender
}

func NewSMTPMailer(cfg config.SMTPConfig) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return NewMailer(from, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password))
}

func NewMailer(from string, sender Sender) *Mailer {
	return &Mailer{from: from, sender: sender}
}

func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	body := fmt.Sprintf("Your Seyyar verification code is: %s\n\nIt expires shortly. If you did not sign up, ignore this email.", code)
	return m.send(ctx, to, "Your Seyyar verification code", body)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, link string) error {
	body := fmt.Sprintf("Open the link below to choose a new Seyyar password:\n\n%s\n\nIf you did not ask for a reset, ignore this email.", link)
	return m.send(ctx, to, "Reset your Seyyar password", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. It is used
// when SMTP_HOST is not configured.
type LogMailer struct{}

func (LogMailer) SendOTP(_ context.Context, to, code string) error {
	logger.Info("Verification code issued",
		zap.String("to", to),
		zap.String("code", code),
		zap.String("event", "mail_otp"),
	)
	return nil
}

func (LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	logger.Info("Password reset link issued",
		zap.String("to", to),
		zap.String("link", link),
		zap.String("event", "mail_password_reset"),
	)
	return nil
}
