// Package email sends the account emails of BodegaApp.
package email

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/bodegaapp/bodega-api/internal/config"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type WelcomeEmailData struct {
	To        string
	StoreName string
	OwnerName string
	Username  string
	Password  string
	LoginURL  string
}

const welcomeTemplate = `Hola %s,

¡Bienvenido a BodegaApp! Tu tienda "%s" ha sido creada exitosamente.

Puedes acceder a tu panel de administración con las siguientes credenciales:

URL: %s
Usuario: %s
Contraseña temporal: %s

Por seguridad, deberás cambiar tu contraseña en el primer inicio de sesión.

Si tienes alguna pregunta, no dudes en contactarnos.

Saludos,
El equipo de BodegaApp
`

const resetTemplate = `Hola,

Has solicitado restablecer tu contraseña en BodegaApp.

Haz clic en el siguiente enlace para crear una nueva contraseña:
%s

Este enlace expirará en 24 horas.

Si no solicitaste este cambio, puedes ignorar este correo.

Saludos,
El equipo de BodegaApp
`

type Service struct {
	mailer Mailer
}

func NewService(mailer Mailer) *Service {
	return &Service{
		mailer: mailer,
	}
}

func (s *Service) SendWelcomeEmail(ctx context.Context, data WelcomeEmailData) error {
	zap.L().Info("sending welcome email", zap.String("to", data.To))

	err := s.mailer.Send(ctx, Mail{
		To:      data.To,
		Subject: "Bienvenido a BodegaApp",
		Body:    fmt.Sprintf(welcomeTemplate, data.OwnerName, data.StoreName, data.LoginURL, data.Username, data.Password),
	})
	if err != nil {
		return fmt.Errorf("s.mailer.Send -> %w", err)
	}

	return nil
}

func (s *Service) SendPasswordResetEmail(ctx context.Context, to, resetLink string) error {
	zap.L().Info("sending password reset email", zap.String("to", to))

	err := s.mailer.Send(ctx, Mail{
		To:      to,
		Subject: "Restablecer contraseña",
		Body:    fmt.Sprintf(resetTemplate, resetLink),
	})
	if err != nil {
		return fmt.Errorf("s.mailer.Send -> %w", err)
	}

	return nil
}

// LogMailer logs emails instead of sending them, after an optional delay.
type LogMailer struct {
	Delay time.Duration
}

func (m LogMailer) Send(ctx context.Context, mail Mail) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	zap.L().Info("email",
		zap.String("to", mail.To),
		zap.String("subject", mail.Subject),
		zap.String("body", mail.Body))

	return nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(conf *config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(conf.SMTPHost, conf.SMTPPort, conf.SMTPUser, conf.SMTPPassword),
		from:   conf.From,
	}
}

func (m *SMTPMailer) Send(_ context.Context, mail Mail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/plain", mail.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("m.dialer.DialAndSend -> %w", err)
	}

	return nil
}

// NewMailer builds the mailer selected by conf.Provider.
func NewMailer(conf *config.EmailConfig) Mailer {
	if conf.Provider == "smtp" {
		return NewSMTPMailer(conf)
	}

	return LogMailer{Delay: conf.LogDelay}
}
