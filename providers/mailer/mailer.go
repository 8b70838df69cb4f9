package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"ventrilinks/config"
)

// Sender verschickt HTML-Mails über SMTP. Wird nur für Passwort-Resets genutzt.
type Sender struct {
	from     string
	user     string
	password string
	host     string
	port     string
	log      *zap.Logger
}

// NewSender erstellt einen Sender aus der Konfiguration.
func NewSender(cfg *config.Config, logger *zap.Logger) *Sender {
	user := cfg.SMTPUser
	if user == "" {
		user = cfg.SMTPFrom
	}
	return &Sender{
		from:     cfg.SMTPFrom,
		user:     user,
		password: cfg.SMTPPassword,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		log:      logger,
	}
}

// Send verschickt eine HTML-Mail mit Betreff und Body.
func (s *Sender) Send(to, subject, body string) error {
	if s.host == "" || s.port == "" || s.from == "" {
		return fmt.Errorf("missing SMTP configuration")
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"utf-8\"\r\n"+
			"\r\n%s\r\n",
		s.from, to, subject, body,
	))

	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, msg); err != nil {
		s.log.Error("SMTP send failed", zap.String("to", to), zap.Error(err))
		return err
	}
	s.log.Info("Mail verschickt", zap.String("to", to), zap.String("subject", subject))
	return nil
}
