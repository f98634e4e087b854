package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"

	"github.com/baechuer/accounts-api/internal/application/auth"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender is the MAIL_TRANSPORT=smtp implementation of auth.EmailSender.
type SMTPSender struct {
	cfg  SMTPConfig
	auth smtp.Auth
	send sendFunc
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP_HOST is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("MAIL_FROM is required")
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("MAIL_FROM: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	s := &SMTPSender{cfg: cfg, send: smtp.SendMail}
	// unauthenticated relays (local mailcatcher) are allowed
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s, nil
}

func (s *SMTPSender) SendEmail(ctx context.Context, msg auth.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	body, err := s.compose(to, msg)
	if err != nil {
		return err
	}

	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	if err := s.send(addr, s.auth, s.cfg.From, []string{to.Address}, body); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	return nil
}

// compose renders a multipart/alternative message with text and, when present, html parts.
func (s *SMTPSender) compose(to *mail.Address, msg auth.EmailMessage) ([]byte, error) {
	from := mail.Address{Name: s.cfg.FromName, Address: s.cfg.From}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	parts := []struct{ ctype, body string }{{"text/plain", msg.Text}}
	if msg.HTML != "" {
		parts = append(parts, struct{ ctype, body string }{"text/html", msg.HTML})
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.ctype + "; charset=UTF-8"},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
