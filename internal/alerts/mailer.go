package alerts

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/sudo-init-do/userhub/internal/config"
)

// SMTPSender sends mail over implicit TLS (SMTPS, usually port 465).
type SMTPSender struct {
	cfg config.SMTPConfig
	// dial is replaced in tests
	dial func(ctx context.Context, addr string, tlsConfig *tls.Config) (net.Conn, error)
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, dial: dialTLS}
}

func dialTLS(ctx context.Context, addr string, tlsConfig *tls.Config) (net.Conn, error) {
	d := &tls.Dialer{Config: tlsConfig}
	return d.DialContext(ctx, "tcp", addr)
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	errb := oops.With("provider", "smtp", "to", msg.To)

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	conn, err := s.dial(ctx, addr, &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return errb.Wrapf(err, "smtp dial")
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return errb.Wrapf(err, "smtp client")
	}
	defer c.Close()

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return errb.Wrapf(err, "smtp auth")
		}
	}
	if err := c.Mail(msg.From); err != nil {
		return errb.Wrapf(err, "smtp mail from")
	}
	if err := c.Rcpt(msg.To); err != nil {
		return errb.Wrapf(err, "smtp rcpt to")
	}
	wc, err := c.Data()
	if err != nil {
		return errb.Wrapf(err, "smtp data")
	}
	if _, err := wc.Write(buildMIME(msg)); err != nil {
		return errb.Wrapf(err, "smtp write")
	}
	if err := wc.Close(); err != nil {
		return errb.Wrapf(err, "smtp close")
	}
	if err := c.Quit(); err != nil {
		return errb.Wrapf(err, "smtp quit")
	}
	return nil
}

func buildMIME(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	return []byte(b.String())
}
