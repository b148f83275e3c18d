// Package alerts delivers outbound email through SMTP, the Plunk HTTP API or
// the application log.
package alerts

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/sudo-init-do/userhub/internal/config"
)

// Message is one outbound email. HTML is sent as the body.
type Message struct {
	From    string
	ReplyTo string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message. Send does not retry.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// New returns the sender selected by cfg.Provider.
func New(cfg config.MailConfig, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case config.MailProviderSMTP:
		return NewSMTPSender(cfg.SMTP), nil
	case config.MailProviderPlunk:
		return NewPlunkSender(cfg.Plunk, &http.Client{Timeout: 10 * time.Second})
	case config.MailProviderLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, oops.With("provider", cfg.Provider).Errorf("unknown mail provider")
	}
}
