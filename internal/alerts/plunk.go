package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/samber/oops"

	"github.com/sudo-init-do/userhub/internal/config"
)

const defaultPlunkURL = "https://api.useplunk.com/v1/send"

// PlunkSender sends mail through the Plunk transactional API.
type PlunkSender struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewPlunkSender(cfg config.PlunkConfig, client *http.Client) (*PlunkSender, error) {
	if cfg.APIKey == "" {
		return nil, oops.Errorf("plunk not configured: api key is empty")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultPlunkURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &PlunkSender{apiKey: cfg.APIKey, apiURL: cfg.APIURL, client: client}, nil
}

type plunkSendBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

func (p *PlunkSender) Send(ctx context.Context, msg Message) error {
	errb := oops.With("provider", "plunk", "to", msg.To)

	payload, err := json.Marshal(plunkSendBody{
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.HTML,
		From:    msg.From,
		Reply:   msg.ReplyTo,
	})
	if err != nil {
		return errb.Wrapf(err, "encode plunk request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return errb.Wrapf(err, "build plunk request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return errb.Wrapf(err, "plunk request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errb.With("status", resp.StatusCode, "body", string(body)).
			Errorf("plunk send failed: status=%d", resp.StatusCode)
	}
	return nil
}
