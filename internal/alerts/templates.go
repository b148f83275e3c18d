package alerts

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"time"

	"github.com/samber/oops"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PasswordResetSubject is the subject line of the reset email.
const PasswordResetSubject = "Password Reset Request"

// PasswordReset holds the values rendered into the reset email.
type PasswordReset struct {
	Name      string
	ResetURL  string
	ValidFor  time.Duration
	Signature string
}

// RenderPasswordReset renders the HTML body of the reset email.
func RenderPasswordReset(data PasswordReset) (string, error) {
	if data.Signature == "" {
		data.Signature = "The userhub team"
	}
	view := map[string]any{
		"Name":      data.Name,
		"ResetURL":  data.ResetURL,
		"ValidFor":  humanDuration(data.ValidFor),
		"Signature": data.Signature,
	}
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "password_reset.html", view)
	if err != nil {
		return "", oops.With("template", "password_reset").Wrap(err)
	}
	return buf.String(), nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return strconv.Itoa(int(d/time.Hour)) + " hours"
	case d >= time.Minute:
		return strconv.Itoa(int(d/time.Minute)) + " minutes"
	default:
		return d.String()
	}
}
