package config

import "github.com/spf13/pflag"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"database-url": "database.url",
	"auto-migrate": "database.auto_migrate",
	"frontend-url": "auth.frontend_url",
	"mail":         "mail.provider",
	"log-format":   "log.format",
	"log-level":    "log.level",
}

// RegisterFlags adds the server flags to fs. Defaults shown in help come from
// the built-in defaults; an unset flag never overrides another source.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("addr", defaults["server.addr"].(string), "HTTP listen address")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.Bool("auto-migrate", false, "apply pending migrations on start")
	fs.String("frontend-url", defaults["auth.frontend_url"].(string), "base URL used in password reset links")
	fs.String("mail", defaults["mail.provider"].(string), "mail provider (smtp, plunk, log)")
	fs.String("log-format", defaults["log.format"].(string), "log format (json, text)")
	fs.String("log-level", defaults["log.level"].(string), "log level (debug, info, warn, error)")
}
