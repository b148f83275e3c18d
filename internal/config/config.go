// Package config loads userhub settings from defaults, an optional YAML file,
// the environment (with .env support) and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

// EnvPrefix is prepended to every dotted key to form its environment name,
// e.g. auth.jwt_secret -> USERHUB_AUTH_JWT_SECRET.
const EnvPrefix = "USERHUB_"

// Mail providers.
const (
	MailProviderSMTP  = "smtp"
	MailProviderPlunk = "plunk"
	MailProviderLog   = "log"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Mail     MailConfig     `koanf:"mail"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
	// requests per second per client IP on /api/v1/auth; 0 disables the limiter
	AuthRateLimit float64 `koanf:"auth_rate_limit"`
	CookieSecure  bool    `koanf:"cookie_secure"`
}

type DatabaseConfig struct {
	URL         string `koanf:"url"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret            string        `koanf:"jwt_secret"`
	SessionTTL           time.Duration `koanf:"session_ttl"`
	ResetTokenTTL        time.Duration `koanf:"reset_token_ttl"`
	BcryptCost           int           `koanf:"bcrypt_cost"`
	FrontendURL          string        `koanf:"frontend_url"`
	SingleUseResetTokens bool          `koanf:"single_use_reset_tokens"`
}

type MailConfig struct {
	Provider string      `koanf:"provider"`
	From     string      `koanf:"from"`
	ReplyTo  string      `koanf:"reply_to"`
	SMTP     SMTPConfig  `koanf:"smtp"`
	Plunk    PlunkConfig `koanf:"plunk"`
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type PlunkConfig struct {
	APIKey string `koanf:"api_key"`
	APIURL string `koanf:"api_url"`
}

type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

var defaults = map[string]any{
	"server.addr":                  ":8080",
	"server.allowed_origins":       []string{"http://localhost:3000"},
	"server.auth_rate_limit":       20.0,
	"server.cookie_secure":         true,
	"database.url":                 "",
	"database.auto_migrate":        false,
	"auth.jwt_secret":              "",
	"auth.session_ttl":             "24h",
	"auth.reset_token_ttl":         "30m",
	"auth.bcrypt_cost":             10,
	"auth.frontend_url":            "http://localhost:3000",
	"auth.single_use_reset_tokens": false,
	"mail.provider":                MailProviderLog,
	"mail.from":                    "no-reply@userhub.local",
	"mail.reply_to":                "",
	"mail.smtp.host":               "",
	"mail.smtp.port":               465,
	"mail.smtp.username":           "",
	"mail.smtp.password":           "",
	"mail.plunk.api_key":           "",
	"mail.plunk.api_url":           "https://api.useplunk.com/v1/send",
	"log.format":                   "json",
	"log.level":                    "info",
}

// legacyEnv maps unprefixed variable names still used by existing deployments.
var legacyEnv = map[string]string{
	"DATABASE_URL":  "database.url",
	"JWT_SECRET":    "auth.jwt_secret",
	"APP_URL":       "auth.frontend_url",
	"MAIL_PROVIDER": "mail.provider",
	"MAIL_REPLY_TO": "mail.reply_to",
	"SMTP_HOST":     "mail.smtp.host",
	"SMTP_PORT":     "mail.smtp.port",
	"SMTP_USERNAME": "mail.smtp.username",
	"SMTP_PASSWORD": "mail.smtp.password",
	"SMTP_FROM":     "mail.from",
	"PLUNK_API_KEY": "mail.plunk.api_key",
	"PLUNK_API_URL": "mail.plunk.api_url",
}

// LoadOptions selects the sources consulted by Load. Zero values skip a source.
type LoadOptions struct {
	// ConfigFile is an optional YAML file.
	ConfigFile string
	// EnvFile is a .env file; a missing file is ignored.
	EnvFile string
	// Flags are applied last; only flags the user actually set override.
	Flags *pflag.FlagSet
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from the sources in opts.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, oops.With("key", key).Wrap(err)
		}
	}

	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil {
			return nil, oops.With("file", opts.ConfigFile).Wrapf(err, "load config file")
		}
	}

	if err := loadEnv(k, opts); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Wrapf(err, "load flags")
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Wrapf(err, "decode config")
	}
	return &cfg, nil
}

func loadEnv(k *koanf.Koanf, opts LoadOptions) error {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		vals, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			dotenv = vals
		case !errors.Is(err, os.ErrNotExist):
			return oops.With("file", opts.EnvFile).Wrapf(err, "read env file")
		}
	}
	// the process environment wins over the .env file
	get := func(name string) (string, bool) {
		if v, ok := lookup(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}

	set := func(key, val string) error {
		if err := k.Set(key, val); err != nil {
			return oops.With("key", key).Wrap(err)
		}
		return nil
	}

	for name, key := range legacyEnv {
		if v, ok := get(name); ok && v != "" {
			if err := set(key, v); err != nil {
				return err
			}
		}
	}
	if port, ok := get("PORT"); ok && port != "" {
		if err := set("server.addr", ":"+port); err != nil {
			return err
		}
	}
	for key := range defaults {
		if v, ok := get(EnvName(key)); ok {
			if err := set(key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate reports settings that would leave the server unable to run.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if c.Auth.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("auth.reset_token_ttl must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	switch c.Mail.Provider {
	case MailProviderLog:
	case MailProviderSMTP:
		if c.Mail.SMTP.Host == "" {
			errs = append(errs, errors.New("mail.smtp.host is required for the smtp provider"))
		}
	case MailProviderPlunk:
		if c.Mail.Plunk.APIKey == "" {
			errs = append(errs, errors.New("mail.plunk.api_key is required for the plunk provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail.provider %q", c.Mail.Provider))
	}
	if len(errs) > 0 {
		return oops.Code("CONFIG_INVALID").Wrap(errors.Join(errs...))
	}
	return nil
}
