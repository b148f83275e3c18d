// Command prune_resets deletes expired password reset tokens. Redeeming a token
// never removes it, so run this from cron against long-lived databases.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/sudo-init-do/userhub/internal/auth"
	"github.com/sudo-init-do/userhub/internal/config"
	"github.com/sudo-init-do/userhub/internal/db"
)

var errNoDatabase = errors.New("usage: prune_resets --database-url postgres://... (or set DATABASE_URL)")

func main() {
	if err := run(os.Args[1:], os.LookupEnv, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run owns the pool; main exits only after it returns.
func run(args []string, lookupEnv func(string) (string, bool), out io.Writer) error {
	fs := pflag.NewFlagSet("prune_resets", pflag.ContinueOnError)
	configFile := fs.String("config", "", "YAML config file path")
	envFile := fs.String("env-file", ".env", "dotenv file path")
	dryRun := fs.Bool("dry-run", false, "connect and report the cutoff without deleting")
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
		Flags:      fs,
		LookupEnv:  lookupEnv,
	})
	if err != nil {
		return oops.Wrapf(err, "load config")
	}
	if cfg.Database.URL == "" {
		return errNoDatabase
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Wrapf(err, "connect")
	}
	defer pool.Close()

	if *dryRun {
		fmt.Fprintf(out, "Would delete reset tokens expired before %s.\n", time.Now().UTC().Format(time.RFC3339))
		return nil
	}

	resets := auth.NewResetService(auth.NewPostgresResetRepository(pool), nil, auth.ResetOptions{
		TTL: cfg.Auth.ResetTokenTTL,
	})
	n, err := resets.PruneExpired(ctx)
	if err != nil {
		return oops.Wrapf(err, "prune reset tokens")
	}

	fmt.Fprintf(out, "Deleted %d expired reset tokens.\n", n)
	return nil
}
