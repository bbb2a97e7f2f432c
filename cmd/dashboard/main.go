package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/config"
	"github.com/andresuchdata/retailsense/backend-go/internal/domain"
	"github.com/andresuchdata/retailsense/backend-go/internal/refresh"
	"github.com/andresuchdata/retailsense/backend-go/internal/report"
	"github.com/andresuchdata/retailsense/backend-go/internal/service"
	"github.com/andresuchdata/retailsense/backend-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

func backendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend-url",
			Usage:   "Base URL of the RetailSense API",
			EnvVars: []string{"BACKEND_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "email",
			Usage:   "Account email used to sign in before fetching",
			EnvVars: []string{"BACKEND_EMAIL"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Account password",
			EnvVars: []string{"BACKEND_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "policy",
			Usage:   "Section failure policy (lenient or strict)",
			EnvVars: []string{"DASHBOARD_FAILURE_POLICY"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Upper bound for the whole command",
			Value: time.Minute,
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "dashboard",
		Usage: "Build RetailSense dashboard views from the command line",
		Commands: []*cli.Command{
			{
				Name:  "snapshot",
				Usage: "Refresh one view and export it",
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:  "view",
						Usage: "View to build (" + strings.Join(domain.Views(), ", ") + ")",
						Value: domain.ViewDashboard,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (json, csv or xlsx)",
						Value: string(report.FormatJSON),
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output file; stdout when empty",
					},
				),
				Action: runSnapshot,
			},
			{
				Name:   "login",
				Usage:  "Sign in and print the resulting session status",
				Flags:  backendFlags(),
				Action: runLogin,
			},
		},
	}
}

// loadConfig layers the command flags over the environment defaults.
func loadConfig(c *cli.Context) *config.Config {
	v := viper.New()
	config.SetDefaults(v)
	v.AutomaticEnv()

	overrides := map[string]string{
		"backend-url": "BACKEND_BASE_URL",
		"email":       "BACKEND_EMAIL",
		"password":    "BACKEND_PASSWORD",
		"policy":      "DASHBOARD_FAILURE_POLICY",
	}
	for flag, key := range overrides {
		if c.IsSet(flag) {
			v.Set(key, c.String(flag))
		}
	}
	return config.FromViper(v)
}

func runSnapshot(c *cli.Context) error {
	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	cfg := loadConfig(c)
	svc, err := service.NewFromConfig(cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	if _, err := svc.LoginFromConfig(ctx, cfg.Backend); err != nil {
		return err
	}

	st, err := svc.RefreshAndWait(ctx, c.String("view"))
	if err != nil {
		return err
	}
	if st.State != refresh.StateReady {
		return fmt.Errorf("view %s did not refresh: %s", st.View, st.Error)
	}
	if len(st.FailedSections) > 0 {
		logger.Log.Warn().Strs("sections", st.FailedSections).Str("view", st.View).Msg("exporting with default data for failed sections")
	}

	var out io.Writer = c.App.Writer
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	return report.Export(out, format, st.Model)
}

func runLogin(c *cli.Context) error {
	cfg := loadConfig(c)
	if cfg.Backend.Email == "" || cfg.Backend.Password == "" {
		return cli.Exit("email and password are required", 2)
	}

	svc, err := service.NewFromConfig(cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	resp, err := svc.LoginFromConfig(ctx, cfg.Backend)
	if err != nil {
		return err
	}

	status := svc.SessionStatus()
	fmt.Fprintf(c.App.Writer, "signed in as %s\n", resp.User.Email)
	if status.ExpiresAt != nil {
		fmt.Fprintf(c.App.Writer, "session expires at %s\n", status.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func main() {
	_ = godotenv.Load()
	logger.SetLevel(os.Getenv("LOG_LEVEL"))

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("dashboard command failed")
	}
}
