package main

import (
	"net/http"
	"os"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/stubbackend"
	"github.com/andresuchdata/retailsense/backend-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "stub-backend",
		Usage: "Serve canned RetailSense API responses for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				Value:   ":8080",
				EnvVars: []string{"STUB_BACKEND_ADDR"},
			},
			&cli.StringFlag{
				Name:    "require-token",
				Usage:   "Reject data requests without this bearer token",
				EnvVars: []string{"STUB_BACKEND_TOKEN"},
			},
		},
		Action: func(c *cli.Context) error {
			backend := stubbackend.New()
			if token := c.String("require-token"); token != "" {
				backend.RequireToken(token)
			}

			srv := &http.Server{
				Addr:              c.String("addr"),
				Handler:           backend.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			logger.Log.Info().Str("addr", srv.Addr).Str("prefix", stubbackend.APIPrefix).Msg("Starting stub backend")
			return srv.ListenAndServe()
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("stub backend stopped")
	}
}
