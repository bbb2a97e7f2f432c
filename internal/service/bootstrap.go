package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/adapter"
	"github.com/andresuchdata/retailsense/backend-go/internal/apiclient"
	"github.com/andresuchdata/retailsense/backend-go/internal/cache"
	"github.com/andresuchdata/retailsense/backend-go/internal/config"
	"github.com/andresuchdata/retailsense/backend-go/internal/metrics"
	"github.com/andresuchdata/retailsense/backend-go/internal/pipeline"
	"github.com/andresuchdata/retailsense/backend-go/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// NewFromConfig wires the session, transport, aggregator, cache and metrics
// described by cfg. reg may be nil to skip instrumentation.
func NewFromConfig(cfg *config.Config, reg prometheus.Registerer) (*DashboardService, error) {
	opts, err := pipeline.OptionsFromConfig(cfg.Dashboard)
	if err != nil {
		return nil, err
	}

	snapshots, err := cache.NewSnapshotCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	sess := session.New()
	if cfg.Backend.Token != "" {
		sess.Login(cfg.Backend.Token, 0)
	}

	client := apiclient.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second, sess)
	agg := pipeline.NewAggregator(adapter.New(client), opts, m)

	log.Info().
		Str("backend", cfg.Backend.BaseURL).
		Str("policy", string(opts.Policy)).
		Bool("cache", cfg.Cache.Enabled).
		Msg("dashboard service configured")

	return NewDashboardService(client, agg, snapshots, m), nil
}

// LoginFromConfig signs in with the configured credentials without refreshing
// any view. It returns nil when no credentials are configured.
func (s *DashboardService) LoginFromConfig(ctx context.Context, cfg config.BackendConfig) (*apiclient.AuthResponse, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return nil, nil
	}
	resp, err := s.client.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("backend login as %s: %w", cfg.Email, err)
	}
	return resp, nil
}
