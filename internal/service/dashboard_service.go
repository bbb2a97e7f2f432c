package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/apiclient"
	"github.com/andresuchdata/retailsense/backend-go/internal/cache"
	"github.com/andresuchdata/retailsense/backend-go/internal/domain"
	"github.com/andresuchdata/retailsense/backend-go/internal/metrics"
	"github.com/andresuchdata/retailsense/backend-go/internal/pipeline"
	"github.com/andresuchdata/retailsense/backend-go/internal/refresh"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownView = errors.New("unknown view")
	// ErrNotStarted rejects a manual refresh of a view whose initial run has
	// not been fired.
	ErrNotStarted = errors.New("view has not started")
)

const cacheWriteTimeout = 2 * time.Second

// ViewState is what a display surface receives for one view.
type ViewState struct {
	View  string        `json:"view"`
	State refresh.State `json:"state"`
	// Stale marks a model served from the shared cache because this process
	// has not published one yet.
	Stale          bool       `json:"stale"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	Error          string     `json:"error,omitempty"`
	FailedSections []string   `json:"failed_sections,omitempty"`
	Model          any        `json:"model"`
}

// SessionStatus reports the backend session held by the service.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	Expired       bool       `json:"expired"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type view interface {
	start(ctx context.Context) <-chan struct{}
	trigger(ctx context.Context) (<-chan struct{}, bool)
	done() <-chan struct{}
	snapshotState() refresh.State
	state(ctx context.Context) ViewState
}

type controlledView[T any] struct {
	name  string
	ctrl  *refresh.Controller[T]
	cache cache.SnapshotCache
}

func newControlledView[T any](name string, run refresh.Func[T], snapshots cache.SnapshotCache, m *metrics.Metrics) *controlledView[T] {
	v := &controlledView[T]{
		name:  name,
		ctrl:  refresh.NewController(name, run, m),
		cache: snapshots,
	}
	v.ctrl.OnPublish(v.storeSnapshot)
	return v
}

func (v *controlledView[T]) storeSnapshot(model T) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()
	if err := v.cache.Set(ctx, v.name, model); err != nil {
		log.Warn().Err(err).Str("view", v.name).Msg("dashboard: cache set snapshot failed")
	}
}

func (v *controlledView[T]) start(ctx context.Context) <-chan struct{} {
	return v.ctrl.Start(ctx)
}

func (v *controlledView[T]) trigger(ctx context.Context) (<-chan struct{}, bool) {
	return v.ctrl.Trigger(ctx)
}

func (v *controlledView[T]) done() <-chan struct{} {
	return v.ctrl.Done()
}

func (v *controlledView[T]) snapshotState() refresh.State {
	return v.ctrl.Snapshot().State
}

func (v *controlledView[T]) state(ctx context.Context) ViewState {
	snap := v.ctrl.Snapshot()

	st := ViewState{View: v.name, State: snap.State}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt
		st.UpdatedAt = &updated
	}
	if snap.LastError != nil {
		st.Error = snap.LastError.Error()
		var partial *pipeline.PartialFailureError
		if errors.As(snap.LastError, &partial) {
			st.FailedSections = partial.Sections()
		}
	}

	if snap.HasModel {
		st.Model = snap.Model
		return st
	}

	var cached T
	found, err := v.cache.Get(ctx, v.name, &cached)
	if err != nil {
		log.Warn().Err(err).Str("view", v.name).Msg("dashboard: cache get snapshot failed")
		return st
	}
	if found {
		st.Model = cached
		st.Stale = true
	}
	return st
}

// DashboardService owns one refresh controller per view and the backend session
type DashboardService struct {
	client *apiclient.Client
	cache  cache.SnapshotCache
	views  map[string]view
}

func NewDashboardService(client *apiclient.Client, agg *pipeline.Aggregator, snapshots cache.SnapshotCache, m *metrics.Metrics) *DashboardService {
	if snapshots == nil {
		snapshots = cache.NewNoopSnapshotCache()
	}

	return &DashboardService{
		client: client,
		cache:  snapshots,
		views: map[string]view{
			domain.ViewDashboard: newControlledView[*domain.DashboardViewModel](domain.ViewDashboard, agg.Dashboard, snapshots, m),
			domain.ViewAnalytics: newControlledView[*domain.AnalyticsViewModel](domain.ViewAnalytics, agg.Analytics, snapshots, m),
			domain.ViewProducts:  newControlledView[*domain.ProductsViewModel](domain.ViewProducts, agg.Products, snapshots, m),
			domain.ViewSales:     newControlledView[*domain.SalesViewModel](domain.ViewSales, agg.Sales, snapshots, m),
		},
	}
}

func (s *DashboardService) lookup(name string) (view, error) {
	v, ok := s.views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return v, nil
}

// Start fires the initial refresh of every view. The returned channel closes
// once all of them have published.
func (s *DashboardService) Start(ctx context.Context) <-chan struct{} {
	dones := make([]<-chan struct{}, 0, len(s.views))
	for _, name := range domain.Views() {
		dones = append(dones, s.views[name].start(ctx))
	}
	return joinDone(dones)
}

// Refresh requests a new cycle of one view. accepted is false when a cycle
// of that view is already loading.
func (s *DashboardService) Refresh(ctx context.Context, name string) (done <-chan struct{}, accepted bool, err error) {
	v, err := s.lookup(name)
	if err != nil {
		return nil, false, err
	}
	done, accepted = v.trigger(ctx)
	if !accepted && v.snapshotState() == refresh.StateIdle {
		return nil, false, fmt.Errorf("%w: %q", ErrNotStarted, name)
	}
	return done, accepted, nil
}

// cycle returns the done channel of a fresh or running cycle of v. An idle
// view gets its initial run.
func (s *DashboardService) cycle(ctx context.Context, v view) <-chan struct{} {
	if v.snapshotState() == refresh.StateIdle {
		return v.start(ctx)
	}
	if done, ok := v.trigger(ctx); ok {
		return done
	}
	return v.done()
}

// RefreshAll runs a cycle of every view, joining cycles already loading.
func (s *DashboardService) RefreshAll(ctx context.Context) <-chan struct{} {
	dones := make([]<-chan struct{}, 0, len(s.views))
	for _, name := range domain.Views() {
		dones = append(dones, s.cycle(ctx, s.views[name]))
	}
	return joinDone(dones)
}

// RefreshAndWait runs one cycle of a view to completion and returns its state.
// An idle view gets its initial run; a view already loading is waited on.
func (s *DashboardService) RefreshAndWait(ctx context.Context, name string) (ViewState, error) {
	v, err := s.lookup(name)
	if err != nil {
		return ViewState{}, err
	}

	select {
	case <-s.cycle(ctx, v):
	case <-ctx.Done():
		return ViewState{}, ctx.Err()
	}
	return v.state(ctx), nil
}

// View returns the current state of one view without blocking on a refresh.
func (s *DashboardService) View(ctx context.Context, name string) (ViewState, error) {
	v, err := s.lookup(name)
	if err != nil {
		return ViewState{}, err
	}
	return v.state(ctx), nil
}

// Login authenticates against the backend and refreshes every view with the
// new credentials.
func (s *DashboardService) Login(ctx context.Context, email, password string) (*apiclient.AuthResponse, error) {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	log.Info().Str("email", resp.User.Email).Msg("dashboard: backend session started")
	s.RefreshAll(ctx)
	return resp, nil
}

// Logout drops the backend session and the shared snapshots.
func (s *DashboardService) Logout(ctx context.Context) error {
	s.client.Logout()
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate snapshots: %w", err)
	}
	return nil
}

func (s *DashboardService) SessionStatus() SessionStatus {
	sess := s.client.Session()
	status := SessionStatus{
		Authenticated: sess.Authenticated(),
		Expired:       sess.IsExpired(),
	}
	if exp := sess.ExpiresAt(); !exp.IsZero() {
		status.ExpiresAt = &exp
	}
	return status
}

func joinDone(dones []<-chan struct{}) <-chan struct{} {
	all := make(chan struct{})
	go func() {
		defer close(all)
		for _, d := range dones {
			<-d
		}
	}()
	return all
}

// Views lists the view names in display order.
func (s *DashboardService) Views() []string {
	return domain.Views()
}
