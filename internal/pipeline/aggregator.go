package pipeline

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/adapter"
	"github.com/andresuchdata/retailsense/backend-go/internal/domain"
	"github.com/andresuchdata/retailsense/backend-go/internal/metrics"
	"github.com/andresuchdata/retailsense/backend-go/internal/normalize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Aggregator builds view-models by fanning out to the endpoint adapters.
type Aggregator struct {
	adapters *adapter.Adapters
	opts     Options
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAggregator creates an Aggregator. m may be nil.
func NewAggregator(adapters *adapter.Adapters, opts Options, m *metrics.Metrics) *Aggregator {
	return &Aggregator{
		adapters: adapters,
		opts:     opts.withDefaults(),
		metrics:  m,
		now:      time.Now,
	}
}

func (a *Aggregator) Options() Options {
	return a.opts
}

// fetch is one section's backend call.
type fetch struct {
	section  string
	endpoint adapter.Endpoint
	call     func(ctx context.Context) (json.RawMessage, error)
}

// settle starts every call at once and waits for all of them. Each goroutine
// owns slot i, so the result order follows fetches, not completion.
func settle(ctx context.Context, fetches []fetch) []Slot[json.RawMessage] {
	slots := make([]Slot[json.RawMessage], len(fetches))

	var g errgroup.Group
	for i, f := range fetches {
		g.Go(func() error {
			raw, err := f.call(ctx)
			slots[i] = Slot[json.RawMessage]{Value: raw, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return slots
}

// cycle carries the bookkeeping of one refresh.
type cycle struct {
	view     string
	id       string
	started  time.Time
	policy   Policy
	sections domain.Sections
	failures []*SectionError
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func (a *Aggregator) newCycle(view string) *cycle {
	id := uuid.NewString()
	return &cycle{
		view:     view,
		id:       id,
		started:  a.now(),
		policy:   a.opts.Policy,
		sections: domain.Sections{},
		metrics:  a.metrics,
		log:      log.With().Str("view", view).Str("cycle_id", id).Logger(),
	}
}

func (c *cycle) meta() domain.ViewMeta {
	return domain.ViewMeta{
		CycleID:     c.id,
		GeneratedAt: c.started,
		Sections:    c.sections,
	}
}

func (c *cycle) fail(f fetch, err error) {
	c.sections[f.section] = domain.SectionStatus{OK: false, Error: err.Error()}
	c.failures = append(c.failures, &SectionError{Section: f.section, Endpoint: f.endpoint.Name, Err: err})
	c.metrics.FetchFailed(f.endpoint.Name)
	c.log.Warn().Err(err).Str("section", f.section).Str("endpoint", f.endpoint.Name).Msg("Section fetch failed")
}

func (c *cycle) ok(f fetch, outcome normalize.Outcome) {
	status := domain.SectionStatus{OK: true}
	if outcome == normalize.Fallback {
		status.Warnings = append(status.Warnings, "unrecognised response shape, showing no data")
		c.metrics.NormalizerFallback(f.endpoint.Name)
		c.log.Warn().Str("section", f.section).Str("endpoint", f.endpoint.Name).
			Str("shape", f.endpoint.Shape.String()).Msg("Response shape not recognised")
	}
	c.sections[f.section] = status
}

func (c *cycle) warn(section, msg string) {
	status := c.sections[section]
	status.Warnings = append(status.Warnings, msg)
	c.sections[section] = status
	c.log.Warn().Str("section", section).Msg(msg)
}

// finish applies the failure policy and records the outcome.
func (c *cycle) finish(elapsed time.Duration) error {
	var err error
	if len(c.failures) > 0 && (c.policy == PolicyStrict || len(c.failures) == len(c.sections)) {
		failures := append([]*SectionError(nil), c.failures...)
		sort.Slice(failures, func(i, j int) bool { return failures[i].Section < failures[j].Section })
		err = &PartialFailureError{View: c.view, Policy: c.policy, Total: len(c.sections), Failures: failures}
	}

	switch {
	case err != nil:
		c.metrics.ObserveRefresh(c.view, metrics.OutcomeFailed, elapsed)
		c.log.Error().Err(err).Dur("elapsed", elapsed).Msg("Refresh failed")
	case len(c.failures) > 0:
		c.metrics.ObserveRefresh(c.view, metrics.OutcomeDegraded, elapsed)
		c.log.Warn().Strs("failed_sections", c.sections.Failed()).Dur("elapsed", elapsed).Msg("Refresh completed with defaults")
	default:
		c.metrics.ObserveRefresh(c.view, metrics.OutcomeReady, elapsed)
		c.log.Debug().Dur("elapsed", elapsed).Msg("Refresh completed")
	}
	return err
}

func records[T any](c *cycle, f fetch, slot Slot[json.RawMessage]) []T {
	if !slot.OK() {
		c.fail(f, slot.Err)
		return []T{}
	}
	items, outcome := normalize.Records[T](slot.Value, f.endpoint.Shape)
	c.ok(f, outcome)
	return items
}

func value[T any](c *cycle, f fetch, slot Slot[json.RawMessage]) T {
	if !slot.OK() {
		c.fail(f, slot.Err)
		var zero T
		return zero
	}
	v, outcome := normalize.Value[T](slot.Value)
	c.ok(f, outcome)
	return v
}

func (a *Aggregator) trendFetch() fetch {
	return fetch{domain.SectionTrend, adapter.SalesTrendEndpoint, func(ctx context.Context) (json.RawMessage, error) {
		return a.adapters.SalesTrend(ctx, a.opts.TrendDays)
	}}
}

func (a *Aggregator) topFetch() fetch {
	return fetch{domain.SectionTopProducts, adapter.TopProductsEndpoint, func(ctx context.Context) (json.RawMessage, error) {
		return a.adapters.TopProducts(ctx, a.opts.TopLimit)
	}}
}

func (a *Aggregator) categoriesFetch() fetch {
	return fetch{domain.SectionCategories, adapter.CategoryDistributionEndpoint, a.adapters.CategoryDistribution}
}

// Dashboard builds the dashboard view from six concurrent queries.
func (a *Aggregator) Dashboard(ctx context.Context) (*domain.DashboardViewModel, error) {
	c := a.newCycle(domain.ViewDashboard)

	fetches := []fetch{
		{domain.SectionStats, adapter.ProductStatsEndpoint, a.adapters.ProductStats},
		{domain.SectionSummary, adapter.SalesSummaryEndpoint, func(ctx context.Context) (json.RawMessage, error) {
			return a.adapters.SalesSummary(ctx, a.opts.SummaryPeriod)
		}},
		a.trendFetch(),
		a.topFetch(),
		a.categoriesFetch(),
		{domain.SectionInsights, adapter.AIInsightsEndpoint, func(ctx context.Context) (json.RawMessage, error) {
			return a.adapters.AIInsights(ctx, a.opts.InsightPriority)
		}},
	}
	slots := settle(ctx, fetches)

	vm := &domain.DashboardViewModel{
		Stats:        value[domain.DashboardStats](c, fetches[0], slots[0]),
		SalesSummary: value[domain.SalesSummary](c, fetches[1], slots[1]),
		SalesTrend:   records[domain.SalesTrendPoint](c, fetches[2], slots[2]),
		TopProducts:  a.topProducts(records[domain.TopProductEntry](c, fetches[3], slots[3])),
		Categories:   a.categories(c, records[domain.CategoryShare](c, fetches[4], slots[4])),
		Insights:     a.insights(records[domain.AIInsight](c, fetches[5], slots[5])),
	}
	vm.ViewMeta = c.meta()

	if err := c.finish(a.now().Sub(c.started)); err != nil {
		return nil, err
	}
	return vm, nil
}

// Analytics builds the chart view from the trend, ranking and category queries.
func (a *Aggregator) Analytics(ctx context.Context) (*domain.AnalyticsViewModel, error) {
	c := a.newCycle(domain.ViewAnalytics)

	fetches := []fetch{a.trendFetch(), a.topFetch(), a.categoriesFetch()}
	slots := settle(ctx, fetches)

	vm := &domain.AnalyticsViewModel{
		SalesTrend:  records[domain.SalesTrendPoint](c, fetches[0], slots[0]),
		TopProducts: a.topProducts(records[domain.TopProductEntry](c, fetches[1], slots[1])),
		Categories:  a.categories(c, records[domain.CategoryShare](c, fetches[2], slots[2])),
	}
	vm.ViewMeta = c.meta()

	if err := c.finish(a.now().Sub(c.started)); err != nil {
		return nil, err
	}
	return vm, nil
}

// Products builds the products table with per-row derivations and derived stats.
func (a *Aggregator) Products(ctx context.Context) (*domain.ProductsViewModel, error) {
	c := a.newCycle(domain.ViewProducts)

	fetches := []fetch{{domain.SectionProducts, adapter.ProductsEndpoint, a.adapters.Products}}
	slots := settle(ctx, fetches)

	products := records[domain.Product](c, fetches[0], slots[0])
	rows := make([]domain.ProductRow, len(products))
	for i, p := range products {
		rows[i] = domain.NewProductRow(p)
	}

	vm := &domain.ProductsViewModel{
		Products: rows,
		Stats:    domain.DeriveStats(products),
	}
	vm.ViewMeta = c.meta()

	if err := c.finish(a.now().Sub(c.started)); err != nil {
		return nil, err
	}
	return vm, nil
}

// Sales builds the sales table, flagging rows whose revenue disagrees with
// quantity times price.
func (a *Aggregator) Sales(ctx context.Context) (*domain.SalesViewModel, error) {
	c := a.newCycle(domain.ViewSales)

	fetches := []fetch{{domain.SectionSales, adapter.SalesEndpoint, a.adapters.Sales}}
	slots := settle(ctx, fetches)

	sales := records[domain.SaleRecord](c, fetches[0], slots[0])
	vm := &domain.SalesViewModel{Sales: make([]domain.SaleRow, len(sales))}
	for i, s := range sales {
		mismatch := s.RevenueMismatch()
		if mismatch {
			vm.MismatchCount++
		}
		vm.Sales[i] = domain.SaleRow{SaleRecord: s, RevenueMismatch: mismatch}
	}
	if vm.MismatchCount > 0 {
		c.log.Warn().Int("count", vm.MismatchCount).Msg("Sales with revenue not equal to quantity times price")
	}
	vm.ViewMeta = c.meta()

	if err := c.finish(a.now().Sub(c.started)); err != nil {
		return nil, err
	}
	return vm, nil
}

func (a *Aggregator) topProducts(entries []domain.TopProductEntry) []domain.TopProductRow {
	if a.opts.ResortTopProducts {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].TotalRevenue.GreaterThan(entries[j].TotalRevenue)
		})
		if len(entries) > a.opts.TopLimit {
			entries = entries[:a.opts.TopLimit]
		}
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.TotalRevenue)
	}

	rows := make([]domain.TopProductRow, len(entries))
	for i, e := range entries {
		rows[i] = domain.TopProductRow{TopProductEntry: e, RevenueShare: domain.RevenueShare(e.TotalRevenue, total).Round(2)}
	}
	return rows
}

// categories passes the shares through untouched; a total off 100 is reported, not corrected.
func (a *Aggregator) categories(c *cycle, shares []domain.CategoryShare) []domain.CategoryShare {
	if !domain.SharesWithinTolerance(shares, a.opts.CategoryTolerance) {
		c.warn(domain.SectionCategories, "category shares sum to "+domain.SharesTotal(shares).String()+", expected 100")
	}
	return shares
}

func (a *Aggregator) insights(items []domain.AIInsight) []domain.AIInsight {
	if len(items) > a.opts.InsightKeep {
		return items[:a.opts.InsightKeep]
	}
	return items
}
