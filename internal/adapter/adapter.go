// Package adapter has one function per backend query. Each adapter knows its
// path, query parameters and declared envelope shape, and returns the raw body
// untouched. Errors from the transport propagate unchanged; nothing is retried.
package adapter

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/andresuchdata/retailsense/backend-go/internal/domain"
	"github.com/andresuchdata/retailsense/backend-go/internal/normalize"
)

// Parameter defaults.
const (
	DefaultDays     = 7
	DefaultLimit    = 5
	DefaultPeriod   = domain.PeriodWeek
	DefaultPriority = domain.PriorityHigh
)

// Getter is the transport capability the adapters need.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// Endpoint describes one backend query.
type Endpoint struct {
	Name  string
	Path  string
	Shape normalize.Shape
}

var (
	SalesTrendEndpoint = Endpoint{
		Name:  "sales_trend",
		Path:  "/analytics/sales-trend",
		Shape: normalize.Wrapped{Field: "data"},
	}
	TopProductsEndpoint = Endpoint{
		Name:  "top_products",
		Path:  "/analytics/top-products",
		Shape: normalize.Wrapped{Field: "products"},
	}
	CategoryDistributionEndpoint = Endpoint{
		Name:  "category_distribution",
		Path:  "/analytics/category-distribution",
		Shape: normalize.Wrapped{Field: "categories"},
	}
	ProductStatsEndpoint = Endpoint{
		Name:  "product_stats",
		Path:  "/products/stats",
		Shape: normalize.Object{},
	}
	SalesSummaryEndpoint = Endpoint{
		Name:  "sales_summary",
		Path:  "/sales/summary",
		Shape: normalize.Object{},
	}
	AIInsightsEndpoint = Endpoint{
		Name:  "ai_insights",
		Path:  "/ai/insights",
		Shape: normalize.Sequence{},
	}
	ProductsEndpoint = Endpoint{
		Name:  "products",
		Path:  "/products",
		Shape: normalize.Sequence{},
	}
	// The sales list is paginated on some backend versions.
	SalesEndpoint = Endpoint{
		Name:  "sales",
		Path:  "/sales",
		Shape: normalize.Wrapped{Field: "content"},
	}
)

// Endpoints lists every adapter endpoint.
func Endpoints() []Endpoint {
	return []Endpoint{
		SalesTrendEndpoint,
		TopProductsEndpoint,
		CategoryDistributionEndpoint,
		ProductStatsEndpoint,
		SalesSummaryEndpoint,
		AIInsightsEndpoint,
		ProductsEndpoint,
		SalesEndpoint,
	}
}

// Adapters binds the endpoint functions to a transport
type Adapters struct {
	client Getter
}

func New(client Getter) *Adapters {
	return &Adapters{client: client}
}

func (a *Adapters) get(ctx context.Context, e Endpoint, query url.Values) (json.RawMessage, error) {
	return a.client.Get(ctx, e.Path, query)
}

// SalesTrend fetches the daily sales of the last days (default 7).
func (a *Adapters) SalesTrend(ctx context.Context, days int) (json.RawMessage, error) {
	if days <= 0 {
		days = DefaultDays
	}
	return a.get(ctx, SalesTrendEndpoint, url.Values{"days": {strconv.Itoa(days)}})
}

// TopProducts fetches the revenue ranking bounded to limit (default 5).
func (a *Adapters) TopProducts(ctx context.Context, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return a.get(ctx, TopProductsEndpoint, url.Values{"limit": {strconv.Itoa(limit)}})
}

func (a *Adapters) CategoryDistribution(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, CategoryDistributionEndpoint, nil)
}

func (a *Adapters) ProductStats(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, ProductStatsEndpoint, nil)
}

// SalesSummary fetches revenue and transactions for period (default week).
func (a *Adapters) SalesSummary(ctx context.Context, period domain.Period) (json.RawMessage, error) {
	if period == "" {
		period = DefaultPeriod
	}
	return a.get(ctx, SalesSummaryEndpoint, url.Values{"period": {string(period)}})
}

// AIInsights fetches insights filtered by priority on the backend (default HIGH).
func (a *Adapters) AIInsights(ctx context.Context, priority domain.Priority) (json.RawMessage, error) {
	if priority == "" {
		priority = DefaultPriority
	}
	return a.get(ctx, AIInsightsEndpoint, url.Values{"priority": {string(priority)}})
}

func (a *Adapters) Products(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, ProductsEndpoint, nil)
}

func (a *Adapters) Sales(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, SalesEndpoint, nil)
}
