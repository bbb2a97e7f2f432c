package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// View names, one refresh controller each.
const (
	ViewDashboard = "dashboard"
	ViewAnalytics = "analytics"
	ViewProducts  = "products"
	ViewSales     = "sales"
)

// Views lists every view in display order.
func Views() []string {
	return []string{ViewDashboard, ViewAnalytics, ViewProducts, ViewSales}
}

// Section names, one per constituent query of a view.
const (
	SectionStats       = "stats"
	SectionSummary     = "sales_summary"
	SectionTrend       = "sales_trend"
	SectionTopProducts = "top_products"
	SectionCategories  = "categories"
	SectionInsights    = "ai_insights"
	SectionProducts    = "products"
	SectionSales       = "sales"
)

// SectionStatus tells a consumer whether a section holds fetched data or defaults.
type SectionStatus struct {
	OK       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Sections maps a section name to its status for one refresh cycle.
type Sections map[string]SectionStatus

// Failed returns the names of failed sections in sorted order.
func (s Sections) Failed() []string {
	var failed []string
	for name, status := range s {
		if !status.OK {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}

// Degraded reports whether at least one section fell back to defaults.
func (s Sections) Degraded() bool {
	return len(s.Failed()) > 0
}

// ViewMeta is shared by every view-model.
type ViewMeta struct {
	CycleID     string    `json:"cycleId"`
	GeneratedAt time.Time `json:"generatedAt"`
	Sections    Sections  `json:"sections"`
}

// ProductRow is a product with its derived fields.
type ProductRow struct {
	Product
	ProfitMargin decimal.Decimal `json:"profitMargin"`
	LowStock     bool            `json:"lowStock"`
	StockStatus  StockStatus     `json:"stockStatus"`
}

func NewProductRow(p Product) ProductRow {
	return ProductRow{
		Product:      p,
		ProfitMargin: p.ProfitMargin().Round(2),
		LowStock:     p.LowStock(),
		StockStatus:  p.StockStatus(),
	}
}

// SaleRow is a sale with its validation flag.
type SaleRow struct {
	SaleRecord
	RevenueMismatch bool `json:"revenueMismatch"`
}

// TopProductRow is a ranked product with its share of the ranked revenue.
type TopProductRow struct {
	TopProductEntry
	RevenueShare decimal.Decimal `json:"revenueShare"`
}

// DashboardViewModel aggregates every dashboard section for one refresh cycle
type DashboardViewModel struct {
	ViewMeta
	Stats        DashboardStats    `json:"stats"`
	SalesSummary SalesSummary      `json:"salesSummary"`
	SalesTrend   []SalesTrendPoint `json:"salesTrend"`
	TopProducts  []TopProductRow   `json:"topProducts"`
	Categories   []CategoryShare   `json:"categories"`
	Insights     []AIInsight       `json:"aiInsights"`
}

// AnalyticsViewModel backs the analytics charts
type AnalyticsViewModel struct {
	ViewMeta
	SalesTrend  []SalesTrendPoint `json:"salesTrend"`
	TopProducts []TopProductRow   `json:"topProducts"`
	Categories  []CategoryShare   `json:"categories"`
}

// ProductsViewModel backs the products table
type ProductsViewModel struct {
	ViewMeta
	Products []ProductRow  `json:"products"`
	Stats    DashboardStats `json:"stats"`
}

// SalesViewModel backs the sales table
type SalesViewModel struct {
	ViewMeta
	Sales         []SaleRow `json:"sales"`
	MismatchCount int       `json:"mismatchCount"`
}
