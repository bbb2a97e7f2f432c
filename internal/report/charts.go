// Package report turns finished view-models into chart datasets and tabular
// exports. It only reads published models and never calls the backend.
package report

import (
	"github.com/andresuchdata/retailsense/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Palette colours pie slices in order, wrapping around.
var Palette = []string{"#3B82F6", "#8B5CF6", "#EC4899", "#F59E0B", "#10B981"}

const (
	lineColor = "#3B82F6"
	barColor  = "#3B82F6"
)

// Placeholders shown instead of an empty chart.
const (
	NoSalesData   = "No sales data yet"
	NotEnoughData = "Not enough data"
)

type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
)

type Point struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color,omitempty"`
}

// Chart is one dataset ready for a charting surface. When Points is empty,
// Placeholder (if set) is displayed instead.
type Chart struct {
	Title       string    `json:"title"`
	Kind        ChartKind `json:"kind"`
	Points      []Point   `json:"points"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Empty reports whether the placeholder should be shown.
func (c Chart) Empty() bool {
	return len(c.Points) == 0
}

func SalesTrendChart(points []domain.SalesTrendPoint) Chart {
	chart := Chart{Title: "Sales Trend", Kind: ChartLine, Points: make([]Point, len(points))}
	for i, p := range points {
		chart.Points[i] = Point{Label: p.Date.String(), Value: p.Sales, Color: lineColor}
	}
	return chart
}

func TopProductsChart(rows []domain.TopProductRow) Chart {
	chart := Chart{Title: "Top Products", Kind: ChartBar, Points: make([]Point, len(rows)), Placeholder: NoSalesData}
	for i, r := range rows {
		chart.Points[i] = Point{Label: r.ProductName, Value: r.TotalRevenue, Color: barColor}
	}
	return chart
}

func CategoryChart(shares []domain.CategoryShare) Chart {
	chart := Chart{Title: "Category Distribution", Kind: ChartPie, Points: make([]Point, len(shares)), Placeholder: NotEnoughData}
	for i, s := range shares {
		chart.Points[i] = Point{Label: s.Category, Value: s.Percentage, Color: Palette[i%len(Palette)]}
	}
	return chart
}

// Charts returns the chart datasets of a view-model; views without charts
// yield none.
func Charts(model any) []Chart {
	switch vm := model.(type) {
	case *domain.DashboardViewModel:
		return []Chart{SalesTrendChart(vm.SalesTrend), CategoryChart(vm.Categories)}
	case *domain.AnalyticsViewModel:
		return []Chart{SalesTrendChart(vm.SalesTrend), TopProductsChart(vm.TopProducts), CategoryChart(vm.Categories)}
	default:
		return nil
	}
}
