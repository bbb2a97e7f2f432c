package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/andresuchdata/retailsense/backend-go/internal/domain"
)

var ErrUnsupportedModel = errors.New("unsupported view-model")

// Table is one exportable section of a view.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Tables flattens a view-model into its sections, in display order, followed
// by the per-section status of the refresh cycle.
func Tables(model any) ([]Table, error) {
	var (
		tables []Table
		meta   domain.ViewMeta
	)

	switch vm := model.(type) {
	case *domain.DashboardViewModel:
		meta = vm.ViewMeta
		tables = []Table{
			summaryTable(vm.Stats, vm.SalesSummary),
			trendTable(vm.SalesTrend),
			topProductsTable(vm.TopProducts),
			categoriesTable(vm.Categories),
			insightsTable(vm.Insights),
		}
	case *domain.AnalyticsViewModel:
		meta = vm.ViewMeta
		tables = []Table{
			trendTable(vm.SalesTrend),
			topProductsTable(vm.TopProducts),
			categoriesTable(vm.Categories),
		}
	case *domain.ProductsViewModel:
		meta = vm.ViewMeta
		tables = []Table{productsTable(vm.Products)}
	case *domain.SalesViewModel:
		meta = vm.ViewMeta
		tables = []Table{salesTable(vm.Sales)}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedModel, model)
	}

	return append(tables, sectionsTable(meta)), nil
}

func summaryTable(stats domain.DashboardStats, summary domain.SalesSummary) Table {
	return Table{
		Name:   "summary",
		Header: []string{"metric", "value"},
		Rows: [][]string{
			{"total_products", strconv.Itoa(stats.TotalProducts)},
			{"low_stock_count", strconv.Itoa(stats.LowStockCount)},
			{"total_revenue", summary.TotalRevenue.StringFixed(2)},
			{"total_transactions", strconv.FormatInt(summary.TotalTransactions, 10)},
		},
	}
}

func trendTable(points []domain.SalesTrendPoint) Table {
	t := Table{Name: "sales_trend", Header: []string{"date", "sales"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{p.Date.String(), p.Sales.StringFixed(2)})
	}
	return t
}

func topProductsTable(rows []domain.TopProductRow) Table {
	t := Table{Name: "top_products", Header: []string{"rank", "product", "category", "revenue", "units_sold", "revenue_share"}}
	for i, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			r.ProductName,
			r.Category,
			r.TotalRevenue.StringFixed(2),
			strconv.Itoa(r.TotalUnitsSold),
			r.RevenueShare.StringFixed(2),
		})
	}
	return t
}

func categoriesTable(shares []domain.CategoryShare) Table {
	t := Table{Name: "categories", Header: []string{"category", "percentage"}}
	for _, s := range shares {
		t.Rows = append(t.Rows, []string{s.Category, s.Percentage.StringFixed(2)})
	}
	return t
}

func insightsTable(items []domain.AIInsight) Table {
	t := Table{Name: "ai_insights", Header: []string{"product", "priority", "reason"}}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{it.ProductName, string(it.Priority), it.Reason})
	}
	return t
}

func productsTable(rows []domain.ProductRow) Table {
	t := Table{Name: "products", Header: []string{
		"id", "name", "category", "purchase_price", "selling_price",
		"quantity", "minimum_threshold", "profit_margin", "low_stock", "stock_status",
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Name,
			r.Category,
			r.PurchasePrice.StringFixed(2),
			r.SellingPrice.StringFixed(2),
			strconv.Itoa(r.Quantity),
			strconv.Itoa(r.MinimumThreshold),
			r.ProfitMargin.StringFixed(2),
			strconv.FormatBool(r.LowStock),
			string(r.StockStatus),
		})
	}
	return t
}

func salesTable(rows []domain.SaleRow) Table {
	t := Table{Name: "sales", Header: []string{
		"id", "product", "quantity_sold", "sale_price", "total_revenue", "sale_date", "revenue_mismatch",
	}}
	for _, r := range rows {
		date := ""
		if !r.SaleDate.IsZero() {
			date = r.SaleDate.Format("2006-01-02 15:04:05")
		}
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.ProductName,
			strconv.Itoa(r.QuantitySold),
			r.SalePrice.StringFixed(2),
			r.TotalRevenue.StringFixed(2),
			date,
			strconv.FormatBool(r.RevenueMismatch),
		})
	}
	return t
}

func sectionsTable(meta domain.ViewMeta) Table {
	t := Table{Name: "sections", Header: []string{"section", "ok", "error", "warnings"}}
	names := make([]string, 0, len(meta.Sections))
	for name := range meta.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := meta.Sections[name]
		t.Rows = append(t.Rows, []string{name, strconv.FormatBool(st.OK), st.Error, strings.Join(st.Warnings, "; ")})
	}
	return t
}
