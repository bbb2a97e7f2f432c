// backend-go/internal/domain/models.go
package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Chart consumers expect plain JSON numbers for prices and percentages.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry as returned by GET /products
type Product struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	PurchasePrice    decimal.Decimal `json:"purchasePrice"`
	SellingPrice     decimal.Decimal `json:"sellingPrice"`
	Quantity         int             `json:"quantity"`
	MinimumThreshold int             `json:"minimumThreshold"`
}

// SaleRecord is a single recorded sale as returned by GET /sales
type SaleRecord struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	QuantitySold int             `json:"quantitySold"`
	SalePrice    decimal.Decimal `json:"salePrice"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	SaleDate     Timestamp       `json:"saleDate"`
}

// SalesTrendPoint is one day of the sales trend line
type SalesTrendPoint struct {
	Date  Date            `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// TopProductEntry is one row of the top products ranking, ordered by revenue on the backend
type TopProductEntry struct {
	ProductName    string          `json:"productName"`
	Category       string          `json:"category"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalUnitsSold int             `json:"totalUnitsSold"`
}

// CategoryShare is the revenue share of one category, already relative (0..100)
type CategoryShare struct {
	Category   string          `json:"category"`
	Percentage decimal.Decimal `json:"percentage"`
}

// DashboardStats are the product counters shown on the dashboard cards
type DashboardStats struct {
	TotalProducts int `json:"totalProducts"`
	LowStockCount int `json:"lowStockCount"`
}

// SalesSummary is the revenue summary for a requested period
type SalesSummary struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalTransactions int64           `json:"totalTransactions"`
}

// AIInsight is a restock recommendation produced by the backend
type AIInsight struct {
	ProductName string   `json:"productName"`
	Reason      string   `json:"reason"`
	Priority    Priority `json:"priority"`
}
