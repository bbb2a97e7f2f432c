package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProduct_ProfitMargin(t *testing.T) {
	testCases := []struct {
		name     string
		purchase string
		selling  string
		expected string
	}{
		{name: "regular margin", purchase: "80", selling: "100", expected: "20"},
		{name: "selling at cost", purchase: "50", selling: "50", expected: "0"},
		{name: "selling at loss", purchase: "120", selling: "100", expected: "-20"},
		{name: "zero selling price", purchase: "10", selling: "0", expected: "0"},
		{name: "fractional prices", purchase: "12.50", selling: "20.00", expected: "37.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{PurchasePrice: dec(tc.purchase), SellingPrice: dec(tc.selling)}
			assert.True(t, dec(tc.expected).Equal(p.ProfitMargin()), "got %s", p.ProfitMargin())
		})
	}
}

func TestProduct_LowStock(t *testing.T) {
	testCases := []struct {
		quantity  int
		threshold int
		low       bool
		status    StockStatus
	}{
		{quantity: 0, threshold: 10, low: true, status: StockOut},
		{quantity: 5, threshold: 10, low: true, status: StockLow},
		{quantity: 10, threshold: 10, low: true, status: StockLow},
		{quantity: 11, threshold: 10, low: false, status: StockSufficient},
		{quantity: 0, threshold: 0, low: true, status: StockOut},
	}

	for _, tc := range testCases {
		p := Product{Quantity: tc.quantity, MinimumThreshold: tc.threshold}
		assert.Equal(t, tc.low, p.LowStock(), "quantity=%d threshold=%d", tc.quantity, tc.threshold)
		assert.Equal(t, tc.status, p.StockStatus())
	}
}

func TestDeriveStats_CountsLowStock(t *testing.T) {
	products := []Product{
		{ID: 1, Quantity: 3, MinimumThreshold: 10},
		{ID: 2, Quantity: 30, MinimumThreshold: 10},
		{ID: 3, Quantity: 10, MinimumThreshold: 10},
	}

	stats := DeriveStats(products)

	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.LowStockCount)
	assert.Equal(t, DashboardStats{}, DeriveStats(nil))
}

func TestNewProductRow_RoundsMargin(t *testing.T) {
	row := NewProductRow(Product{PurchasePrice: dec("2"), SellingPrice: dec("3"), Quantity: 1, MinimumThreshold: 5})

	assert.Equal(t, "33.33", row.ProfitMargin.String())
	assert.True(t, row.LowStock)
	assert.Equal(t, StockLow, row.StockStatus)
}

func TestSaleRecord_RevenueMismatch(t *testing.T) {
	ok := SaleRecord{QuantitySold: 3, SalePrice: dec("2.50"), TotalRevenue: dec("7.5")}
	bad := SaleRecord{QuantitySold: 3, SalePrice: dec("2.50"), TotalRevenue: dec("8")}

	assert.False(t, ok.RevenueMismatch())
	assert.True(t, bad.RevenueMismatch())
}

func TestSharesWithinTolerance(t *testing.T) {
	tolerance := dec("0.5")

	assert.True(t, SharesWithinTolerance([]CategoryShare{
		{Category: "Snacks", Percentage: dec("60")},
		{Category: "Beverages", Percentage: dec("40")},
	}, tolerance))
	assert.True(t, SharesWithinTolerance([]CategoryShare{
		{Category: "A", Percentage: dec("33.33")},
		{Category: "B", Percentage: dec("33.33")},
		{Category: "C", Percentage: dec("33.33")},
	}, tolerance))
	assert.False(t, SharesWithinTolerance([]CategoryShare{
		{Category: "A", Percentage: dec("70")},
		{Category: "B", Percentage: dec("20")},
	}, tolerance))
	assert.True(t, SharesWithinTolerance(nil, tolerance))
}

func TestRevenueShare(t *testing.T) {
	assert.Equal(t, "25", RevenueShare(dec("50"), dec("200")).String())
	assert.True(t, RevenueShare(dec("50"), decimal.Zero).IsZero())
}

func TestSections_Failed(t *testing.T) {
	sections := Sections{
		SectionTrend:   {OK: true},
		SectionStats:   {OK: false, Error: "boom"},
		SectionSummary: {OK: false, Error: "boom"},
	}

	assert.Equal(t, []string{SectionSummary, SectionStats}, sections.Failed())
	assert.True(t, sections.Degraded())
	assert.False(t, Sections{SectionTrend: {OK: true}}.Degraded())
}

func TestParsePriorityAndPeriod(t *testing.T) {
	p, ok := ParsePriority(" high ")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	_, ok = ParsePriority("urgent")
	assert.False(t, ok)

	period, ok := ParsePeriod("Month")
	assert.True(t, ok)
	assert.Equal(t, PeriodMonth, period)

	_, ok = ParsePeriod("year")
	assert.False(t, ok)
}

func TestDecodeBackendRecords(t *testing.T) {
	payload := `{
		"id": 7, "productId": 3, "productName": "Cola", "quantitySold": 2,
		"salePrice": 1.25, "totalRevenue": "2.50", "saleDate": "2024-01-02T10:15:30"
	}`

	var sale SaleRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &sale))

	assert.Equal(t, int64(7), sale.ID)
	assert.Equal(t, "2.5", sale.TotalRevenue.String())
	assert.Equal(t, time.Date(2024, 1, 2, 10, 15, 30, 0, time.UTC), sale.SaleDate.Time)
	assert.False(t, sale.RevenueMismatch())

	var point SalesTrendPoint
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-01","sales":120}`), &point))
	assert.Equal(t, NewDate(2024, time.January, 1), point.Date)
	assert.Equal(t, "120", point.Sales.String())

	out, err := json.Marshal(point)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-01","sales":120}`, string(out))
}

func TestTimestamp_RejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"01/02/2024"`), &d))
	assert.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}
