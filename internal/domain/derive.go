package domain

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProfitMargin returns (selling - purchase) / selling * 100, or zero when the
// selling price is zero.
func (p Product) ProfitMargin() decimal.Decimal {
	if p.SellingPrice.IsZero() {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.PurchasePrice).Div(p.SellingPrice).Mul(hundred)
}

// LowStock reports whether the on-hand quantity is at or below the threshold.
func (p Product) LowStock() bool {
	return p.Quantity <= p.MinimumThreshold
}

func (p Product) StockStatus() StockStatus {
	switch {
	case p.Quantity == 0:
		return StockOut
	case p.LowStock():
		return StockLow
	default:
		return StockSufficient
	}
}

// DeriveStats counts products and low stock products in one snapshot.
func DeriveStats(products []Product) DashboardStats {
	stats := DashboardStats{TotalProducts: len(products)}
	for _, p := range products {
		if p.LowStock() {
			stats.LowStockCount++
		}
	}
	return stats
}

// ExpectedRevenue is quantitySold * salePrice.
func (s SaleRecord) ExpectedRevenue() decimal.Decimal {
	return s.SalePrice.Mul(decimal.NewFromInt(int64(s.QuantitySold)))
}

// RevenueMismatch reports a record whose totalRevenue disagrees with
// quantitySold * salePrice.
func (s SaleRecord) RevenueMismatch() bool {
	return !s.TotalRevenue.Equal(s.ExpectedRevenue())
}

// SharesTotal sums the percentages of a category distribution.
func SharesTotal(shares []CategoryShare) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Percentage)
	}
	return total
}

// SharesWithinTolerance reports whether the shares sum to 100 within tolerance.
// An empty distribution has nothing to check and passes.
func SharesWithinTolerance(shares []CategoryShare, tolerance decimal.Decimal) bool {
	if len(shares) == 0 {
		return true
	}
	return SharesTotal(shares).Sub(hundred).Abs().LessThanOrEqual(tolerance)
}

// RevenueShare returns part / total * 100, or zero for an empty total.
func RevenueShare(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}
