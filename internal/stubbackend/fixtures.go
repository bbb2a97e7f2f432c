package stubbackend

// Default payloads mirror the shapes the RetailSense backend returns.
const (
	salesTrendJSON = `{
  "period": "last_7_days",
  "data": [
    {"date": "2024-01-01", "sales": 120, "transactions": 3},
    {"date": "2024-01-02", "sales": 95, "transactions": 2}
  ]
}`

	topProductsJSON = `{
  "products": [
    {"productId": 1, "productName": "Masala Chips", "category": "Snacks", "totalRevenue": 130, "totalUnitsSold": 26, "salesCount": 4, "profitMargin": 25},
    {"productId": 2, "productName": "Cola 500ml", "category": "Beverages", "totalRevenue": 60, "totalUnitsSold": 15, "salesCount": 2, "profitMargin": 20},
    {"productId": 3, "productName": "Salted Peanuts", "category": "Snacks", "totalRevenue": 25, "totalUnitsSold": 5, "salesCount": 1, "profitMargin": 40}
  ]
}`

	categoryDistributionJSON = `{
  "categories": [
    {"category": "Snacks", "totalRevenue": 155, "totalProducts": 2, "percentage": 60},
    {"category": "Beverages", "totalRevenue": 60, "totalProducts": 1, "percentage": 40}
  ]
}`

	productStatsJSON = `{"totalProducts": 3, "lowStockCount": 1, "categories": 2}`

	salesSummaryJSON = `{
  "period": "week",
  "totalRevenue": 215,
  "totalTransactions": 7,
  "totalUnitsSold": 46,
  "averageTransactionValue": 30.71
}`

	aiInsightsJSON = `[
  {"id": 1, "productId": 3, "productName": "Salted Peanuts", "currentStock": 2, "priority": "HIGH", "reason": "Stock covers less than 2 days", "action": "Reorder 40 units"},
  {"id": 2, "productId": 1, "productName": "Masala Chips", "currentStock": 8, "priority": "HIGH", "reason": "Sales up 30% week over week", "action": "Reorder 60 units"},
  {"id": 3, "productId": 4, "productName": "Green Tea", "currentStock": 0, "priority": "HIGH", "reason": "Out of stock", "action": "Reorder 25 units"},
  {"id": 4, "productId": 5, "productName": "Milk 1L", "currentStock": 4, "priority": "HIGH", "reason": "Perishable, high velocity", "action": "Reorder 30 units"},
  {"id": 5, "productId": 6, "productName": "Soap Bar", "currentStock": 3, "priority": "HIGH", "reason": "Below minimum threshold", "action": "Reorder 20 units"}
]`

	productsJSON = `[
  {"id": 1, "name": "Masala Chips", "category": "Snacks", "purchasePrice": 3.75, "sellingPrice": 5.00, "quantity": 40, "minimumThreshold": 10},
  {"id": 2, "name": "Cola 500ml", "category": "Beverages", "purchasePrice": 3.20, "sellingPrice": 4.00, "quantity": 12, "minimumThreshold": 12},
  {"id": 3, "name": "Salted Peanuts", "category": "Snacks", "purchasePrice": 3.00, "sellingPrice": 5.00, "quantity": 25, "minimumThreshold": 10}
]`

	salesJSON = `{
  "content": [
    {"id": 10, "productId": 1, "productName": "Masala Chips", "productCategory": "Snacks", "quantitySold": 6, "salePrice": 5.00, "totalRevenue": 30.00, "saleDate": "2024-01-02T10:15:30"},
    {"id": 11, "productId": 2, "productName": "Cola 500ml", "productCategory": "Beverages", "quantitySold": 5, "salePrice": 4.00, "totalRevenue": 20.00, "saleDate": "2024-01-02T11:00:00"}
  ],
  "totalElements": 2,
  "totalPages": 1
}`

	loginJSON = `{
  "token": "stub-token",
  "type": "Bearer",
  "expiresIn": 86400,
  "user": {"id": 1, "email": "owner@retailsense.test", "fullName": "Store Owner", "role": "ADMIN"}
}`
)

// Backend paths relative to the API root.
const (
	PathSalesTrend           = "/analytics/sales-trend"
	PathTopProducts          = "/analytics/top-products"
	PathCategoryDistribution = "/analytics/category-distribution"
	PathProductStats         = "/products/stats"
	PathSalesSummary         = "/sales/summary"
	PathAIInsights           = "/ai/insights"
	PathProducts             = "/products"
	PathSales                = "/sales"
	PathLogin                = "/auth/login"
)

// DefaultRoutes returns the fixture responses keyed by path.
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		PathSalesTrend:           {Body: salesTrendJSON},
		PathTopProducts:          {Body: topProductsJSON},
		PathCategoryDistribution: {Body: categoryDistributionJSON},
		PathProductStats:         {Body: productStatsJSON},
		PathSalesSummary:         {Body: salesSummaryJSON},
		PathAIInsights:           {Body: aiInsightsJSON},
		PathProducts:             {Body: productsJSON},
		PathSales:                {Body: salesJSON},
	}
}
