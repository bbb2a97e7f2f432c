package domain

import "strings"

// Priority of an AI insight.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

var priorities = map[string]Priority{
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"high":   PriorityHigh,
}

// ParsePriority returns the priority for a given label (case-insensitive).
func ParsePriority(label string) (Priority, bool) {
	p, ok := priorities[strings.ToLower(strings.TrimSpace(label))]

	return p, ok
}

// Period selects the window of the sales summary.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod returns the period for a given label (case-insensitive).
func ParsePeriod(label string) (Period, bool) {
	switch Period(strings.ToLower(strings.TrimSpace(label))) {
	case PeriodToday:
		return PeriodToday, true
	case PeriodWeek:
		return PeriodWeek, true
	case PeriodMonth:
		return PeriodMonth, true
	}

	return "", false
}

// StockStatus classifies the on-hand quantity of a product.
type StockStatus string

const (
	StockOut        StockStatus = "OUT_OF_STOCK"
	StockLow        StockStatus = "LOW_STOCK"
	StockSufficient StockStatus = "SUFFICIENT"
)
