package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/retailsense/backend-go/internal/adapter"
	"github.com/andresuchdata/retailsense/backend-go/internal/config"
	"github.com/andresuchdata/retailsense/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Policy decides how a refresh treats failed sections.
type Policy string

const (
	// PolicyLenient publishes the view with failed sections set to defaults and
	// flagged. The refresh fails only when every section failed.
	PolicyLenient Policy = "lenient"
	// PolicyStrict fails the refresh when any section failed.
	PolicyStrict Policy = "strict"
)

// ParsePolicy returns the policy for a label (case-insensitive).
func ParsePolicy(label string) (Policy, bool) {
	switch Policy(strings.ToLower(strings.TrimSpace(label))) {
	case PolicyLenient:
		return PolicyLenient, true
	case PolicyStrict:
		return PolicyStrict, true
	}
	return "", false
}

// Options tunes the queries and derivations of every view
type Options struct {
	TrendDays       int
	TopLimit        int
	SummaryPeriod   domain.Period
	InsightPriority domain.Priority
	// InsightKeep bounds the insights kept, in arrival order.
	InsightKeep int
	Policy      Policy
	// ResortTopProducts re-sorts the ranking by revenue and re-truncates it to
	// TopLimit instead of trusting the backend order.
	ResortTopProducts bool
	// CategoryTolerance is the allowed distance of the share total from 100.
	CategoryTolerance decimal.Decimal
}

// DefaultOptions returns the options the dashboard screens use
func DefaultOptions() Options {
	return Options{
		TrendDays:         adapter.DefaultDays,
		TopLimit:          adapter.DefaultLimit,
		SummaryPeriod:     adapter.DefaultPeriod,
		InsightPriority:   adapter.DefaultPriority,
		InsightKeep:       3,
		Policy:            PolicyLenient,
		CategoryTolerance: decimal.NewFromFloat(0.5),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TrendDays <= 0 {
		o.TrendDays = d.TrendDays
	}
	if o.TopLimit <= 0 {
		o.TopLimit = d.TopLimit
	}
	if o.SummaryPeriod == "" {
		o.SummaryPeriod = d.SummaryPeriod
	}
	if o.InsightPriority == "" {
		o.InsightPriority = d.InsightPriority
	}
	if o.InsightKeep <= 0 {
		o.InsightKeep = d.InsightKeep
	}
	if o.Policy == "" {
		o.Policy = d.Policy
	}
	if o.CategoryTolerance.IsNegative() || o.CategoryTolerance.IsZero() {
		o.CategoryTolerance = d.CategoryTolerance
	}
	return o
}

// Slot holds the settled result of one concurrent call: a value or a reason.
type Slot[T any] struct {
	Value T
	Err   error
}

func (s Slot[T]) OK() bool {
	return s.Err == nil
}

// SectionError is the failure of one section's backend call.
type SectionError struct {
	Section  string
	Endpoint string
	Err      error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Section, e.Endpoint, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

// PartialFailureError reports the failed sections of a rejected refresh.
type PartialFailureError struct {
	View     string
	Policy   Policy
	Total    int
	Failures []*SectionError
}

func (e *PartialFailureError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%s refresh failed (%s): %d of %d sections failed: %s",
		e.View, e.Policy, len(e.Failures), e.Total, strings.Join(parts, "; "))
}

func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Sections returns the failed section names in sorted order.
func (e *PartialFailureError) Sections() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Section
	}
	sort.Strings(names)
	return names
}

// OptionsFromConfig validates the dashboard settings and converts them.
func OptionsFromConfig(cfg config.DashboardConfig) (Options, error) {
	opts := Options{
		TrendDays:         cfg.TrendDays,
		TopLimit:          cfg.TopLimit,
		InsightKeep:       cfg.InsightKeep,
		ResortTopProducts: cfg.ResortTopProducts,
		CategoryTolerance: decimal.NewFromFloat(cfg.CategoryTolerance),
	}

	if cfg.SummaryPeriod != "" {
		period, ok := domain.ParsePeriod(cfg.SummaryPeriod)
		if !ok {
			return Options{}, fmt.Errorf("invalid summary period %q", cfg.SummaryPeriod)
		}
		opts.SummaryPeriod = period
	}
	if cfg.InsightPriority != "" {
		priority, ok := domain.ParsePriority(cfg.InsightPriority)
		if !ok {
			return Options{}, fmt.Errorf("invalid insight priority %q", cfg.InsightPriority)
		}
		opts.InsightPriority = priority
	}
	if cfg.FailurePolicy != "" {
		policy, ok := ParsePolicy(cfg.FailurePolicy)
		if !ok {
			return Options{}, fmt.Errorf("invalid failure policy %q", cfg.FailurePolicy)
		}
		opts.Policy = policy
	}

	return opts.withDefaults(), nil
}
