package utils

import (
	"time"
)

// Billing constants
const (
	// DefaultBillingCutoffDay is the day of month before which the current
	// calendar month is not yet considered due (grace window)
	DefaultBillingCutoffDay = 5

	// DefaultScanWorkers bounds the fleet scan worker pool
	DefaultScanWorkers = 8

	// DefaultScanCacheTTL is how long a scan result stays memoized; short on
	// purpose so a freshly recorded payment shows up quickly
	DefaultScanCacheTTL = 30 * time.Second

	// DashboardMonths is the number of trailing period tiles the dashboard shows
	DashboardMonths = 12

	// PesoCurrency is the display currency for amounts owed
	PesoCurrency = "MXN"
)

// Router control constants
const (
	// DefaultControllerTimeout bounds a single suspend/reactivate call against
	// the router control bridge
	DefaultControllerTimeout = 10 * time.Second
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
