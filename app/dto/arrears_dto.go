package dto

// ScanArrearsRequest carries the worklist query parameters. All filters are
// optional; an empty reference date means "now".
type ScanArrearsRequest struct {
	ReferenceDate string `json:"reference_date,omitempty" query:"fecha" validate:"omitempty,datetime=2006-01-02"`
	Region        string `json:"region,omitempty" query:"region" validate:"omitempty,min=1,max=100"`
	PendingCount  int    `json:"pending_count,omitempty" query:"meses" validate:"omitempty,gte=1"`
}

// BillingPeriodDTO is one unpaid (month, year) unit
type BillingPeriodDTO struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ArrearsEntryDTO is one row of the delinquency worklist
type ArrearsEntryDTO struct {
	CustomerID     uint               `json:"customer_id"`
	Name           string             `json:"name"`
	Phone          string             `json:"phone,omitempty"`
	Region         string             `json:"region,omitempty"`
	PendingPeriods []BillingPeriodDTO `json:"pending_periods"`
	PendingCount   int                `json:"pending_count"`
	// EstimatedOwed is pending count x plan price, display only
	EstimatedOwed string `json:"estimated_owed,omitempty"`
}

// ScanFailureDTO reports one customer excluded from a scan
type ScanFailureDTO struct {
	CustomerID uint   `json:"customer_id"`
	Reason     string `json:"reason"`
}

// ScanArrearsResponse is the worklist plus the aggregate dashboard figures
// computed in the same pass
type ScanArrearsResponse struct {
	ReferenceDate   string            `json:"reference_date"`
	Entries         []ArrearsEntryDTO `json:"entries"`
	Failures        []ScanFailureDTO  `json:"failures,omitempty"`
	TotalActive     int64             `json:"total_active"`
	TotalDelinquent int               `json:"total_delinquent"`
	DelinquentPct   float64           `json:"delinquent_pct"`
}

// DashboardTileDTO is one trailing-month tile on the dashboard
type DashboardTileDTO struct {
	Period   BillingPeriodDTO `json:"period"`
	UnpaidIn int              `json:"unpaid_in"`
}

// DashboardResponse carries the aggregate counters for the dashboard
type DashboardResponse struct {
	ReferenceDate   string             `json:"reference_date"`
	TotalActive     int64              `json:"total_active"`
	TotalDelinquent int                `json:"total_delinquent"`
	DelinquentPct   float64            `json:"delinquent_pct"`
	Tiles           []DashboardTileDTO `json:"tiles"`
}
