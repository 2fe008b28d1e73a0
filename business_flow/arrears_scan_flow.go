// Package businessflow contains the core business logic and use cases for arrears and service state workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/olara1989/wisp-platform-sub000/app/dto"
	"github.com/olara1989/wisp-platform-sub000/config"
	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/olara1989/wisp-platform-sub000/repository"
	"github.com/olara1989/wisp-platform-sub000/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ArrearsScanFlow applies the arrears calculator across the active customer
// population and produces the delinquency worklist and dashboard aggregates
type ArrearsScanFlow interface {
	ScanArrears(ctx context.Context, req *dto.ScanArrearsRequest) (*dto.ScanArrearsResponse, error)
	Dashboard(ctx context.Context, req *dto.ScanArrearsRequest) (*dto.DashboardResponse, error)
}

// ArrearsScanFlowImpl implements the fleet scan business flow
type ArrearsScanFlowImpl struct {
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentRecordRepository

	rc         *redis.Client
	billingCfg config.BillingConfig
	cacheCfg   config.CacheConfig
}

// NewArrearsScanFlow creates a new fleet scan flow instance. rc may be nil
// when caching is disabled.
func NewArrearsScanFlow(
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRecordRepository,
	rc *redis.Client,
	billingCfg config.BillingConfig,
	cacheCfg config.CacheConfig,
) ArrearsScanFlow {
	return &ArrearsScanFlowImpl{
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		rc:           rc,
		billingCfg:   billingCfg,
		cacheCfg:     cacheCfg,
	}
}

// scanOutcome is the per-customer result of one scan worker
type scanOutcome struct {
	customer *models.Customer
	arrears  *models.ArrearsResult
	err      error
}

// ScanArrears walks every active customer, computes arrears concurrently, and
// returns the filtered non-empty-arrears subset plus the aggregates the
// dashboard needs. Per-customer failures are reported, never fatal; only a
// failure to list the population aborts the scan.
func (f *ArrearsScanFlowImpl) ScanArrears(ctx context.Context, req *dto.ScanArrearsRequest) (*dto.ScanArrearsResponse, error) {
	refDate, err := f.resolveReferenceDate(req)
	if err != nil {
		return nil, NewBusinessError("SCAN_ARREARS_FAILED", "Invalid scan filters", err)
	}
	if err := f.validateFilters(req); err != nil {
		return nil, NewBusinessError("SCAN_ARREARS_FAILED", "Invalid scan filters", err)
	}

	if cached := f.cachedScan(ctx, refDate, req); cached != nil {
		return cached, nil
	}

	customers, err := f.customerRepo.ListActiveCustomers(ctx)
	if err != nil {
		return nil, NewBusinessError("SCAN_ARREARS_FAILED", "Failed to list active customers",
			fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err))
	}

	outcomes, err := f.scanAll(ctx, customers, refDate)
	if err != nil {
		return nil, NewBusinessError("SCAN_ARREARS_FAILED", "Scan aborted before covering the fleet", err)
	}

	resp := f.buildScanResponse(refDate, req, customers, outcomes)
	f.storeScan(ctx, refDate, req, resp)
	return resp, nil
}

// Dashboard reuses the unfiltered scan and reduces it into the aggregate
// counters plus the trailing per-month tiles. No second repository pass.
func (f *ArrearsScanFlowImpl) Dashboard(ctx context.Context, req *dto.ScanArrearsRequest) (*dto.DashboardResponse, error) {
	scanReq := &dto.ScanArrearsRequest{ReferenceDate: req.ReferenceDate}
	scan, err := f.ScanArrears(ctx, scanReq)
	if err != nil {
		return nil, err
	}

	refDate, _ := f.resolveReferenceDate(scanReq)
	current := CurrentBillablePeriod(refDate, f.billingCfg.CutoffDay)

	// Unpaid-per-period histogram over the worklist
	unpaidByPeriod := make(map[dto.BillingPeriodDTO]int)
	for _, e := range scan.Entries {
		for _, p := range e.PendingPeriods {
			unpaidByPeriod[p]++
		}
	}

	tiles := make([]dto.DashboardTileDTO, 0, utils.DashboardMonths)
	period := current
	for i := 0; i < utils.DashboardMonths; i++ {
		key := dto.BillingPeriodDTO{Month: period.Month, Year: period.Year}
		tiles = append(tiles, dto.DashboardTileDTO{
			Period:   key,
			UnpaidIn: unpaidByPeriod[key],
		})
		period = period.Prev()
	}

	return &dto.DashboardResponse{
		ReferenceDate:   scan.ReferenceDate,
		TotalActive:     scan.TotalActive,
		TotalDelinquent: scan.TotalDelinquent,
		DelinquentPct:   scan.DelinquentPct,
		Tiles:           tiles,
	}, nil
}

func (f *ArrearsScanFlowImpl) resolveReferenceDate(req *dto.ScanArrearsRequest) (time.Time, error) {
	if req == nil || req.ReferenceDate == "" {
		return utils.UTCNow(), nil
	}
	t, err := time.Parse(models.SignupDateLayout, req.ReferenceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidReferenceDate, req.ReferenceDate)
	}
	return t, nil
}

func (f *ArrearsScanFlowImpl) validateFilters(req *dto.ScanArrearsRequest) error {
	if req == nil {
		return nil
	}
	if req.PendingCount < 0 {
		return ErrInvalidPeriodCountFilter
	}
	if req.Region != "" && strings.TrimSpace(req.Region) == "" {
		return ErrInvalidRegionFilter
	}
	return nil
}

// scanAll fans the arrears computation out over a bounded worker pool. Each
// customer is independent; the only shared state is the outcome slice, merged
// under a mutex at the reduction step. A cancelled context aborts the walk
// and is returned as an error; a partial walk must never read as a full scan.
func (f *ArrearsScanFlowImpl) scanAll(ctx context.Context, customers []*models.Customer, refDate time.Time) ([]scanOutcome, error) {
	workers := f.billingCfg.ScanWorkers
	if workers <= 0 {
		workers = utils.DefaultScanWorkers
	}
	if workers > len(customers) {
		workers = len(customers)
	}

	jobs := make(chan *models.Customer)
	var (
		mu       sync.Mutex
		outcomes []scanOutcome
		wg       sync.WaitGroup
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for customer := range jobs {
				outcome := f.scanOne(ctx, customer, refDate)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, customer := range customers {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- customer:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stable output for a fixed snapshot
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].customer.ID < outcomes[j].customer.ID
	})
	return outcomes, nil
}

func (f *ArrearsScanFlowImpl) scanOne(ctx context.Context, customer *models.Customer, refDate time.Time) scanOutcome {
	payments, err := f.paymentRepo.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return scanOutcome{customer: customer, err: fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)}
	}

	arrears, err := ComputeArrears(customer, payments, refDate, f.billingCfg.CutoffDay)
	if err != nil {
		return scanOutcome{customer: customer, err: err}
	}

	return scanOutcome{customer: customer, arrears: arrears}
}

func (f *ArrearsScanFlowImpl) buildScanResponse(refDate time.Time, req *dto.ScanArrearsRequest, customers []*models.Customer, outcomes []scanOutcome) *dto.ScanArrearsResponse {
	resp := &dto.ScanArrearsResponse{
		ReferenceDate: refDate.Format(models.SignupDateLayout),
		Entries:       []dto.ArrearsEntryDTO{},
		TotalActive:   int64(len(customers)),
	}

	for _, o := range outcomes {
		if o.err != nil {
			resp.Failures = append(resp.Failures, dto.ScanFailureDTO{
				CustomerID: o.customer.ID,
				Reason:     o.err.Error(),
			})
			continue
		}
		if !o.arrears.HasArrears() {
			continue
		}

		// Aggregates run over the full scan, before the display filters
		resp.TotalDelinquent++

		if req != nil && req.Region != "" && o.customer.Region != req.Region {
			continue
		}
		if req != nil && req.PendingCount >= 1 && o.arrears.PendingCount() != req.PendingCount {
			continue
		}

		resp.Entries = append(resp.Entries, toArrearsEntryDTO(o.customer, o.arrears))
	}

	if resp.TotalActive > 0 {
		resp.DelinquentPct = float64(resp.TotalDelinquent) / float64(resp.TotalActive) * 100
	}

	return resp
}

func toArrearsEntryDTO(customer *models.Customer, arrears *models.ArrearsResult) dto.ArrearsEntryDTO {
	entry := dto.ArrearsEntryDTO{
		CustomerID:   customer.ID,
		Name:         customer.Name,
		Phone:        customer.Phone,
		Region:       customer.Region,
		PendingCount: arrears.PendingCount(),
	}
	for _, p := range arrears.PendingPeriods {
		entry.PendingPeriods = append(entry.PendingPeriods, dto.BillingPeriodDTO{Month: p.Month, Year: p.Year})
	}
	if customer.Plan != nil {
		owed := customer.Plan.Price.Mul(decimal.NewFromInt(int64(arrears.PendingCount())))
		entry.EstimatedOwed = owed.StringFixed(2)
	}
	return entry
}

// cachedScan returns a memoized scan for the exact (reference date, filters)
// key, or nil. Redis being down degrades to a direct scan.
func (f *ArrearsScanFlowImpl) cachedScan(ctx context.Context, refDate time.Time, req *dto.ScanArrearsRequest) *dto.ScanArrearsResponse {
	if f.rc == nil || !f.cacheCfg.Enabled {
		return nil
	}

	raw, err := f.rc.Get(ctx, f.scanCacheKey(refDate, req)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("arrears scan cache read failed: %v", err)
		}
		return nil
	}

	var resp dto.ScanArrearsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (f *ArrearsScanFlowImpl) storeScan(ctx context.Context, refDate time.Time, req *dto.ScanArrearsRequest, resp *dto.ScanArrearsResponse) {
	if f.rc == nil || !f.cacheCfg.Enabled {
		return
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}

	ttl := f.cacheCfg.ScanTTL
	if ttl <= 0 {
		ttl = utils.DefaultScanCacheTTL
	}
	if err := f.rc.Set(ctx, f.scanCacheKey(refDate, req), raw, ttl).Err(); err != nil {
		log.Printf("arrears scan cache write failed: %v", err)
	}
}

func (f *ArrearsScanFlowImpl) scanCacheKey(refDate time.Time, req *dto.ScanArrearsRequest) string {
	region := ""
	count := 0
	if req != nil {
		region = req.Region
		count = req.PendingCount
	}
	return fmt.Sprintf("%sscan:%s:%s:%d", f.cacheCfg.RedisPrefix, refDate.Format(models.SignupDateLayout), region, count)
}
