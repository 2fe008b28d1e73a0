package businessflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/olara1989/wisp-platform-sub000/app/dto"
	"github.com/olara1989/wisp-platform-sub000/config"
	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCustomerRepo struct {
	mu        sync.Mutex
	customers []*models.Customer
	listErr   error
	states    map[uint]models.ServiceState
	stateErr  error
}

func (m *mockCustomerRepo) ByID(ctx context.Context, id uint) (*models.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			copied := *c
			if state, ok := m.stateOf(id); ok {
				copied.ServiceState = state
			}
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerRepo) Save(ctx context.Context, entity *models.Customer) error   { return nil }
func (m *mockCustomerRepo) Update(ctx context.Context, entity *models.Customer) error { return nil }
func (m *mockCustomerRepo) SaveBatch(ctx context.Context, entities []*models.Customer) error {
	return nil
}

func (m *mockCustomerRepo) ByUUID(ctx context.Context, uuid string) (*models.Customer, error) {
	return nil, nil
}

func (m *mockCustomerRepo) ListActiveCustomers(ctx context.Context) ([]*models.Customer, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.customers, nil
}

func (m *mockCustomerRepo) ListByRegion(ctx context.Context, region string) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, c := range m.customers {
		if c.Region == region {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCustomerRepo) UpdateServiceState(ctx context.Context, customerID uint, state models.ServiceState) error {
	if m.stateErr != nil {
		return m.stateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states == nil {
		m.states = make(map[uint]models.ServiceState)
	}
	m.states[customerID] = state
	return nil
}

func (m *mockCustomerRepo) CountActive(ctx context.Context) (int64, error) {
	return int64(len(m.customers)), nil
}

func (m *mockCustomerRepo) stateOf(customerID uint) (models.ServiceState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[customerID]
	return state, ok
}

type mockPaymentRepo struct {
	byCustomer map[uint][]*models.PaymentRecord
	errFor     map[uint]error
	saved      []*models.PaymentRecord
	saveErr    error
}

func (m *mockPaymentRepo) ByID(ctx context.Context, id uint) (*models.PaymentRecord, error) {
	return nil, nil
}

func (m *mockPaymentRepo) Save(ctx context.Context, entity *models.PaymentRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	entity.ID = uint(len(m.saved) + 1)
	m.saved = append(m.saved, entity)
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, entity *models.PaymentRecord) error {
	return nil
}

func (m *mockPaymentRepo) SaveBatch(ctx context.Context, entities []*models.PaymentRecord) error {
	return nil
}

func (m *mockPaymentRepo) ListByCustomer(ctx context.Context, customerID uint) ([]*models.PaymentRecord, error) {
	if err := m.errFor[customerID]; err != nil {
		return nil, err
	}
	return m.byCustomer[customerID], nil
}

func (m *mockPaymentRepo) ByCustomerAndPeriod(ctx context.Context, customerID uint, period models.BillingPeriod) (*models.PaymentRecord, error) {
	for _, p := range append(m.byCustomer[customerID], m.saved...) {
		if p.CustomerID == customerID && p.Period() == period {
			return p, nil
		}
	}
	return nil, nil
}

func scanBillingConfig() config.BillingConfig {
	return config.BillingConfig{CutoffDay: 5, ScanWorkers: 4}
}

func newScanFixture() (*mockCustomerRepo, *mockPaymentRepo, ArrearsScanFlow) {
	plan := &models.Plan{ID: 1, Name: "Basic", Price: decimal.NewFromInt(350)}

	customers := []*models.Customer{
		{ID: 1, Name: "Ana", Region: "norte", SignupDate: "2024-01-10", ServiceState: models.ServiceStateActive, Plan: plan},
		{ID: 2, Name: "Beto", Region: "sur", SignupDate: "2024-01-10", ServiceState: models.ServiceStateActive, Plan: plan},
		{ID: 3, Name: "Cruz", Region: "norte", SignupDate: "2024-02-10", ServiceState: models.ServiceStateActive, Plan: plan},
	}

	customerRepo := &mockCustomerRepo{customers: customers}
	paymentRepo := &mockPaymentRepo{
		byCustomer: map[uint][]*models.PaymentRecord{
			// Ana fully current through March
			1: {
				{CustomerID: 1, Month: 1, Year: 2024},
				{CustomerID: 1, Month: 2, Year: 2024},
				{CustomerID: 1, Month: 3, Year: 2024},
			},
			// Beto owes February and March
			2: {
				{CustomerID: 2, Month: 1, Year: 2024},
			},
			// Cruz owes March only
			3: {
				{CustomerID: 3, Month: 2, Year: 2024},
			},
		},
	}

	flow := NewArrearsScanFlow(customerRepo, paymentRepo, nil, scanBillingConfig(), config.CacheConfig{})
	return customerRepo, paymentRepo, flow
}

func TestScanArrears(t *testing.T) {
	t.Run("ReturnsOnlyDelinquentCustomersOrderedByID", func(t *testing.T) {
		_, _, flow := newScanFixture()

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{ReferenceDate: "2024-03-10"})
		require.NoError(t, err)

		require.Len(t, resp.Entries, 2)
		assert.Equal(t, uint(2), resp.Entries[0].CustomerID)
		assert.Equal(t, uint(3), resp.Entries[1].CustomerID)
		assert.Empty(t, resp.Failures)

		assert.Equal(t, []dto.BillingPeriodDTO{
			{Month: 2, Year: 2024},
			{Month: 3, Year: 2024},
		}, resp.Entries[0].PendingPeriods)
		assert.Equal(t, 2, resp.Entries[0].PendingCount)
		assert.Equal(t, "700.00", resp.Entries[0].EstimatedOwed)
	})

	t.Run("AggregatesCoverWholeFleet", func(t *testing.T) {
		_, _, flow := newScanFixture()

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{ReferenceDate: "2024-03-10"})
		require.NoError(t, err)

		assert.Equal(t, int64(3), resp.TotalActive)
		assert.Equal(t, 2, resp.TotalDelinquent)
		assert.InDelta(t, 66.67, resp.DelinquentPct, 0.01)
	})

	t.Run("RegionFilterNarrowsEntriesNotAggregates", func(t *testing.T) {
		_, _, flow := newScanFixture()

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{
			ReferenceDate: "2024-03-10",
			Region:        "norte",
		})
		require.NoError(t, err)

		require.Len(t, resp.Entries, 1)
		assert.Equal(t, uint(3), resp.Entries[0].CustomerID)
		assert.Equal(t, 2, resp.TotalDelinquent)
	})

	t.Run("PendingCountFilterMatchesExactly", func(t *testing.T) {
		_, _, flow := newScanFixture()

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{
			ReferenceDate: "2024-03-10",
			PendingCount:  2,
		})
		require.NoError(t, err)

		require.Len(t, resp.Entries, 1)
		assert.Equal(t, uint(2), resp.Entries[0].CustomerID)
	})

	t.Run("InvalidSignupDateIsIsolatedPerCustomer", func(t *testing.T) {
		customerRepo, paymentRepo, _ := newScanFixture()
		customerRepo.customers = append(customerRepo.customers, &models.Customer{
			ID: 4, Name: "Dora", Region: "norte", SignupDate: "garbage", ServiceState: models.ServiceStateActive,
		})
		flow := NewArrearsScanFlow(customerRepo, paymentRepo, nil, scanBillingConfig(), config.CacheConfig{})

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{ReferenceDate: "2024-03-10"})
		require.NoError(t, err)

		assert.Len(t, resp.Entries, 2)
		require.Len(t, resp.Failures, 1)
		assert.Equal(t, uint(4), resp.Failures[0].CustomerID)
		assert.Contains(t, resp.Failures[0].Reason, "invalid signup date")
	})

	t.Run("LedgerErrorIsIsolatedPerCustomer", func(t *testing.T) {
		customerRepo, paymentRepo, _ := newScanFixture()
		paymentRepo.errFor = map[uint]error{2: errors.New("connection reset")}
		flow := NewArrearsScanFlow(customerRepo, paymentRepo, nil, scanBillingConfig(), config.CacheConfig{})

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{ReferenceDate: "2024-03-10"})
		require.NoError(t, err)

		require.Len(t, resp.Failures, 1)
		assert.Equal(t, uint(2), resp.Failures[0].CustomerID)
		require.Len(t, resp.Entries, 1)
		assert.Equal(t, uint(3), resp.Entries[0].CustomerID)
	})

	t.Run("ListFailureAbortsScan", func(t *testing.T) {
		customerRepo, paymentRepo, _ := newScanFixture()
		customerRepo.listErr = errors.New("db down")
		flow := NewArrearsScanFlow(customerRepo, paymentRepo, nil, scanBillingConfig(), config.CacheConfig{})

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{ReferenceDate: "2024-03-10"})
		require.Error(t, err)
		assert.True(t, IsRepositoryUnavailable(err))
		assert.Nil(t, resp)
	})

	t.Run("InvalidReferenceDateRejected", func(t *testing.T) {
		_, _, flow := newScanFixture()

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{ReferenceDate: "10-03-2024"})
		require.Error(t, err)
		assert.True(t, IsInvalidReferenceDate(err))
		assert.Nil(t, resp)
	})

	t.Run("NegativePendingCountRejected", func(t *testing.T) {
		_, _, flow := newScanFixture()

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{
			ReferenceDate: "2024-03-10",
			PendingCount:  -1,
		})
		require.Error(t, err)
		assert.True(t, IsInvalidPeriodCountFilter(err))
		assert.Nil(t, resp)
	})

	t.Run("BlankRegionFilterRejected", func(t *testing.T) {
		_, _, flow := newScanFixture()

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{
			ReferenceDate: "2024-03-10",
			Region:        "   ",
		})
		require.Error(t, err)
		assert.True(t, IsInvalidRegionFilter(err))
		assert.Nil(t, resp)
	})

	t.Run("CancelledContextAbortsScan", func(t *testing.T) {
		_, _, flow := newScanFixture()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// A partial walk must never read as a full scan
		resp, err := flow.ScanArrears(ctx, &dto.ScanArrearsRequest{ReferenceDate: "2024-03-10"})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, resp)
	})

	t.Run("LargeFleetScansEveryCustomer", func(t *testing.T) {
		plan := &models.Plan{ID: 1, Name: "Basic", Price: decimal.NewFromInt(350)}
		customerRepo := &mockCustomerRepo{}
		paymentRepo := &mockPaymentRepo{byCustomer: map[uint][]*models.PaymentRecord{}}
		for i := uint(1); i <= 100; i++ {
			customerRepo.customers = append(customerRepo.customers, &models.Customer{
				ID: i, Name: fmt.Sprintf("c%d", i), SignupDate: "2024-02-10",
				ServiceState: models.ServiceStateActive, Plan: plan,
			})
		}
		flow := NewArrearsScanFlow(customerRepo, paymentRepo, nil, scanBillingConfig(), config.CacheConfig{})

		resp, err := flow.ScanArrears(context.Background(), &dto.ScanArrearsRequest{ReferenceDate: "2024-03-10"})
		require.NoError(t, err)
		assert.Len(t, resp.Entries, 100)
		for i, entry := range resp.Entries {
			assert.Equal(t, uint(i+1), entry.CustomerID)
		}
	})
}

func TestDashboard(t *testing.T) {
	t.Run("TilesCountUnpaidPerTrailingMonth", func(t *testing.T) {
		_, _, flow := newScanFixture()

		resp, err := flow.Dashboard(context.Background(), &dto.ScanArrearsRequest{ReferenceDate: "2024-03-10"})
		require.NoError(t, err)

		assert.Equal(t, int64(3), resp.TotalActive)
		assert.Equal(t, 2, resp.TotalDelinquent)
		require.Len(t, resp.Tiles, 12)

		// Most recent tile first
		assert.Equal(t, dto.BillingPeriodDTO{Month: 3, Year: 2024}, resp.Tiles[0].Period)
		assert.Equal(t, 2, resp.Tiles[0].UnpaidIn)
		assert.Equal(t, dto.BillingPeriodDTO{Month: 2, Year: 2024}, resp.Tiles[1].Period)
		assert.Equal(t, 1, resp.Tiles[1].UnpaidIn)
		assert.Equal(t, dto.BillingPeriodDTO{Month: 1, Year: 2024}, resp.Tiles[2].Period)
		assert.Equal(t, 0, resp.Tiles[2].UnpaidIn)
		assert.Equal(t, dto.BillingPeriodDTO{Month: 4, Year: 2023}, resp.Tiles[11].Period)
	})
}
