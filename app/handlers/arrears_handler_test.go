package handlers

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/olara1989/wisp-platform-sub000/app/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScanFlow struct {
	lastReq *dto.ScanArrearsRequest
	err     error
}

func (s *stubScanFlow) ScanArrears(ctx context.Context, req *dto.ScanArrearsRequest) (*dto.ScanArrearsResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ScanArrearsResponse{Entries: []dto.ArrearsEntryDTO{}}, nil
}

func (s *stubScanFlow) Dashboard(ctx context.Context, req *dto.ScanArrearsRequest) (*dto.DashboardResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.DashboardResponse{}, nil
}

func newArrearsTestApp(flow *stubScanFlow) *fiber.App {
	app := fiber.New()
	handler := NewArrearsHandler(flow)
	app.Get("/api/v1/arrears", handler.ScanArrears)
	return app
}

func TestScanArrearsQueryFilters(t *testing.T) {
	t.Run("ExplicitZeroPendingCountRejected", func(t *testing.T) {
		flow := &stubScanFlow{}
		app := newArrearsTestApp(flow)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/arrears?meses=0", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, flow.lastReq)
	})

	t.Run("NegativePendingCountRejected", func(t *testing.T) {
		flow := &stubScanFlow{}
		app := newArrearsTestApp(flow)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/arrears?meses=-2", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, flow.lastReq)
	})

	t.Run("NonIntegerPendingCountRejected", func(t *testing.T) {
		flow := &stubScanFlow{}
		app := newArrearsTestApp(flow)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/arrears?meses=dos", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, flow.lastReq)
	})

	t.Run("ValidPendingCountForwarded", func(t *testing.T) {
		flow := &stubScanFlow{}
		app := newArrearsTestApp(flow)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/arrears?meses=2&region=norte", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		require.NotNil(t, flow.lastReq)
		assert.Equal(t, 2, flow.lastReq.PendingCount)
		assert.Equal(t, "norte", flow.lastReq.Region)
	})

	t.Run("AbsentPendingCountMeansUnfiltered", func(t *testing.T) {
		flow := &stubScanFlow{}
		app := newArrearsTestApp(flow)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/arrears", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		require.NotNil(t, flow.lastReq)
		assert.Zero(t, flow.lastReq.PendingCount)
	})
}
