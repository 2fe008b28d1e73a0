package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olara1989/wisp-platform-sub000/config"
	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bridgeConfig(url string) *config.RouterControlConfig {
	return &config.RouterControlConfig{
		BridgeDomain: url,
		APIKey:       "test-key",
		Timeout:      2 * time.Second,
	}
}

func TestRouterOSController(t *testing.T) {
	t.Run("SuspendSendsControlCommand", func(t *testing.T) {
		var gotPath, gotKey string
		var gotBody controlRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("x-api-key")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(controlResponse{Status: "ok"})
		}))
		defer server.Close()

		controller := NewRouterOSController(bridgeConfig(server.URL))
		err := controller.Suspend(context.Background(), 7, "10.0.0.15", models.ControlModeQueue)
		require.NoError(t, err)

		assert.Equal(t, "/api/routers/7/suspend", gotPath)
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, "10.0.0.15", gotBody.DeviceIP)
		assert.Equal(t, "queue", gotBody.ControlMode)
	})

	t.Run("ReactivateSendsControlCommand", func(t *testing.T) {
		var gotPath string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			json.NewEncoder(w).Encode(controlResponse{Status: "ok"})
		}))
		defer server.Close()

		controller := NewRouterOSController(bridgeConfig(server.URL))
		err := controller.Reactivate(context.Background(), 7, "10.0.0.15", models.ControlModePPPoE)
		require.NoError(t, err)
		assert.Equal(t, "/api/routers/7/reactivate", gotPath)
	})

	t.Run("NonOKStatusCodeIsUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		controller := NewRouterOSController(bridgeConfig(server.URL))
		err := controller.Suspend(context.Background(), 7, "10.0.0.15", models.ControlModeQueue)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrControllerUnavailable)
	})

	t.Run("RejectedCommandIsUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(controlResponse{Status: "error", Message: "unknown device"})
		}))
		defer server.Close()

		controller := NewRouterOSController(bridgeConfig(server.URL))
		err := controller.Suspend(context.Background(), 7, "10.0.0.15", models.ControlModeQueue)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrControllerUnavailable)
		assert.Contains(t, err.Error(), "unknown device")
	})

	t.Run("UnreachableBridgeIsUnavailable", func(t *testing.T) {
		controller := NewRouterOSController(bridgeConfig("http://127.0.0.1:1"))
		err := controller.Suspend(context.Background(), 7, "10.0.0.15", models.ControlModeQueue)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrControllerUnavailable)
	})

	t.Run("SlowBridgeIsTimeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			json.NewEncoder(w).Encode(controlResponse{Status: "ok"})
		}))
		defer server.Close()

		cfg := bridgeConfig(server.URL)
		cfg.Timeout = 50 * time.Millisecond
		controller := NewRouterOSController(cfg)

		err := controller.Suspend(context.Background(), 7, "10.0.0.15", models.ControlModeQueue)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrControllerTimeout)
	})

	t.Run("CancelledContextIsTimeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			json.NewEncoder(w).Encode(controlResponse{Status: "ok"})
		}))
		defer server.Close()

		controller := NewRouterOSController(bridgeConfig(server.URL))
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := controller.Suspend(ctx, 7, "10.0.0.15", models.ControlModeQueue)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrControllerTimeout)
	})
}

func TestMockNetworkController(t *testing.T) {
	t.Run("RecordsCommands", func(t *testing.T) {
		mock := NewMockNetworkController()

		require.NoError(t, mock.Suspend(context.Background(), 1, "10.0.0.2", models.ControlModeQueue))
		require.NoError(t, mock.Reactivate(context.Background(), 1, "10.0.0.2", models.ControlModeQueue))

		require.Len(t, mock.Commands, 2)
		assert.Equal(t, "suspend", mock.Commands[0].Action)
		assert.Equal(t, "reactivate", mock.LastCommand().Action)
	})

	t.Run("FailWithShortCircuits", func(t *testing.T) {
		mock := NewMockNetworkController()
		mock.FailWith = ErrControllerUnavailable

		err := mock.Suspend(context.Background(), 1, "10.0.0.2", models.ControlModeQueue)
		assert.ErrorIs(t, err, ErrControllerUnavailable)
		assert.Empty(t, mock.Commands)
	})
}
