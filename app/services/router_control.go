// Package services provides external service integrations and technical concerns like router control
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/olara1989/wisp-platform-sub000/config"
	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/olara1989/wisp-platform-sub000/utils"
)

// Controller transport errors. The state machine maps these to its own
// fail-closed/fail-open semantics.
var (
	ErrControllerUnavailable = errors.New("router control bridge unavailable")
	ErrControllerTimeout     = errors.New("router control bridge timed out")
)

// NetworkController accepts suspend/reactivate commands keyed by device IP
// and control mode. The real device-control protocol lives behind a bridge;
// this contract must not depend on its internals.
type NetworkController interface {
	Suspend(ctx context.Context, routerID uint, deviceIP string, mode models.ControlMode) error
	Reactivate(ctx context.Context, routerID uint, deviceIP string, mode models.ControlMode) error
}

// RouterOSController implements NetworkController against a RouterOS-style
// REST bridge
type RouterOSController struct {
	config *config.RouterControlConfig
	client *http.Client
}

// controlRequest represents the request payload for the control bridge
type controlRequest struct {
	DeviceIP    string `json:"deviceIp"`
	ControlMode string `json:"controlMode"`
}

// controlResponse represents the result returned by the control bridge
type controlResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewRouterOSController creates a new router control client
func NewRouterOSController(cfg *config.RouterControlConfig) NetworkController {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = utils.DefaultControllerTimeout
	}
	return &RouterOSController{
		config: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Suspend cuts off the device on the given router
func (r *RouterOSController) Suspend(ctx context.Context, routerID uint, deviceIP string, mode models.ControlMode) error {
	return r.call(ctx, routerID, "suspend", deviceIP, mode)
}

// Reactivate restores the device on the given router
func (r *RouterOSController) Reactivate(ctx context.Context, routerID uint, deviceIP string, mode models.ControlMode) error {
	return r.call(ctx, routerID, "reactivate", deviceIP, mode)
}

func (r *RouterOSController) call(ctx context.Context, routerID uint, action, deviceIP string, mode models.ControlMode) error {
	body, err := json.Marshal(controlRequest{
		DeviceIP:    deviceIP,
		ControlMode: string(mode),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", action, err)
	}

	base := r.config.BridgeDomain
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	url := fmt.Sprintf("%s/api/routers/%d/%s", base, routerID, action)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.config.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return fmt.Errorf("%w: %s router %d device %s", ErrControllerTimeout, action, routerID, deviceIP)
		}
		return fmt.Errorf("%w: %s router %d device %s: %v", ErrControllerUnavailable, action, routerID, deviceIP, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrControllerUnavailable, action, resp.StatusCode)
	}

	var result controlResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	if result.Status != "ok" {
		return fmt.Errorf("%w: %s rejected for device %s: %s", ErrControllerUnavailable, action, deviceIP, result.Message)
	}

	return nil
}

func isClientTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// MockNetworkController implements NetworkController for testing and for
// "mock" provider mode; it records commands and can be told to fail.
type MockNetworkController struct {
	Commands  []MockControlCommand
	FailWith  error
	CallDelay time.Duration
}

// MockControlCommand represents a recorded control command
type MockControlCommand struct {
	Action      string
	RouterID    uint
	DeviceIP    string
	ControlMode models.ControlMode
	IssuedAt    time.Time
}

// NewMockNetworkController creates a new mock network controller
func NewMockNetworkController() *MockNetworkController {
	return &MockNetworkController{
		Commands: make([]MockControlCommand, 0),
	}
}

// Suspend records a mock suspend command
func (m *MockNetworkController) Suspend(ctx context.Context, routerID uint, deviceIP string, mode models.ControlMode) error {
	return m.record(ctx, "suspend", routerID, deviceIP, mode)
}

// Reactivate records a mock reactivate command
func (m *MockNetworkController) Reactivate(ctx context.Context, routerID uint, deviceIP string, mode models.ControlMode) error {
	return m.record(ctx, "reactivate", routerID, deviceIP, mode)
}

func (m *MockNetworkController) record(ctx context.Context, action string, routerID uint, deviceIP string, mode models.ControlMode) error {
	if m.CallDelay > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrControllerTimeout, ctx.Err())
		case <-time.After(m.CallDelay):
		}
	}
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Commands = append(m.Commands, MockControlCommand{
		Action:      action,
		RouterID:    routerID,
		DeviceIP:    deviceIP,
		ControlMode: mode,
		IssuedAt:    utils.UTCNow(),
	})
	return nil
}

// LastCommand returns the most recent recorded command
func (m *MockNetworkController) LastCommand() *MockControlCommand {
	if len(m.Commands) == 0 {
		return nil
	}
	return &m.Commands[len(m.Commands)-1]
}
