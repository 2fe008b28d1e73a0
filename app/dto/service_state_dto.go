package dto

// SuspendRequest identifies the customer whose service is being cut off.
// The customer id comes from the route, not the body.
type SuspendRequest struct {
	CustomerID uint `json:"-" validate:"required,gt=0"`
}

// SuspendResponse reports a completed suspension
type SuspendResponse struct {
	CustomerID uint   `json:"customer_id"`
	State      string `json:"state"`
	RouterID   uint   `json:"router_id"`
	DeviceIP   string `json:"device_ip"`
}

// ReactivateRequest identifies the customer whose service is being restored
type ReactivateRequest struct {
	CustomerID uint `json:"-" validate:"required,gt=0"`
}

// ReactivateResponse reports a completed reactivation. Warning is set when
// the state change committed but the device call failed and needs a retry.
type ReactivateResponse struct {
	CustomerID uint   `json:"customer_id"`
	State      string `json:"state"`
	Warning    string `json:"warning,omitempty"`
}
