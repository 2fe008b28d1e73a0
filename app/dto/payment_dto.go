package dto

// RegisterPaymentRequest records one monthly payment against the ledger
type RegisterPaymentRequest struct {
	CustomerID uint   `json:"-" validate:"required,gt=0"`
	Month      int    `json:"month" validate:"required,gte=1,lte=12"`
	Year       int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Amount     string `json:"amount" validate:"required"`
	Method     string `json:"method" validate:"omitempty,oneof=efectivo transferencia deposito otro"`
}

// RegisterPaymentResponse reports the recorded payment and, when the payment
// restored a suspended customer, the reactivation outcome
type RegisterPaymentResponse struct {
	PaymentID   uint   `json:"payment_id"`
	CustomerID  uint   `json:"customer_id"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	State       string `json:"state"`
	Reactivated bool   `json:"reactivated"`
	Warning     string `json:"warning,omitempty"`
}
