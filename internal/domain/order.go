package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []CartItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentIntentID string          `json:"payment_intent_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderRequest is the checkout submission.
type OrderRequest struct {
	Items           []CartItem `json:"items"`
	ShippingAddress string     `json:"shipping_address"`
}
