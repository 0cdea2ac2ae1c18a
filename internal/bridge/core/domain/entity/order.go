package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusPaid    OrderStatus = "paid"
	StatusFailed  OrderStatus = "failed"
)

// Order is the bridge's read model of an order owned by the shop.
// Total keeps the scale it was stored with; its String() form is what
// gets signed, so it must never round-trip through a float.
type Order struct {
	ID           int64
	Total        decimal.Decimal
	Currency     string
	BillingEmail string
	Status       OrderStatus
	Reason       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
