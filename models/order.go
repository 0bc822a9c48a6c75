package models

import (
	"time"
)

// Normalized order status vocabulary. Provider statuses outside the known
// synonym sets pass through as-is.
const (
	OrderStatusPending = "pending"
	OrderStatusPlaced  = "placed"
	OrderStatusFailed  = "failed"
)

// OrderUser is the buyer snapshot taken at order time. It is a denormalized
// copy, not a foreign key, so historical orders stay stable even if the user
// record changes later.
type OrderUser struct {
	ID    string `json:"id,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ShippingAddress is a snapshot independent of any address book.
type ShippingAddress struct {
	Name     string `json:"name,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Pin      string `json:"pin,omitempty"`
	Locality string `json:"locality,omitempty"`
	Flat     string `json:"flat,omitempty"`
	Landmark string `json:"landmark,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

type Order struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// OrderID is merchant-assigned, TxnID is minted at payment-intent time.
	// Either may be empty; partial unique indexes enforce uniqueness only on
	// present values (see config.EnsureOrderIndexes).
	OrderID string `json:"order_id,omitempty"`
	TxnID   string `json:"txn_id,omitempty"`

	Amount        float64                `json:"amount"`
	Currency      string                 `gorm:"default:INR" json:"currency"`
	Status        string                 `gorm:"default:pending" json:"status"`
	PaymentMethod string                 `json:"payment_method,omitempty"`
	PaymentRaw    map[string]interface{} `gorm:"serializer:json" json:"payment_raw,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderRef" json:"items"`

	User            OrderUser       `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`

	Meta  map[string]interface{} `gorm:"serializer:json" json:"meta,omitempty"`
	Notes string                 `json:"notes,omitempty"`

	// CreatedAtProvider is the gateway-reported creation time, distinct from
	// the system timestamps below.
	CreatedAtProvider *time.Time `json:"created_at_provider,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// OrderItem is a line item. Insertion order is preserved and duplicates by
// product are allowed, they are never merged.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderRef  uint    `json:"-"`
	ProductID string  `json:"product_id,omitempty"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand,omitempty"`
	Price     float64 `json:"price"`
	Qty       int     `gorm:"default:1" json:"qty"`
	ImageURL  string  `json:"image_url,omitempty"`
}
