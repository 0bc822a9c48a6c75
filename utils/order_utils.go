package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/rahulkv7/StyleKart/models"
)

var successStatuses = map[string]bool{
	"success":   true,
	"ok":        true,
	"paid":      true,
	"completed": true,
	"done":      true,
}

var failedStatuses = map[string]bool{
	"failed":    true,
	"failure":   true,
	"declined":  true,
	"cancelled": true,
	"cancel":    true,
}

// NormalizeStatus maps a provider status onto the normalized vocabulary.
// Unrecognized statuses pass through unchanged; empty means pending.
func NormalizeStatus(providerStatus string) string {
	s := strings.ToLower(strings.TrimSpace(providerStatus))
	if s == "" {
		return models.OrderStatusPending
	}
	if successStatuses[s] {
		return models.OrderStatusPlaced
	}
	if failedStatuses[s] {
		return models.OrderStatusFailed
	}
	return s
}

// OrderCandidate is the canonical form of an order write. Controllers map
// the loose client payload onto this before any store logic runs.
type OrderCandidate struct {
	OrderID           string
	TxnID             string
	Amount            float64
	Currency          string
	Status            string
	PaymentMethod     string
	PaymentRaw        map[string]interface{}
	Items             []models.OrderItem
	User              models.OrderUser
	ShippingAddress   models.ShippingAddress
	Meta              map[string]interface{}
	Notes             string
	CreatedAtProvider *time.Time
}

// OrderItemPayload accepts the alias set clients use for line items.
type OrderItemPayload struct {
	ProductID   interface{} `json:"productId"`
	AltID       interface{} `json:"id"`
	RawID       interface{} `json:"_id"`
	Name        string      `json:"name"`
	ProductName string      `json:"productName"`
	Brand       string      `json:"brand"`
	Price       float64     `json:"price"`
	Qty         int         `json:"qty"`
	ImageURL    string      `json:"imageUrl"`
	Image       string      `json:"image"`
}

// OrderUserPayload accepts the alias set clients use for the buyer snapshot.
type OrderUserPayload struct {
	ID     interface{} `json:"id"`
	RawID  interface{} `json:"_id"`
	Phone  string      `json:"phone"`
	Mobile string      `json:"mobile"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
}

// OrderPayload is the loose JSON body of a client order save. Identifier and
// status fields arrive under several historical aliases; Canonical folds them
// onto one name each so the store never sees the alias set.
type OrderPayload struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	Status         string `json:"status"`
	PaymentStatus  string `json:"paymentStatus"`
	ProviderStatus string `json:"providerStatus"`

	PaymentMethod string `json:"paymentMethod"`
	Method        string `json:"method"`

	TxnID         string `json:"txnId"`
	TxnIDLower    string `json:"txnid"`
	TransactionID string `json:"transactionId"`

	OrderID      string `json:"orderId"`
	OrderIDSnake string `json:"order_id"`

	PaymentRaw       map[string]interface{} `json:"paymentRaw"`
	ProviderResponse map[string]interface{} `json:"providerResponse"`

	Items           []OrderItemPayload      `json:"items"`
	User            *OrderUserPayload       `json:"user"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`

	Meta              map[string]interface{} `json:"meta"`
	Notes             string                 `json:"notes"`
	CreatedAtProvider string                 `json:"createdAtProvider"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; ids are integral in practice
		return fmt.Sprintf("%.0f", s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Canonical maps the alias set onto the canonical candidate.
func (p *OrderPayload) Canonical() OrderCandidate {
	items := make([]models.OrderItem, 0, len(p.Items))
	for _, it := range p.Items {
		qty := it.Qty
		if qty <= 0 {
			qty = 1
		}
		items = append(items, models.OrderItem{
			ProductID: firstNonEmpty(stringify(it.ProductID), stringify(it.AltID), stringify(it.RawID)),
			Name:      firstNonEmpty(it.Name, it.ProductName),
			Brand:     it.Brand,
			Price:     it.Price,
			Qty:       qty,
			ImageURL:  firstNonEmpty(it.ImageURL, it.Image),
		})
	}

	var user models.OrderUser
	if p.User != nil {
		user = models.OrderUser{
			ID:    firstNonEmpty(stringify(p.User.ID), stringify(p.User.RawID)),
			Phone: firstNonEmpty(p.User.Phone, p.User.Mobile),
			Email: p.User.Email,
			Name:  p.User.Name,
		}
	}

	var shipping models.ShippingAddress
	if p.ShippingAddress != nil {
		shipping = *p.ShippingAddress
	}

	paymentRaw := p.PaymentRaw
	if paymentRaw == nil {
		paymentRaw = p.ProviderResponse
	}

	currency := p.Currency
	if currency == "" {
		currency = "INR"
	}

	paymentMethod := firstNonEmpty(p.PaymentMethod, p.Method)
	if paymentMethod == "" {
		paymentMethod = "unknown"
	}

	var createdAtProvider *time.Time
	if p.CreatedAtProvider != "" {
		if t, err := time.Parse(time.RFC3339, p.CreatedAtProvider); err == nil {
			createdAtProvider = &t
		}
	}

	return OrderCandidate{
		OrderID:           firstNonEmpty(p.OrderID, p.OrderIDSnake),
		TxnID:             firstNonEmpty(p.TxnID, p.TxnIDLower, p.TransactionID),
		Amount:            p.Amount,
		Currency:          currency,
		Status:            NormalizeStatus(firstNonEmpty(p.Status, p.PaymentStatus, p.ProviderStatus)),
		PaymentMethod:     paymentMethod,
		PaymentRaw:        paymentRaw,
		Items:             items,
		User:              user,
		ShippingAddress:   shipping,
		Meta:              p.Meta,
		Notes:             p.Notes,
		CreatedAtProvider: createdAtProvider,
	}
}
