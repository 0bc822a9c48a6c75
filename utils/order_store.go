package utils

import (
	"errors"
	"strings"

	"github.com/rahulkv7/StyleKart/models"
	"gorm.io/gorm"
)

// UpsertOrder reconciles a candidate write into the orders table. Matching is
// by txn_id and/or order_id (logical OR when both are present); a matched
// record has all mutable fields overwritten, last write wins. Convergence of
// concurrent first writes is guaranteed by the partial unique indexes: a
// duplicate-key loser re-reads the winner's row and applies its write there.
func UpsertOrder(db *gorm.DB, candidate OrderCandidate) (*models.Order, error) {
	// The store owns the status vocabulary; callers may hand over raw
	// provider statuses.
	candidate.Status = NormalizeStatus(candidate.Status)

	if candidate.TxnID == "" && candidate.OrderID == "" {
		// No identifier to reconcile on; the row is keyed by its
		// storage-assigned id alone.
		order := newOrderFromCandidate(candidate)
		if err := db.Create(order).Error; err != nil {
			return nil, StorageError("Failed to create order", err)
		}
		return order, nil
	}

	order, err := upsertByIdentifiers(db, candidate)
	if err == nil {
		return order, nil
	}
	if !isDuplicateKey(err) {
		return nil, StorageError("Failed to save order", err)
	}

	// Both write paths raced their first insert. The unique index picked a
	// winner; apply this write to the winner's row instead.
	LogInfo("Duplicate order insert for txnId=%q orderId=%q, retrying against existing record",
		candidate.TxnID, candidate.OrderID)
	order, retryErr := upsertByIdentifiers(db, candidate)
	if retryErr == nil {
		return order, nil
	}
	if !isDuplicateKey(retryErr) {
		return nil, StorageError("Failed to save order", retryErr)
	}

	// The write cannot land at all: the candidate's identifiers are already
	// split across two existing rows, so any update violates uniqueness.
	// Return the matched record as-is rather than surfacing the conflict.
	LogError("Order write for txnId=%q orderId=%q conflicts with existing records, returning matched record",
		candidate.TxnID, candidate.OrderID)
	var existing models.Order
	if err := identifierFilter(db, candidate).Preload("Items").First(&existing).Error; err != nil {
		return nil, StorageError("Failed to reconcile duplicate order", err)
	}
	return &existing, nil
}

func upsertByIdentifiers(db *gorm.DB, candidate OrderCandidate) (*models.Order, error) {
	var result *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		err := identifierFilter(tx, candidate).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			order := newOrderFromCandidate(candidate)
			if err := tx.Create(order).Error; err != nil {
				return err
			}
			result = order
			return nil
		}
		if err != nil {
			return err
		}

		applyCandidate(&existing, candidate)
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		if err := replaceItems(tx, &existing, candidate.Items); err != nil {
			return err
		}
		result = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// identifierFilter matches by whichever identifiers the candidate carries so
// a record findable by either one is treated as the same order.
func identifierFilter(tx *gorm.DB, candidate OrderCandidate) *gorm.DB {
	switch {
	case candidate.TxnID != "" && candidate.OrderID != "":
		return tx.Where("txn_id = ? OR order_id = ?", candidate.TxnID, candidate.OrderID)
	case candidate.TxnID != "":
		return tx.Where("txn_id = ?", candidate.TxnID)
	default:
		return tx.Where("order_id = ?", candidate.OrderID)
	}
}

func newOrderFromCandidate(c OrderCandidate) *models.Order {
	items := make([]models.OrderItem, len(c.Items))
	copy(items, c.Items)
	return &models.Order{
		OrderID:           c.OrderID,
		TxnID:             c.TxnID,
		Amount:            c.Amount,
		Currency:          c.Currency,
		Status:            c.Status,
		PaymentMethod:     c.PaymentMethod,
		PaymentRaw:        c.PaymentRaw,
		Items:             items,
		User:              c.User,
		ShippingAddress:   c.ShippingAddress,
		Meta:              c.Meta,
		Notes:             c.Notes,
		CreatedAtProvider: c.CreatedAtProvider,
	}
}

// applyCandidate overwrites all mutable fields, no sub-field merging.
// Identifiers are only set from non-empty candidate values so a later write
// can add the missing one but never blank an existing one.
func applyCandidate(order *models.Order, c OrderCandidate) {
	if c.OrderID != "" {
		order.OrderID = c.OrderID
	}
	if c.TxnID != "" {
		order.TxnID = c.TxnID
	}
	order.Amount = c.Amount
	order.Currency = c.Currency
	order.Status = c.Status
	order.PaymentMethod = c.PaymentMethod
	order.PaymentRaw = c.PaymentRaw
	order.User = c.User
	order.ShippingAddress = c.ShippingAddress
	order.Meta = c.Meta
	order.Notes = c.Notes
	if c.CreatedAtProvider != nil {
		order.CreatedAtProvider = c.CreatedAtProvider
	}
	// Items are replaced separately; keep the association out of Save.
	order.Items = nil
}

func replaceItems(tx *gorm.DB, order *models.Order, items []models.OrderItem) error {
	if err := tx.Where("order_ref = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		order.Items = []models.OrderItem{}
		return nil
	}
	fresh := make([]models.OrderItem, len(items))
	copy(fresh, items)
	for i := range fresh {
		fresh[i].ID = 0
		fresh[i].OrderRef = order.ID
	}
	if err := tx.Create(&fresh).Error; err != nil {
		return err
	}
	order.Items = fresh
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// GetOrdersForUser returns the orders whose buyer snapshot carries the given
// user id or phone, newest first. Both fields empty yields an empty list.
func GetOrdersForUser(db *gorm.DB, userID, phone string) ([]models.Order, error) {
	if userID == "" && phone == "" {
		return []models.Order{}, nil
	}

	query := db.Preload("Items").Order("created_at DESC")
	switch {
	case userID != "" && phone != "":
		query = query.Where("user_id = ? OR user_phone = ?", userID, phone)
	case userID != "":
		query = query.Where("user_id = ?", userID)
	default:
		query = query.Where("user_phone = ?", phone)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, StorageError("Failed to fetch orders", err)
	}
	return orders, nil
}
