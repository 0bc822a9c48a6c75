package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rahulkv7/StyleKart/config"
	"github.com/rahulkv7/StyleKart/metrics"
	"github.com/rahulkv7/StyleKart/utils"
)

// POST /api/orders
//
// Client-initiated order save: cash-on-delivery checkouts and post-redirect
// saves land here. Writes go through the reconciling upsert so a save racing
// the gateway callback converges on one record.
func CreateOrder(c *gin.Context) {
	utils.LogInfo("CreateOrder called")

	var payload utils.OrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.LogError("Invalid order payload: %v", err)
		utils.RespondError(c, utils.ValidationError("Invalid order payload", err))
		return
	}

	// The callback path is exempt from this gate: gateway settlements carry
	// no item echo. Client saves always know the cart contents.
	if payload.Amount <= 0 || len(payload.Items) == 0 {
		utils.LogError("Order payload rejected: amount=%v items=%d", payload.Amount, len(payload.Items))
		utils.RespondError(c, utils.ValidationError("Invalid order payload: amount and items are required", nil))
		return
	}

	candidate := payload.Canonical()
	utils.LogInfo("Saving order txnId=%q orderId=%q status=%s", candidate.TxnID, candidate.OrderID, candidate.Status)

	order, err := utils.UpsertOrder(config.DB, candidate)
	if err != nil {
		metrics.OrdersUpsertedTotal.WithLabelValues("error").Inc()
		utils.RespondError(c, err)
		return
	}

	metrics.OrdersUpsertedTotal.WithLabelValues("saved").Inc()
	utils.Success(c, "Order saved", order)
}

// GET /api/orders
//
// Returns orders for the caller. Identity comes from the request context
// when auth middleware ran, otherwise from the bearer token directly.
func GetOrders(c *gin.Context) {
	utils.LogInfo("GetOrders called")

	var userID, phone string
	if v, exists := c.Get("identity"); exists {
		if ident, ok := v.(utils.Identity); ok {
			userID = ident.ID
			phone = ident.Phone
		}
	}

	if userID == "" && phone == "" {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			utils.LogError("No identity and no Authorization header")
			utils.RespondError(c, utils.AuthenticationError("Authorization token required", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.LogError("Invalid authorization header format")
			utils.RespondError(c, utils.AuthenticationError("Invalid authorization header format", nil))
			return
		}

		ident, err := utils.ParseIdentity(parts[1])
		if err != nil {
			utils.LogError("Token verification failed: %v", err)
			utils.RespondError(c, utils.AuthenticationError("Invalid or expired token", err))
			return
		}
		userID = ident.ID
		phone = ident.Phone
	}

	// A valid token with no identity fields is not an error; the caller
	// simply has no orders.
	orders, err := utils.GetOrdersForUser(config.DB, userID, phone)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Orders retrieved", orders)
}
