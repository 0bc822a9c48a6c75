package controllers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rahulkv7/StyleKart/config"
	"github.com/rahulkv7/StyleKart/metrics"
	"github.com/rahulkv7/StyleKart/models"
	"github.com/rahulkv7/StyleKart/utils"
)

// CreatePaymentRequest is the checkout submission that becomes a signed
// gateway payload. udf1-5 are opaque pass-throughs echoed by the gateway.
type CreatePaymentRequest struct {
	Amount      float64 `json:"amount"`
	Firstname   string  `json:"firstname"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	ProductInfo string  `json:"productinfo"`
	UDF1        string  `json:"udf1"`
	UDF2        string  `json:"udf2"`
	UDF3        string  `json:"udf3"`
	UDF4        string  `json:"udf4"`
	UDF5        string  `json:"udf5"`
}

// POST /api/payu/create-payment
//
// Builds the gateway-ready payload: a fresh txnid, the amount formatted to
// two decimals, and the forward signature. Nothing is persisted here; the
// order record appears later via the callback or the client save.
func CreatePayment(c *gin.Context) {
	utils.LogInfo("CreatePayment called")
	cfg := config.App

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid payment request body: %v", err)
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	if req.Amount <= 0 || req.Firstname == "" || req.Email == "" || req.ProductInfo == "" {
		utils.LogError("Payment request missing required fields")
		utils.BadRequest(c, "Missing required fields: amount, firstname, email and productinfo are required", nil)
		return
	}

	txnid := utils.GenerateTxnID()
	amountStr := utils.FormatAmount(req.Amount)
	utils.LogInfo("Payment intent txnid: %s amount: %s", txnid, amountStr)

	fields := utils.PaymentFields{
		Key:         cfg.PayUKey,
		TxnID:       txnid,
		Amount:      amountStr,
		ProductInfo: req.ProductInfo,
		Firstname:   req.Firstname,
		Email:       req.Email,
		UDF:         [5]string{req.UDF1, req.UDF2, req.UDF3, req.UDF4, req.UDF5},
	}

	// Sign with the five-placeholder convention; the gateway's docs disagree
	// on the count, so the verify side accepts both variants.
	hash := utils.RequestHash(fields, cfg.PayUSalt, 5)
	utils.LogDebug("Payment intent hash computed for txnid %s", txnid)

	metrics.PaymentsInitiatedTotal.Inc()
	utils.Success(c, "Payment initiated", gin.H{
		"key":         cfg.PayUKey,
		"txnid":       txnid,
		"amount":      amountStr,
		"productinfo": req.ProductInfo,
		"firstname":   req.Firstname,
		"email":       req.Email,
		"phone":       req.Phone,
		"udf1":        req.UDF1,
		"udf2":        req.UDF2,
		"udf3":        req.UDF3,
		"udf4":        req.UDF4,
		"udf5":        req.UDF5,
		"surl":        cfg.ServerBase + "/api/payu/surl",
		"furl":        cfg.ServerBase + "/api/payu/furl",
		"hash":        hash,
		"action":      cfg.PayUAction,
	})
}

// POST /api/payu/surl
//
// Success callback from the gateway. Recomputes the reverse signature over
// the posted fields and only writes an order when the posted hash matches a
// supported variant. The buyer always ends on a landing page; hash values
// never leak into the redirect.
func PaymentSuccess(c *gin.Context) {
	utils.LogInfo("PaymentSuccess callback called")
	cfg := config.App
	failureURL := cfg.ClientURL + "/payment-failed"

	if err := c.Request.ParseForm(); err != nil {
		utils.LogError("Malformed success callback: %v", err)
		c.Redirect(http.StatusFound, failureURL+"?reason=bad_request")
		return
	}

	status := c.PostForm("status")
	txnid := c.PostForm("txnid")
	rawAmount := c.PostForm("amount")
	postedHash := c.PostForm("hash")

	amount, _ := strconv.ParseFloat(rawAmount, 64)
	fields := utils.PaymentFields{
		Key:         c.PostForm("key"),
		TxnID:       txnid,
		Amount:      utils.FormatAmount(amount),
		ProductInfo: c.PostForm("productinfo"),
		Firstname:   c.PostForm("firstname"),
		Email:       c.PostForm("email"),
		UDF: [5]string{
			c.PostForm("udf1"),
			c.PostForm("udf2"),
			c.PostForm("udf3"),
			c.PostForm("udf4"),
			c.PostForm("udf5"),
		},
	}

	if !utils.VerifyCallbackHash(fields, status, cfg.PayUSalt, postedHash) {
		// hash details stay in server logs, never in the redirect
		utils.LogError("Rejecting callback: %v", utils.SignatureMismatchError("hash mismatch for txnid "+txnid))
		metrics.RecordCallbackVerification(false)
		c.Redirect(http.StatusFound, failureURL+"?reason=invalid_signature")
		return
	}
	metrics.RecordCallbackVerification(true)
	utils.LogInfo("Callback hash verified for txnid %s", txnid)

	orderID := utils.GenerateOrderID()
	order := models.Order{
		OrderID:       orderID,
		TxnID:         txnid,
		Amount:        amount,
		Status:        utils.NormalizeStatus(status),
		PaymentMethod: "PayU",
		PaymentRaw:    callbackParams(c),
		User: models.OrderUser{
			Name:  fields.Firstname,
			Email: fields.Email,
			Phone: c.PostForm("phone"),
		},
	}
	if err := config.DB.Create(&order).Error; err != nil {
		utils.LogError("Failed to persist settled order for txnid %s: %v", txnid, err)
		c.Redirect(http.StatusFound, failureURL+"?reason=server_error")
		return
	}
	utils.LogInfo("Order %s created for txnid %s with status %s", orderID, txnid, order.Status)

	q := url.Values{}
	q.Set("orderId", orderID)
	q.Set("txnid", txnid)
	q.Set("amount", rawAmount)
	q.Set("status", status)
	c.Redirect(http.StatusFound, cfg.ClientURL+"/payment-success?"+q.Encode())
}

// POST /api/payu/furl
//
// Failure callback. No funds moved, so no signature check; the buyer is
// returned to the failure landing page unconditionally.
func PaymentFailure(c *gin.Context) {
	utils.LogInfo("PaymentFailure callback called for txnid %s", c.PostForm("txnid"))
	c.Redirect(http.StatusFound, config.App.ClientURL+"/payment-failed")
}

// callbackParams snapshots the gateway's raw post for audit; it is stored
// opaquely and never parsed again.
func callbackParams(c *gin.Context) map[string]interface{} {
	params := make(map[string]interface{}, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
