package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rahulkv7/StyleKart/config"
	"github.com/rahulkv7/StyleKart/models"
	"github.com/rahulkv7/StyleKart/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"amount":        750,
		"txnId":         "T2001",
		"paymentMethod": "cod",
		"items": []map[string]interface{}{
			{"productId": 7, "name": "Denim Jacket", "brand": "Roadster", "price": 750, "qty": 1, "imageUrl": "jacket.jpg"},
		},
		"user": map[string]interface{}{
			"id":    12,
			"phone": "9876543210",
			"name":  "Asha",
		},
		"shippingAddress": map[string]interface{}{
			"name": "Asha", "mobile": "9876543210", "pin": "682001", "city": "Kochi",
		},
	}
}

func TestCreateOrderValidationGate(t *testing.T) {
	router := setupTest(t)

	noAmount := codOrderBody()
	noAmount["amount"] = 0
	rec := postJSON(t, router, "/api/orders", noAmount)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	noItems := codOrderBody()
	noItems["items"] = []map[string]interface{}{}
	rec = postJSON(t, router, "/api/orders", noItems)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.EqualValues(t, 0, orderCount(t), "rejected saves must not write")
}

func TestCreateOrderPersistsCanonicalForm(t *testing.T) {
	router := setupTest(t)

	rec := postJSON(t, router, "/api/orders", codOrderBody())
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, orderCount(t))

	var order models.Order
	require.NoError(t, config.DB.Preload("Items").Where("txn_id = ?", "T2001").First(&order).Error)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "cod", order.PaymentMethod)
	assert.Equal(t, "12", order.User.ID)
	assert.Equal(t, "Kochi", order.ShippingAddress.City)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Denim Jacket", order.Items[0].Name)
}

func TestCreateOrderIsIdempotentByTxnID(t *testing.T) {
	router := setupTest(t)

	rec := postJSON(t, router, "/api/orders", codOrderBody())
	require.Equal(t, http.StatusOK, rec.Code)

	// the post-redirect save arrives with the settled status
	second := codOrderBody()
	second["status"] = "SUCCESS"
	rec = postJSON(t, router, "/api/orders", second)
	require.Equal(t, http.StatusOK, rec.Code)

	require.EqualValues(t, 1, orderCount(t))
	var order models.Order
	require.NoError(t, config.DB.Where("txn_id = ?", "T2001").First(&order).Error)
	assert.Equal(t, "placed", order.Status)
}

func TestGetOrdersRequiresToken(t *testing.T) {
	router := setupTest(t)

	rec := getWithToken(t, router, "/api/orders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = getWithToken(t, router, "/api/orders", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetOrdersForTokenIdentity(t *testing.T) {
	router := setupTest(t)

	rec := postJSON(t, router, "/api/orders", codOrderBody())
	require.Equal(t, http.StatusOK, rec.Code)

	token, err := utils.GenerateToken(&models.User{ID: 12, Phone: "9876543210"})
	require.NoError(t, err)

	rec = getWithToken(t, router, "/api/orders", token)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "T2001", orders[0].TxnID)
}

func TestGetOrdersEmptyIdentityClaims(t *testing.T) {
	router := setupTest(t)

	// a valid token with neither id nor phone yields an empty list, not an error
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	rec := getWithToken(t, router, "/api/orders", signed)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	assert.Empty(t, orders)
}

func TestGetOrdersExpiredToken(t *testing.T) {
	router := setupTest(t)

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["id"] = "12"
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	rec := getWithToken(t, router, "/api/orders", signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
