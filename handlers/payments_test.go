package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homechef-api/models"
)

func acceptOrder(t *testing.T, env *testEnv, chef *models.User, orderID uint) {
	t.Helper()
	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/chef/orders/%d/status", orderID),
		env.token(t, chef), gin.H{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCheckoutSessionRequiresAcceptedUnpaidOrder(t *testing.T) {
	env := newTestEnv(t)
	chef := env.createUser(t, "Chef", "chef@example.com", models.RoleChef, models.StatusActive, "chef-1")
	customer := env.createUser(t, "Customer", "cust@example.com", models.RoleUser, models.StatusActive, "")
	stranger := env.createUser(t, "Stranger", "stranger@example.com", models.RoleUser, models.StatusActive, "")
	meal := env.createMeal(t, *chef.ChefID, "Beef Curry", 250)
	order := env.placeOrder(t, customer, meal.ID, 2)

	checkoutPath := fmt.Sprintf("/api/orders/%d/checkout-session", order.ID)

	// pending orders are not payable
	w := env.do(t, http.MethodPost, checkoutPath, env.token(t, customer), nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "ORDER_NOT_PAYABLE", decodeError(t, w).Code)
	assert.Zero(t, env.provider.calls)

	acceptOrder(t, env, chef, order.ID)

	// only the order's customer can pay
	w = env.do(t, http.MethodPost, checkoutPath, env.token(t, stranger), nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ORDER_NOT_PAYABLE", decodeError(t, w).Code)

	w = env.do(t, http.MethodPost, checkoutPath, env.token(t, customer), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "sess_test_1")
	require.Equal(t, 1, env.provider.calls)
	assert.Equal(t, order.ID, env.provider.last.OrderID)
	assert.True(t, env.provider.last.Amount.Equal(decimal.NewFromInt(500)),
		"amount should be snapshot price times quantity, got %s", env.provider.last.Amount)

	// session creation must not have touched payment state
	assert.Equal(t, models.PaymentPending, env.reloadOrder(t, order.ID).PaymentStatus)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	chef := env.createUser(t, "Chef", "chef@example.com", models.RoleChef, models.StatusActive, "chef-1")
	customer := env.createUser(t, "Customer", "cust@example.com", models.RoleUser, models.StatusActive, "")
	meal := env.createMeal(t, *chef.ChefID, "Beef Curry", 250)
	order := env.placeOrder(t, customer, meal.ID, 2)
	acceptOrder(t, env, chef, order.ID)

	w := env.doWebhook(t, gin.H{"order_id": order.ID, "status": "paid"}, testWebhookSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored := env.reloadOrder(t, order.ID)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, models.OrderAccepted, stored.OrderStatus, "confirmation must not alter orderStatus")

	// duplicate webhook delivery: success as a no-op, same end state
	w = env.doWebhook(t, gin.H{"order_id": order.ID, "status": "paid"}, testWebhookSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.PaymentPaid, env.reloadOrder(t, order.ID).PaymentStatus)

	// a paid order cannot start another checkout session
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/checkout-session", order.ID),
		env.token(t, customer), nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ORDER_NOT_PAYABLE", decodeError(t, w).Code)
}

func TestConfirmPaymentGuards(t *testing.T) {
	env := newTestEnv(t)
	chef := env.createUser(t, "Chef", "chef@example.com", models.RoleChef, models.StatusActive, "chef-1")
	customer := env.createUser(t, "Customer", "cust@example.com", models.RoleUser, models.StatusActive, "")
	meal := env.createMeal(t, *chef.ChefID, "Beef Curry", 250)
	order := env.placeOrder(t, customer, meal.ID, 1)

	// wrong webhook secret
	w := env.doWebhook(t, gin.H{"order_id": order.ID, "status": "paid"}, "wrong-secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// unknown order
	w = env.doWebhook(t, gin.H{"order_id": 99999, "status": "paid"}, testWebhookSecret)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", decodeError(t, w).Code)

	// paying a pending order would violate the cross-invariant
	w = env.doWebhook(t, gin.H{"order_id": order.ID, "status": "paid"}, testWebhookSecret)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "ORDER_NOT_PAYABLE", decodeError(t, w).Code)
	assert.Equal(t, models.PaymentPending, env.reloadOrder(t, order.ID).PaymentStatus)

	// a failed signal leaves the order legitimately unpaid
	acceptOrder(t, env, chef, order.ID)
	w = env.doWebhook(t, gin.H{"order_id": order.ID, "status": "failed"}, testWebhookSecret)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PaymentPending, env.reloadOrder(t, order.ID).PaymentStatus)
}
