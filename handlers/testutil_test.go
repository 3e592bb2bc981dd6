package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"homechef-api/config"
	"homechef-api/middleware"
	"homechef-api/models"
	"homechef-api/payments"
	"homechef-api/routes"
)

const (
	testJWTSecret     = "test-secret"
	testWebhookSecret = "test-webhook-secret"
)

type fakeProvider struct {
	calls int
	last  payments.CheckoutParams
	err   error
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error) {
	f.calls++
	f.last = params
	if f.err != nil {
		return nil, f.err
	}
	return &payments.CheckoutSession{ID: "sess_test_1", URL: "https://pay.example/sess_test_1"}, nil
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	provider *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// shared-cache in-memory db, one per test, so gorm's connection pool
	// sees a single database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	provider := &fakeProvider{}
	cfg := &config.Config{
		JWTSecret:            testJWTSecret,
		PaymentWebhookSecret: testWebhookSecret,
		PaymentSuccessURL:    "http://localhost:5173/payment/success",
		PaymentCancelURL:     "http://localhost:5173/payment/cancel",
	}

	r := gin.New()
	routes.SetupRoutes(r, db, nil, provider, cfg)
	return &testEnv{router: r, db: db, provider: provider}
}

func (e *testEnv) createUser(t *testing.T, name, email string, role models.UserRole, status models.UserStatus, chefID string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Status:       status,
	}
	if chefID != "" {
		user.ChefID = &chefID
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createMeal(t *testing.T, chefID, name string, price int64) *models.Meal {
	t.Helper()
	meal := &models.Meal{
		ChefID:      chefID,
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Ingredients: []string{"rice", "spices"},
	}
	require.NoError(t, e.db.Create(meal).Error)
	return meal
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user, testJWTSecret)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doWebhook posts a payment provider confirmation with the given shared secret
func (e *testEnv) doWebhook(t *testing.T, body any, secret string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/confirm", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", secret)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// errorBody is the error envelope every engine failure renders
type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (e *testEnv) placeOrder(t *testing.T, customer *models.User, mealID uint, quantity int) *models.Order {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/orders", e.token(t, customer), gin.H{
		"meal_id":          mealID,
		"quantity":         quantity,
		"delivery_address": "42 Test Street",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp.Order
}

func (e *testEnv) reloadOrder(t *testing.T, id uint) *models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, e.db.First(&order, id).Error)
	return &order
}
