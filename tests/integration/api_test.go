package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	httpHandler "github.com/sanjaypunani/order-managment-sub001/internal/adapter/http/handler"
	redisStorage "github.com/sanjaypunani/order-managment-sub001/internal/adapter/storage/redis"
	"github.com/sanjaypunani/order-managment-sub001/internal/service"
	"github.com/sanjaypunani/order-managment-sub001/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack on in-memory repos and miniredis.
// It exercises the real HTTP layer, middleware, handlers, and services
// end-to-end; only postgres is replaced.

type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	statsCache := redisStorage.NewStatsCache(rdb)

	customerRepo := newInMemoryCustomerRepo()
	txnRepo := newInMemoryWalletTxnRepo()
	productRepo := newInMemoryProductRepo()
	orderRepo := newInMemoryOrderRepo()
	transactor := newLockingTransactor()

	log := logger.New("error", false)
	walletSvc := service.NewWalletService(customerRepo, txnRepo, transactor, log)
	customerSvc := service.NewCustomerService(customerRepo, log)
	productSvc := service.NewProductService(productRepo, log)
	orderSvc := service.NewOrderService(orderRepo, customerRepo, walletSvc, log)
	dashboardSvc := service.NewDashboardService(orderRepo, txnRepo, customerRepo, statsCache, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		CustomerSvc:  customerSvc,
		ProductSvc:   productSvc,
		OrderSvc:     orderSvc,
		WalletSvc:    walletSvc,
		DashboardSvc: dashboardSvc,
		Logger:       log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server: server,
		redis:  mr,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// doJSON issues a request with a JSON body and decodes the envelope.
func (a *testApp) doJSON(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func dataOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "envelope should carry a data object: %v", envelope)
	return data
}

func (a *testApp) createCustomer(t *testing.T, mobile, name string) string {
	t.Helper()
	status, envelope := a.doJSON(t, "POST", "/api/v1/customers", map[string]any{
		"mobile_number": mobile,
		"customer_name": name,
		"society_name":  "Shree Residency",
	})
	require.Equal(t, http.StatusCreated, status, "create customer: %v", envelope)
	return dataOf(t, envelope)["id"].(string)
}

func (a *testApp) addFunds(t *testing.T, customerID, amount string) {
	t.Helper()
	status, envelope := a.doJSON(t, "POST", "/api/v1/wallet/add", map[string]any{
		"customer_id": customerID,
		"amount":      amount,
		"note":        "top up",
	})
	require.Equal(t, http.StatusOK, status, "add funds: %v", envelope)
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_CustomerLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createCustomer(t, "9876543210", "Ramesh Patel")

	// Duplicate mobile is rejected
	status, envelope := app.doJSON(t, "POST", "/api/v1/customers", map[string]any{
		"mobile_number": "9876543210",
		"customer_name": "Someone Else",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CUS_002", envelope["error_code"])

	// Lookup by mobile
	status, envelope = app.doJSON(t, "GET", "/api/v1/customers/mobile/9876543210", nil)
	require.Equal(t, http.StatusOK, status)
	data := dataOf(t, envelope)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "+91", data["country_code"])
	assert.Equal(t, "0", data["wallet_balance"])

	// Update profile
	status, envelope = app.doJSON(t, "PUT", "/api/v1/customers/"+id, map[string]any{
		"customer_name": "Ramesh R. Patel",
		"flat_number":   "B-204",
	})
	require.Equal(t, http.StatusOK, status, "update: %v", envelope)
	assert.Equal(t, "Ramesh R. Patel", dataOf(t, envelope)["customer_name"])

	// Search listing
	status, envelope = app.doJSON(t, "GET", "/api/v1/customers?search=Ramesh", nil)
	require.Equal(t, http.StatusOK, status)
	list := dataOf(t, envelope)
	assert.Equal(t, float64(1), list["total"])

	// Unknown customer is a 404
	status, envelope = app.doJSON(t, "GET", "/api/v1/customers/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "CUS_001", envelope["error_code"])
}

func TestIntegration_WalletFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createCustomer(t, "9123456780", "Wallet User")
	app.addFunds(t, id, "500.50")

	// Deduct part of the balance
	status, envelope := app.doJSON(t, "POST", "/api/v1/wallet/deduct", map[string]any{
		"customer_id": id,
		"amount":      "200",
		"note":        "manual adjustment",
	})
	require.Equal(t, http.StatusOK, status, "deduct: %v", envelope)
	assert.Equal(t, "300.5", dataOf(t, envelope)["balance_after"])

	// Exact-amount-or-fail: over-balance deduction is rejected entirely
	status, envelope = app.doJSON(t, "POST", "/api/v1/wallet/deduct", map[string]any{
		"customer_id": id,
		"amount":      "1000",
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "WAL_001", envelope["error_code"])

	// Balance is untouched by the failed deduction and history has 2 entries
	status, envelope = app.doJSON(t, "GET", "/api/v1/wallet?customerId="+id, nil)
	require.Equal(t, http.StatusOK, status)
	wallet := dataOf(t, envelope)
	assert.Equal(t, "300.5", wallet["balance"])
	txns := wallet["transactions"].([]any)
	require.Len(t, txns, 2)
	// Most recent first
	first := txns[0].(map[string]any)
	assert.Equal(t, "debit", first["type"])
	assert.Equal(t, "200", first["amount"])

	// Ledger replay matches the stored balance
	status, envelope = app.doJSON(t, "GET", "/api/v1/wallet/"+id+"/reconcile", nil)
	require.Equal(t, http.StatusOK, status)
	recon := dataOf(t, envelope)
	assert.Equal(t, true, recon["consistent"])
	assert.Equal(t, "300.5", recon["ledger_sum"])
}

func TestIntegration_OrderWalletSettlement(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createCustomer(t, "9988776655", "Order User")
	app.addFunds(t, id, "100")

	// Order total 290; wallet covers 100, remainder stays due
	status, envelope := app.doJSON(t, "POST", "/api/v1/orders", map[string]any{
		"customer_id": id,
		"items": []map[string]any{
			{"name": "Wheat Flour", "quantity": "5", "unit": "kg", "price": "40"},
			{"name": "Sugar", "quantity": "2", "unit": "kg", "price": "45"},
		},
		"use_wallet": true,
	})
	require.Equal(t, http.StatusCreated, status, "create order: %v", envelope)
	order := dataOf(t, envelope)
	orderID := order["id"].(string)
	assert.Equal(t, "290", order["total_amount"])
	assert.Equal(t, "100", order["wallet_amount_used"])
	assert.Equal(t, "190", order["final_amount"])
	assert.Equal(t, "pending", order["status"])

	// Wallet was drained by the draw
	status, envelope = app.doJSON(t, "GET", "/api/v1/wallet?customerId="+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0", dataOf(t, envelope)["balance"])

	// The draw is on the ledger, tied to the order
	status, envelope = app.doJSON(t, "GET", "/api/v1/wallet/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, status)
	history := dataOf(t, envelope)
	txns := history["transactions"].([]any)
	require.Len(t, txns, 1)
	assert.Equal(t, float64(1), history["count"])
	assert.Equal(t, "debit", txns[0].(map[string]any)["type"])

	// Cancelling returns the funds as a reversal credit
	status, envelope = app.doJSON(t, "PATCH", "/api/v1/orders/"+orderID+"/status", map[string]any{
		"status": "cancelled",
	})
	require.Equal(t, http.StatusOK, status, "cancel: %v", envelope)

	status, envelope = app.doJSON(t, "GET", "/api/v1/wallet?customerId="+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "100", dataOf(t, envelope)["balance"])

	status, envelope = app.doJSON(t, "GET", "/api/v1/wallet/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, status)
	history = dataOf(t, envelope)
	txns = history["transactions"].([]any)
	require.Len(t, txns, 2)
	assert.Equal(t, float64(2), history["count"])
	credit := txns[0].(map[string]any)
	assert.Equal(t, "credit", credit["type"])
	assert.Equal(t, true, credit["is_reversal"])
}

func TestIntegration_OrderValidation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createCustomer(t, "9000011111", "Strict User")

	// Empty items
	status, envelope := app.doJSON(t, "POST", "/api/v1/orders", map[string]any{
		"customer_id": id,
		"items":       []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, status, "empty order: %v", envelope)

	// Place a valid order, then attempt an illegal transition
	status, envelope = app.doJSON(t, "POST", "/api/v1/orders", map[string]any{
		"customer_id": id,
		"items": []map[string]any{
			{"name": "Milk", "quantity": "1", "unit": "ltr", "price": "60"},
		},
	})
	require.Equal(t, http.StatusCreated, status)
	orderID := dataOf(t, envelope)["id"].(string)

	status, envelope = app.doJSON(t, "PATCH", "/api/v1/orders/"+orderID+"/status", map[string]any{
		"status": "cancelled",
	})
	require.Equal(t, http.StatusOK, status)

	status, envelope = app.doJSON(t, "PATCH", "/api/v1/orders/"+orderID+"/status", map[string]any{
		"status": "delivered",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ORD_003", envelope["error_code"])
}

func TestIntegration_OrderNumbersStayUniqueAfterDelete(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createCustomer(t, "9000022222", "Frequent Buyer")

	placeOrder := func() (orderID, orderNumber string) {
		status, envelope := app.doJSON(t, "POST", "/api/v1/orders", map[string]any{
			"customer_id": id,
			"items": []map[string]any{
				{"name": "Milk", "quantity": "1", "unit": "ltr", "price": "60"},
			},
		})
		require.Equal(t, http.StatusCreated, status, "create order: %v", envelope)
		data := dataOf(t, envelope)
		return data["id"].(string), data["order_number"].(string)
	}

	firstID, firstNumber := placeOrder()
	_, secondNumber := placeOrder()

	// Deleting the first order shrinks the day's count but must not free
	// its number for reuse.
	status, envelope := app.doJSON(t, "DELETE", "/api/v1/orders/"+firstID, nil)
	require.Equal(t, http.StatusOK, status, "delete order: %v", envelope)

	_, thirdNumber := placeOrder()
	assert.NotEqual(t, secondNumber, thirdNumber)
	assert.NotEqual(t, firstNumber, thirdNumber)
	assert.Greater(t, thirdNumber, secondNumber)
}

func TestIntegration_ProductCatalog(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	status, envelope := app.doJSON(t, "POST", "/api/v1/products", map[string]any{
		"name":     "Toor Dal",
		"category": "pulses",
		"unit":     "kg",
		"price":    "140",
	})
	require.Equal(t, http.StatusCreated, status, "create product: %v", envelope)
	productID := dataOf(t, envelope)["id"].(string)
	assert.Equal(t, true, dataOf(t, envelope)["is_active"])

	// Deactivate the whole category
	status, envelope = app.doJSON(t, "POST", "/api/v1/products/categories/pulses/toggle", map[string]any{
		"active": false,
	})
	require.Equal(t, http.StatusOK, status, "toggle: %v", envelope)
	assert.Equal(t, float64(1), dataOf(t, envelope)["affected"])

	// Active-only listing no longer sees it
	status, envelope = app.doJSON(t, "GET", "/api/v1/products?active=true", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), dataOf(t, envelope)["total"])

	// Bulk price update
	status, envelope = app.doJSON(t, "POST", "/api/v1/products/bulk-update", map[string]any{
		"product_ids": []string{productID},
		"field":       "price",
		"value":       "150",
	})
	require.Equal(t, http.StatusOK, status, "bulk update: %v", envelope)

	status, envelope = app.doJSON(t, "GET", "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "150", dataOf(t, envelope)["price"])
}

func TestIntegration_DashboardStats(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createCustomer(t, "9555566667", "Dashboard User")
	app.addFunds(t, id, "50")

	status, envelope := app.doJSON(t, "POST", "/api/v1/orders", map[string]any{
		"customer_id": id,
		"items": []map[string]any{
			{"name": "Rice", "quantity": "10", "unit": "kg", "price": "55"},
		},
		"use_wallet": true,
	})
	require.Equal(t, http.StatusCreated, status)
	orderID := dataOf(t, envelope)["id"].(string)

	status, _ = app.doJSON(t, "PATCH", "/api/v1/orders/"+orderID+"/status", map[string]any{
		"status": "delivered",
	})
	require.Equal(t, http.StatusOK, status)

	status, envelope = app.doJSON(t, "GET", "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, status, "stats: %v", envelope)
	stats := dataOf(t, envelope)
	orders := stats["orders"].(map[string]any)
	assert.Equal(t, float64(1), orders["total_orders"])
	assert.Equal(t, float64(1), orders["delivered"])
	assert.Equal(t, float64(1), stats["customer_count"])

	// Second read comes from the cache and must agree
	status, envelope = app.doJSON(t, "GET", "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, stats["customer_count"], dataOf(t, envelope)["customer_count"])
}
