package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/storetest"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/gin-gonic/gin"
)

func newTestServer(t *testing.T) (*gin.Engine, *App, *storetest.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := storetest.NewMemory()
	settings := &config.Settings{Timezone: "Asia/Kolkata", ScanCooldown: 2 * time.Second}
	app := NewApp(store, settings)
	app.MarkReady()
	return newRouter(app, settings, nil, config.GetLogger()), app, store
}

func doJSON(t *testing.T, r http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func errorNotifications(app *App) int {
	n := 0
	for _, item := range app.Notifications.List() {
		if item.Level == models.NotificationLevelError {
			n++
		}
	}
	return n
}

func TestReadinessGate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	settings := &config.Settings{Timezone: "Asia/Kolkata"}
	app := NewApp(storetest.NewMemory(), settings)
	r := newRouter(app, settings, nil, config.GetLogger())

	if w := doJSON(t, r, http.MethodGet, "/api/customers", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before ready, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/healthz", nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from healthz, got %d", w.Code)
	}
	app.MarkReady()
	if w := doJSON(t, r, http.MethodGet, "/api/customers", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 once ready, got %d", w.Code)
	}
}

func TestCustomerCreateMergesByName(t *testing.T) {
	r, app, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/customers", map[string]any{
		"name": "Raja Nei Store", "creditGiven": 25000, "paidAmount": 15000, "product": "Sunflower Oil - 1L",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	created := decodeMap(t, w)
	if created["balance"] != float64(10000) {
		t.Fatalf("expected balance 10000, got %v", created["balance"])
	}

	w = doJSON(t, r, http.MethodPost, "/api/customers", map[string]any{"name": "  raja nei STORE ", "creditGiven": "500"})
	if w.Code != http.StatusOK {
		t.Fatalf("merge: %d %s", w.Code, w.Body.String())
	}
	merged := decodeMap(t, w)
	if merged["_id"] != created["_id"] {
		t.Fatalf("expected merge into %v, got %v", created["_id"], merged["_id"])
	}
	if merged["balance"] != float64(10500) {
		t.Fatalf("expected balance 10500, got %v", merged["balance"])
	}
	if got := len(app.Customers.List()); got != 1 {
		t.Fatalf("expected one customer, got %d", got)
	}

	w = doJSON(t, r, http.MethodGet, "/api/customers", nil)
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0]["id"] != float64(1) {
		t.Fatalf("expected one row with display index 1, got %v", list)
	}
}

func TestAddPaymentAndInvalidAmount(t *testing.T) {
	r, _, _ := newTestServer(t)
	created := decodeMap(t, doJSON(t, r, http.MethodPost, "/api/manufacturers", map[string]any{
		"name": "Bharat Traders", "creditGiven": 35000, "paidAmount": 10000,
	}))
	id := created["_id"].(string)

	w := doJSON(t, r, http.MethodPost, "/api/manufacturers/"+id+"/add-payment", map[string]any{"amount": 5000, "note": "cheque"})
	if w.Code != http.StatusOK {
		t.Fatalf("add payment: %d %s", w.Code, w.Body.String())
	}
	if got := decodeMap(t, w)["balance"]; got != float64(20000) {
		t.Fatalf("expected balance 20000, got %v", got)
	}

	for _, amount := range []any{-5, "abc", 0} {
		w = doJSON(t, r, http.MethodPost, "/api/manufacturers/"+id+"/add-credit", map[string]any{"amount": amount})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("amount %v: expected 400, got %d", amount, w.Code)
		}
	}
}

func TestTransportFailureNotifiesOnce(t *testing.T) {
	r, app, store := newTestServer(t)
	created := decodeMap(t, doJSON(t, r, http.MethodPost, "/api/customers", map[string]any{"name": "Surya Oil Mart"}))
	id := created["_id"].(string)

	store.FailNext(utils.NewTransportError("AddPayment", http.StatusServiceUnavailable, errors.New("store unavailable")))
	w := doJSON(t, r, http.MethodPost, "/api/customers/"+id+"/add-payment", map[string]any{"amount": 100})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if got := errorNotifications(app); got != 1 {
		t.Fatalf("expected one error notification, got %d", got)
	}
	if cached, _ := app.Customers.Find(id); !cached.PaidAmount.IsZero() {
		t.Fatalf("cache changed after failed payment: %s", cached.PaidAmount)
	}

	w = doJSON(t, r, http.MethodPost, "/api/customers/missing/add-payment", map[string]any{"amount": 100})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown account, got %d", w.Code)
	}
}

func TestManufacturerProducts(t *testing.T) {
	r, _, _ := newTestServer(t)
	created := decodeMap(t, doJSON(t, r, http.MethodPost, "/api/manufacturers", map[string]any{"name": "Muyal Company"}))
	id := created["_id"].(string)

	w := doJSON(t, r, http.MethodPost, "/api/manufacturers/"+id+"/add-product", map[string]any{"name": "Coconut Oil", "quantity": 10, "rate": 120})
	if w.Code != http.StatusOK {
		t.Fatalf("add product: %d %s", w.Code, w.Body.String())
	}
	totals := decodeMap(t, w)["productTotals"].(map[string]any)
	if totals["qty"] != float64(10) || totals["sum"] != float64(1200) {
		t.Fatalf("unexpected product totals %v", totals)
	}

	if w := doJSON(t, r, http.MethodPost, "/api/customers/"+id+"/add-product", map[string]any{"name": "x", "quantity": 1, "rate": 1}); w.Code != http.StatusNotFound {
		t.Fatalf("customers have no add-product route, got %d", w.Code)
	}
}

func TestSalesAndSummary(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/sales", map[string]any{"productName": "Sunflower Oil", "quantity": 2, "price": 150, "total": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("create sale: %d %s", w.Code, w.Body.String())
	}
	if got := decodeMap(t, w)["total"]; got != float64(300) {
		t.Fatalf("expected recomputed total 300, got %v", got)
	}
	doJSON(t, r, http.MethodPost, "/api/sales", map[string]any{"productName": "Gingelly Oil", "quantity": 1, "price": 400})

	if w := doJSON(t, r, http.MethodPost, "/api/sales", map[string]any{"productName": "Sunflower Oil", "quantity": 1, "price": 10, "date": "15/10/2026"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", w.Code)
	}

	summary := decodeMap(t, doJSON(t, r, http.MethodGet, "/api/sales/summary", nil))
	if summary["total"] != float64(700) || summary["monthToDate"] != float64(700) {
		t.Fatalf("unexpected summary %v", summary)
	}
	byProduct := summary["byProduct"].([]any)
	if len(byProduct) != 2 || byProduct[0].(map[string]any)["productName"] != "Gingelly Oil" {
		t.Fatalf("expected largest product first, got %v", byProduct)
	}
}

func TestInventoryMovementsAndScanSession(t *testing.T) {
	r, _, store := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/inventory/products", map[string]any{"barcode": "8901", "name": "Groundnut Oil 1L", "minStock": 5})
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/api/inventory/products", map[string]any{"barcode": "8901", "name": "dup"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate barcode, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/inventory/movements", map[string]any{"barcode": "8901", "type": "in", "quantity": 10, "reason": "delivery"})
	if w.Code != http.StatusOK {
		t.Fatalf("movement: %d %s", w.Code, w.Body.String())
	}
	item := decodeMap(t, w)
	if item["stock"] != float64(10) || item["stockStatus"] != "OK" {
		t.Fatalf("unexpected item %v", item)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/inventory/movements", map[string]any{"barcode": "8901", "type": "OUT", "quantity": 0}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", w.Code)
	}

	session := decodeMap(t, doJSON(t, r, http.MethodPost, "/api/scan-sessions", nil))
	scansPath := "/api/scan-sessions/" + session["id"].(string) + "/scans"

	first := decodeMap(t, doJSON(t, r, http.MethodPost, scansPath, map[string]any{"barcode": "8901", "type": "OUT", "quantity": 6}))
	if first["suppressed"] != false {
		t.Fatalf("first scan suppressed: %v", first)
	}
	second := decodeMap(t, doJSON(t, r, http.MethodPost, scansPath, map[string]any{"barcode": "8901", "type": "OUT", "quantity": 6}))
	if second["suppressed"] != true {
		t.Fatalf("repeat scan not suppressed: %v", second)
	}
	if got := store.Calls("RecordMovement"); got != 2 {
		t.Fatalf("expected 2 store movements, got %d", got)
	}

	var low []map[string]any
	if err := json.Unmarshal(doJSON(t, r, http.MethodGet, "/api/inventory/products/low-stock", nil).Body.Bytes(), &low); err != nil {
		t.Fatalf("decode low stock: %v", err)
	}
	if len(low) != 1 || low[0]["stock"] != float64(4) || low[0]["stockStatus"] != "LOW" {
		t.Fatalf("expected item at stock 4 to be LOW, got %v", low)
	}

	if w := doJSON(t, r, http.MethodDelete, "/api/scan-sessions/"+session["id"].(string), nil); w.Code != http.StatusNoContent {
		t.Fatalf("close session: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, scansPath, map[string]any{"barcode": "8901"}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for closed session, got %d", w.Code)
	}
}

func TestDashboardAndNotifications(t *testing.T) {
	r, app, _ := newTestServer(t)
	doJSON(t, r, http.MethodPost, "/api/manufacturers", map[string]any{"name": "Meenakshi Oil Traders", "creditGiven": 50000, "paidAmount": 31273})
	doJSON(t, r, http.MethodPost, "/api/customers", map[string]any{"name": "Raja Nei Store", "creditGiven": 25000, "paidAmount": 15000})

	summary := decodeMap(t, doJSON(t, r, http.MethodGet, "/api/dashboard", nil))
	if summary["outstandingPayables"] != float64(18727) || summary["outstandingReceivables"] != float64(10000) {
		t.Fatalf("unexpected dashboard %v", summary)
	}

	notifications := app.Notifications.List()
	if len(notifications) == 0 {
		t.Fatalf("expected success notifications")
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/notifications/"+notifications[0].ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("dismiss: %d", w.Code)
	}
	if got := len(app.Notifications.List()); got != len(notifications)-1 {
		t.Fatalf("expected %d notifications after dismiss, got %d", len(notifications)-1, got)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/notifications/"+notifications[0].ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second dismiss, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/nothing-here", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", w.Code)
	}
}

func TestIdleScanSessionsExpire(t *testing.T) {
	_, app, _ := newTestServer(t)
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	app.now = func() time.Time { return now }

	idle := app.OpenScanSession()
	active := app.OpenScanSession()

	now = now.Add(20 * time.Minute)
	if _, ok := app.ScanSession(active.ID); !ok {
		t.Fatalf("active session missing")
	}
	now = now.Add(15 * time.Minute)
	app.OpenScanSession()

	if _, ok := app.ScanSession(idle.ID); ok {
		t.Fatalf("idle session should have expired")
	}
	if _, ok := app.ScanSession(active.ID); !ok {
		t.Fatalf("recently used session should survive")
	}
}
