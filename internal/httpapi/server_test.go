package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"driverDispatch/internal/auth"
	"driverDispatch/internal/config"
	"driverDispatch/internal/dispatch"
	"driverDispatch/internal/testutil"
	"driverDispatch/models"
	"driverDispatch/repository"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, name string) (*Server, *repository.Repositories, *testutil.RecorderGateway) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	repos := repository.New(d)
	gw := &testutil.RecorderGateway{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Address: ":0"},
		Auth: config.AuthConfig{JWTSecret: testSecret},
		Telegram: config.TelegramConfig{
			FrontendURL:   "https://menu.example.test",
			FrontendQRURL: "https://qr.example.test",
		},
		Restaurant: config.RestaurantConfig{Lat: -17.78, Lng: -63.18, Name: "SuperBurger Central"},
	}
	svc := dispatch.NewService(d, repos, gw, cfg.Restaurant, log)
	return NewServer(cfg, svc, repos, gw, log), repos, gw
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func seedAPIDriver(t *testing.T, repos *repository.Repositories, username string) *models.Driver {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	lat, lng := -17.781, -63.18
	d, err := repos.Drivers.Create(context.Background(), &models.Driver{
		Name: "Juan Perez", Username: username, PasswordHash: hash, Active: true, Lat: &lat, Lng: &lng,
	})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}
	return d
}

func TestDriverLoginEndpoint(t *testing.T) {
	srv, repos, _ := newTestServer(t, "http_login")
	seedAPIDriver(t, repos, "jperez")

	rec := doJSON(t, srv, http.MethodPost, "/drivers/login", "", `{"username":"jperez","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Ok       bool   `json:"ok"`
		DriverID int64  `json:"driverId"`
		Token    string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if !resp.Ok || resp.Token == "" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	p, err := auth.ParseBearer("Bearer "+resp.Token, testSecret)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if p.DriverID != resp.DriverID {
		t.Errorf("token driver id %d != response %d", p.DriverID, resp.DriverID)
	}

	rec = doJSON(t, srv, http.MethodPost, "/drivers/login", "", `{"username":"jperez","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodPost, "/drivers/login", "", `{"username":"jperez"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing password status = %d, want 400", rec.Code)
	}
}

func TestDriverEndpointsRequireMatchingToken(t *testing.T) {
	srv, repos, _ := newTestServer(t, "http_authz")
	d := seedAPIDriver(t, repos, "jperez")
	token, err := auth.IssueDriverToken(testSecret, d.ID, d.Name)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	path := fmt.Sprintf("/drivers/%d/location", d.ID)
	if rec := doJSON(t, srv, http.MethodPut, path, "", `{"lat":-17.8,"lng":-63.2}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	rec := doJSON(t, srv, http.MethodPut, path, token, `{"lat":-17.8,"lng":-63.2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("location update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated models.Driver
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode driver: %v", err)
	}
	if updated.Lat == nil || *updated.Lat != -17.8 {
		t.Errorf("location not applied: %+v", updated)
	}

	// A valid token for a different driver id is rejected.
	other := fmt.Sprintf("/drivers/%d/location", d.ID+1)
	if rec := doJSON(t, srv, http.MethodPut, other, token, `{"lat":-17.8,"lng":-63.2}`); rec.Code != http.StatusForbidden {
		t.Errorf("foreign driver status = %d, want 403", rec.Code)
	}
}

func TestNonNumericIDsAnswerOnce(t *testing.T) {
	srv, repos, _ := newTestServer(t, "http_bad_ids")
	d := seedAPIDriver(t, repos, "jperez")
	token, err := auth.IssueDriverToken(testSecret, d.ID, d.Name)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// A malformed id must produce exactly one JSON error body, not a 400
	// followed by the handler continuing with id 0.
	rec := doJSON(t, srv, http.MethodGet, "/products/abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad product id status = %d, want 400", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a single JSON object: %v, body %q", err, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPut, "/drivers/notanumber/location", token, `{"lat":-17.8,"lng":-63.2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad driver id status = %d, want 400", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a single JSON object: %v, body %q", err, rec.Body.String())
	}
}

func TestDriverDeliveryEndpoints(t *testing.T) {
	srv, repos, gw := newTestServer(t, "http_delivery")
	d := seedAPIDriver(t, repos, "jperez")
	token, err := auth.IssueDriverToken(testSecret, d.ID, d.Name)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	ctx := context.Background()

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/drivers/%d/delivery", d.ID), token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("active delivery status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"hasDelivery":false`) {
		t.Errorf("free driver should report no delivery: %s", rec.Body.String())
	}

	// Create a customer with chat and location, an order, and assign it.
	tg := "900001"
	lat, lng := -17.79, -63.17
	u, err := repos.Users.Create(ctx, &models.User{Name: "Cliente", TelegramID: &tg, LocationLat: &lat, LocationLng: &lng})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	p, err := repos.Products.Create(ctx, &models.Product{Name: "Clásica", Price: 25, Active: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	o, err := repos.Orders.CreateWithItems(ctx, &models.Order{UserID: u.ID, Total: 25},
		[]models.OrderItem{{ProductID: p.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/telegram/payment-confirmed/%d", o.ID), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("payment confirmed status = %d, body %s", rec.Code, rec.Body.String())
	}
	del, err := repos.Deliveries.GetByOrderID(ctx, o.ID)
	if err != nil || del == nil {
		t.Fatalf("delivery not created: %v, %+v", err, del)
	}
	gw.Reset()

	// Walk the status forward through the API.
	statusPath := fmt.Sprintf("/drivers/%d/delivery/%d/status", d.ID, del.ID)
	rec = doJSON(t, srv, http.MethodPatch, statusPath, token, `{"status":"RUTA_ENTREGA"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status update = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"RUTA_ENTREGA"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	// Regression is rejected by the transition table.
	rec = doJSON(t, srv, http.MethodPatch, statusPath, token, `{"status":"RUTA_RECOJO"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("regression status = %d, want 400", rec.Code)
	}
	// Unknown status is rejected before any lookup.
	rec = doJSON(t, srv, http.MethodPatch, statusPath, token, `{"status":"VOLANDO"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", rec.Code)
	}
	// Unknown delivery id.
	rec = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/drivers/%d/delivery/9999/status", d.ID), token, `{"status":"ENTREGADO"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown delivery status = %d, want 404", rec.Code)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/telegram/payment-confirmed/9999", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown order payment status = %d, want 404", rec.Code)
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	srv, repos, gw := newTestServer(t, "http_orders")
	ctx := context.Background()
	tg := "900002"
	u, err := repos.Users.Create(ctx, &models.User{Name: "Cliente", TelegramID: &tg})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	burger, err := repos.Products.Create(ctx, &models.Product{Name: "Doble", Price: 35, Active: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	retired, err := repos.Products.Create(ctx, &models.Product{Name: "Vieja", Price: 20, Active: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := repos.Products.Deactivate(ctx, retired.ID); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	body := fmt.Sprintf(`{"user_id":%d,"items":[{"product_id":%d,"quantity":2}]}`, u.ID, burger.ID)
	rec := doJSON(t, srv, http.MethodPost, "/orders", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order status = %d, body %s", rec.Code, rec.Body.String())
	}
	var o models.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if o.Total != 70 {
		t.Errorf("total = %g, want 70", o.Total)
	}
	if o.Status != models.OrderStatusPending {
		t.Errorf("status = %s, want %s", o.Status, models.OrderStatusPending)
	}

	// The summary lands in the customer chat with the pay/cancel keyboard.
	sent := gw.Sent()
	if len(sent) != 1 || !sent[0].Markdown || !strings.Contains(sent[0].Text, "Resumen") {
		t.Errorf("expected one markdown summary, got %+v", sent)
	}

	// Inactive products are refused.
	body = fmt.Sprintf(`{"user_id":%d,"items":[{"product_id":%d,"quantity":1}]}`, u.ID, retired.ID)
	if rec := doJSON(t, srv, http.MethodPost, "/orders", "", body); rec.Code != http.StatusBadRequest {
		t.Errorf("inactive product status = %d, want 400", rec.Code)
	}
	// Orders without items are refused.
	body = fmt.Sprintf(`{"user_id":%d,"items":[]}`, u.ID)
	if rec := doJSON(t, srv, http.MethodPost, "/orders", "", body); rec.Code != http.StatusBadRequest {
		t.Errorf("empty order status = %d, want 400", rec.Code)
	}
	// Unknown users are refused.
	body = fmt.Sprintf(`{"user_id":9999,"items":[{"product_id":%d,"quantity":1}]}`, burger.ID)
	if rec := doJSON(t, srv, http.MethodPost, "/orders", "", body); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}
}

func TestTelegramWebhook(t *testing.T) {
	srv, repos, gw := newTestServer(t, "http_webhook")
	ctx := context.Background()

	// /start registers the customer and greets them.
	start := `{"update_id":1,"message":{"message_id":1,"chat":{"id":555123},"from":{"id":555123,"first_name":"Ana"},"text":"/start","entities":[{"type":"bot_command","offset":0,"length":6}]}}`
	rec := doJSON(t, srv, http.MethodPost, "/telegram/webhook", "", start)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", rec.Code)
	}
	u, err := repos.Users.GetByTelegramID(ctx, "555123")
	if err != nil || u == nil {
		t.Fatalf("user not registered: %v, %+v", err, u)
	}
	sent := gw.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].Text, "Ana") {
		t.Fatalf("expected welcome message, got %+v", sent)
	}
	gw.Reset()

	// A shared location is stored on the user record.
	loc := `{"update_id":2,"message":{"message_id":2,"chat":{"id":555123},"from":{"id":555123,"first_name":"Ana"},"location":{"latitude":-17.79,"longitude":-63.17}}}`
	if rec := doJSON(t, srv, http.MethodPost, "/telegram/webhook", "", loc); rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", rec.Code)
	}
	u, err = repos.Users.GetByTelegramID(ctx, "555123")
	if err != nil || u == nil {
		t.Fatalf("reload user: %v", err)
	}
	if !u.HasLocation() || *u.LocationLat != -17.79 {
		t.Errorf("location not stored: %+v", u)
	}
	gw.Reset()

	// Cancelling an order from the chat button.
	p, err := repos.Products.Create(ctx, &models.Product{Name: "Clásica", Price: 25, Active: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	o, err := repos.Orders.CreateWithItems(ctx, &models.Order{UserID: u.ID, Total: 25},
		[]models.OrderItem{{ProductID: p.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	cancel := fmt.Sprintf(`{"update_id":3,"callback_query":{"id":"cb1","from":{"id":555123,"first_name":"Ana"},"message":{"message_id":3,"chat":{"id":555123}},"data":"cancel_%d"}}`, o.ID)
	if rec := doJSON(t, srv, http.MethodPost, "/telegram/webhook", "", cancel); rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", rec.Code)
	}
	ord, err := repos.Orders.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if ord.Status != models.OrderStatusCancelled {
		t.Errorf("order status = %s, want %s", ord.Status, models.OrderStatusCancelled)
	}
	sent = gw.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].Text, "cancelado") {
		t.Errorf("expected cancellation message, got %+v", sent)
	}

	// Undecodable or irrelevant updates still answer 200.
	if rec := doJSON(t, srv, http.MethodPost, "/telegram/webhook", "", `{"update_id":4}`); rec.Code != http.StatusOK {
		t.Errorf("empty update status = %d, want 200", rec.Code)
	}
	// So does a callback whose originating message is gone.
	gw.Reset()
	orphan := `{"update_id":5,"callback_query":{"id":"cb2","from":{"id":555123,"first_name":"Ana"},"data":"pay_1"}}`
	if rec := doJSON(t, srv, http.MethodPost, "/telegram/webhook", "", orphan); rec.Code != http.StatusOK {
		t.Errorf("orphan callback status = %d, want 200", rec.Code)
	}
	if len(gw.Sent()) != 0 {
		t.Errorf("orphan callback should send nothing, got %+v", gw.Sent())
	}
}
