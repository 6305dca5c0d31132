package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/genius-car/internal/api/http"
	"github.com/spec-kit/genius-car/internal/api/http/handlers"
	"github.com/spec-kit/genius-car/internal/auth"
	"github.com/spec-kit/genius-car/internal/domain"
	"github.com/spec-kit/genius-car/internal/events"
	"github.com/spec-kit/genius-car/internal/observability"
	"github.com/spec-kit/genius-car/internal/repository"
	"github.com/spec-kit/genius-car/internal/service"
)

const (
	testSecret = "test-secret"
	svcCheap   = "6a1c2f4e-0b1d-4c39-9d5e-1f2a3b4c5d04"
	svcMid     = "6a1c2f4e-0b1d-4c39-9d5e-1f2a3b4c5d03"
	svcPricey  = "6a1c2f4e-0b1d-4c39-9d5e-1f2a3b4c5d02"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

type testOptions struct {
	issueKeyHash string
	store        *repository.Store
}

func newTestServer(t *testing.T, opts testOptions) *testServer {
	t.Helper()

	store := repository.NewMemoryStore()
	if opts.store != nil {
		store = *opts.store
	}
	if store.Seeder != nil {
		err := store.Seeder.SeedServices(context.Background(), []domain.Service{
			{ID: svcMid, Doc: domain.Document{"name": "Auto Car Repair", "price": 150.0, "description": "General repair"}},
			{ID: svcPricey, Doc: domain.Document{"name": "Engine Diagnostic", "price": 300.0, "description": "Full engine scan"}},
			{ID: svcCheap, Doc: domain.Document{"name": "Battery Charge", "price": 50.0, "img": "battery.jpg"}},
		})
		if err != nil {
			t.Fatalf("SeedServices: %v", err)
		}
	}

	logger := zap.NewNop()
	tokens := auth.NewTokenManager(testSecret)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{CORSAllowOrigins: "*"})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("genius-car", "test", nil),
		Tokens:         handlers.NewTokenHandler(service.NewAuthServiceWithTokens(tokens)),
		Services:       handlers.NewServicesHandler(service.NewCatalogService(store.Services)),
		Orders:         handlers.NewOrdersHandler(service.NewOrderService(store.Orders, dispatcher, logger)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		IssueGuard:     auth.NewIssueGuard(opts.issueKeyHash),
		Metrics:        metrics,
	})
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, target, token, body string) (*stdhttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func (s *testServer) issue(t *testing.T, body string) string {
	t.Helper()
	resp, data := s.do(t, stdhttp.MethodPost, "/jwt", "", body)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("POST /jwt: status %d: %s", resp.StatusCode, data)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		t.Fatalf("POST /jwt: bad response %s", data)
	}
	return out.Token
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestRootLiveness(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	resp, body := srv.do(t, stdhttp.MethodGet, "/", "", "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "running") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestProtectedRoutesRequireHeader(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	for _, route := range []struct{ method, target string }{
		{stdhttp.MethodGet, "/orders?email=a@x.com"},
		{stdhttp.MethodPost, "/orders"},
		{stdhttp.MethodPatch, "/orders/6a1c2f4e-0b1d-4c39-9d5e-1f2a3b4c5d04"},
		{stdhttp.MethodDelete, "/orders/6a1c2f4e-0b1d-4c39-9d5e-1f2a3b4c5d04"},
	} {
		resp, _ := srv.do(t, route.method, route.target, "", "")
		if resp.StatusCode != stdhttp.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.target, resp.StatusCode)
		}
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	email := "a@x.com"
	foreign, _, err := auth.NewTokenManager("other-secret").Issue(domain.Identity{Email: &email})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	expired, _, err := auth.NewTokenManager(testSecret).
		WithClock(func() time.Time { return time.Now().Add(-25 * time.Hour) }).
		Issue(domain.Identity{Email: &email})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for name, token := range map[string]string{"wrong secret": foreign, "expired": expired, "garbage": "x.y.z"} {
		resp, body := srv.do(t, stdhttp.MethodGet, "/orders?email=a@x.com", token, "")
		if resp.StatusCode != stdhttp.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", name, resp.StatusCode)
		}
		if !strings.Contains(string(body), "FORBIDDEN") {
			t.Errorf("%s: unexpected body %s", name, body)
		}
	}
}

func TestOrdersOwnershipMismatch(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"b@x.com"}`)

	for _, target := range []string{"/orders?email=a@x.com", "/orders?email=B@x.com", "/orders", "/orders?email="} {
		resp, _ := srv.do(t, stdhttp.MethodGet, target, token, "")
		if resp.StatusCode != stdhttp.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", target, resp.StatusCode)
		}
	}
}

func TestCreateThenListOrders(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"a@x.com"}`)
	other := srv.issue(t, `{"email":"b@x.com"}`)

	resp, body := srv.do(t, stdhttp.MethodPost, "/orders", token,
		`{"customerEmail":"a@x.com","serviceId":"s1","status":"pending"}`)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("POST /orders: status %d: %s", resp.StatusCode, body)
	}
	inserted := decode[domain.InsertResult](t, body)
	if !inserted.Acknowledged || inserted.InsertedID == "" {
		t.Fatalf("POST /orders: %s", body)
	}
	if resp, body := srv.do(t, stdhttp.MethodPost, "/orders", other, `{"customerEmail":"b@x.com"}`); resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("POST /orders: status %d: %s", resp.StatusCode, body)
	}

	resp, body = srv.do(t, stdhttp.MethodGet, "/orders?email=a@x.com", token, "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("GET /orders: status %d: %s", resp.StatusCode, body)
	}
	orders := decode[[]map[string]any](t, body)
	if len(orders) != 1 {
		t.Fatalf("GET /orders returned %d orders: %s", len(orders), body)
	}
	got := orders[0]
	if got["_id"] != inserted.InsertedID || got["customerEmail"] != "a@x.com" ||
		got["serviceId"] != "s1" || got["status"] != "pending" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestListOrdersEmptyIsArray(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"a@x.com"}`)

	resp, body := srv.do(t, stdhttp.MethodGet, "/orders?email=a@x.com", token, "")
	if resp.StatusCode != stdhttp.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty array, got %d %s", resp.StatusCode, body)
	}
}

func TestCreateOrderForAnotherCustomerIsAllowed(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"a@x.com"}`)

	resp, body := srv.do(t, stdhttp.MethodPost, "/orders", token, `{"customerEmail":"someone@else.com"}`)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("POST /orders: status %d: %s", resp.StatusCode, body)
	}
}

func TestUpdateStatusKeepsOtherFields(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"a@x.com"}`)

	_, body := srv.do(t, stdhttp.MethodPost, "/orders", token,
		`{"customerEmail":"a@x.com","serviceId":"s1","status":"pending","price":150,"phone":"555"}`)
	id := decode[domain.InsertResult](t, body).InsertedID

	resp, body := srv.do(t, stdhttp.MethodPatch, "/orders/"+id, token, `{"status":"approved"}`)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("PATCH: status %d: %s", resp.StatusCode, body)
	}
	updated := decode[domain.UpdateResult](t, body)
	if !updated.Acknowledged || updated.MatchedCount != 1 || updated.ModifiedCount != 1 {
		t.Fatalf("PATCH result %s", body)
	}

	_, body = srv.do(t, stdhttp.MethodGet, "/orders?email=a@x.com", token, "")
	orders := decode[[]map[string]any](t, body)
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %s", body)
	}
	want := map[string]any{
		"_id":           id,
		"customerEmail": "a@x.com",
		"serviceId":     "s1",
		"status":        "approved",
		"price":         150.0,
		"phone":         "555",
	}
	for k, v := range want {
		if orders[0][k] != v {
			t.Errorf("%s = %v, want %v", k, orders[0][k], v)
		}
	}
	if len(orders[0]) != len(want) {
		t.Errorf("order has unexpected fields: %v", orders[0])
	}
}

func TestUpdateUnknownOrder(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"a@x.com"}`)

	resp, body := srv.do(t, stdhttp.MethodPatch, "/orders/00000000-0000-0000-0000-000000000001", token, `{"status":"approved"}`)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("PATCH: status %d: %s", resp.StatusCode, body)
	}
	if decode[domain.UpdateResult](t, body).MatchedCount != 0 {
		t.Fatalf("PATCH result %s", body)
	}
}

func TestDeleteOrder(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"a@x.com"}`)

	_, body := srv.do(t, stdhttp.MethodPost, "/orders", token, `{"customerEmail":"a@x.com"}`)
	id := decode[domain.InsertResult](t, body).InsertedID

	resp, body := srv.do(t, stdhttp.MethodDelete, "/orders/"+id, token, "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("DELETE: status %d: %s", resp.StatusCode, body)
	}
	if got := decode[domain.DeleteResult](t, body); !got.Acknowledged || got.DeletedCount != 1 {
		t.Fatalf("DELETE result %s", body)
	}

	_, body = srv.do(t, stdhttp.MethodGet, "/orders?email=a@x.com", token, "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected order to be gone, got %s", body)
	}
}

func TestMalformedIDIsServerError(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"a@x.com"}`)

	for _, req := range []struct{ method, target, token, body string }{
		{stdhttp.MethodGet, "/services/not-an-id", "", ""},
		{stdhttp.MethodPatch, "/orders/not-an-id", token, `{"status":"approved"}`},
		{stdhttp.MethodDelete, "/orders/not-an-id", token, ""},
	} {
		resp, body := srv.do(t, req.method, req.target, req.token, req.body)
		if resp.StatusCode != stdhttp.StatusInternalServerError {
			t.Errorf("%s %s: expected 500, got %d", req.method, req.target, resp.StatusCode)
		}
		if strings.Contains(string(body), "{") {
			t.Errorf("%s %s: expected unstructured body, got %s", req.method, req.target, body)
		}
	}
}

func TestMissingEmailTokenSeesAllOrders(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	anonymous := srv.issue(t, `{}`)
	token := srv.issue(t, `{"email":"a@x.com"}`)

	for _, email := range []string{"a@x.com", "b@x.com"} {
		if resp, body := srv.do(t, stdhttp.MethodPost, "/orders", token, `{"customerEmail":"`+email+`"}`); resp.StatusCode != stdhttp.StatusOK {
			t.Fatalf("POST /orders: status %d: %s", resp.StatusCode, body)
		}
	}

	resp, body := srv.do(t, stdhttp.MethodGet, "/orders", anonymous, "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("GET /orders: status %d: %s", resp.StatusCode, body)
	}
	if orders := decode[[]map[string]any](t, body); len(orders) != 2 {
		t.Fatalf("expected every order, got %s", body)
	}

	resp, _ = srv.do(t, stdhttp.MethodGet, "/orders?email=a@x.com", anonymous, "")
	if resp.StatusCode != stdhttp.StatusForbidden {
		t.Fatalf("expected 403 for anonymous token with email filter, got %d", resp.StatusCode)
	}
}

func TestServicesOrdering(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	cases := map[string][]string{
		"/services":           {svcCheap, svcMid, svcPricey},
		"/services?price=lth": {svcCheap, svcMid, svcPricey},
		"/services?price=htl": {svcPricey, svcMid, svcCheap},
	}
	for target, want := range cases {
		resp, body := srv.do(t, stdhttp.MethodGet, target, "", "")
		if resp.StatusCode != stdhttp.StatusOK {
			t.Fatalf("%s: status %d", target, resp.StatusCode)
		}
		services := decode[[]map[string]any](t, body)
		if len(services) != len(want) {
			t.Fatalf("%s: got %s", target, body)
		}
		for i := range want {
			if services[i]["_id"] != want[i] {
				t.Errorf("%s: position %d = %v, want %s", target, i, services[i]["_id"], want[i])
			}
		}
	}
}

func TestServicesSearch(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	_, body := srv.do(t, stdhttp.MethodGet, "/services?search=engine", "", "")
	services := decode[[]map[string]any](t, body)
	if len(services) != 1 || services[0]["_id"] != svcPricey {
		t.Fatalf("unexpected search result %s", body)
	}
}

func TestGetServiceIdempotentAndNull(t *testing.T) {
	srv := newTestServer(t, testOptions{})

	_, first := srv.do(t, stdhttp.MethodGet, "/services/"+svcCheap, "", "")
	_, second := srv.do(t, stdhttp.MethodGet, "/services/"+svcCheap, "", "")
	if string(first) != string(second) {
		t.Fatalf("repeated lookups differ: %s vs %s", first, second)
	}
	svc := decode[map[string]any](t, first)
	if svc["name"] != "Battery Charge" || svc["img"] != "battery.jpg" {
		t.Fatalf("unexpected service %s", first)
	}

	resp, body := srv.do(t, stdhttp.MethodGet, "/services/00000000-0000-0000-0000-000000000000", "", "")
	if resp.StatusCode != stdhttp.StatusOK || strings.TrimSpace(string(body)) != "null" {
		t.Fatalf("expected 200 null, got %d %s", resp.StatusCode, body)
	}
}

func TestIssueTokenRoundTrip(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":"a@x.com","name":"A"}`)

	identity, err := srv.tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.EmailValue() != "a@x.com" {
		t.Fatalf("identity = %q", identity.EmailValue())
	}
	if identity.Claims["name"] != "A" {
		t.Fatalf("name claim = %v, want A", identity.Claims["name"])
	}
	for _, claim := range []string{"iat", "exp"} {
		if _, ok := identity.Claims[claim]; !ok {
			t.Errorf("missing %s claim", claim)
		}
	}

	for _, body := range []string{`{not json`, `["a@x.com"]`, `"a@x.com"`} {
		resp, _ := srv.do(t, stdhttp.MethodPost, "/jwt", "", body)
		if resp.StatusCode != stdhttp.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestNonStringEmailTokenNeverOwnsOrders(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":123}`)

	identity, err := srv.tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.Claims["email"] != 123.0 {
		t.Fatalf("email claim = %v, want 123", identity.Claims["email"])
	}

	if resp, body := srv.do(t, stdhttp.MethodPost, "/orders", token, `{"customerEmail":"123"}`); resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("POST /orders: status %d: %s", resp.StatusCode, body)
	}
	for _, target := range []string{"/orders", "/orders?email=123", "/orders?email="} {
		resp, _ := srv.do(t, stdhttp.MethodGet, target, token, "")
		if resp.StatusCode != stdhttp.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", target, resp.StatusCode)
		}
	}
}

func TestEmptyEmailTokenScopesToEmptyOwner(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	token := srv.issue(t, `{"email":""}`)

	for _, body := range []string{`{"customerEmail":""}`, `{"customerEmail":"a@x.com"}`, `{"serviceId":"s1"}`} {
		if resp, data := srv.do(t, stdhttp.MethodPost, "/orders", token, body); resp.StatusCode != stdhttp.StatusOK {
			t.Fatalf("POST /orders: status %d: %s", resp.StatusCode, data)
		}
	}

	resp, body := srv.do(t, stdhttp.MethodGet, "/orders?email=", token, "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("GET /orders?email=: status %d: %s", resp.StatusCode, body)
	}
	orders := decode[[]map[string]any](t, body)
	if len(orders) != 1 || orders[0]["customerEmail"] != "" {
		t.Fatalf("expected only the empty-owner order, got %s", body)
	}

	if resp, _ := srv.do(t, stdhttp.MethodGet, "/orders", token, ""); resp.StatusCode != stdhttp.StatusForbidden {
		t.Fatalf("expected 403 without email query, got %d", resp.StatusCode)
	}
}

func TestIssueTokenRequiresKeyWhenConfigured(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("issuer-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	srv := newTestServer(t, testOptions{issueKeyHash: string(hash)})

	resp, _ := srv.do(t, stdhttp.MethodPost, "/jwt", "", `{"email":"a@x.com"}`)
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.StatusCode)
	}

	for key, want := range map[string]int{"wrong": stdhttp.StatusForbidden, "issuer-key": stdhttp.StatusOK} {
		req := httptest.NewRequest(stdhttp.MethodPost, "/jwt", strings.NewReader(`{"email":"a@x.com"}`))
		req.Header.Set(auth.IssueKeyHeader, key)
		resp, err := srv.app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != want {
			t.Errorf("key %q: expected %d, got %d", key, want, resp.StatusCode)
		}
	}
}

func TestStoreUnavailableIsServerError(t *testing.T) {
	unavailable := repository.NewPostgresStore(nil)
	srv := newTestServer(t, testOptions{store: &unavailable})
	token := srv.issue(t, `{"email":"a@x.com"}`)

	for _, req := range []struct{ method, target, token string }{
		{stdhttp.MethodGet, "/services", ""},
		{stdhttp.MethodGet, "/orders?email=a@x.com", token},
	} {
		resp, _ := srv.do(t, req.method, req.target, req.token, "")
		if resp.StatusCode != stdhttp.StatusInternalServerError {
			t.Errorf("%s %s: expected 500, got %d", req.method, req.target, resp.StatusCode)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testOptions{})
	srv.do(t, stdhttp.MethodGet, "/services", "", "")

	resp, body := srv.do(t, stdhttp.MethodGet, "/metrics", "", "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}

func TestReadinessReportsDependencies(t *testing.T) {
	app := fiber.New()
	h := handlers.NewHealthHandler("genius-car", "test", map[string]handlers.Pinger{
		"store": pingerFunc(func(context.Context) error { return errors.New("down") }),
	})
	app.Get("/health/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest(stdhttp.MethodGet, "/health/ready", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != stdhttp.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
