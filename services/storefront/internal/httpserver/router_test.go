package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/NunnaRupaSri/terraform-sample/pkg/db"
	"github.com/NunnaRupaSri/terraform-sample/pkg/events/eventstest"
	"github.com/NunnaRupaSri/terraform-sample/pkg/middleware/visitor"
	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi/shopapitest"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/auth"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/session"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/storefront"
)

type testEnv struct {
	e      *echo.Echo
	api    *shopapitest.Server
	events *eventstest.Recorder
	ws     *Workspaces
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, session.Migrate(db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	api := shopapitest.NewServer(t)
	api.AddAdmin("root", "secret", "ADMIN")
	client := api.Client()
	rec := &eventstest.Recorder{}

	env := &testEnv{
		e:      echo.New(),
		api:    api,
		events: rec,
		ws:     NewWorkspaces(client, rec),
	}
	Register(env.e, &Deps{
		Gate:       auth.NewGate(client, session.NewGormStore(db, 0), rec),
		Workspaces: env.ws,
		Visitor:    visitor.Config{Secret: []byte("test-secret")},
		DB:         db,
	})
	return env
}

// browser keeps the visitor cookie between requests the way a real browser would.
type browser struct {
	env     *testEnv
	cookies []*http.Cookie
}

func (env *testEnv) browser() *browser {
	return &browser{env: env}
}

func (b *browser) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	b.env.e.ServeHTTP(rec, req)
	if cks := rec.Result().Cookies(); len(cks) > 0 {
		b.cookies = cks
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type snapshotBody struct {
	State    string            `json:"state"`
	Products []shopapi.Product `json:"products"`
	Lines    []struct {
		ID       int64  `json:"id"`
		Quantity int    `json:"quantity"`
		Subtotal string `json:"subtotal"`
	} `json:"lines"`
	CartCount int    `json:"cartCount"`
	Total     string `json:"total"`
}

type checkoutBody struct {
	Receipt struct {
		Total   string `json:"total"`
		Message string `json:"message"`
	} `json:"receipt"`
	View snapshotBody `json:"view"`
}

type errorBody struct {
	Message string `json:"message"`
}

func (b *browser) customerLogin(t *testing.T, mobile string) {
	t.Helper()
	rec := b.do(t, http.MethodPost, "/auth/customer-login", map[string]string{"mobile": mobile})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (b *browser) adminLogin(t *testing.T) {
	t.Helper()
	rec := b.do(t, http.MethodPost, "/auth/admin-login", map[string]string{"username": "root", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	b := env.browser()
	assert.Equal(t, http.StatusOK, b.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, b.do(t, http.MethodGet, "/health/ready", nil).Code)
}

func TestDashboardsRequireSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	b := env.browser()

	rec := b.do(t, http.MethodGet, "/customer-dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "login required", decode[errorBody](t, rec).Message)
	require.Len(t, b.cookies, 1)
	assert.Equal(t, visitor.CookieName, b.cookies[0].Name)

	b.customerLogin(t, "5551234")
	assert.Equal(t, http.StatusOK, b.do(t, http.MethodGet, "/customer-dashboard", nil).Code)

	// a customer session does not open the admin dashboard
	assert.Equal(t, http.StatusUnauthorized, b.do(t, http.MethodGet, "/admin-dashboard", nil).Code)
}

func TestCustomerLogin_MountsCatalog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.api.SetCustomerID("5551234", 42)
	env.api.SeedProduct(shopapi.Product{Name: "Widget", Price: 10, Stock: 3})
	b := env.browser()

	rec := b.do(t, http.MethodPost, "/auth/customer-login", map[string]string{"mobile": "5551234"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[loginResponse](t, rec)
	assert.Equal(t, "42", login.CustomerID)
	assert.Equal(t, "/customer-dashboard", login.Redirect)

	snap := decode[snapshotBody](t, b.do(t, http.MethodGet, "/customer-dashboard", nil))
	assert.Equal(t, "browsing", snap.State)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Widget", snap.Products[0].Name)
	assert.Equal(t, "0.00", snap.Total)
}

func TestCustomerLogin_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	b := env.browser()

	rec := b.do(t, http.MethodPost, "/auth/customer-login", map[string]string{"mobile": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.api.Fail(http.MethodPost, "/api/auth/customer-login", http.StatusInternalServerError)
	rec = b.do(t, http.MethodPost, "/auth/customer-login", map[string]string{"mobile": "5551234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Login failed", decode[errorBody](t, rec).Message)
}

func TestCartFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.api.SeedProduct(shopapi.Product{Name: "Widget", Price: 10, Stock: 3})
	env.api.SeedProduct(shopapi.Product{Name: "Gadget", Price: 3.5, Stock: 1})
	env.api.SeedProduct(shopapi.Product{Name: "Sold out", Price: 1, Stock: 0})
	b := env.browser()
	b.customerLogin(t, "5551234")

	for _, path := range []string{"/customer-dashboard/cart/items/1", "/customer-dashboard/cart/items/1", "/customer-dashboard/cart/items/2"} {
		require.Equal(t, http.StatusOK, b.do(t, http.MethodPost, path, nil).Code)
	}

	rec := b.do(t, http.MethodPost, "/customer-dashboard/cart/items/3", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "product out of stock", decode[errorBody](t, rec).Message)
	assert.Equal(t, http.StatusNotFound, b.do(t, http.MethodPost, "/customer-dashboard/cart/items/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, b.do(t, http.MethodPost, "/customer-dashboard/cart/items/abc", nil).Code)

	snap := decode[snapshotBody](t, b.do(t, http.MethodGet, "/customer-dashboard/state", nil))
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Equal(t, "20.00", snap.Lines[0].Subtotal)
	assert.Equal(t, 2, snap.CartCount)
	assert.Equal(t, "23.50", snap.Total)

	// checkout is only offered with the cart panel open
	assert.Equal(t, http.StatusConflict, b.do(t, http.MethodPost, "/customer-dashboard/cart/checkout", nil).Code)

	snap = decode[snapshotBody](t, b.do(t, http.MethodPost, "/customer-dashboard/cart/toggle", nil))
	assert.Equal(t, "cart_open", snap.State)

	rec = b.do(t, http.MethodPost, "/customer-dashboard/cart/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[checkoutBody](t, rec)
	assert.Equal(t, "23.50", out.Receipt.Total)
	assert.Equal(t, "Payment of $23.50 processed successfully!", out.Receipt.Message)
	assert.Empty(t, out.View.Lines)
	assert.Equal(t, "browsing", out.View.State)
	assert.Contains(t, env.events.Types(), "checkout_completed")
}

func TestCheckout_DoubleSubmitPaysOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.api.SeedProduct(shopapi.Product{Name: "Widget", Price: 10, Stock: 3})
	b := env.browser()
	b.customerLogin(t, "5551234")
	require.Equal(t, http.StatusOK, b.do(t, http.MethodPost, "/customer-dashboard/cart/items/1", nil).Code)
	require.Equal(t, http.StatusOK, b.do(t, http.MethodPost, "/customer-dashboard/cart/toggle", nil).Code)

	codes := make(chan int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/customer-dashboard/cart/checkout", nil)
			for _, ck := range b.cookies {
				req.AddCookie(ck)
			}
			rec := httptest.NewRecorder()
			env.e.ServeHTTP(rec, req)
			codes <- rec.Code
		}()
	}
	wg.Wait()
	close(codes)

	var got []int
	for c := range codes {
		got = append(got, c)
	}
	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, got)

	var checkouts int
	for _, typ := range env.events.Types() {
		if typ == "checkout_completed" {
			checkouts++
		}
	}
	assert.Equal(t, 1, checkouts)
}

func TestRemoveFromCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.api.SeedProduct(shopapi.Product{Name: "Widget", Price: 10, Stock: 3})
	b := env.browser()
	b.customerLogin(t, "5551234")

	b.do(t, http.MethodPost, "/customer-dashboard/cart/items/1", nil)
	b.do(t, http.MethodPost, "/customer-dashboard/cart/items/1", nil)

	snap := decode[snapshotBody](t, b.do(t, http.MethodDelete, "/customer-dashboard/cart/items/1", nil))
	assert.Empty(t, snap.Lines)
	assert.Equal(t, "0.00", snap.Total)
}

func TestProductsFilter(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.api.SeedProduct(shopapi.Product{Name: "Blue Widget", Price: 10, Stock: 3})
	env.api.SeedProduct(shopapi.Product{Name: "Gadget", Price: 1, Stock: 1})
	b := env.browser()
	b.customerLogin(t, "5551234")

	snap := decode[snapshotBody](t, b.do(t, http.MethodGet, "/customer-dashboard/products?q=widget", nil))
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Blue Widget", snap.Products[0].Name)
}

func TestRefreshPicksUpNewProducts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	b := env.browser()
	b.customerLogin(t, "5551234")

	snap := decode[snapshotBody](t, b.do(t, http.MethodGet, "/customer-dashboard", nil))
	assert.Empty(t, snap.Products)

	env.api.SeedProduct(shopapi.Product{Name: "Widget", Price: 10, Stock: 3})
	snap = decode[snapshotBody](t, b.do(t, http.MethodPost, "/customer-dashboard/refresh", nil))
	assert.Len(t, snap.Products, 1)
}

func TestVisitorsHaveSeparateCarts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.api.SeedProduct(shopapi.Product{Name: "Widget", Price: 10, Stock: 3})
	alice, bob := env.browser(), env.browser()
	alice.customerLogin(t, "5550001")
	bob.customerLogin(t, "5550002")

	alice.do(t, http.MethodPost, "/customer-dashboard/cart/items/1", nil)

	assert.Len(t, decode[snapshotBody](t, alice.do(t, http.MethodGet, "/customer-dashboard/state", nil)).Lines, 1)
	assert.Empty(t, decode[snapshotBody](t, bob.do(t, http.MethodGet, "/customer-dashboard/state", nil)).Lines)
	assert.Equal(t, 2, env.ws.Len())
}

func TestLogout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	b := env.browser()
	b.customerLogin(t, "5551234")
	b.adminLogin(t)
	require.Equal(t, http.StatusOK, b.do(t, http.MethodGet, "/customer-dashboard", nil).Code)

	assert.Equal(t, http.StatusBadRequest, b.do(t, http.MethodPost, "/auth/logout?kind=root", nil).Code)

	require.Equal(t, http.StatusNoContent, b.do(t, http.MethodPost, "/auth/logout?kind=customer", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, b.do(t, http.MethodGet, "/customer-dashboard", nil).Code)
	assert.Equal(t, http.StatusOK, b.do(t, http.MethodGet, "/admin-dashboard", nil).Code)

	require.Equal(t, http.StatusNoContent, b.do(t, http.MethodPost, "/auth/logout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, b.do(t, http.MethodGet, "/admin-dashboard", nil).Code)
	assert.Zero(t, env.ws.Len())
}

func TestAdminLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	b := env.browser()

	rec := b.do(t, http.MethodPost, "/auth/admin-login", map[string]string{"username": "root", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[errorBody](t, rec).Message)

	rec = b.do(t, http.MethodPost, "/auth/admin-login", map[string]string{"username": "root"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type dashboardBody struct {
	Role     string            `json:"role"`
	Products []shopapi.Product `json:"products"`
	Product  *shopapi.Product  `json:"product"`
}

func TestAdminProductLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	b := env.browser()
	b.adminLogin(t)

	dash := decode[dashboardBody](t, b.do(t, http.MethodGet, "/admin-dashboard", nil))
	assert.Equal(t, "ADMIN", dash.Role)
	assert.Empty(t, dash.Products)

	rec := b.do(t, http.MethodPost, "/admin-dashboard/products", map[string]string{"name": "Widget", "price": "9.99", "stock": "5"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dash = decode[dashboardBody](t, rec)
	require.NotNil(t, dash.Product)
	assert.Equal(t, 9.99, dash.Product.Price)
	require.Len(t, dash.Products, 1)

	rec = b.do(t, http.MethodPost, "/admin-dashboard/products", map[string]string{"name": "Widget", "price": "cheap", "stock": "5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// a JSON client may send price and stock as numbers
	rec = b.do(t, http.MethodPost, "/admin-dashboard/products", map[string]any{"name": "Gadget", "price": 3.5, "stock": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, decode[dashboardBody](t, rec).Products, 2)
	require.Equal(t, http.StatusOK, b.do(t, http.MethodDelete, "/admin-dashboard/products/2", nil).Code)

	rec = b.do(t, http.MethodPut, "/admin-dashboard/products/1", map[string]string{"name": "Widget v2", "price": "12", "stock": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Widget v2", decode[dashboardBody](t, rec).Products[0].Name)

	env.api.Fail(http.MethodDelete, "/api/products/1", http.StatusInternalServerError)
	rec = b.do(t, http.MethodDelete, "/admin-dashboard/products/1", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Error deleting product", decode[errorBody](t, rec).Message)

	env.api.Recover(http.MethodDelete, "/api/products/1")
	rec = b.do(t, http.MethodDelete, "/admin-dashboard/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dashboardBody](t, rec).Products)

	assert.Equal(t, []string{
		"admin_logged_in",
		"product_created", "product_created", "product_deleted",
		"product_updated", "product_deleted",
	}, env.events.Types())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	code, msg := statusFor(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error", msg)

	code, _ = statusFor(storefront.ErrCheckoutUnavailable)
	assert.Equal(t, http.StatusConflict, code)
}
