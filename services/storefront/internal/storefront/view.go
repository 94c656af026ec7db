// Package storefront is the customer-facing catalog browser and cart.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/NunnaRupaSri/terraform-sample/pkg/events"
	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/cart"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/catalog"
)

var (
	ErrUnknownProduct      = errors.New("unknown product")
	ErrOutOfStock          = errors.New("product out of stock")
	ErrCheckoutUnavailable = errors.New("checkout unavailable")
)

type State int

const (
	Browsing State = iota
	CartOpen
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case CartOpen:
		return "cart_open"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type LineView struct {
	cart.Line
	Subtotal string `json:"subtotal"`
}

// Snapshot is the render model of the customer dashboard.
type Snapshot struct {
	State       State             `json:"state"`
	Products    []shopapi.Product `json:"products"`
	Lines       []LineView        `json:"lines"`
	CartCount   int               `json:"cartCount"`
	Total       string            `json:"total"`
	CanCheckout bool              `json:"canCheckout"`
}

type Receipt struct {
	Total   string      `json:"total"`
	Lines   []cart.Line `json:"lines"`
	Message string      `json:"message"`
}

// View is one customer's catalog and cart. All methods are safe for concurrent use;
// operations on the same view are serialised.
type View struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	cart       *cart.Cart
	state      State
	events     events.Publisher
	customerID string
}

func NewView(cat *catalog.Catalog, pub events.Publisher, customerID string) *View {
	if pub == nil {
		pub = events.Nop{}
	}
	return &View{
		catalog:    cat,
		cart:       cart.New(),
		state:      Browsing,
		events:     pub,
		customerID: customerID,
	}
}

func (v *View) CustomerID() string {
	return v.customerID
}

// Mount refreshes the catalog the way opening the dashboard does.
func (v *View) Mount(ctx context.Context) Snapshot {
	v.RefreshCatalog(ctx)
	return v.Snapshot()
}

// RefreshCatalog re-fetches the product list. A failed fetch keeps the cached list.
func (v *View) RefreshCatalog(ctx context.Context) {
	_ = v.catalog.Refresh(ctx)
}

func (v *View) ToggleCart() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == CartOpen {
		v.state = Browsing
	} else {
		v.state = CartOpen
	}
	return v.state
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// AddToCart adds the cached product with productID. Products with zero stock are
// refused here; the cart itself never looks at stock.
func (v *View) AddToCart(productID int64) (cart.Line, error) {
	p, ok := v.catalog.Find(productID)
	if !ok {
		return cart.Line{}, fmt.Errorf("product %d: %w", productID, ErrUnknownProduct)
	}
	if !p.InStock() {
		return cart.Line{}, fmt.Errorf("product %d: %w", productID, ErrOutOfStock)
	}
	return v.AddProduct(p), nil
}

func (v *View) AddProduct(p shopapi.Product) cart.Line {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cart.Add(p)
}

func (v *View) RemoveFromCart(productID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cart.Remove(productID)
}

func (v *View) Total() decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cart.Total()
}

// canCheckout mirrors the dashboard: the checkout control exists only while the cart
// panel is open and has lines in it. Callers hold v.mu.
func (v *View) canCheckout() bool {
	return v.state == CartOpen && !v.cart.Empty()
}

// Checkout simulates a payment. It always succeeds once allowed, clears the cart and
// returns to Browsing. The check and the clear happen under one lock, so of two
// concurrent submits only the first is charged.
func (v *View) Checkout(ctx context.Context) (Receipt, error) {
	v.mu.Lock()
	if !v.canCheckout() {
		v.mu.Unlock()
		return Receipt{}, ErrCheckoutUnavailable
	}
	total := v.cart.Total().StringFixed(2)
	lines := v.cart.Lines()
	v.cart.Clear()
	v.state = Browsing
	v.mu.Unlock()

	r := Receipt{
		Total:   total,
		Lines:   lines,
		Message: fmt.Sprintf("Payment of $%s processed successfully!", total),
	}

	l := logging.FromContext(ctx)
	ev := events.New("checkout_completed", map[string]any{
		"customer_id": v.customerID,
		"total":       total,
		"lines":       len(lines),
	})
	if err := v.events.PublishEvent(ctx, events.TopicCart, v.customerID, ev); err != nil {
		l.Error("publish_failed", "event", ev.Type, "error", err)
	}
	l.Info("checkout_completed", "total", total, "lines", len(lines))
	return r, nil
}

func (v *View) Snapshot() Snapshot {
	return v.snapshot(v.catalog.Products())
}

// Filter is Snapshot with the product list narrowed to query matches.
func (v *View) Filter(query string) Snapshot {
	return v.snapshot(v.catalog.Filter(query))
}

func (v *View) snapshot(products []shopapi.Product) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	lines := v.cart.Lines()
	views := make([]LineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, LineView{Line: l, Subtotal: l.Subtotal().StringFixed(2)})
	}
	if products == nil {
		products = []shopapi.Product{}
	}
	return Snapshot{
		State:       v.state,
		Products:    products,
		Lines:       views,
		CartCount:   v.cart.Len(),
		Total:       v.cart.Total().StringFixed(2),
		CanCheckout: v.canCheckout(),
	}
}
