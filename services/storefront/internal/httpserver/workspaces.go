package httpserver

import (
	"sync"

	"github.com/NunnaRupaSri/terraform-sample/pkg/events"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/admin"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/auth"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/catalog"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/storefront"
)

// API is everything the storefront needs from the product/auth API.
type API interface {
	auth.API
	admin.API
}

type workspace struct {
	customer *storefront.View
	admin    *admin.Dashboard
}

// Workspaces holds each visitor's live views. A view lives until the visitor logs in
// again, logs out or the process restarts.
type Workspaces struct {
	api    API
	events events.Publisher

	mu        sync.Mutex
	byVisitor map[string]*workspace
}

func NewWorkspaces(api API, pub events.Publisher) *Workspaces {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Workspaces{api: api, events: pub, byVisitor: map[string]*workspace{}}
}

// Customer returns the visitor's customer view, creating it when there is none or when
// it belonged to another customer. created reports whether the view is new and still
// needs mounting.
func (w *Workspaces) Customer(visitorID, customerID string) (v *storefront.View, created bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws := w.get(visitorID)
	if ws.customer != nil && ws.customer.CustomerID() == customerID {
		return ws.customer, false
	}
	ws.customer = storefront.NewView(catalog.New(w.api), w.events, customerID)
	return ws.customer, true
}

func (w *Workspaces) Admin(visitorID string) (d *admin.Dashboard, created bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws := w.get(visitorID)
	if ws.admin != nil {
		return ws.admin, false
	}
	ws.admin = admin.NewDashboard(w.api, w.events)
	return ws.admin, true
}

func (w *Workspaces) DropCustomer(visitorID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ws, ok := w.byVisitor[visitorID]; ok {
		ws.customer = nil
		w.gc(visitorID, ws)
	}
}

func (w *Workspaces) DropAdmin(visitorID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ws, ok := w.byVisitor[visitorID]; ok {
		ws.admin = nil
		w.gc(visitorID, ws)
	}
}

// Len is the number of visitors with at least one live view.
func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byVisitor)
}

func (w *Workspaces) get(visitorID string) *workspace {
	ws, ok := w.byVisitor[visitorID]
	if !ok {
		ws = &workspace{}
		w.byVisitor[visitorID] = ws
	}
	return ws
}

func (w *Workspaces) gc(visitorID string, ws *workspace) {
	if ws.customer == nil && ws.admin == nil {
		delete(w.byVisitor, visitorID)
	}
}
