package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/NunnaRupaSri/terraform-sample/pkg/events"
	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/catalog"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/inflight"
)

var (
	ErrValidation    = errors.New("validation")
	ErrAddProduct    = errors.New("error adding product")
	ErrUpdateProduct = errors.New("error updating product")
	ErrDeleteProduct = errors.New("error deleting product")
)

type API interface {
	catalog.Source
	CreateProduct(ctx context.Context, req shopapi.ProductRequest) (*shopapi.Product, error)
	UpdateProduct(ctx context.Context, id int64, req shopapi.ProductRequest) (*shopapi.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductForm is the raw add/edit form. Every field is kept as text; price and stock
// may also be posted as JSON numbers.
type ProductForm struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       FormValue `json:"price"`
	Stock       FormValue `json:"stock"`
	ImageURL    string    `json:"imageUrl"`
}

// FormValue is a form field that accepts a JSON string or a bare JSON number.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("form value must be a string or number: %w", err)
	}
	*v = FormValue(n.String())
	return nil
}

// Request validates the form and coerces price and stock to numbers.
func (f ProductForm) Request() (shopapi.ProductRequest, error) {
	name := strings.TrimSpace(f.Name)
	desc := strings.TrimSpace(f.Description)
	price := strings.TrimSpace(string(f.Price))
	stock := strings.TrimSpace(string(f.Stock))
	if name == "" || price == "" || stock == "" {
		return shopapi.ProductRequest{}, fmt.Errorf("%w: name, price and stock are required", ErrValidation)
	}

	p, err := strconv.ParseFloat(price, 64)
	if err != nil || p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return shopapi.ProductRequest{}, fmt.Errorf("%w: price %q is not a valid amount", ErrValidation, f.Price)
	}
	s, err := strconv.Atoi(stock)
	if err != nil || s < 0 {
		return shopapi.ProductRequest{}, fmt.Errorf("%w: stock %q is not a valid count", ErrValidation, f.Stock)
	}

	return shopapi.ProductRequest{
		Name:        name,
		Description: desc,
		Price:       p,
		Stock:       s,
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}, nil
}

// Dashboard is one admin's product list plus the add/edit/delete actions.
type Dashboard struct {
	api     API
	catalog *catalog.Catalog
	events  events.Publisher
	guard   inflight.Guard
}

func NewDashboard(api API, pub events.Publisher) *Dashboard {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Dashboard{api: api, catalog: catalog.New(api), events: pub}
}

func (d *Dashboard) Mount(ctx context.Context) []shopapi.Product {
	_ = d.catalog.Refresh(ctx)
	return d.catalog.Products()
}

func (d *Dashboard) Products() []shopapi.Product {
	return d.catalog.Products()
}

func (d *Dashboard) AddProduct(ctx context.Context, form ProductForm) (*shopapi.Product, error) {
	req, err := form.Request()
	if err != nil {
		return nil, err
	}

	var created *shopapi.Product
	err = d.guard.Do("add", func() error {
		created, err = d.api.CreateProduct(ctx, req)
		if err != nil {
			logging.FromContext(ctx).Error("product_create_failed", "name", req.Name, "error", err)
			return fmt.Errorf("%w: %w", ErrAddProduct, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// the API may answer 2xx without echoing the product back
	data := map[string]any{"name": req.Name}
	key := req.Name
	if created != nil {
		data["id"] = created.ID
		key = strconv.FormatInt(created.ID, 10)
	}
	d.afterMutation(ctx, "product_created", key, data)
	return created, nil
}

func (d *Dashboard) UpdateProduct(ctx context.Context, id int64, form ProductForm) (*shopapi.Product, error) {
	req, err := form.Request()
	if err != nil {
		return nil, err
	}

	var updated *shopapi.Product
	err = d.guard.Do("update:"+strconv.FormatInt(id, 10), func() error {
		updated, err = d.api.UpdateProduct(ctx, id, req)
		if err != nil {
			logging.FromContext(ctx).Error("product_update_failed", "id", id, "error", err)
			return fmt.Errorf("%w: %w", ErrUpdateProduct, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.afterMutation(ctx, "product_updated", strconv.FormatInt(id, 10), map[string]any{"id": id, "name": req.Name})
	return updated, nil
}

// DeleteProduct removes the product upstream. On failure the cached list is left as is.
func (d *Dashboard) DeleteProduct(ctx context.Context, id int64) error {
	err := d.guard.Do("delete:"+strconv.FormatInt(id, 10), func() error {
		if err := d.api.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("product_delete_failed", "id", id, "error", err)
			return fmt.Errorf("%w: %w", ErrDeleteProduct, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.afterMutation(ctx, "product_deleted", strconv.FormatInt(id, 10), map[string]any{"id": id})
	return nil
}

func (d *Dashboard) afterMutation(ctx context.Context, typ, key string, data map[string]any) {
	l := logging.FromContext(ctx)
	_ = d.catalog.Refresh(ctx)

	if err := d.events.PublishEvent(ctx, events.TopicProduct, key, events.New(typ, data)); err != nil {
		l.Error("publish_failed", "event", typ, "error", err)
	}
	l.Info(typ, "key", key)
}
