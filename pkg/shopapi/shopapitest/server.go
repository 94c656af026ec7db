// Package shopapitest runs an in-process stand-in for the product/auth API so client
// code can be exercised end to end over real HTTP.
package shopapitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
)

type Call struct {
	Method string
	Path   string
	Body   []byte
}

// DecodeBody unmarshals the recorded request body into v.
func (c Call) DecodeBody(v any) error {
	return json.Unmarshal(c.Body, v)
}

type admin struct {
	password string
	role     string
}

type Server struct {
	srv *httptest.Server

	mu         sync.Mutex
	products   []shopapi.Product
	nextID     int64
	admins     map[string]admin
	customers  map[string]int64
	nextUserID int64
	failures   map[string]int
	calls      []Call
	bodiless   bool
}

func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		nextID:     1,
		nextUserID: 1,
		admins:     map[string]admin{},
		customers:  map[string]int64{},
		failures:   map[string]int{},
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(s.record)

	api := e.Group("/api")
	api.GET("/products", s.listProducts)
	api.POST("/products", s.createProduct)
	api.PUT("/products/:id", s.updateProduct)
	api.DELETE("/products/:id", s.deleteProduct)
	api.POST("/auth/admin-login", s.adminLogin)
	api.POST("/auth/customer-login", s.customerLogin)

	s.srv = httptest.NewServer(e)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) URL() string { return s.srv.URL }

func (s *Server) Client() *shopapi.Client {
	return shopapi.NewClientWithHTTP(s.srv.URL, s.srv.Client())
}

func (s *Server) SeedProduct(p shopapi.Product) shopapi.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
	}
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.products = append(s.products, p)
	return p
}

func (s *Server) Products() []shopapi.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]shopapi.Product(nil), s.products...)
}

func (s *Server) AddAdmin(username, password, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[username] = admin{password: password, role: role}
}

// SetCustomerID pins the id handed out for mobile on its next login.
func (s *Server) SetCustomerID(mobile string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[mobile] = id
}

// Fail makes every request matching method and path answer with code until Recover.
func (s *Server) Fail(method, path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = code
}

// OmitWriteBodies makes create and update answer 201/204 with an empty body while
// still applying the change.
func (s *Server) OmitWriteBodies() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodiless = true
}

func (s *Server) omitBodies() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodiless
}

func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

func (s *Server) Calls(method, path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: req.Method, Path: req.URL.Path, Body: body})
		code, failing := s.failures[req.Method+" "+req.URL.Path]
		s.mu.Unlock()

		if failing {
			return c.JSON(code, echo.Map{"error": http.StatusText(code)})
		}
		return next(c)
	}
}

func (s *Server) listProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Products())
}

func (s *Server) createProduct(c echo.Context) error {
	var req shopapi.ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p := s.SeedProduct(shopapi.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if s.omitBodies() {
		return c.NoContent(http.StatusCreated)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req shopapi.ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	p := shopapi.Product{ID: id, Name: req.Name, Description: req.Description, Price: req.Price, Stock: req.Stock, ImageURL: req.ImageURL}
	s.mu.Lock()
	i := slices.IndexFunc(s.products, func(x shopapi.Product) bool { return x.ID == id })
	if i >= 0 {
		s.products[i] = p
	} else {
		s.products = append(s.products, p)
	}
	bodiless := s.bodiless
	s.mu.Unlock()

	if bodiless {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	return c.NoContent(http.StatusOK)
}

func (s *Server) adminLogin(c echo.Context) error {
	var req shopapi.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	s.mu.Lock()
	a, ok := s.admins[req.Username]
	s.mu.Unlock()

	if !ok || a.password != req.Password || (a.role != "ADMIN" && a.role != "STAFF") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token": "admin-token-" + req.Username,
		"role":  a.role,
	})
}

func (s *Server) customerLogin(c echo.Context) error {
	var req shopapi.CustomerLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	s.mu.Lock()
	id, ok := s.customers[req.Mobile]
	if !ok {
		id = s.nextUserID
		s.nextUserID++
		s.customers[req.Mobile] = id
	}
	s.mu.Unlock()

	return c.JSON(http.StatusOK, echo.Map{
		"token":  fmt.Sprintf("customer-token-%d", id),
		"userId": id,
	})
}
