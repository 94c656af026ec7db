package shopapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidResponse marks a 2xx body that does not match the expected schema.
var ErrInvalidResponse = errors.New("invalid response")

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

func (p Product) Validate() error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("%w: product id must be positive", ErrInvalidResponse)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product %d has no name", ErrInvalidResponse, p.ID)
	case p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0):
		return fmt.Errorf("%w: product %d has invalid price", ErrInvalidResponse, p.ID)
	case p.Stock < 0:
		return fmt.Errorf("%w: product %d has negative stock", ErrInvalidResponse, p.ID)
	}
	return nil
}

func (p Product) InStock() bool {
	return p.Stock != 0
}

type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

func (r AdminLoginResponse) Validate() error {
	if r.Token == "" || r.Role == "" {
		return fmt.Errorf("%w: admin login needs token and role", ErrInvalidResponse)
	}
	return nil
}

type CustomerLoginRequest struct {
	Mobile string `json:"mobile"`
}

type CustomerLoginResponse struct {
	Token  string `json:"token"`
	UserID ID     `json:"userId"`
}

func (r CustomerLoginResponse) Validate() error {
	if r.Token == "" || r.UserID == "" {
		return fmt.Errorf("%w: customer login needs token and userId", ErrInvalidResponse)
	}
	return nil
}

// ID is an identifier the API may send either as a JSON number or a JSON string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id must be an integer: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
