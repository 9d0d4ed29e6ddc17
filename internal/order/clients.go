package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/internal/health"
	"github.com/MikeMC777/decor-ecom/internal/module"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUpstream wraps any other product-service failure.
	ErrUpstream = errors.New("product service unavailable")
)

// ProductDTO is the part of a product-service product the order side needs.
type ProductDTO struct {
	ID           string          `json:"id"`
	Module       module.Module   `json:"module"`
	Name         string          `json:"name"`
	CategoryID   string          `json:"categoryId"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	CODAvailable bool            `json:"codAvailable"`
	Images       []string        `json:"images"`
}

// Catalog is what placement and carts need from product-service.
type Catalog interface {
	FetchProduct(ctx context.Context, m module.Module, id string) (*ProductDTO, error)
	AdjustStock(ctx context.Context, m module.Module, id string, delta int) error
}

// Ext talks to product-service over HTTP and checks its gRPC health.
type Ext struct {
	HTTP           *http.Client
	ProductBaseURL string
	ProductGRPC    string
	// Token returns a bearer token for calls that need the service role.
	Token func() (string, error)
}

func NewExt(productBaseURL, productGRPC string, token func() (string, error)) *Ext {
	return &Ext{
		HTTP:           &http.Client{Timeout: 5 * time.Second},
		ProductBaseURL: productBaseURL,
		ProductGRPC:    productGRPC,
		Token:          token,
	}
}

func (e *Ext) productURL(m module.Module, id string) string {
	return fmt.Sprintf("%s%s/products/%s", e.ProductBaseURL, m.Prefix(), id)
}

func (e *Ext) FetchProduct(ctx context.Context, m module.Module, id string) (*ProductDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.productURL(m, id), nil)
	if err != nil {
		return nil, err
	}
	res, err := e.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	default:
		return nil, fmt.Errorf("%w: fetch product: %s", ErrUpstream, res.Status)
	}
	var p ProductDTO
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode product: %v", ErrUpstream, err)
	}
	if p.Module != "" && p.Module != m {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return &p, nil
}

// AdjustStock adds delta (negative to take) to the product stock with one
// atomic PATCH on product-service.
func (e *Ext) AdjustStock(ctx context.Context, m module.Module, id string, delta int) error {
	body, _ := json.Marshal(map[string]int{"delta": delta})
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, e.productURL(m, id)+"/stock", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.Token != nil {
		tok, err := e.Token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	res, err := e.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrInsufficientStock, id)
	default:
		return fmt.Errorf("%w: adjust stock: %s", ErrUpstream, res.Status)
	}
}

// Ready waits until product-service reports SERVING on its health port.
func (e *Ext) Ready(ctx context.Context) error {
	if e.ProductGRPC == "" {
		return nil
	}
	return health.WaitFor(ctx, e.ProductGRPC, "", 2*time.Second)
}
