package product

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

// MaxImages is the number of image slots a product has.
const MaxImages = 10

var ErrInvalid = errors.New("invalid product")

type Product struct {
	ID            string        `json:"id"`
	Module        module.Module `json:"module"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Material      string        `json:"material,omitempty"`
	Size          string        `json:"size,omitempty"`
	Colour        string        `json:"colour,omitempty"`
	CategoryID    string        `json:"categoryId"`
	SubCategoryID string        `json:"subCategoryId,omitempty"`
	Utility       string        `json:"utility,omitempty"`
	Included      []string      `json:"included"`
	Excluded      []string      `json:"excluded"`
	// Money is NUMERIC in Postgres and travels as a decimal string.
	Price        decimal.Decimal `json:"price"`
	RegularPrice decimal.Decimal `json:"regularPrice"`
	Stock        int             `json:"stock"`
	BestSeller   bool            `json:"bestSeller"`
	Trending     bool            `json:"trending"`
	MostLoved    bool            `json:"mostLoved"`
	CODAvailable bool            `json:"codAvailable"`
	Images       []string        `json:"images"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ValidationError lists every broken rule at once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid product: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func (p *Product) Validate() error {
	var probs []string
	if strings.TrimSpace(p.Name) == "" {
		probs = append(probs, "name is required")
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		probs = append(probs, "categoryId is required")
	}
	if !p.Module.Valid() {
		probs = append(probs, "module must be shop or service")
	}
	if p.Price.IsNegative() {
		probs = append(probs, "price must be >= 0")
	}
	if p.RegularPrice.IsNegative() {
		probs = append(probs, "regularPrice must be >= 0")
	}
	if p.Price.GreaterThan(p.RegularPrice) {
		probs = append(probs, fmt.Sprintf("price %s must not exceed regularPrice %s", p.Price, p.RegularPrice))
	}
	if p.Stock < 0 {
		probs = append(probs, "stock must be >= 0")
	}
	if len(p.Images) > MaxImages {
		probs = append(probs, fmt.Sprintf("at most %d images", MaxImages))
	}
	if len(probs) > 0 {
		return &ValidationError{Problems: probs}
	}
	return nil
}

// SetImageSlot stores url in the 1-based slot, growing the list with empty
// slots as needed. Empty trailing slots are dropped.
func SetImageSlot(images []string, slot int, url string) []string {
	if slot < 1 || slot > MaxImages {
		return images
	}
	out := make([]string, max(len(images), slot))
	copy(out, images)
	out[slot-1] = url
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Message string `json:"message"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	// page of products
	Items []Product `json:"items"`
}
