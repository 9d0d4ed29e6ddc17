package product

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

// CreateProductRequest payload of creation. Accepted as JSON or multipart
// form; multipart image parts are named image1..image10.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name          string   `json:"name"          form:"name"          binding:"required,max=200" example:"Pastel Balloon Arch"`
	Description   string   `json:"description"   form:"description"   binding:"max=4000"`
	Material      string   `json:"material"      form:"material"`
	Size          string   `json:"size"          form:"size"`
	Colour        string   `json:"colour"        form:"colour"`
	CategoryID    string   `json:"categoryId"    form:"categoryId"    binding:"required"`
	SubCategoryID string   `json:"subCategoryId" form:"subCategoryId"`
	Utility       string   `json:"utility"       form:"utility"`
	Included      []string `json:"included"      form:"included"`
	Excluded      []string `json:"excluded"      form:"excluded"`
	Price         string   `json:"price"         form:"price"         binding:"required,numeric" example:"1499.00"`
	RegularPrice  string   `json:"regularPrice"  form:"regularPrice"  binding:"omitempty,numeric" example:"1999.00"`
	Stock         int      `json:"stock"         form:"stock"         binding:"gte=0" example:"10"`
	BestSeller    bool     `json:"bestSeller"    form:"bestSeller"`
	Trending      bool     `json:"trending"      form:"trending"`
	MostLoved     bool     `json:"mostLoved"     form:"mostLoved"`
	CODAvailable  bool     `json:"codAvailable"  form:"codAvailable"`
	Images        []string `json:"images"        form:"images"        binding:"max=10"`
}

// Product builds the record; a missing regular price equals the price.
func (r CreateProductRequest) Product(m module.Module) (*Product, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, &ValidationError{Problems: []string{"price must be a number"}}
	}
	regular := price
	if strings.TrimSpace(r.RegularPrice) != "" {
		if regular, err = decimal.NewFromString(r.RegularPrice); err != nil {
			return nil, &ValidationError{Problems: []string{"regularPrice must be a number"}}
		}
	}
	p := &Product{
		Module:        m,
		Name:          strings.TrimSpace(r.Name),
		Description:   r.Description,
		Material:      r.Material,
		Size:          r.Size,
		Colour:        r.Colour,
		CategoryID:    r.CategoryID,
		SubCategoryID: r.SubCategoryID,
		Utility:       r.Utility,
		Included:      nonNil(r.Included),
		Excluded:      nonNil(r.Excluded),
		Price:         price,
		RegularPrice:  regular,
		Stock:         r.Stock,
		BestSeller:    r.BestSeller,
		Trending:      r.Trending,
		MostLoved:     r.MostLoved,
		CODAvailable:  r.CODAvailable,
		Images:        nonNil(r.Images),
	}
	return p, nil
}

// UpdateProductRequest payload of partial update. Nil fields are kept.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name          *string   `json:"name"          form:"name"          binding:"omitempty,min=1,max=200"`
	Description   *string   `json:"description"   form:"description"`
	Material      *string   `json:"material"      form:"material"`
	Size          *string   `json:"size"          form:"size"`
	Colour        *string   `json:"colour"        form:"colour"`
	CategoryID    *string   `json:"categoryId"    form:"categoryId"    binding:"omitempty,min=1"`
	SubCategoryID *string   `json:"subCategoryId" form:"subCategoryId"`
	Utility       *string   `json:"utility"       form:"utility"`
	Included      *[]string `json:"included"      form:"included"`
	Excluded      *[]string `json:"excluded"      form:"excluded"`
	Price         *string   `json:"price"         form:"price"         binding:"omitempty,numeric"`
	RegularPrice  *string   `json:"regularPrice"  form:"regularPrice"  binding:"omitempty,numeric"`
	Stock         *int      `json:"stock"         form:"stock"`
	BestSeller    *bool     `json:"bestSeller"    form:"bestSeller"`
	Trending      *bool     `json:"trending"      form:"trending"`
	MostLoved     *bool     `json:"mostLoved"     form:"mostLoved"`
	CODAvailable  *bool     `json:"codAvailable"  form:"codAvailable"`
	Images        *[]string `json:"images"        form:"images"`
}

// Apply merges the request onto p and reports whether stock was sent.
func (r UpdateProductRequest) Apply(p *Product) (stockChanged bool, err error) {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setStr(&p.Name, r.Name)
	setStr(&p.Description, r.Description)
	setStr(&p.Material, r.Material)
	setStr(&p.Size, r.Size)
	setStr(&p.Colour, r.Colour)
	setStr(&p.CategoryID, r.CategoryID)
	setStr(&p.SubCategoryID, r.SubCategoryID)
	setStr(&p.Utility, r.Utility)
	setBool(&p.BestSeller, r.BestSeller)
	setBool(&p.Trending, r.Trending)
	setBool(&p.MostLoved, r.MostLoved)
	setBool(&p.CODAvailable, r.CODAvailable)
	if r.Included != nil {
		p.Included = nonNil(*r.Included)
	}
	if r.Excluded != nil {
		p.Excluded = nonNil(*r.Excluded)
	}
	if r.Images != nil {
		p.Images = nonNil(*r.Images)
	}
	if r.Price != nil {
		if p.Price, err = decimal.NewFromString(*r.Price); err != nil {
			return false, &ValidationError{Problems: []string{"price must be a number"}}
		}
	}
	if r.RegularPrice != nil {
		if p.RegularPrice, err = decimal.NewFromString(*r.RegularPrice); err != nil {
			return false, &ValidationError{Problems: []string{"regularPrice must be a number"}}
		}
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
		stockChanged = true
	}
	return stockChanged, nil
}

// StockRequest adjusts stock by a signed delta.
// swagger:model StockRequest
type StockRequest struct {
	Delta int `json:"delta" example:"-2"`
}

// StockResponse reports the stock after an adjustment.
// swagger:model StockResponse
type StockResponse struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ImageField is the multipart part name of a 1-based image slot.
func ImageField(slot int) string { return fmt.Sprintf("image%d", slot) }
