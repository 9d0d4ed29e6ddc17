// Package catalog manages the two-level category tree of each storefront
// module and its display order.
package catalog

import (
	"time"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

type Category struct {
	ID          string        `json:"id"`
	Module      module.Module `json:"module"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	ImageURL    string        `json:"imageUrl"`
	VideoURL    string        `json:"videoUrl,omitempty"`
	SortOrder   int           `json:"sortOrder"`
	IsActive    bool          `json:"isActive"`
	Version     int           `json:"version"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// SubCategory inherits its module from the parent category.
type SubCategory struct {
	Category
	CategoryID string `json:"categoryId"`
}

// Patch carries a partial update. Nil fields are left unchanged. A non-nil
// Version turns the write into a compare-and-swap.
type Patch struct {
	Name        *string
	Description *string
	ImageURL    *string
	VideoURL    *string
	SortOrder   *int
	IsActive    *bool
	Version     *int
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.ImageURL == nil && p.VideoURL == nil &&
		p.SortOrder == nil && p.IsActive == nil
}
