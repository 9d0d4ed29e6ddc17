// Package cart holds shopping carts in MongoDB, one document per owner.
package cart

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/pricing"
)

var (
	ErrItemNotFound = errors.New("item not in cart")
	ErrInvalidAddOn = errors.New("invalid add-on")
)

// AddOn is an extra sold with a line. A zero quantity means one.
type AddOn struct {
	ID       string          `bson:"id" json:"id" binding:"required"`
	Name     string          `bson:"name" json:"name"`
	Price    decimal.Decimal `bson:"price" json:"price"`
	Quantity int             `bson:"quantity" json:"quantity" binding:"omitempty,min=1"`
}

// CheckAddOns rejects add-ons without an id, with a negative price or with
// a negative quantity.
func CheckAddOns(addOns []AddOn) error {
	for _, a := range addOns {
		switch {
		case strings.TrimSpace(a.ID) == "":
			return fmt.Errorf("%w: id is required", ErrInvalidAddOn)
		case a.Price.IsNegative():
			return fmt.Errorf("%w: %s price must not be negative", ErrInvalidAddOn, a.ID)
		case a.Quantity < 0:
			return fmt.Errorf("%w: %s quantity must be at least 1", ErrInvalidAddOn, a.ID)
		}
	}
	return nil
}

// NormalizeAddOns returns a non-nil copy with every quantity raised to one.
func NormalizeAddOns(addOns []AddOn) []AddOn {
	out := make([]AddOn, len(addOns))
	for i, a := range addOns {
		a.Quantity = max(a.Quantity, 1)
		out[i] = a
	}
	return out
}

// Item is a cart line. Name, image, category and price are snapshots taken
// when the product was added.
type Item struct {
	ProductID string          `bson:"productId" json:"productId"`
	Module    module.Module   `bson:"module" json:"module"`
	Name      string          `bson:"name" json:"name"`
	Image     string          `bson:"image,omitempty" json:"image,omitempty"`
	Category  string          `bson:"category,omitempty" json:"category,omitempty"`
	Price     decimal.Decimal `bson:"price" json:"price"`
	Quantity  int             `bson:"quantity" json:"quantity"`
	AddOns    []AddOn         `bson:"addOns" json:"addOns"`
}

func (it Item) Total() decimal.Decimal {
	addOns := make([]pricing.AddOn, len(it.AddOns))
	for i, a := range it.AddOns {
		addOns[i] = pricing.AddOn{Price: a.Price, Quantity: a.Quantity}
	}
	return pricing.LineTotal(it.Price, it.Quantity, addOns)
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"ownerId" json:"ownerId"`
	Items     []Item             `bson:"items" json:"items"`
	Version   int64              `bson:"version" json:"version"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func New(owner string) *Cart {
	return &Cart{OwnerID: owner, Items: []Item{}}
}

// Add merges it into the cart. A product already present gets its quantity
// increased and its add-ons merged by id.
func (c *Cart) Add(it Item) {
	it.Quantity = max(it.Quantity, 1)
	it.AddOns = NormalizeAddOns(it.AddOns)
	for i := range c.Items {
		line := &c.Items[i]
		if line.ProductID != it.ProductID {
			continue
		}
		line.Quantity += it.Quantity
		line.AddOns = mergeAddOns(line.AddOns, it.AddOns)
		return
	}
	c.Items = append(c.Items, it)
}

func mergeAddOns(have, add []AddOn) []AddOn {
next:
	for _, a := range add {
		for i := range have {
			if have[i].ID == a.ID {
				have[i].Quantity += a.Quantity
				continue next
			}
		}
		have = append(have, a)
	}
	return have
}

// SetQuantity sets a line's quantity, never below one.
func (c *Cart) SetQuantity(productID string, qty int) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = max(qty, 1)
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) Remove(productID string) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) Clear() { c.Items = []Item{} }

// Take removes and returns the lines of module m.
func (c *Cart) Take(m module.Module) []Item {
	var taken []Item
	kept := []Item{}
	for _, it := range c.Items {
		if it.Module == m {
			taken = append(taken, it)
		} else {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return taken
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Total())
	}
	return sum
}

// View is a cart together with its computed totals.
// swagger:model CartView
type View struct {
	*Cart
	Totals pricing.Totals `json:"totals"`
}

func (c *Cart) View(rule pricing.ShippingRule) View {
	return View{Cart: c, Totals: pricing.Compute(c.Subtotal(), 0, rule)}
}
