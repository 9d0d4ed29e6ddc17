package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/internal/cart"
	"github.com/MikeMC777/decor-ecom/internal/coupon"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/pricing"
)

var ErrInvalid = errors.New("invalid order")

type InvalidError struct{ Reason string }

func (e *InvalidError) Error() string { return "invalid order: " + e.Reason }
func (e *InvalidError) Unwrap() error { return ErrInvalid }

// Coupons is the redemption side of the coupon store.
type Coupons interface {
	Redeem(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*coupon.Coupon, error)
	Release(ctx context.Context, id string) error
}

// Line is one requested product.
type Line struct {
	ProductID string
	Quantity  int
	AddOns    []cart.AddOn
}

// Draft is everything needed to place an order.
type Draft struct {
	Module        module.Module
	Customer      Customer
	Address       Address
	Lines         []Line
	CouponCode    string
	PaymentMethod PaymentMethod
	ScheduledAt   *time.Time
	Notes         string
}

type Service struct {
	Orders   Repository
	Catalog  Catalog
	Coupons  Coupons
	Shipping pricing.ShippingRule
	Now      func() time.Time
}

func NewService(orders Repository, catalog Catalog, coupons Coupons, shipping pricing.ShippingRule) *Service {
	return &Service{Orders: orders, Catalog: catalog, Coupons: coupons, Shipping: shipping, Now: time.Now}
}

func (d Draft) validate() error {
	if !d.Module.Valid() {
		return &InvalidError{Reason: "module must be shop or service"}
	}
	if len(d.Lines) == 0 {
		return &InvalidError{Reason: "order has no items"}
	}
	for _, l := range d.Lines {
		if strings.TrimSpace(l.ProductID) == "" || l.Quantity < 1 {
			return &InvalidError{Reason: "every item needs a productId and a quantity of at least 1"}
		}
		if err := cart.CheckAddOns(l.AddOns); err != nil {
			return &InvalidError{Reason: err.Error()}
		}
	}
	if d.PaymentMethod != PaymentCOD && d.PaymentMethod != PaymentOnline {
		return &InvalidError{Reason: "paymentMethod must be cod or online"}
	}
	return nil
}

type stockMove struct {
	id  string
	qty int
}

// Place prices the draft against current products, takes stock, redeems the
// coupon and stores the order. Any failure after stock was taken gives the
// stock and the coupon use back before returning.
func (s *Service) Place(ctx context.Context, d Draft) (*Order, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(d.Lines))
	subtotal := decimal.Zero
	for _, l := range d.Lines {
		p, err := s.Catalog.FetchProduct(ctx, d.Module, l.ProductID)
		if err != nil {
			return nil, err
		}
		if d.PaymentMethod == PaymentCOD && !p.CODAvailable {
			return nil, &InvalidError{Reason: fmt.Sprintf("%s cannot be paid cash on delivery", p.Name)}
		}
		if p.Stock < l.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}
		it := Item{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.CategoryID,
			Price:     p.Price,
			Quantity:  l.Quantity,
			AddOns:    cart.NormalizeAddOns(l.AddOns),
		}
		if len(p.Images) > 0 {
			it.Image = p.Images[0]
		}
		it.LineTotal = lineTotal(it)
		subtotal = subtotal.Add(it.LineTotal)
		items = append(items, it)
	}

	var (
		taken    []stockMove
		redeemed *coupon.Coupon
	)
	undo := func(cause error) error {
		s.compensate(ctx, d.Module, taken, redeemed)
		return cause
	}

	for _, it := range items {
		if err := s.Catalog.AdjustStock(ctx, d.Module, it.ProductID, -it.Quantity); err != nil {
			return nil, undo(err)
		}
		taken = append(taken, stockMove{id: it.ProductID, qty: it.Quantity})
	}

	now := s.Now().UTC()
	pct := 0
	if code := strings.TrimSpace(d.CouponCode); code != "" {
		c, err := s.Coupons.Redeem(ctx, code, subtotal, now)
		if err != nil {
			return nil, undo(err)
		}
		redeemed = c
		pct = c.DiscountPercentage
	}

	totals := pricing.Compute(subtotal, pct, s.Shipping)
	o := &Order{
		Module:        d.Module,
		Customer:      d.Customer,
		Address:       d.Address,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Shipping:      totals.Shipping,
		Total:         totals.Total,
		PaymentMethod: d.PaymentMethod,
		PaymentStatus: PaymentPending,
		Status:        StatusProcessing,
		ScheduledAt:   d.ScheduledAt,
		Notes:         d.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.Customer.Email = NormalizeEmail(o.Customer.Email)
	if redeemed != nil {
		o.CouponCode = redeemed.Code
		o.CouponID = redeemed.ID
	}

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		o.OrderNumber = NewNumber(now)
		if err = s.Orders.Create(ctx, o); !errors.Is(err, ErrDuplicateNumber) {
			break
		}
	}
	if err != nil {
		return nil, undo(err)
	}
	log.Printf("[order] placed %s module=%s total=%s", o.OrderNumber, o.Module, o.Total)
	return o, nil
}

func lineTotal(it Item) decimal.Decimal {
	addOns := make([]pricing.AddOn, len(it.AddOns))
	for i, a := range it.AddOns {
		addOns[i] = pricing.AddOn{Price: a.Price, Quantity: a.Quantity}
	}
	return pricing.LineTotal(it.Price, it.Quantity, addOns)
}

// compensate runs on a context detached from the request so a client
// disconnect does not skip it.
func (s *Service) compensate(ctx context.Context, m module.Module, taken []stockMove, redeemed *coupon.Coupon) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	for _, mv := range taken {
		if err := s.Catalog.AdjustStock(ctx, m, mv.id, mv.qty); err != nil {
			log.Printf("[order] compensation: restock %s +%d failed: %v", mv.id, mv.qty, err)
		}
	}
	if redeemed != nil {
		if err := s.Coupons.Release(ctx, redeemed.ID); err != nil {
			log.Printf("[order] compensation: release coupon %s failed: %v", redeemed.Code, err)
		}
	}
}

// SetStatus applies a checked transition. Cancelling gives every line's
// stock back; restock failures are logged, not returned.
func (s *Service) SetStatus(ctx context.Context, o *Order, to Status) (*Order, error) {
	if err := Transition(o.Module, o.Status, to); err != nil {
		return nil, err
	}
	updated, err := s.Orders.UpdateStatus(ctx, o.ID.Hex(), o.Status, to)
	if err != nil {
		return nil, err
	}
	log.Printf("[order] %s status %s -> %s", updated.OrderNumber, o.Status, to)
	if to == StatusCancelled {
		s.Restock(ctx, updated)
	}
	return updated, nil
}

func (s *Service) Restock(ctx context.Context, o *Order) {
	moves := make([]stockMove, len(o.Items))
	for i, it := range o.Items {
		moves[i] = stockMove{id: it.ProductID, qty: it.Quantity}
	}
	s.compensate(ctx, o.Module, moves, nil)
}
