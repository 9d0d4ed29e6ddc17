// Package coupon manages percentage discount codes and their redemption.
package coupon

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	DiscountPercentage int             `json:"discountPercentage"`
	MaxUses            int             `json:"maxUses"`
	UsedCount          int             `json:"usedCount"`
	MinOrderAmount     decimal.Decimal `json:"minOrderAmount"`
	ExpiryDate         time.Time       `json:"expiryDate"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type Status string

const (
	StatusActive    Status = "Active"
	StatusInactive  Status = "Inactive"
	StatusExpired   Status = "Expired"
	StatusExhausted Status = "Exhausted"
)

// ErrRejected is wrapped by every reason a coupon cannot be applied.
var ErrRejected = errors.New("coupon rejected")

var (
	ErrInactive     = fmt.Errorf("%w: coupon is not active", ErrRejected)
	ErrExpired      = fmt.Errorf("%w: coupon has expired", ErrRejected)
	ErrExhausted    = fmt.Errorf("%w: coupon usage limit reached", ErrRejected)
	ErrBelowMinimum = fmt.Errorf("%w: order is below the coupon minimum", ErrRejected)
)

func NormalizeCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

func (c *Coupon) Status(now time.Time) Status {
	switch {
	case !c.IsActive:
		return StatusInactive
	case !now.Before(c.ExpiryDate):
		return StatusExpired
	case c.UsedCount >= c.MaxUses:
		return StatusExhausted
	}
	return StatusActive
}

func (c *Coupon) DiscountLabel() string { return fmt.Sprintf("%d%%", c.DiscountPercentage) }

// Check reports why the coupon cannot be applied to subtotal at now, or nil.
func (c *Coupon) Check(subtotal decimal.Decimal, now time.Time) error {
	switch c.Status(now) {
	case StatusInactive:
		return ErrInactive
	case StatusExpired:
		return ErrExpired
	case StatusExhausted:
		return ErrExhausted
	}
	if subtotal.LessThan(c.MinOrderAmount) {
		return fmt.Errorf("%w (minimum %s)", ErrBelowMinimum, c.MinOrderAmount.StringFixed(2))
	}
	return nil
}

// Listed is the admin list row with display labels.
// swagger:model CouponListItem
type Listed struct {
	Coupon
	DiscountLabel string `json:"discountLabel" example:"20%"`
	StatusLabel   Status `json:"statusLabel" example:"Active"`
}

func (c Coupon) Listed(now time.Time) Listed {
	return Listed{Coupon: c, DiscountLabel: c.DiscountLabel(), StatusLabel: c.Status(now)}
}

// ParseExpiry accepts RFC 3339 or a bare date, which expires at the end of
// that day in UTC.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expiryDate must be RFC 3339 or YYYY-MM-DD: %q", s)
	}
	return d.Add(24*time.Hour - time.Nanosecond), nil
}

var ErrInvalid = errors.New("invalid coupon")

type InvalidError struct{ Reason string }

func (e *InvalidError) Error() string { return "invalid coupon: " + e.Reason }
func (e *InvalidError) Unwrap() error { return ErrInvalid }

func (c *Coupon) Validate() error {
	switch {
	case len(c.Code) < 3 || len(c.Code) > 32:
		return &InvalidError{Reason: "code must be 3-32 characters"}
	case c.DiscountPercentage < 1 || c.DiscountPercentage > 100:
		return &InvalidError{Reason: "discountPercentage must be between 1 and 100"}
	case c.MaxUses < 1:
		return &InvalidError{Reason: "maxUses must be at least 1"}
	case c.MaxUses < c.UsedCount:
		return &InvalidError{Reason: fmt.Sprintf("maxUses cannot be below the %d uses already made", c.UsedCount)}
	case c.MinOrderAmount.IsNegative():
		return &InvalidError{Reason: "minOrderAmount must be >= 0"}
	}
	return nil
}
