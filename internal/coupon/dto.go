package coupon

import (
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/internal/pricing"
)

// CreateCouponRequest payload of creation.
// swagger:model CreateCouponRequest
type CreateCouponRequest struct {
	Code               string `json:"code"               binding:"required,couponcode" example:"SUMMER2024"`
	DiscountPercentage int    `json:"discountPercentage" binding:"required,min=1,max=100" example:"20"`
	MaxUses            int    `json:"maxUses"            binding:"required,min=1" example:"100"`
	MinOrderAmount     string `json:"minOrderAmount"     binding:"omitempty,numeric" example:"500"`
	ExpiryDate         string `json:"expiryDate"         binding:"required" example:"2026-12-31"`
	IsActive           *bool  `json:"isActive"`
}

// UpdateCouponRequest payload of partial update.
// swagger:model UpdateCouponRequest
type UpdateCouponRequest struct {
	Code               *string `json:"code"               binding:"omitempty,couponcode"`
	DiscountPercentage *int    `json:"discountPercentage" binding:"omitempty,min=1,max=100"`
	MaxUses            *int    `json:"maxUses"            binding:"omitempty,min=1"`
	MinOrderAmount     *string `json:"minOrderAmount"     binding:"omitempty,numeric"`
	ExpiryDate         *string `json:"expiryDate"`
	IsActive           *bool   `json:"isActive"`
}

// ValidateRequest asks for a discount preview.
// swagger:model ValidateCouponRequest
type ValidateRequest struct {
	Code     string `json:"code"     binding:"required" example:"SUMMER2024"`
	Subtotal string `json:"subtotal" binding:"required,numeric" example:"1200"`
}

// Preview is the discount a coupon would give.
// swagger:model CouponPreview
type Preview struct {
	Code               string          `json:"code"`
	DiscountPercentage int             `json:"discountPercentage"`
	Discount           decimal.Decimal `json:"discount"`
	Totals             pricing.Totals  `json:"totals"`
}

func (r CreateCouponRequest) Coupon() (*Coupon, error) {
	exp, err := ParseExpiry(r.ExpiryDate)
	if err != nil {
		return nil, &InvalidError{Reason: err.Error()}
	}
	minAmount := decimal.Zero
	if r.MinOrderAmount != "" {
		if minAmount, err = decimal.NewFromString(r.MinOrderAmount); err != nil {
			return nil, &InvalidError{Reason: "minOrderAmount must be a number"}
		}
	}
	c := &Coupon{
		Code:               NormalizeCode(r.Code),
		DiscountPercentage: r.DiscountPercentage,
		MaxUses:            r.MaxUses,
		MinOrderAmount:     minAmount,
		ExpiryDate:         exp,
		IsActive:           r.IsActive == nil || *r.IsActive,
	}
	return c, c.Validate()
}

func (r UpdateCouponRequest) Apply(c *Coupon) error {
	if r.Code != nil {
		c.Code = NormalizeCode(*r.Code)
	}
	if r.DiscountPercentage != nil {
		c.DiscountPercentage = *r.DiscountPercentage
	}
	if r.MaxUses != nil {
		c.MaxUses = *r.MaxUses
	}
	if r.MinOrderAmount != nil {
		v, err := decimal.NewFromString(*r.MinOrderAmount)
		if err != nil {
			return &InvalidError{Reason: "minOrderAmount must be a number"}
		}
		c.MinOrderAmount = v
	}
	if r.ExpiryDate != nil {
		exp, err := ParseExpiry(*r.ExpiryDate)
		if err != nil {
			return &InvalidError{Reason: err.Error()}
		}
		c.ExpiryDate = exp
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	return c.Validate()
}
