package order

import (
	"time"

	"github.com/MikeMC777/decor-ecom/internal/cart"
)

// CreateOrderItem item payload.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID string       `json:"productId" binding:"required" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int          `json:"quantity"  binding:"required,min=1" example:"2"`
	AddOns    []cart.AddOn `json:"addOns"   binding:"omitempty,dive"`
}

// CreateOrderRequest places an order from explicit items.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Customer      Customer          `json:"customer"`
	Address       Address           `json:"address"`
	Items         []CreateOrderItem `json:"items"         binding:"required,min=1,dive"`
	CouponCode    string            `json:"couponCode"    binding:"omitempty,couponcode"`
	PaymentMethod PaymentMethod     `json:"paymentMethod" binding:"required,oneof=cod online" example:"cod"`
	ScheduledAt   *time.Time        `json:"scheduledAt"`
	Notes         string            `json:"notes"         binding:"max=2000"`
}

// CheckoutRequest places an order from the owner's cart lines of one module.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	OwnerID       string        `json:"ownerId"       binding:"required"`
	Module        string        `json:"module"        binding:"required,module" example:"service"`
	Customer      Customer      `json:"customer"`
	Address       Address       `json:"address"`
	CouponCode    string        `json:"couponCode"    binding:"omitempty,couponcode"`
	PaymentMethod PaymentMethod `json:"paymentMethod" binding:"required,oneof=cod online"`
	ScheduledAt   *time.Time    `json:"scheduledAt"`
	Notes         string        `json:"notes"         binding:"max=2000"`
}

// StatusRequest moves an order along its status chain.
// swagger:model StatusRequest
type StatusRequest struct {
	Status Status `json:"status" binding:"required" example:"confirmed"`
}

// VendorRequest assigns an order to a vendor.
// swagger:model VendorRequest
type VendorRequest struct {
	VendorID string `json:"vendorId" binding:"required"`
}

// ListResponse is a page of orders.
// swagger:model OrderListResponse
type ListResponse struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}
