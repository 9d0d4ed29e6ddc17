package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MikeMC777/decor-ecom/internal/cart"
	"github.com/MikeMC777/decor-ecom/internal/module"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

const PaymentPending = "pending"

type Customer struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name" binding:"required"`
	Email string `bson:"email" json:"email" binding:"required,email"`
	Phone string `bson:"phone" json:"phone" binding:"required"`
}

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

type Location struct {
	Lat float64 `bson:"lat" json:"lat" binding:"gte=-90,lte=90"`
	Lng float64 `bson:"lng" json:"lng" binding:"gte=-180,lte=180"`
}

type Address struct {
	Line1      string    `bson:"line1" json:"line1" binding:"required"`
	Line2      string    `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string    `bson:"city" json:"city" binding:"required"`
	State      string    `bson:"state" json:"state"`
	PostalCode string    `bson:"postalCode" json:"postalCode"`
	Location   *Location `bson:"location,omitempty" json:"location,omitempty"`
}

// Item is a product snapshot taken at placement.
type Item struct {
	ProductID string          `bson:"productId" json:"productId"`
	Name      string          `bson:"name" json:"name"`
	Image     string          `bson:"image,omitempty" json:"image,omitempty"`
	Category  string          `bson:"category,omitempty" json:"category,omitempty"`
	Price     decimal.Decimal `bson:"price" json:"price"`
	Quantity  int             `bson:"quantity" json:"quantity"`
	AddOns    []cart.AddOn    `bson:"addOns" json:"addOns"`
	LineTotal decimal.Decimal `bson:"lineTotal" json:"lineTotal"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber   string             `bson:"orderNumber" json:"orderNumber"`
	Module        module.Module      `bson:"module" json:"module"`
	Customer      Customer           `bson:"customer" json:"customer"`
	Address       Address            `bson:"address" json:"address"`
	Items         []Item             `bson:"items" json:"items"`
	Subtotal      decimal.Decimal    `bson:"subtotal" json:"subtotal"`
	Discount      decimal.Decimal    `bson:"discount" json:"discount"`
	CouponCode    string             `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	CouponID      string             `bson:"couponId,omitempty" json:"-"`
	Shipping      decimal.Decimal    `bson:"shipping" json:"shipping"`
	Total         decimal.Decimal    `bson:"total" json:"total"`
	PaymentMethod PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	Status        Status             `bson:"status" json:"status"`
	ScheduledAt   *time.Time         `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	VendorID      string             `bson:"vendorId,omitempty" json:"vendorId,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewNumber returns a human readable order number, ORD-YYYYMMDD-XXXXXX.
func NewNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}
