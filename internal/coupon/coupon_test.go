package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summer(now time.Time) Coupon {
	return Coupon{
		Code:               "SUMMER2024",
		DiscountPercentage: 20,
		MaxUses:            100,
		MinOrderAmount:     decimal.NewFromInt(500),
		ExpiryDate:         now.Add(30 * 24 * time.Hour),
		IsActive:           true,
	}
}

func TestListed_Labels(t *testing.T) {
	now := time.Now()
	l := summer(now).Listed(now)
	assert.Equal(t, "20%", l.DiscountLabel)
	assert.Equal(t, StatusActive, l.StatusLabel)

	c := summer(now)
	c.IsActive = false
	assert.Equal(t, StatusInactive, c.Status(now))

	c = summer(now)
	c.UsedCount = 100
	assert.Equal(t, StatusExhausted, c.Status(now))

	c = summer(now)
	assert.Equal(t, StatusExpired, c.Status(c.ExpiryDate))
}

func TestCheck(t *testing.T) {
	now := time.Now()
	c := summer(now)
	require.NoError(t, c.Check(decimal.NewFromInt(500), now))

	err := c.Check(decimal.NewFromInt(499), now)
	assert.ErrorIs(t, err, ErrBelowMinimum)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "500.00")

	c.UsedCount = c.MaxUses
	assert.ErrorIs(t, c.Check(decimal.NewFromInt(900), now), ErrExhausted)
}

func TestCreateRequest(t *testing.T) {
	c, err := CreateCouponRequest{
		Code: " summer2024 ", DiscountPercentage: 20, MaxUses: 100,
		MinOrderAmount: "500", ExpiryDate: "2030-06-30",
	}.Coupon()
	require.NoError(t, err)
	assert.Equal(t, "SUMMER2024", c.Code)
	assert.True(t, c.IsActive)
	assert.Equal(t, time.Date(2030, 6, 30, 23, 59, 59, 999999999, time.UTC), c.ExpiryDate)

	_, err = CreateCouponRequest{Code: "ABC", DiscountPercentage: 10, MaxUses: 1, ExpiryDate: "soon"}.Coupon()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateRequest_CannotDropBelowUses(t *testing.T) {
	c := summer(time.Now())
	c.UsedCount = 10
	five := 5
	assert.ErrorIs(t, UpdateCouponRequest{MaxUses: &five}.Apply(&c), ErrInvalid)
}
