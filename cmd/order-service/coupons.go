package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/internal/coupon"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/pricing"
)

func listCouponsHandler(repo coupon.Repository, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		cs, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		at := now()
		out := make([]coupon.Listed, len(cs))
		for i, cp := range cs {
			out[i] = cp.Listed(at)
		}
		c.JSON(http.StatusOK, out)
	}
}

func getCouponHandler(repo coupon.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cp, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cp)
	}
}

func createCouponHandler(repo coupon.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in coupon.CreateCouponRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		cp, err := in.Coupon()
		if err != nil {
			respond(c, err)
			return
		}
		cp.ID = uuid.NewString()
		if err := repo.Create(c.Request.Context(), cp); err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, cp)
	}
}

func updateCouponHandler(repo coupon.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in coupon.UpdateCouponRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		ctx := c.Request.Context()
		cp, err := repo.GetByID(ctx, c.Param("id"))
		if err != nil {
			respond(c, err)
			return
		}
		if err := in.Apply(cp); err != nil {
			respond(c, err)
			return
		}
		if err := repo.Update(ctx, cp); err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cp)
	}
}

func deleteCouponHandler(repo coupon.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		if !ok {
			respond(c, coupon.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// validateCouponHandler previews the discount without consuming a use.
func validateCouponHandler(repo coupon.Repository, shipping pricing.ShippingRule, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in coupon.ValidateRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		subtotal, err := decimal.NewFromString(in.Subtotal)
		if err != nil {
			httpx.Error(c, http.StatusBadRequest, "subtotal must be a number")
			return
		}
		cp, err := repo.GetByCode(c.Request.Context(), in.Code)
		if err != nil {
			respondPlacement(c, err)
			return
		}
		if err := cp.Check(subtotal, now()); err != nil {
			respond(c, err)
			return
		}
		totals := pricing.Compute(subtotal, cp.DiscountPercentage, shipping)
		c.JSON(http.StatusOK, coupon.Preview{
			Code:               cp.Code,
			DiscountPercentage: cp.DiscountPercentage,
			Discount:           totals.Discount,
			Totals:             totals,
		})
	}
}
