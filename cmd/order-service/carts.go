package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/decor-ecom/internal/cart"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/order"
)

func getCartHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := d.carts.Load(c.Request.Context(), c.Param("ownerId"))
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, ct.View(d.shipping))
	}
}

// addCartItemHandler snapshots the product from the catalog before merging
// it into the cart.
func addCartItemHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.AddItemRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		if err := cart.CheckAddOns(in.AddOns); err != nil {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		m, _ := module.Parse(in.Module)
		p, err := d.catalog.FetchProduct(c.Request.Context(), m, in.ProductID)
		if err != nil {
			respond(c, err)
			return
		}
		it := cart.Item{
			ProductID: p.ID,
			Module:    m,
			Name:      p.Name,
			Category:  p.CategoryID,
			Price:     p.Price,
			Quantity:  in.Quantity,
			AddOns:    in.AddOns,
		}
		if len(p.Images) > 0 {
			it.Image = p.Images[0]
		}
		ct, err := d.carts.Mutate(c.Request.Context(), c.Param("ownerId"), func(ct *cart.Cart) error {
			line := it
			line.AddOns = cart.NormalizeAddOns(it.AddOns)
			ct.Add(line)
			return nil
		})
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, ct.View(d.shipping))
	}
}

func setCartQuantityHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.QuantityRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		id := c.Param("productId")
		ct, err := d.carts.Mutate(c.Request.Context(), c.Param("ownerId"), func(ct *cart.Cart) error {
			return ct.SetQuantity(id, in.Quantity)
		})
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, ct.View(d.shipping))
	}
}

func removeCartItemHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("productId")
		ct, err := d.carts.Mutate(c.Request.Context(), c.Param("ownerId"), func(ct *cart.Cart) error {
			return ct.Remove(id)
		})
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, ct.View(d.shipping))
	}
}

func clearCartHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := d.carts.Mutate(c.Request.Context(), c.Param("ownerId"), func(ct *cart.Cart) error {
			ct.Clear()
			return nil
		})
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, ct.View(d.shipping))
	}
}

// checkoutHandler places an order from the cart lines of one module, then
// drops those lines. Lines of the other module stay in the cart.
func checkoutHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.CheckoutRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		m, _ := module.Parse(in.Module)
		ctx := c.Request.Context()
		if in.Customer.ID == "" {
			in.Customer.ID = in.OwnerID
		}

		ct, err := d.carts.Load(ctx, in.OwnerID)
		if err != nil {
			respond(c, err)
			return
		}
		var lines []order.Line
		for _, it := range ct.Items {
			if it.Module == m {
				lines = append(lines, order.Line{ProductID: it.ProductID, Quantity: it.Quantity, AddOns: it.AddOns})
			}
		}
		if len(lines) == 0 {
			httpx.Error(c, http.StatusBadRequest, "cart has no "+string(m)+" items")
			return
		}

		o, err := d.placer.Place(ctx, order.Draft{
			Module:        m,
			Customer:      in.Customer,
			Address:       in.Address,
			Lines:         lines,
			CouponCode:    in.CouponCode,
			PaymentMethod: in.PaymentMethod,
			ScheduledAt:   in.ScheduledAt,
			Notes:         in.Notes,
		})
		if err != nil {
			respondPlacement(c, err)
			return
		}
		if _, err := d.carts.Mutate(ctx, in.OwnerID, func(ct *cart.Cart) error {
			ct.Take(m)
			return nil
		}); err != nil && !errors.Is(err, cart.ErrNotFound) {
			log.Printf("[cart] clear %s after %s: %v", in.OwnerID, o.OrderNumber, err)
		}
		c.JSON(http.StatusCreated, o)
	}
}
