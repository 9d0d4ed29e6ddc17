package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/decor-ecom/internal/auth"
	"github.com/MikeMC777/decor-ecom/internal/cart"
	"github.com/MikeMC777/decor-ecom/internal/coupon"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/order"
)

// respond maps domain errors to HTTP answers.
func respond(c *gin.Context, err error) {
	var invalid *order.InvalidError
	var badCoupon *coupon.InvalidError
	switch {
	case errors.As(err, &invalid):
		httpx.Error(c, http.StatusBadRequest, invalid.Reason)
	case errors.As(err, &badCoupon):
		httpx.Error(c, http.StatusBadRequest, badCoupon.Reason)
	case errors.Is(err, order.ErrUnknownStatus):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, coupon.ErrNotFound), errors.Is(err, cart.ErrItemNotFound):
		httpx.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrIllegalTransition), errors.Is(err, order.ErrStatusConflict),
		errors.Is(err, order.ErrInsufficientStock), errors.Is(err, cart.ErrConflict),
		errors.Is(err, coupon.ErrAlreadyExist):
		httpx.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, coupon.ErrRejected):
		httpx.Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, order.ErrUpstream):
		httpx.Error(c, http.StatusBadGateway, err.Error())
	default:
		httpx.Internal(c, err)
	}
}

// respondPlacement treats an unknown coupon code as a rejected coupon.
func respondPlacement(c *gin.Context, err error) {
	if errors.Is(err, coupon.ErrNotFound) {
		httpx.Error(c, http.StatusUnprocessableEntity, "coupon code not recognised")
		return
	}
	respond(c, err)
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = order.DefaultLimit
	}
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}

func createOrderHandler(svc *order.Service, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.CreateOrderRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		lines := make([]order.Line, len(in.Items))
		for i, it := range in.Items {
			lines[i] = order.Line{ProductID: it.ProductID, Quantity: it.Quantity, AddOns: it.AddOns}
		}
		o, err := svc.Place(c.Request.Context(), order.Draft{
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
		c.JSON(http.StatusCreated, o)
	}
}

func statusesHandler(m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, order.Statuses(m))
	}
}

func listOrdersHandler(repo order.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := order.Filter{
			Module:     m,
			Status:     order.Status(strings.TrimSpace(c.Query("status"))),
			CustomerID: c.Query("customerId"),
		}
		if f.Status != "" && !order.Known(m, f.Status) {
			httpx.Error(c, http.StatusBadRequest, "unknown status "+string(f.Status))
			return
		}
		// Vendors only ever see their own orders.
		if p, ok := auth.PrincipalFrom(c); ok && p.Role == auth.RoleVendor {
			f.VendorID = p.Subject
		}
		f.Limit, f.Offset = pagination(c)
		f = f.Normalize()

		out, err := repo.List(c.Request.Context(), f)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Limit: f.Limit, Offset: f.Offset, Items: out})
	}
}

// customerOrdersHandler serves the storefront history. Without accounts the
// caller proves who they are with the email the orders were placed under.
func customerOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := order.NormalizeEmail(c.Query("email"))
		if email == "" {
			httpx.Error(c, http.StatusBadRequest, "email is required")
			return
		}
		f := order.Filter{CustomerID: c.Param("customerId"), CustomerEmail: email}
		f.Limit, f.Offset = pagination(c)
		f = f.Normalize()
		out, err := repo.List(c.Request.Context(), f)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Limit: f.Limit, Offset: f.Offset, Items: out})
	}
}

func vendorOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.PrincipalFrom(c)
		if !ok {
			httpx.Error(c, http.StatusUnauthorized, "authentication required")
			return
		}
		f := order.Filter{VendorID: p.Subject, Status: order.Status(c.Query("status"))}
		f.Limit, f.Offset = pagination(c)
		f = f.Normalize()
		out, err := repo.List(c.Request.Context(), f)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Limit: f.Limit, Offset: f.Offset, Items: out})
	}
}

// orderIn loads an order of module m the caller may see. A vendor sees only
// orders assigned to them.
func orderIn(c *gin.Context, repo order.Repository, m module.Module) (*order.Order, bool) {
	o, err := repo.GetByID(c.Request.Context(), c.Param("id"))
	if err == nil && o.Module != m {
		err = order.ErrNotFound
	}
	if err != nil {
		respond(c, err)
		return nil, false
	}
	if p, ok := auth.PrincipalFrom(c); ok && p.Role == auth.RoleVendor && o.VendorID != p.Subject {
		httpx.Error(c, http.StatusForbidden, "order is not assigned to you")
		return nil, false
	}
	return o, true
}

func getOrderHandler(repo order.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		if o, ok := orderIn(c, repo, m); ok {
			c.JSON(http.StatusOK, o)
		}
	}
}

func setStatusHandler(repo order.Repository, svc *order.Service, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.StatusRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		o, ok := orderIn(c, repo, m)
		if !ok {
			return
		}
		updated, err := svc.SetStatus(c.Request.Context(), o, in.Status)
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func assignVendorHandler(repo order.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.VendorRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		o, ok := orderIn(c, repo, m)
		if !ok {
			return
		}
		updated, err := repo.AssignVendor(c.Request.Context(), o.ID.Hex(), in.VendorID)
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
