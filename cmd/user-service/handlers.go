package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/decor-ecom/internal/auth"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/vendor"
)

func respond(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vendor.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, vendor.ErrAlreadyExist):
		httpx.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		httpx.Error(c, http.StatusUnauthorized, err.Error())
	default:
		httpx.Internal(c, err)
	}
}

func tokenResponse(tok string, p auth.Principal) auth.TokenResponse {
	return auth.TokenResponse{Token: tok, ExpiresAt: p.ExpiresAt, Role: p.Role}
}

func adminLoginHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in vendor.LoginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		if !d.admin.Check(in.Email, in.Password) {
			log.Printf("[auth] admin login failed for %s", in.Email)
			respond(c, auth.ErrInvalidCredentials)
			return
		}
		tok, p, err := d.verifier.Login(c.Request.Context(), d.admin.Email, auth.RoleAdmin)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, tokenResponse(tok, p))
	}
}

type vendorLoginResponse struct {
	auth.TokenResponse
	Vendor *vendor.Vendor `json:"vendor"`
}

// vendorLoginHandler issues a session whose subject is the vendor id.
func vendorLoginHandler(d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in vendor.LoginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		v, err := d.vendors.Authenticate(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			respond(c, err)
			return
		}
		tok, p, err := d.verifier.Login(c.Request.Context(), v.ID, auth.RoleVendor)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, vendorLoginResponse{TokenResponse: tokenResponse(tok, p), Vendor: v})
	}
}

// verifyHandler answers 200 with the principal when the session belongs to
// role.
func verifyHandler(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.PrincipalFrom(c)
		if !ok || p.Role != role {
			httpx.Error(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func logoutHandler(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := auth.PrincipalFrom(c)
		if err := v.Logout(c.Request.Context(), p); err != nil {
			httpx.Internal(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func venuesHandler(svc *vendor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Venues(c.Request.Context(), c.Query("city"))
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func listVendorsHandler(svc *vendor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.List(c.Request.Context())
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getVendorHandler(svc *vendor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func createVendorHandler(svc *vendor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in vendor.CreateVendorRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		v, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, v)
	}
}

func updateVendorHandler(svc *vendor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in vendor.UpdateVendorRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		v, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func deleteVendorHandler(svc *vendor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		if !ok {
			respond(c, vendor.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
