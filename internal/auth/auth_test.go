package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("s3cret", 30*24*time.Hour)
	tok, p, err := iss.Issue("koushik048@gmail.com", RoleAdmin)
	require.NoError(t, err)

	got, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "koushik048@gmail.com", got.Subject)
	assert.Equal(t, RoleAdmin, got.Role)
	assert.Equal(t, p.SessionID, got.SessionID)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), got.ExpiresAt, 5*time.Second)
}

func TestIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	other := NewIssuer("other", time.Hour)

	tok, _, err := other.Issue("x", RoleAdmin)
	require.NoError(t, err)
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	past := NewIssuer("s3cret", time.Minute)
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err = past.Issue("x", RoleVendor)
	require.NoError(t, err)
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_LogoutRevokes(t *testing.T) {
	ctx := context.Background()
	v := &Verifier{Issuer: NewIssuer("k", time.Hour), Sessions: NewMemorySessions()}

	tok, _, err := v.Login(ctx, "vendor-1", RoleVendor)
	require.NoError(t, err)
	p, err := v.Verify(ctx, tok)
	require.NoError(t, err)

	require.NoError(t, v.Logout(ctx, p))
	_, err = v.Verify(ctx, tok)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestVerifier_ServiceTokensSkipSessions(t *testing.T) {
	v := &Verifier{Issuer: NewIssuer("k", time.Hour), Sessions: NewMemorySessions()}
	tok, err := v.Issuer.IssueService("order-service")
	require.NoError(t, err)
	p, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, RoleService, p.Role)
}

func TestAdminAccount(t *testing.T) {
	acc, err := NewAdminAccount("Koushik048@gmail.com", "", "pa55word")
	require.NoError(t, err)
	assert.True(t, acc.Check("koushik048@gmail.com", "pa55word"))
	assert.False(t, acc.Check("koushik048@gmail.com", "wrong"))
	assert.False(t, acc.Check("someone@else.com", "pa55word"))

	none, err := NewAdminAccount("a@b.c", "", "")
	require.NoError(t, err)
	assert.False(t, none.Check("a@b.c", ""))
}

func TestEnforcer_DefaultPolicies(t *testing.T) {
	e, err := NewEnforcer(DefaultPolicies())
	require.NoError(t, err)

	cases := []struct {
		role   Role
		path   string
		method string
		want   bool
	}{
		{RoleAdmin, "/api/categories/reorder", http.MethodPut, true},
		{RoleAdmin, "/api/shop/products/p1", http.MethodDelete, true},
		{RoleVendor, "/api/vendor/orders", http.MethodGet, true},
		{RoleVendor, "/api/orders/o1/status", http.MethodPut, true},
		{RoleVendor, "/api/orders/o1/vendor", http.MethodPut, false},
		{RoleVendor, "/api/coupons", http.MethodPost, false},
		{RoleService, "/api/shop/products/p1/stock", http.MethodPatch, true},
		{RoleService, "/api/shop/products/p1", http.MethodPut, false},
	}
	for _, tc := range cases {
		got, err := e.Allow(tc.role, tc.path, tc.method)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %s %s", tc.role, tc.method, tc.path)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := &Verifier{Issuer: NewIssuer("k", time.Hour), Sessions: NewMemorySessions()}
	e, err := NewEnforcer(DefaultPolicies())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/coupons", Authenticate(v), Authorize(e), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(header string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/coupons", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage"))

	adminTok, _, err := v.Login(context.Background(), "admin", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do("Bearer "+adminTok))

	vendorTok, _, err := v.Login(context.Background(), "v1", RoleVendor)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do("Bearer "+vendorTok))
}
