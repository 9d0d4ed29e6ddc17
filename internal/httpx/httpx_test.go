package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `json:"name" binding:"required"`
	Module string `json:"module" binding:"required,module"`
	Code   string `json:"code" binding:"omitempty,couponcode"`
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	r := gin.New()
	r.Use(RequestID())
	r.POST("/bind", func(c *gin.Context) {
		var p sample
		if err := c.ShouldBindJSON(&p); err != nil {
			BindError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})
	return r
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"name":"a","module":"shop"}`)))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"name":"a","module":"shop"}`))
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestBindError_ListsFieldsByJSONName(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"module":"venue","code":"x"}`)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Message)
	assert.ElementsMatch(t, []string{
		"name is required",
		"module must be shop or service",
		"code must be 3-32 letters, digits, '-' or '_'",
	}, body.Details)
}

func TestBindError_EmptyBody(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request body is empty")
}
