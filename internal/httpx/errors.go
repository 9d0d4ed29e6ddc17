package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorBody is the JSON error envelope every service returns.
// swagger:model
type ErrorBody struct {
	// example: validation failed
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func Error(c *gin.Context, status int, msg string, details ...string) {
	c.AbortWithStatusJSON(status, ErrorBody{Message: msg, Details: details})
}

// Internal logs the cause on the context and answers with a generic 500.
func Internal(c *gin.Context, err error) {
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "internal error")
}

// BindError answers a failed ShouldBind with 400, listing one detail per
// rejected field.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, describe(fe))
		}
		Error(c, http.StatusBadRequest, "validation failed", details...)
		return
	}
	if errors.Is(err, io.EOF) {
		Error(c, http.StatusBadRequest, "request body is empty")
		return
	}
	Error(c, http.StatusBadRequest, "invalid request body", err.Error())
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric":
		return field + " must be a number"
	case "email":
		return field + " must be a valid email"
	case "module":
		return field + " must be shop or service"
	case "couponcode":
		return field + " must be 3-32 letters, digits, '-' or '_'"
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
