package httpx

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

var (
	couponCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)
	registerOnce sync.Once
)

// RegisterValidators installs the custom binding tags on gin's validator and
// makes field errors report JSON names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("module", func(fl validator.FieldLevel) bool {
			_, err := module.Parse(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("couponcode", func(fl validator.FieldLevel) bool {
			return couponCodeRe.MatchString(fl.Field().String())
		})
	})
}
