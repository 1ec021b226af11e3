package gateway

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// abort renders err as {error, code} with the status of its kind.
func abort(c *gin.Context, err error) {
	e := apperr.From(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.Kind.Status(), errorResponse{Error: e.Message, Code: e.Code})
}

var validatorNames sync.Once

// registerValidatorNames makes binding errors report json field names.
func registerValidatorNames() {
	validatorNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// bindJSON decodes the body into dst and maps failures to validation errors.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return apperr.Validation(fieldMessage(fields[0]))
	}
	return apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "Invalid request body")
}
