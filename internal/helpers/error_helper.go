package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// NotBlankTag rejects strings that are empty once surrounding whitespace is removed.
const NotBlankTag = "notblank"

var registerOnce sync.Once

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RegisterValidations adds the custom binding tags used by request structs
// to gin's validator engine.
func RegisterValidations() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation(NotBlankTag, validators.NotBlank)
		}
	})
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithBindError turns a binding failure into a 400 naming the offending fields.
func RespondWithBindError(c *gin.Context, err error) {
	RespondWithError(c, http.StatusBadRequest, DescribeBindError(err))
}

func DescribeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid input. Please check your fields."
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		tag := fe.Tag()
		if tag == NotBlankTag {
			tag = "required"
		}
		fields = append(fields, fmt.Sprintf("%s (%s)", toSnake(fe.Field()), tag))
	}
	return "Invalid input: " + strings.Join(fields, ", ") + "."
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
