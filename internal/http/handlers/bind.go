package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes the request body into dst and, on failure, writes a
// 400 with per-field reasons. It reports whether binding succeeded.
func BindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:  jsonFieldName(dst, fe.StructField()),
				Reason: validationReason(fe),
			})
		}
		RespondBadRequest(c, "validation_failed", "request validation failed", fields...)
		return false
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		RespondBadRequest(c, "invalid_body", "request body is malformed",
			FieldError{Field: typeErr.Field, Reason: fmt.Sprintf("must be of type %s", typeErr.Type)})
		return false
	}

	RespondBadRequest(c, "invalid_body", "request body is malformed")
	return false
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param()[:1]) + fe.Param()[1:]
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// jsonFieldName maps a struct field back to its wire name so clients see
// the name they actually sent.
func jsonFieldName(dst any, structField string) string {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return structField
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return structField
}
