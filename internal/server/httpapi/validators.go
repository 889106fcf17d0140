package httpapi

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

// RegisterValidators adds the custom binding rules and makes validation
// messages use JSON field names. Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	v.RegisterTagNameFunc(jsonFieldName)
	return v.RegisterValidation("visibility", validVisibility)
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// validVisibility accepts "public" and "members" in any case.
func validVisibility(fl validator.FieldLevel) bool {
	raw := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return raw == "" || models.Visibility(raw).Valid()
}

// bindJSON decodes the body into dst. With optional set an empty body is
// treated as {}.
func bindJSON(c *gin.Context, dst any, optional bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if optional && errors.Is(err, io.EOF) {
		if err = binding.Validator.ValidateStruct(dst); err == nil {
			return true
		}
	}
	badRequest(c, bindErrorMessage(err))
	return false
}

func bindErrorMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "visibility":
			msgs = append(msgs, fmt.Sprintf("%s must be %q or %q", fe.Field(), models.VisibilityPublic, models.VisibilityMembers))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
