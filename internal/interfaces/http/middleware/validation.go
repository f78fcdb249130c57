package middleware

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hazchem/backend/internal/interfaces/http/dto"
)

var mobilePattern = regexp.MustCompile(`^1[1-9]\d{9}$`)

// SetupValidator reports JSON field names in errors and registers the
// "mobile" tag for mainland mobile numbers. Safe to call more than once.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
}

// ValidationDetails lists the rejected fields of a binding error; nil when
// err is not a validation error.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return details
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "不能为空"
	case "email":
		return "邮箱格式不正确"
	case "mobile":
		return "手机号格式不正确"
	case "min":
		if e.Kind() == reflect.String {
			return "长度不能少于" + e.Param() + "个字符"
		}
		return "不能小于" + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "长度不能超过" + e.Param() + "个字符"
		}
		return "不能大于" + e.Param()
	case "oneof":
		return "必须是以下之一: " + e.Param()
	case "uuid":
		return "ID格式不正确"
	default:
		return "取值无效"
	}
}
