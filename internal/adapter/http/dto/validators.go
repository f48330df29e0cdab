package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var mobileRe = regexp.MustCompile(`^[6-9]\d{9}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("mobile_in", validateMobileIN)
		_ = v.RegisterValidation("decimal_amount", validateDecimalAmount)
	}
}

// validateMobileIN accepts a 10-digit Indian mobile number.
func validateMobileIN(fl validator.FieldLevel) bool {
	return mobileRe.MatchString(fl.Field().String())
}

// validateDecimalAmount accepts a non-negative decimal string with at most
// two fractional digits. Amounts travel as strings so float rounding never
// touches money.
func validateDecimalAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Exponent() >= -2
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
