package validators

import (
	"reflect"
	"strings"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

// Register installs every custom tag used by the request contracts. Decimal
// fields are validated as float64, so gte/lte bound them like numbers.
func Register(validate *validator.Validate) {
	validate.RegisterCustomTypeFunc(DecimalValue, decimal.Decimal{})
	_ = validate.RegisterValidation("periodicity", Periodicity)
	_ = validate.RegisterValidation("paymentmethod", PaymentMethod)
	_ = validate.RegisterValidation("isodate", ISODate)
	_ = validate.RegisterValidation("notblank", NotBlank)
	_ = validate.RegisterValidation("nit", NIT)
	_ = validate.RegisterValidation("nodupes", NoDupes)
}

func Periodicity(fl validator.FieldLevel) bool {
	val, ok := stringValue(fl)
	return ok && entity.Periodicity(val).Valid()
}

func PaymentMethod(fl validator.FieldLevel) bool {
	val, ok := stringValue(fl)
	return ok && entity.PaymentMethod(val).Valid()
}

// ISODate accepts YYYY-MM-DD calendar dates only.
func ISODate(fl validator.FieldLevel) bool {
	val, ok := stringValue(fl)
	if !ok {
		return false
	}
	_, err := utils.ParseDate(val)
	return err == nil
}

// NotBlank rejects strings made only of whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	val, ok := stringValue(fl)
	return ok && strings.TrimSpace(val) != ""
}

func DecimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func NIT(fl validator.FieldLevel) bool {
	val, ok := stringValue(fl)
	return ok && utils.IsNITValid(val)
}

func NoDupes(fl validator.FieldLevel) bool {
	slice := fl.Field()
	if slice.Kind() != reflect.Slice {
		log.Warnf("validator 'nodupes' applied to non-slice type: %s\n", slice.Kind().String())
		return false
	}

	length := slice.Len()
	seen := make(map[any]bool, length)
	for i := 0; i < length; i++ {
		val := slice.Index(i).Interface()
		if _, exists := seen[val]; exists {
			return false
		}
		seen[val] = true
	}
	return true
}

func stringValue(fl validator.FieldLevel) (string, bool) {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return "", false
	}
	return field.String(), true
}
