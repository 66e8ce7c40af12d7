// Package validate rejects malformed snapshots before they reach the engine,
// reporting the offending field.
package validate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// Decimals validate as their canonical string form.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation("fallacy", validateFallacy)
	_ = validate.RegisterValidation("dpositive", validateDecimalPositive)
	_ = validate.RegisterValidation("dnonnegative", validateDecimalNonNegative)
	_ = validate.RegisterValidation("impactsign", validateImpactSign)
}

func validateFallacy(fl validator.FieldLevel) bool {
	return domain.ValidFallacyType(fl.Field().String())
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	return d, err == nil
}

func validateDecimalPositive(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && d.IsPositive()
}

func validateDecimalNonNegative(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && !d.IsNegative()
}

// validateImpactSign requires benefits to be non-negative and costs non-positive.
func validateImpactSign(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	typ := parent.FieldByName("Type")
	if !typ.IsValid() {
		return true
	}
	switch domain.LineItemType(typ.String()) {
	case domain.LineItemBenefit:
		return !d.IsNegative()
	case domain.LineItemCost:
		return !d.IsPositive()
	}
	return true
}

// Struct validates any tagged domain snapshot. The returned error is a
// *domain.ValidationError for the first failing field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fieldPath(fe.Namespace()), reason(fe))
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// All validates every element of a slice, prefixing the field with its index.
func All[T any](name string, items []T) error {
	for i := range items {
		if err := Struct(&items[i]); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				return domain.NewValidationError(fmt.Sprintf("%s[%d].%s", name, i, ve.Field), ve.Reason)
			}
			return err
		}
	}
	return nil
}

// Probability checks that p lies in [0,1].
func Probability(field string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return domain.NewValidationError(field, "must be between 0 and 1")
	}
	return nil
}

// Amount checks that a currency amount is positive.
func Amount(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return domain.NewValidationError(field, "must be positive")
	}
	return nil
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "fallacy":
		return "unknown fallacy type"
	case "dpositive":
		return "must be positive"
	case "dnonnegative":
		return "must not be negative"
	case "impactsign":
		return "benefit impact must be non-negative and cost impact non-positive"
	default:
		return "failed " + fe.Tag()
	}
}
