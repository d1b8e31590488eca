package reconciliation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"forecast-recon/feature/reconciliation/match"
	"forecast-recon/feature/reconciliation/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RunParams are the inputs of one reconciliation run.
type RunParams struct {
	Period            string          `json:"period" validate:"required,period"`
	FuzzyThreshold    float64         `json:"fuzzy_threshold" validate:"gte=0,lte=100"`
	DateToleranceDays int             `json:"date_tolerance_days" validate:"gte=0"`
	AmountTolerance   decimal.Decimal `json:"amount_tolerance" validate:"-"`
	Strategies        []string        `json:"strategies" validate:"dive,strategy"`
}

// DefaultParams returns the configured run parameters for period.
func (c Config) DefaultParams(period string) (RunParams, error) {
	tol, err := decimal.NewFromString(strings.TrimSpace(c.AmountTolerance))
	if err != nil {
		return RunParams{}, fmt.Errorf("invalid reconcile amount_tolerance %q: %w", c.AmountTolerance, err)
	}
	p := RunParams{
		Period:            period,
		FuzzyThreshold:    c.FuzzyThreshold,
		DateToleranceDays: c.DateToleranceDays,
		AmountTolerance:   tol,
	}
	if !c.FuzzyEnabled {
		p.Strategies = []string{match.NameExact}
	}
	return p, nil
}

// MatchRequest names one order and one GL entry.
type MatchRequest struct {
	OrderID uint `json:"order_id" validate:"required"`
	GLID    uint `json:"gl_id" validate:"required"`
}

// ExclusionRequest sets or clears the exclusion flag of several records of one kind.
type ExclusionRequest struct {
	Kind     models.RecordKind `json:"kind" validate:"required,oneof=order gl"`
	IDs      []uint            `json:"ids" validate:"required,min=1,dive,required"`
	Excluded bool              `json:"excluded"`
	Reason   *string           `json:"reason" validate:"omitempty,max=255"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		return models.IsPeriod(fl.Field().String())
	})
	_ = v.RegisterValidation("strategy", func(fl validator.FieldLevel) bool {
		return match.Known(fl.Field().String())
	})
	return v
}

// validate checks s against its tags and returns the first violation as a ValidationError.
func validate(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Message: describe(fe)}
	}
	return &ValidationError{Message: err.Error()}
}

func (p RunParams) check(v *validator.Validate) error {
	if err := validate(v, p); err != nil {
		return err
	}
	if p.AmountTolerance.IsNegative() {
		return &ValidationError{Field: "amount_tolerance", Message: "must not be negative"}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "period":
		return fmt.Sprintf("%q is not a YYYY-MM period", fe.Value())
	case "strategy":
		return fmt.Sprintf("%q is not a known strategy", fe.Value())
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
