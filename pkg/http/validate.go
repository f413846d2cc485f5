package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ReadAndValidateRequest binds the request into req, applies struct
// defaults, then validates. Returns nil on success or a slice of
// ValidationError describing every failed rule.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return bindErrors(err)
	}

	if err := defaults.Set(req); err != nil {
		return bindErrors(err)
	}

	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return bindErrors(err)
	}

	return nil
}

func bindErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		errs := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: ruleMessage(fe),
				Params:  ruleParams(fe),
			})
		}
		return errs
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_BIND",
			Message: fmt.Sprintf("%v", he.Message),
		}}
	}

	return []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}

func ruleMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "dive":
		return fmt.Sprintf("%s contains an invalid element", field)
	default:
		return fmt.Sprintf("%s failed rule %s", field, fe.Tag())
	}
}

func ruleParams(fe validator.FieldError) map[string]interface{} {
	switch fe.Tag() {
	case "gte":
		return map[string]interface{}{"min": fe.Param()}
	case "lte":
		return map[string]interface{}{"max": fe.Param()}
	case "gt":
		return map[string]interface{}{"value": fe.Param()}
	case "oneof":
		return map[string]interface{}{"options": strings.Split(fe.Param(), " ")}
	default:
		return nil
	}
}
