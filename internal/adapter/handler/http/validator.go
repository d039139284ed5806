package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

var _ echo.Validator = (*RequestValidator)(nil)

// bindAndValidate binds the request body and runs struct validation. The returned error
// message is safe to show to the client.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.New("Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return "invalid field " + fe.Field() + ": failed " + fe.Tag()
	}
	return err.Error()
}
