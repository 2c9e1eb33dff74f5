// Package validation enforces the shape of participant and message payloads.
// It is independent of any business state and never touches storage.
package validation

import (
	"chat-room/errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is stateless once built and safe for concurrent use.
var validate = newValidate()

type ParticipantRequest struct {
	Name string `json:"name" validate:"required"`
}

type MessageRequest struct {
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
	Type string `json:"type" validate:"required,oneof=message broadcast private_message private"`
}

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func ValidateParticipant(req ParticipantRequest) error {
	return toValidationError(validate.Struct(req))
}

func ValidateMessage(req MessageRequest) error {
	return toValidationError(validate.Struct(req))
}

// ValidateIdentity checks the sender identity taken from a request header.
func ValidateIdentity(name string) error {
	if err := validate.Var(name, "required"); err != nil {
		return errors.NewValidationError("header 'User' is required")
	}
	return nil
}

// ParseLimit validates an explicitly supplied limit. Zero, negative and
// non-numeric values are rejected rather than treated as "no limit".
func ParseLimit(raw string) (int, error) {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.NewValidationError(fmt.Sprintf("limit '%s' is not an integer", raw))
	}
	if err = validate.Var(limit, "gt=0"); err != nil {
		return 0, errors.NewValidationError(fmt.Sprintf("limit must be a positive integer, got %d", limit))
	}
	return limit, nil
}

// toValidationError flattens every field failure into one ValidationError.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return errors.NewValidationError(err.Error())
	}
	violations := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, describe(fe))
	}
	return errors.NewValidationError(violations...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s], got '%v'", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("'%s' failed on '%s'", fe.Field(), fe.Tag())
	}
}
