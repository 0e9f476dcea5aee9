package domain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var indianPhonePattern = regexp.MustCompile(`^\+91\d{10}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("in_phone", func(fl validator.FieldLevel) bool {
		return indianPhonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Profile is the client identity submitted from the profile form.
type Profile struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,in_phone"`
	Address string `json:"address,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (p Profile) Normalize() Profile {
	return Profile{
		Name:    strings.TrimSpace(p.Name),
		Email:   strings.TrimSpace(p.Email),
		Phone:   strings.TrimSpace(p.Phone),
		Address: strings.TrimSpace(p.Address),
	}
}

// Validate reports every failing field as a *ValidationError.
func (p Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: profileMessage(fe),
		})
	}
	return out
}

func profileMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "in_phone":
		return "must be in the format +91XXXXXXXXXX"
	default:
		return "is invalid"
	}
}
