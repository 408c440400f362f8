package stubapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// registerRequest is the body of POST /auth/register. Role is not accepted:
// self-registration always creates a USER.
type registerRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Province  string `json:"province"`
	City      string `json:"city"`
	BirthDate string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Gender    string `json:"gender"`
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
	return v
}

// validationMessage turns a validation failure into the message the client
// shows next to the form.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Malformed registration data"
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "Name, email and password are required"
		}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "email":
		return "Email is not valid"
	case "datetime":
		return "Birth date must be formatted as YYYY-MM-DD"
	case "max":
		return fe.Field() + " is too long"
	default:
		return fe.Field() + " is invalid"
	}
}
