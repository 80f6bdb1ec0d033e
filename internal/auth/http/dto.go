package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/monuwu/ClickTales-sub001/pkg/apix"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"omitempty,len=6,numeric"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	Everywhere   bool   `json:"everywhere"`
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type signupVerifyRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Code   string `json:"code" validate:"required,len=6,numeric"`
}

type otpRequestRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required"`
}

type otpVerifyRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
	Purpose string `json:"purpose" validate:"required"`
}

type twoFactorRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type profileUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=100"`
	Avatar *string `json:"avatar" validate:"omitempty,url|len=0"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// decodeJSON parses and validates the request body into dst. A malformed
// body or failed validation writes the 400 response itself and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apix.ErrInvalidBody.WriteError(w)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[strings.ToLower(fe.Field())] = validationMessage(fe)
			}
			apix.NewValidationError(details).WriteError(w)
			return false
		}
		apix.ErrInvalidBody.WriteError(w)
		return false
	}

	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "too short (minimum " + fe.Param() + ")"
	case "max":
		return "too long (maximum " + fe.Param() + ")"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must be digits only"
	case "alphanum":
		return "letters and digits only"
	default:
		return "invalid value"
	}
}
