// Package dto holds the request payloads shared by the gRPC and HTTP
// boundaries, with their structural validation.
package dto

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
)

// Validatable is implemented by every payload in this package.
type Validatable interface {
	Validate() error
}

// Check runs v.Validate and tags a failure as common.ErrValidation.
func Check(v Validatable) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r CredentialsRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// EmailRequest is the body of resend-activation.
type EmailRequest struct {
	Email string `json:"email"`
}

func (r EmailRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 255), is.Email),
	)
}

// ActivationRequest carries the emailed activation token.
type ActivationRequest struct {
	Token string `json:"token"`
}

func (r ActivationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Length(1, 255)),
	)
}

// RefreshRequest carries a refresh token (refresh and logout).
type RefreshRequest struct {
	RefreshToken string `json:"refresh"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}
