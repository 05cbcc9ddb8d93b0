package sharing

import (
	"github.com/go-playground/validator/v10"
	"github.com/lumenworks/lumen-server/internal/common/apperrors"
)

var validate *validator.Validate

// V returns the package's validator instance.
func V() *validator.Validate {
	return validate
}

// slugValidator backs the `slug` struct tag.
func slugValidator(fl validator.FieldLevel) bool {
	return IsValidSlug(fl.Field().String())
}

// granteesValidator rejects anonymous (empty) entries in grantee lists.
func granteesValidator(fl validator.FieldLevel) bool {
	return fl.Field().String() != ""
}

func init() {
	validate = validator.New()
	validate.RegisterValidation("slug", slugValidator)
	validate.RegisterValidation("grantee", granteesValidator)
}

// SetSlugRequest is the wire payload for choosing a slug explicitly.
type SetSlugRequest struct {
	Slug string `json:"slug" validate:"required,slug"`
}

// ShareRequest is the wire payload for sharing with a set of users.
type ShareRequest struct {
	Users []string `json:"users" validate:"required,min=1,dive,grantee"`
}

// ValidateRequest validates a wire-facing input struct against its tags.
func ValidateRequest(req any) apperrors.Error {
	if err := validate.Struct(req); err != nil {
		return ErrInvalidPatch.MsgErr("request validation failed", err)
	}
	return nil
}
