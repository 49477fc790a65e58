package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/markaz/report-assistant/internal/entity"
)

// Validator validates inbound request DTOs via struct tags.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateAsk validates an ask request. The question must be present after
// trimming and within the length cap enforced by the DTO tags.
func (v *Validator) ValidateAsk(req *entity.AskRequest) error {
	req.Question = strings.TrimSpace(req.Question)

	if err := v.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Tag() == "required" {
				return fmt.Errorf("%w: %s", entity.ErrMissingField, strings.ToLower(fe.Field()))
			}
			return fmt.Errorf("%w: %s", entity.ErrInvalidParameter, strings.ToLower(fe.Field()))
		}
		return err
	}

	return nil
}
