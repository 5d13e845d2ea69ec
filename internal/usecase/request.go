package usecase

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"sound-scheduler/internal/domain"
)

// ScheduleRequest is the raw input of "start scheduling".
type ScheduleRequest struct {
	FilePath string `json:"filePath" label:"file path" validate:"required,max=4096"`
	Start    string `json:"start" label:"start time" validate:"required"`
	End      string `json:"end" label:"end time" validate:"required"`
}

var requestValidator = newRequestValidator()

// newRequestValidator reports fields by their label tag so messages match the
// domain wording ("file path is required").
func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return strings.ToLower(fld.Name)
	})
	return v
}

// validateRequest checks field presence and turns the request into a config.
func validateRequest(req ScheduleRequest) (domain.ScheduleConfig, error) {
	if err := requestValidator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.ScheduleConfig{}, errors.Mark(errors.New(formatValidationErrors(verrs)), domain.ErrValidation)
		}
		return domain.ScheduleConfig{}, errors.Mark(errors.Wrap(err, "validate request"), domain.ErrValidation)
	}
	return domain.NewScheduleConfig(req.FilePath, req.Start, req.End)
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	msgs := make([]string, len(errs))
	for i, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs[i] = field + " is required"
		case "max":
			msgs[i] = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		default:
			msgs[i] = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}
