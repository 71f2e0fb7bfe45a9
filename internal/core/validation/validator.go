// Package validation enforces field-level constraints on client input before
// it reaches a store. It wraps go-playground/validator and reports the first
// violation as a *domain.ValidationError.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
)

// Validator satisfies echo.Validator as well, so it can be installed on the
// router for handlers that call c.Validate.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Only fails on a custom tag typo at startup.
	if err := v.RegisterValidation("calendar_date", isCalendarDate); err != nil {
		panic(fmt.Sprintf("validation: register calendar_date: %v", err))
	}
	v.RegisterStructValidation(updateTaskRules, ports.UpdateTaskInput{})
	return &Validator{v: v}
}

// Validate checks i against its struct tags and registered rules.
func (val *Validator) Validate(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		field := strings.ToLower(fe.Field())
		return domain.NewValidationError(field, fieldError(field, fe.Tag(), fe.Param()))
	}
	return err
}

// isCalendarDate accepts "" so that an empty deadline can be stored as null.
func isCalendarDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := domain.ParseDate(s)
	return err == nil
}

// updateTaskRules applies the create constraints to whichever fields of a
// partial update are present.
func updateTaskRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(ports.UpdateTaskInput)

	if in.Task.Present() {
		title, ok := in.Task.Get()
		switch {
		case !ok || title == "":
			sl.ReportError(in.Task, "task", "Task", "nonempty", "")
		case utf8.RuneCountInString(title) > MaxTitleLength:
			sl.ReportError(in.Task, "task", "Task", "max", strconv.Itoa(MaxTitleLength))
		}
	}

	if desc, ok := in.Description.Get(); ok && utf8.RuneCountInString(desc) > MaxDescriptionLength {
		sl.ReportError(in.Description, "description", "Description", "max", strconv.Itoa(MaxDescriptionLength))
	}

	if deadline, ok := in.Deadline.Get(); ok && deadline != "" {
		if _, err := domain.ParseDate(deadline); err != nil {
			sl.ReportError(in.Deadline, "deadline", "Deadline", "calendar_date", "")
		}
	}

	if in.Completed.IsNull() {
		sl.ReportError(in.Completed, "completed", "Completed", "boolean", "")
	}
}

// fieldError converts a single failed tag into a human-readable message.
func fieldError(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "nonempty":
		return field + " must be a non-empty string"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be %s characters or less", field, param)
	case "calendar_date":
		return field + " must be a valid date in YYYY-MM-DD format"
	case "boolean":
		return field + " must be a boolean"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, tag)
	}
}
