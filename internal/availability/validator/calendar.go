package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"medibook/pkg/logger"
	"medibook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CalendarValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	maxSlots int
}

func NewCalendarValidator(log *logger.Logger, maxSlots int) *CalendarValidator {
	v := validator.New()

	if err := v.RegisterValidation("slot_time", ValidateSlotTime); err != nil {
		log.Fatal("Failed to register 'slot_time' validator", "error", err)
	}

	log.Info("Calendar validator initialized successfully")

	return &CalendarValidator{
		validate: v,
		logger:   log,
		maxSlots: maxSlots,
	}
}

// ValidateSlotTime accepts local HH:MM strings in 24-hour format.
func ValidateSlotTime(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if len(value) != 5 || value[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}

func (v *CalendarValidator) Validate(cal *model.Calendar) error {
	if err := v.validate.Struct(cal); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateSlots(cal.TimeSlots)
}

// validateSlots enforces the structural rules the tag layer cannot express:
// start < end per slot, no duplicate (start, end) pairs, no overlapping
// intervals and a cap on slots per day.
func (v *CalendarValidator) validateSlots(slots []model.TimeSlot) error {
	var errs ValidationErrors

	if len(slots) > v.maxSlots {
		errs = append(errs, ValidationError{
			Field:   "time_slots",
			Message: fmt.Sprintf("at most %d slots allowed per calendar, got %d", v.maxSlots, len(slots)),
		})
		return errs
	}

	type interval struct {
		start, end int
	}
	seen := make(map[string]struct{}, len(slots))
	intervals := make([]interval, 0, len(slots))

	for i, slot := range slots {
		start, err := slotMinutes(slot.StartTime)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("time_slots[%d].start_time", i),
				Message: "must be a valid HH:MM time",
			})
			continue
		}
		end, err := slotMinutes(slot.EndTime)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("time_slots[%d].end_time", i),
				Message: "must be a valid HH:MM time",
			})
			continue
		}

		if start >= end {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("time_slots[%d]", i),
				Message: fmt.Sprintf("start_time %s must be before end_time %s", slot.StartTime, slot.EndTime),
			})
			continue
		}

		key := slot.StartTime + "-" + slot.EndTime
		if _, dup := seen[key]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("time_slots[%d]", i),
				Message: fmt.Sprintf("duplicate slot %s", key),
			})
			continue
		}
		seen[key] = struct{}{}

		for _, other := range intervals {
			if start < other.end && other.start < end {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("time_slots[%d]", i),
					Message: fmt.Sprintf("slot %s overlaps another slot", key),
				})
				break
			}
		}
		intervals = append(intervals, interval{start: start, end: end})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func slotMinutes(value string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func (v *CalendarValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must have at least %s entries", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must have at most %s entries", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
		case "slot_time":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
