package validator

import (
	"testing"
	"time"

	"medibook/pkg/logger"
	"medibook/pkg/model"
)

func newTestValidator(t *testing.T) *CalendarValidator {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	return NewCalendarValidator(log, 96)
}

func validCalendar() *model.Calendar {
	return &model.Calendar{
		DoctorID:   "507f1f77bcf86cd799439013",
		HospitalID: "507f1f77bcf86cd799439014",
		Date:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		TimeSlots: []model.TimeSlot{
			{StartTime: "09:00", EndTime: "09:30"},
			{StartTime: "09:30", EndTime: "10:00"},
		},
		IsPublished: true,
	}
}

func TestValidate_ValidCalendar(t *testing.T) {
	v := newTestValidator(t)
	if err := v.Validate(validCalendar()); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_SlotRules(t *testing.T) {
	tests := []struct {
		name  string
		slots []model.TimeSlot
	}{
		{
			name:  "start equals end",
			slots: []model.TimeSlot{{StartTime: "09:00", EndTime: "09:00"}},
		},
		{
			name:  "start after end",
			slots: []model.TimeSlot{{StartTime: "10:00", EndTime: "09:30"}},
		},
		{
			name: "duplicate pair",
			slots: []model.TimeSlot{
				{StartTime: "09:00", EndTime: "09:30"},
				{StartTime: "09:00", EndTime: "09:30"},
			},
		},
		{
			name: "overlapping intervals",
			slots: []model.TimeSlot{
				{StartTime: "09:00", EndTime: "10:00"},
				{StartTime: "09:30", EndTime: "10:30"},
			},
		},
		{
			name:  "malformed time",
			slots: []model.TimeSlot{{StartTime: "9am", EndTime: "10am"}},
		},
		{
			name:  "hour out of range",
			slots: []model.TimeSlot{{StartTime: "25:00", EndTime: "26:00"}},
		},
		{
			name:  "no slots",
			slots: nil,
		},
	}

	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := validCalendar()
			cal.TimeSlots = tt.slots
			if err := v.Validate(cal); err == nil {
				t.Errorf("Validate() expected error for %s, got nil", tt.name)
			}
		})
	}
}

func TestValidate_AdjacentSlotsDoNotOverlap(t *testing.T) {
	v := newTestValidator(t)
	cal := validCalendar()
	cal.TimeSlots = []model.TimeSlot{
		{StartTime: "09:00", EndTime: "09:30"},
		{StartTime: "09:30", EndTime: "10:00"},
		{StartTime: "10:00", EndTime: "10:30"},
	}
	if err := v.Validate(cal); err != nil {
		t.Errorf("Validate() adjacent slots should be legal, got %v", err)
	}
}

func TestValidate_MaxSlotsCap(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	v := NewCalendarValidator(log, 2)

	cal := validCalendar()
	cal.TimeSlots = []model.TimeSlot{
		{StartTime: "09:00", EndTime: "09:30"},
		{StartTime: "09:30", EndTime: "10:00"},
		{StartTime: "10:00", EndTime: "10:30"},
	}
	if err := v.Validate(cal); err == nil {
		t.Error("Validate() expected error when exceeding slot cap, got nil")
	}
}

func TestValidate_MidnightBoundary(t *testing.T) {
	v := newTestValidator(t)
	cal := validCalendar()
	cal.TimeSlots = []model.TimeSlot{
		{StartTime: "23:30", EndTime: "23:59"},
	}
	if err := v.Validate(cal); err != nil {
		t.Errorf("Validate() late-evening slot should be legal, got %v", err)
	}
}
