package testutil

import (
	"time"

	"medibook/pkg/model"
)

type CalendarBuilder struct {
	cal model.Calendar
}

func NewCalendarBuilder() *CalendarBuilder {
	return &CalendarBuilder{
		cal: model.Calendar{
			DoctorID:   "507f1f77bcf86cd799439013",
			HospitalID: "507f1f77bcf86cd799439014",
			Date:       model.NormalizeDate(time.Now().UTC()),
			TimeSlots: []model.TimeSlot{
				{StartTime: "09:00", EndTime: "09:30"},
				{StartTime: "09:30", EndTime: "10:00"},
			},
			IsPublished: true,
			CreatedAt:   time.Now().UTC(),
		},
	}
}

func (b *CalendarBuilder) WithDoctor(doctorID string) *CalendarBuilder {
	b.cal.DoctorID = doctorID
	return b
}

func (b *CalendarBuilder) WithHospital(hospitalID string) *CalendarBuilder {
	b.cal.HospitalID = hospitalID
	return b
}

func (b *CalendarBuilder) WithDate(date time.Time) *CalendarBuilder {
	b.cal.Date = model.NormalizeDate(date)
	return b
}

func (b *CalendarBuilder) WithSlots(slots ...model.TimeSlot) *CalendarBuilder {
	b.cal.TimeSlots = slots
	return b
}

func (b *CalendarBuilder) Unpublished() *CalendarBuilder {
	b.cal.IsPublished = false
	return b
}

func (b *CalendarBuilder) Build() *model.Calendar {
	cal := b.cal
	cal.TimeSlots = append([]model.TimeSlot(nil), b.cal.TimeSlots...)
	return &cal
}
