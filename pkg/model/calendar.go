package model

import (
	"time"
)

// TimeSlot is a fixed interval inside a calendar. Times are local HH:MM
// strings, not timezone aware. AppointmentID is set iff IsBooked is true.
type TimeSlot struct {
	StartTime     string `json:"start_time" bson:"start_time" validate:"required,slot_time"`
	EndTime       string `json:"end_time" bson:"end_time" validate:"required,slot_time"`
	IsBooked      bool   `json:"is_booked" bson:"is_booked"`
	AppointmentID string `json:"appointment_id,omitempty" bson:"appointment_id,omitempty" validate:"omitempty,mongodb"`
}

// Calendar holds the slots one doctor offers at one hospital on one date.
// Exactly one document exists per (doctor_id, hospital_id, date); the date
// is normalized to midnight UTC.
type Calendar struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	DoctorID    string     `json:"doctor_id" bson:"doctor_id" validate:"required,mongodb"`
	HospitalID  string     `json:"hospital_id" bson:"hospital_id" validate:"required,mongodb"`
	Date        time.Time  `json:"date" bson:"date" validate:"required"`
	TimeSlots   []TimeSlot `json:"time_slots" bson:"time_slots" validate:"required,min=1,max=96,dive"`
	IsPublished bool       `json:"is_published" bson:"is_published"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// NormalizeDate strips the time-of-day component so calendar lookups always
// hit the single per-day document.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FreeSlots returns the slots still open for booking.
func (c *Calendar) FreeSlots() []TimeSlot {
	free := make([]TimeSlot, 0, len(c.TimeSlots))
	for _, slot := range c.TimeSlots {
		if !slot.IsBooked {
			free = append(free, slot)
		}
	}
	return free
}

// FindSlot returns the slot with the exact (start, end) pair, or nil.
func (c *Calendar) FindSlot(startTime, endTime string) *TimeSlot {
	for i := range c.TimeSlots {
		if c.TimeSlots[i].StartTime == startTime && c.TimeSlots[i].EndTime == endTime {
			return &c.TimeSlots[i]
		}
	}
	return nil
}
