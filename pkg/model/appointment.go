package model

import (
	"time"
)

// Appointment statuses. Completed, cancelled and no-show are terminal.
const (
	StatusBooked      = "booked"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
	StatusNoShow      = "no-show"
)

// Visit types.
const (
	VisitInPerson     = "in-person"
	VisitTelemedicine = "telemedicine"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Appointment struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PatientID       string    `json:"patient_id" bson:"patient_id" validate:"required,mongodb"`
	DoctorID        string    `json:"doctor_id" bson:"doctor_id" validate:"required,mongodb"`
	HospitalID      string    `json:"hospital_id" bson:"hospital_id" validate:"required,mongodb"`
	Date            time.Time `json:"date" bson:"date" validate:"required"`
	StartTime       string    `json:"start_time" bson:"start_time" validate:"required,slot_time"`
	EndTime         string    `json:"end_time" bson:"end_time" validate:"required,slot_time"`
	Type            string    `json:"type" bson:"type" validate:"required,oneof=in-person telemedicine"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=booked confirmed completed cancelled rescheduled no-show"`
	ReasonForVisit  string    `json:"reason_for_visit" bson:"reason_for_visit" validate:"required,min=2,max=500"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	PaymentStatus   string    `json:"payment_status" bson:"payment_status" validate:"required,oneof=pending paid refunded"`
	ConsultationFee float64   `json:"consultation_fee" bson:"consultation_fee" validate:"min=0"`
	VideoCallLink   string    `json:"video_call_link,omitempty" bson:"video_call_link,omitempty" validate:"omitempty,url"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// BookingRequest is the input to the slot reservation protocol.
type BookingRequest struct {
	DoctorID        string    `json:"doctor_id" validate:"required,mongodb"`
	HospitalID      string    `json:"hospital_id" validate:"required,mongodb"`
	Date            time.Time `json:"date" validate:"required"`
	StartTime       string    `json:"start_time" validate:"required,slot_time"`
	EndTime         string    `json:"end_time" validate:"required,slot_time"`
	Type            string    `json:"type" validate:"required,oneof=in-person telemedicine"`
	ReasonForVisit  string    `json:"reason_for_visit" validate:"required,min=2,max=500"`
	ConsultationFee float64   `json:"consultation_fee" validate:"min=0"`
	VideoCallLink   string    `json:"video_call_link,omitempty" validate:"omitempty,url"`
}

// IsTerminal reports whether no further status transition is modeled.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
