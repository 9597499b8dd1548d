package access

import (
	"testing"

	"medibook/pkg/model"
)

func TestCanSetStatus(t *testing.T) {
	appt := &model.Appointment{
		ID:        "507f1f77bcf86cd799439011",
		PatientID: "507f1f77bcf86cd799439012",
		DoctorID:  "507f1f77bcf86cd799439013",
		Status:    model.StatusBooked,
	}

	tests := []struct {
		name      string
		requester model.Requester
		newStatus string
		want      bool
	}{
		{
			name:      "patient cancels own appointment",
			requester: model.Requester{ID: appt.PatientID, Role: model.RolePatient},
			newStatus: model.StatusCancelled,
			want:      true,
		},
		{
			name:      "patient cannot confirm",
			requester: model.Requester{ID: appt.PatientID, Role: model.RolePatient},
			newStatus: model.StatusConfirmed,
			want:      false,
		},
		{
			name:      "patient cannot cancel someone else's appointment",
			requester: model.Requester{ID: "507f1f77bcf86cd799439099", Role: model.RolePatient},
			newStatus: model.StatusCancelled,
			want:      false,
		},
		{
			name:      "doctor confirms own appointment",
			requester: model.Requester{ID: appt.DoctorID, Role: model.RoleDoctor},
			newStatus: model.StatusConfirmed,
			want:      true,
		},
		{
			name:      "doctor completes own appointment",
			requester: model.Requester{ID: appt.DoctorID, Role: model.RoleDoctor},
			newStatus: model.StatusCompleted,
			want:      true,
		},
		{
			name:      "doctor marks no-show on own appointment",
			requester: model.Requester{ID: appt.DoctorID, Role: model.RoleDoctor},
			newStatus: model.StatusNoShow,
			want:      true,
		},
		{
			name:      "doctor cannot set rescheduled",
			requester: model.Requester{ID: appt.DoctorID, Role: model.RoleDoctor},
			newStatus: model.StatusRescheduled,
			want:      false,
		},
		{
			name:      "doctor cannot touch another doctor's appointment",
			requester: model.Requester{ID: "507f1f77bcf86cd799439098", Role: model.RoleDoctor},
			newStatus: model.StatusConfirmed,
			want:      false,
		},
		{
			name:      "admin sets any status",
			requester: model.Requester{ID: "507f1f77bcf86cd799439097", Role: model.RoleAdmin},
			newStatus: model.StatusRescheduled,
			want:      true,
		},
		{
			name:      "hospital admin cannot set status",
			requester: model.Requester{ID: "507f1f77bcf86cd799439096", Role: model.RoleHospitalAdmin},
			newStatus: model.StatusCancelled,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanSetStatus(tt.requester, appt, tt.newStatus)
			if got != tt.want {
				t.Errorf("CanSetStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewAppointment(t *testing.T) {
	appt := &model.Appointment{
		PatientID: "507f1f77bcf86cd799439012",
		DoctorID:  "507f1f77bcf86cd799439013",
	}

	tests := []struct {
		name      string
		requester model.Requester
		want      bool
	}{
		{"owning patient", model.Requester{ID: appt.PatientID, Role: model.RolePatient}, true},
		{"other patient", model.Requester{ID: "507f1f77bcf86cd799439099", Role: model.RolePatient}, false},
		{"owning doctor", model.Requester{ID: appt.DoctorID, Role: model.RoleDoctor}, true},
		{"other doctor", model.Requester{ID: "507f1f77bcf86cd799439098", Role: model.RoleDoctor}, false},
		{"admin", model.Requester{ID: "507f1f77bcf86cd799439097", Role: model.RoleAdmin}, true},
		{"hospital admin", model.Requester{ID: "507f1f77bcf86cd799439096", Role: model.RoleHospitalAdmin}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewAppointment(tt.requester, appt); got != tt.want {
				t.Errorf("CanViewAppointment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewCalendar(t *testing.T) {
	published := &model.Calendar{DoctorID: "507f1f77bcf86cd799439013", IsPublished: true}
	draft := &model.Calendar{DoctorID: "507f1f77bcf86cd799439013", IsPublished: false}

	tests := []struct {
		name      string
		requester model.Requester
		cal       *model.Calendar
		want      bool
	}{
		{"published visible to patients", model.Requester{ID: "x", Role: model.RolePatient}, published, true},
		{"draft hidden from patients", model.Requester{ID: "x", Role: model.RolePatient}, draft, false},
		{"draft visible to owner", model.Requester{ID: draft.DoctorID, Role: model.RoleDoctor}, draft, true},
		{"draft hidden from other doctor", model.Requester{ID: "y", Role: model.RoleDoctor}, draft, false},
		{"draft visible to admin", model.Requester{ID: "z", Role: model.RoleAdmin}, draft, true},
		{"draft visible to hospital admin", model.Requester{ID: "w", Role: model.RoleHospitalAdmin}, draft, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewCalendar(tt.requester, tt.cal); got != tt.want {
				t.Errorf("CanViewCalendar() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanPublishSchedule(t *testing.T) {
	doctorID := "507f1f77bcf86cd799439013"

	tests := []struct {
		name      string
		requester model.Requester
		want      bool
	}{
		{"owning doctor", model.Requester{ID: doctorID, Role: model.RoleDoctor}, true},
		{"other doctor", model.Requester{ID: "507f1f77bcf86cd799439098", Role: model.RoleDoctor}, false},
		{"admin", model.Requester{ID: "a", Role: model.RoleAdmin}, true},
		{"hospital admin", model.Requester{ID: "h", Role: model.RoleHospitalAdmin}, true},
		{"patient", model.Requester{ID: "p", Role: model.RolePatient}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPublishSchedule(tt.requester, doctorID); got != tt.want {
				t.Errorf("CanPublishSchedule() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAddNotes(t *testing.T) {
	appt := &model.Appointment{
		PatientID: "507f1f77bcf86cd799439012",
		DoctorID:  "507f1f77bcf86cd799439013",
	}

	tests := []struct {
		name      string
		requester model.Requester
		want      bool
	}{
		{"owning doctor", model.Requester{ID: appt.DoctorID, Role: model.RoleDoctor}, true},
		{"other doctor", model.Requester{ID: "507f1f77bcf86cd799439099", Role: model.RoleDoctor}, false},
		{"admin", model.Requester{ID: "a", Role: model.RoleAdmin}, false},
		{"patient", model.Requester{ID: appt.PatientID, Role: model.RolePatient}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAddNotes(tt.requester, appt); got != tt.want {
				t.Errorf("CanAddNotes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanSetPublished(t *testing.T) {
	cal := &model.Calendar{DoctorID: "507f1f77bcf86cd799439013"}

	tests := []struct {
		name      string
		requester model.Requester
		want      bool
	}{
		{"owning doctor", model.Requester{ID: cal.DoctorID, Role: model.RoleDoctor}, true},
		{"other doctor", model.Requester{ID: "507f1f77bcf86cd799439098", Role: model.RoleDoctor}, false},
		{"admin", model.Requester{ID: "a", Role: model.RoleAdmin}, true},
		{"hospital admin", model.Requester{ID: "h", Role: model.RoleHospitalAdmin}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanSetPublished(tt.requester, cal); got != tt.want {
				t.Errorf("CanSetPublished() = %v, want %v", got, tt.want)
			}
		})
	}
}
