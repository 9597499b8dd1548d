// Package access holds the role/action/ownership decision table used by the
// availability and appointment services. Keeping the matrix in one place
// keeps it auditable; services ask yes/no questions and translate a "no"
// into a Forbidden error themselves.
package access

import (
	"medibook/pkg/model"
)

// CanPublishSchedule reports whether the requester may create or replace the
// calendar of the given doctor. Hospital admins act as delegated managers;
// their hospital scope is asserted by the identity collaborator upstream.
func CanPublishSchedule(req model.Requester, doctorID string) bool {
	switch req.Role {
	case model.RoleAdmin, model.RoleHospitalAdmin:
		return true
	case model.RoleDoctor:
		return req.ID == doctorID
	}
	return false
}

// CanViewCalendar reports whether the requester may read the calendar.
// Published calendars are public; unpublished ones are visible only to the
// owning doctor and to admins.
func CanViewCalendar(req model.Requester, cal *model.Calendar) bool {
	if cal.IsPublished {
		return true
	}
	switch req.Role {
	case model.RoleAdmin, model.RoleHospitalAdmin:
		return true
	case model.RoleDoctor:
		return req.ID == cal.DoctorID
	}
	return false
}

// CanListOwnCalendars reports whether the requester may list all calendars,
// published or not, belonging to the given doctor.
func CanListOwnCalendars(req model.Requester, doctorID string) bool {
	switch req.Role {
	case model.RoleAdmin, model.RoleHospitalAdmin:
		return true
	case model.RoleDoctor:
		return req.ID == doctorID
	}
	return false
}

// CanSetPublished reports whether the requester may toggle the publish flag.
func CanSetPublished(req model.Requester, cal *model.Calendar) bool {
	if req.IsAdmin() {
		return true
	}
	return req.Role == model.RoleDoctor && req.ID == cal.DoctorID
}

// CanSetStatus reports whether the requester may move the appointment into
// newStatus. Whether the transition itself is legal for the appointment's
// current state is a separate InvalidState question answered by the service.
func CanSetStatus(req model.Requester, appt *model.Appointment, newStatus string) bool {
	if req.IsAdmin() {
		return true
	}

	switch req.Role {
	case model.RolePatient:
		return newStatus == model.StatusCancelled && req.ID == appt.PatientID

	case model.RoleDoctor:
		if req.ID != appt.DoctorID {
			return false
		}
		switch newStatus {
		case model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled, model.StatusNoShow:
			return true
		}
	}
	return false
}

// CanViewAppointment reports whether the requester may read the appointment.
// Patient and doctor are joint stakeholders; admins see everything.
func CanViewAppointment(req model.Requester, appt *model.Appointment) bool {
	if req.IsAdmin() {
		return true
	}
	switch req.Role {
	case model.RolePatient:
		return req.ID == appt.PatientID
	case model.RoleDoctor:
		return req.ID == appt.DoctorID
	}
	return false
}

// CanAddNotes reports whether the requester may attach clinical notes.
// Only the owning doctor writes notes; admins do not author clinical records.
func CanAddNotes(req model.Requester, appt *model.Appointment) bool {
	return req.Role == model.RoleDoctor && req.ID == appt.DoctorID
}
