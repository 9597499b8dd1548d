package service

import (
	"context"
	"errors"
	"time"

	"medibook/internal/access"
	appointmenterrors "medibook/internal/appointments/errors"
	"medibook/internal/appointments/repository"
	"medibook/internal/appointments/validator"
	availabilityerrors "medibook/internal/availability/errors"
	availabilityrepo "medibook/internal/availability/repository"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/model"
	"medibook/pkg/notify"
	"medibook/pkg/sanitizer"
)

// legalTransitions is the status machine. Cancelled is reachable from any
// non-terminal state; completed and no-show require a booked or confirmed
// appointment. Rescheduled is informational and does not touch slots.
var legalTransitions = map[string]map[string]bool{
	model.StatusBooked: {
		model.StatusConfirmed:   true,
		model.StatusCompleted:   true,
		model.StatusCancelled:   true,
		model.StatusRescheduled: true,
		model.StatusNoShow:      true,
	},
	model.StatusConfirmed: {
		model.StatusCompleted:   true,
		model.StatusCancelled:   true,
		model.StatusRescheduled: true,
		model.StatusNoShow:      true,
	},
	model.StatusRescheduled: {
		model.StatusConfirmed: true,
		model.StatusCancelled: true,
	},
}

type AppointmentService interface {
	Reserve(ctx context.Context, req model.Requester, booking *model.BookingRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, req model.Requester, id string) (*model.Appointment, error)
	List(ctx context.Context, req model.Requester, date *time.Time, limit int, offset int64) ([]*model.Appointment, int64, error)
	SetStatus(ctx context.Context, req model.Requester, id string, newStatus string) (*model.Appointment, error)
	AddNotes(ctx context.Context, req model.Requester, id string, notes string) (*model.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	calendars availabilityrepo.CalendarRepository
	validator *validator.AppointmentValidator
	notifier  notify.Notifier
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	calendars availabilityrepo.CalendarRepository,
	validator *validator.AppointmentValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		calendars: calendars,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Reserve runs the slot reservation protocol. The claim itself is a single
// conditional update against the calendar document; no lock is held across
// the appointment insert. A failed insert is compensated by releasing the
// claimed slot, retried until the store confirms it or retries run out.
func (s *appointmentService) Reserve(ctx context.Context, req model.Requester, booking *model.BookingRequest) (*model.Appointment, error) {
	if req.Role != model.RolePatient {
		return nil, apperrors.Forbidden("Only patients can book appointments")
	}

	booking.ReasonForVisit = sanitizer.NormalizeFreeText(booking.ReasonForVisit)

	if err := s.validator.ValidateBooking(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"patient_id", req.ID,
			"doctor_id", booking.DoctorID,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	date := model.NormalizeDate(booking.Date)

	// Steps 1+2: the slot must exist on a published calendar. A missing
	// calendar and a missing slot are the same answer to the caller: the
	// thing they asked for is not on offer.
	cal, err := s.calendars.FindPublished(ctx, booking.DoctorID, booking.HospitalID, date)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.SlotUnavailable("No published calendar for this doctor, hospital and date")
		}
		s.cfg.Log.Error("Failed to load calendar for booking",
			"doctor_id", booking.DoctorID,
			"hospital_id", booking.HospitalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load calendar", err)
	}

	if cal.FindSlot(booking.StartTime, booking.EndTime) == nil {
		return nil, apperrors.SlotUnavailable("Requested slot does not exist on this calendar")
	}

	// Step 3: the atomic claim. Zero modified documents means another
	// request won the race between our read and this write.
	won, err := s.calendars.ReserveSlot(ctx, booking.DoctorID, booking.HospitalID, date, booking.StartTime, booking.EndTime)
	if err != nil {
		s.cfg.Log.Error("Slot reservation update failed",
			"doctor_id", booking.DoctorID,
			"hospital_id", booking.HospitalID,
			"start_time", booking.StartTime,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to reserve slot", err)
	}
	if !won {
		return nil, apperrors.SlotConflict("Slot was claimed by a concurrent request")
	}

	appt := &model.Appointment{
		PatientID:       req.ID,
		DoctorID:        booking.DoctorID,
		HospitalID:      booking.HospitalID,
		Date:            date,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		Type:            booking.Type,
		Status:          model.StatusBooked,
		ReasonForVisit:  booking.ReasonForVisit,
		PaymentStatus:   model.PaymentPending,
		ConsultationFee: booking.ConsultationFee,
		VideoCallLink:   booking.VideoCallLink,
	}
	if appt.ConsultationFee == 0 {
		appt.PaymentStatus = model.PaymentPaid
	}

	// Step 4: create the appointment, then stamp its ID onto the slot. The
	// stamp cannot race: is_booked is exclusively ours until released.
	if err := s.repo.Create(ctx, appt); err != nil {
		s.cfg.Log.Error("Failed to create appointment after winning slot",
			"patient_id", req.ID,
			"doctor_id", booking.DoctorID,
			"start_time", booking.StartTime,
			"error", err,
		)
		s.rollbackSlot(ctx, booking, date)
		return nil, apperrors.Internal("Failed to create appointment", err)
	}

	if err := s.calendars.StampAppointment(ctx, booking.DoctorID, booking.HospitalID, date, booking.StartTime, booking.EndTime, appt.ID); err != nil {
		s.cfg.Log.Error("Failed to stamp appointment on slot",
			"appointment_id", appt.ID,
			"start_time", booking.StartTime,
			"error", err,
		)
		if delErr := s.repo.Delete(ctx, appt.ID); delErr != nil {
			s.cfg.Log.Error("Failed to delete appointment during rollback",
				"appointment_id", appt.ID,
				"error", delErr,
			)
		}
		s.rollbackSlot(ctx, booking, date)
		return nil, apperrors.Internal("Failed to bind appointment to slot", err)
	}

	s.cfg.Log.Info("Appointment booked",
		"appointment_id", appt.ID,
		"patient_id", appt.PatientID,
		"doctor_id", appt.DoctorID,
		"date", appt.Date,
		"start_time", appt.StartTime,
	)
	s.notifier.AppointmentBooked(ctx, appt)
	return appt, nil
}

// rollbackSlot is the step-5 compensation: put the claimed slot back. Retried
// because leaking a booked slot with no appointment blocks the interval for
// everyone; if the store keeps refusing, operators have to reconcile by hand.
func (s *appointmentService) rollbackSlot(ctx context.Context, booking *model.BookingRequest, date time.Time) {
	for attempt := 1; attempt <= s.cfg.SlotReleaseRetries; attempt++ {
		released, err := s.calendars.ReleaseSlotByTime(ctx, booking.DoctorID, booking.HospitalID, date, booking.StartTime, booking.EndTime)
		if err == nil {
			if !released {
				s.cfg.Log.Warn("Rollback found no booked slot to release",
					"doctor_id", booking.DoctorID,
					"start_time", booking.StartTime,
				)
			}
			return
		}
		s.cfg.Log.Warn("Slot rollback attempt failed",
			"attempt", attempt,
			"doctor_id", booking.DoctorID,
			"start_time", booking.StartTime,
			"error", err,
		)
		time.Sleep(s.cfg.SlotReleaseRetryWait)
	}

	s.cfg.Log.Error("Slot rollback exhausted retries, slot leaked",
		"doctor_id", booking.DoctorID,
		"hospital_id", booking.HospitalID,
		"date", date,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
}

func (s *appointmentService) GetByID(ctx context.Context, req model.Requester, id string) (*model.Appointment, error) {
	appt, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanViewAppointment(req, appt) {
		return nil, apperrors.Forbidden("Not allowed to view this appointment")
	}
	return appt, nil
}

func (s *appointmentService) findByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appointmenterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		s.cfg.Log.Error("Failed to get appointment by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appt, nil
}

// List is role-scoped: patients and doctors see their own appointments,
// admins see everything.
func (s *appointmentService) List(ctx context.Context, req model.Requester, date *time.Time, limit int, offset int64) ([]*model.Appointment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		appointments []*model.Appointment
		count        int64
		err          error
	)

	switch req.Role {
	case model.RolePatient:
		appointments, err = s.repo.FindByPatient(ctx, req.ID, date, limit, offset)
		if err == nil {
			count, err = s.repo.CountByPatient(ctx, req.ID, date)
		}
	case model.RoleDoctor:
		appointments, err = s.repo.FindByDoctor(ctx, req.ID, date, limit, offset)
		if err == nil {
			count, err = s.repo.CountByDoctor(ctx, req.ID, date)
		}
	case model.RoleAdmin:
		appointments, err = s.repo.FindAll(ctx, date, limit, offset)
		if err == nil {
			count, err = s.repo.Count(ctx, date)
		}
	default:
		return nil, 0, apperrors.Forbidden("Not allowed to list appointments")
	}

	if err != nil {
		s.cfg.Log.Error("Failed to list appointments",
			"requester_id", req.ID,
			"role", req.Role,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to list appointments", err)
	}

	return appointments, count, nil
}

// SetStatus applies one lifecycle transition. Moving into cancelled releases
// the bound slot; re-cancelling is an idempotent no-op that skips the release.
func (s *appointmentService) SetStatus(ctx context.Context, req model.Requester, id string, newStatus string) (*model.Appointment, error) {
	if err := s.validator.ValidateStatus(newStatus); err != nil {
		return nil, apperrors.Validation("Invalid status", map[string]any{
			"error": err.Error(),
		})
	}

	appt, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanSetStatus(req, appt, newStatus) {
		return nil, apperrors.Forbidden("Not allowed to set this status")
	}

	if appt.Status == model.StatusCancelled && newStatus == model.StatusCancelled {
		return appt, nil
	}

	if !legalTransitions[appt.Status][newStatus] {
		return nil, apperrors.InvalidState("Transition from " + appt.Status + " to " + newStatus + " is not allowed")
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, appointmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		s.cfg.Log.Error("Failed to update appointment status",
			"appointment_id", id,
			"status", newStatus,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update appointment status", err)
	}

	appt.Status = newStatus

	if newStatus == model.StatusCancelled {
		s.releaseCancelledSlot(ctx, appt)
		s.notifier.AppointmentCancelled(ctx, appt)
	}

	s.cfg.Log.Info("Appointment status changed",
		"appointment_id", id,
		"status", newStatus,
		"requester_id", req.ID,
		"role", req.Role,
	)
	return appt, nil
}

// releaseCancelledSlot frees the slot bound to the appointment. A missing
// slot means an availability record was deleted or edited out of band; the
// cancellation still stands, but the inconsistency must show up in the logs.
func (s *appointmentService) releaseCancelledSlot(ctx context.Context, appt *model.Appointment) {
	released, err := s.calendars.ReleaseSlot(ctx, appt.DoctorID, appt.HospitalID, appt.Date, appt.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to release slot on cancellation",
			"appointment_id", appt.ID,
			"doctor_id", appt.DoctorID,
			"date", appt.Date,
			"error", err,
		)
		return
	}
	if !released {
		s.cfg.Log.Warn("No slot found for cancelled appointment",
			"appointment_id", appt.ID,
			"doctor_id", appt.DoctorID,
			"hospital_id", appt.HospitalID,
			"date", appt.Date,
		)
	}
}

func (s *appointmentService) AddNotes(ctx context.Context, req model.Requester, id string, notes string) (*model.Appointment, error) {
	appt, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanAddNotes(req, appt) {
		return nil, apperrors.Forbidden("Only the owning doctor can add notes")
	}

	if appt.Status != model.StatusConfirmed && appt.Status != model.StatusCompleted {
		return nil, apperrors.InvalidState("Notes can only be added to confirmed or completed appointments")
	}

	notes = sanitizer.NormalizeFreeText(notes)
	if notes == "" {
		return nil, apperrors.InvalidInput("Notes cannot be empty")
	}

	if err := s.repo.UpdateNotes(ctx, id, notes); err != nil {
		s.cfg.Log.Error("Failed to update appointment notes",
			"appointment_id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update notes", err)
	}

	appt.Notes = notes
	return appt, nil
}
