package service

import (
	"context"
	"errors"
	"time"

	"medibook/internal/access"
	availabilityerrors "medibook/internal/availability/errors"
	"medibook/internal/availability/repository"
	"medibook/internal/availability/validator"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/model"
)

// Directory is the narrow slice of the directory collaborator this service
// consumes: affiliation checks during publish.
type Directory interface {
	IsDoctorAffiliated(ctx context.Context, doctorID, hospitalID string) (bool, error)
}

type AvailabilityService interface {
	PublishSchedule(ctx context.Context, req model.Requester, doctorID, hospitalID string, date time.Time, slots []model.TimeSlot) (*model.Calendar, error)
	GetPublishedCalendar(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error)
	ListAvailableSlots(ctx context.Context, doctorID, hospitalID string, date time.Time) ([]model.TimeSlot, error)
	GetOwnCalendars(ctx context.Context, req model.Requester, doctorID string, from, to time.Time) ([]*model.Calendar, error)
	GetCalendarByID(ctx context.Context, req model.Requester, calendarID string) (*model.Calendar, error)
	SetPublished(ctx context.Context, req model.Requester, calendarID string, published bool) (*model.Calendar, error)
}

type availabilityService struct {
	repo      repository.CalendarRepository
	validator *validator.CalendarValidator
	directory Directory
	cfg       *config.Config
}

func NewAvailabilityService(
	repo repository.CalendarRepository,
	validator *validator.CalendarValidator,
	directory Directory,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		validator: validator,
		directory: directory,
		cfg:       cfg,
	}
}

// PublishSchedule replaces the slot list for the doctor/hospital/day, each
// slot starting unbooked, and marks the calendar published. Existing bookings
// on the old slot list are discarded with it; edits to a day with live
// appointments are the caller's responsibility to sequence.
func (s *availabilityService) PublishSchedule(ctx context.Context, req model.Requester, doctorID, hospitalID string, date time.Time, slots []model.TimeSlot) (*model.Calendar, error) {
	if !access.CanPublishSchedule(req, doctorID) {
		return nil, apperrors.Forbidden("Not allowed to publish this doctor's schedule")
	}

	cleaned := make([]model.TimeSlot, len(slots))
	for i, slot := range slots {
		cleaned[i] = model.TimeSlot{
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		}
	}

	cal := &model.Calendar{
		DoctorID:    doctorID,
		HospitalID:  hospitalID,
		Date:        model.NormalizeDate(date),
		TimeSlots:   cleaned,
		IsPublished: true,
	}

	if err := s.validator.Validate(cal); err != nil {
		s.cfg.Log.Warn("Calendar validation failed",
			"doctor_id", doctorID,
			"hospital_id", hospitalID,
			"error", err,
		)
		return nil, apperrors.Validation("Calendar validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	affiliated, err := s.directory.IsDoctorAffiliated(ctx, doctorID, hospitalID)
	if err != nil {
		s.cfg.Log.Error("Directory affiliation check failed",
			"doctor_id", doctorID,
			"hospital_id", hospitalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to verify doctor affiliation", err)
	}
	if !affiliated {
		return nil, apperrors.Validation("Doctor is not affiliated with this hospital", map[string]any{
			"doctor_id":   doctorID,
			"hospital_id": hospitalID,
		})
	}

	if err := s.repo.Upsert(ctx, cal); err != nil {
		s.cfg.Log.Error("Failed to publish schedule",
			"doctor_id", doctorID,
			"hospital_id", hospitalID,
			"date", cal.Date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to publish schedule", err)
	}

	s.cfg.Log.Info("Schedule published",
		"doctor_id", doctorID,
		"hospital_id", hospitalID,
		"date", cal.Date,
		"slots", len(cal.TimeSlots),
	)
	return cal, nil
}

func (s *availabilityService) GetPublishedCalendar(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error) {
	if doctorID == "" || hospitalID == "" {
		return nil, apperrors.InvalidInput("doctor_id and hospital_id are required")
	}

	cal, err := s.repo.FindPublished(ctx, doctorID, hospitalID, date)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Calendar")
		}
		s.cfg.Log.Error("Failed to get published calendar",
			"doctor_id", doctorID,
			"hospital_id", hospitalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve calendar", err)
	}

	return cal, nil
}

func (s *availabilityService) ListAvailableSlots(ctx context.Context, doctorID, hospitalID string, date time.Time) ([]model.TimeSlot, error) {
	cal, err := s.GetPublishedCalendar(ctx, doctorID, hospitalID, date)
	if err != nil {
		return nil, err
	}
	return cal.FreeSlots(), nil
}

func (s *availabilityService) GetOwnCalendars(ctx context.Context, req model.Requester, doctorID string, from, to time.Time) ([]*model.Calendar, error) {
	if doctorID == "" {
		return nil, apperrors.InvalidInput("doctor_id is required")
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("date range end must not be before start")
	}
	if !access.CanListOwnCalendars(req, doctorID) {
		return nil, apperrors.Forbidden("Not allowed to list this doctor's calendars")
	}

	calendars, err := s.repo.FindByDoctorAndRange(ctx, doctorID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to list calendars",
			"doctor_id", doctorID,
			"from", from,
			"to", to,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to list calendars", err)
	}

	return calendars, nil
}

// GetCalendarByID returns a calendar regardless of publish state, subject to
// the draft visibility rule: published calendars are public, drafts are only
// visible to the owning doctor and calendar managers.
func (s *availabilityService) GetCalendarByID(ctx context.Context, req model.Requester, calendarID string) (*model.Calendar, error) {
	cal, err := s.findByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	if !access.CanViewCalendar(req, cal) {
		return nil, apperrors.Forbidden("Not allowed to view this calendar")
	}

	return cal, nil
}

func (s *availabilityService) findByID(ctx context.Context, calendarID string) (*model.Calendar, error) {
	if calendarID == "" {
		return nil, apperrors.InvalidInput("Calendar ID cannot be empty")
	}

	cal, err := s.repo.FindByID(ctx, calendarID)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Calendar", calendarID)
		}
		if errors.Is(err, availabilityerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid calendar ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve calendar", err)
	}
	return cal, nil
}

func (s *availabilityService) SetPublished(ctx context.Context, req model.Requester, calendarID string, published bool) (*model.Calendar, error) {
	cal, err := s.findByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	if !access.CanSetPublished(req, cal) {
		return nil, apperrors.Forbidden("Not allowed to change this calendar's publish state")
	}

	if err := s.repo.SetPublished(ctx, calendarID, published); err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Calendar", calendarID)
		}
		s.cfg.Log.Error("Failed to set publish flag",
			"calendar_id", calendarID,
			"published", published,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update calendar", err)
	}

	cal.IsPublished = published
	s.cfg.Log.Info("Calendar publish state changed",
		"calendar_id", calendarID,
		"published", published,
	)
	return cal, nil
}
