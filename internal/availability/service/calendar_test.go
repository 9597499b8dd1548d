package service

import (
	"context"
	"testing"
	"time"

	availabilityerrors "medibook/internal/availability/errors"
	"medibook/internal/availability/validator"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/logger"
	"medibook/pkg/model"
)

type mockCalendarRepository struct {
	upsertFunc               func(ctx context.Context, cal *model.Calendar) error
	findByIDFunc             func(ctx context.Context, id string) (*model.Calendar, error)
	findPublishedFunc        func(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error)
	findByKeyFunc            func(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error)
	findByDoctorAndRangeFunc func(ctx context.Context, doctorID string, from, to time.Time) ([]*model.Calendar, error)
	setPublishedFunc         func(ctx context.Context, id string, published bool) error
	reserveSlotFunc          func(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime string) (bool, error)
	stampAppointmentFunc     func(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime, appointmentID string) error
	releaseSlotFunc          func(ctx context.Context, doctorID, hospitalID string, date time.Time, appointmentID string) (bool, error)
	releaseSlotByTimeFunc    func(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime string) (bool, error)
}

func (m *mockCalendarRepository) Upsert(ctx context.Context, cal *model.Calendar) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, cal)
	}
	return nil
}

func (m *mockCalendarRepository) FindByID(ctx context.Context, id string) (*model.Calendar, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, availabilityerrors.ErrNotFound
}

func (m *mockCalendarRepository) FindPublished(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error) {
	if m.findPublishedFunc != nil {
		return m.findPublishedFunc(ctx, doctorID, hospitalID, date)
	}
	return nil, availabilityerrors.ErrNotFound
}

func (m *mockCalendarRepository) FindByKey(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error) {
	if m.findByKeyFunc != nil {
		return m.findByKeyFunc(ctx, doctorID, hospitalID, date)
	}
	return nil, availabilityerrors.ErrNotFound
}

func (m *mockCalendarRepository) FindByDoctorAndRange(ctx context.Context, doctorID string, from, to time.Time) ([]*model.Calendar, error) {
	if m.findByDoctorAndRangeFunc != nil {
		return m.findByDoctorAndRangeFunc(ctx, doctorID, from, to)
	}
	return nil, nil
}

func (m *mockCalendarRepository) SetPublished(ctx context.Context, id string, published bool) error {
	if m.setPublishedFunc != nil {
		return m.setPublishedFunc(ctx, id, published)
	}
	return nil
}

func (m *mockCalendarRepository) ReserveSlot(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime string) (bool, error) {
	if m.reserveSlotFunc != nil {
		return m.reserveSlotFunc(ctx, doctorID, hospitalID, date, startTime, endTime)
	}
	return false, nil
}

func (m *mockCalendarRepository) StampAppointment(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime, appointmentID string) error {
	if m.stampAppointmentFunc != nil {
		return m.stampAppointmentFunc(ctx, doctorID, hospitalID, date, startTime, endTime, appointmentID)
	}
	return nil
}

func (m *mockCalendarRepository) ReleaseSlot(ctx context.Context, doctorID, hospitalID string, date time.Time, appointmentID string) (bool, error) {
	if m.releaseSlotFunc != nil {
		return m.releaseSlotFunc(ctx, doctorID, hospitalID, date, appointmentID)
	}
	return false, nil
}

func (m *mockCalendarRepository) ReleaseSlotByTime(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime string) (bool, error) {
	if m.releaseSlotByTimeFunc != nil {
		return m.releaseSlotByTimeFunc(ctx, doctorID, hospitalID, date, startTime, endTime)
	}
	return false, nil
}

type mockDirectory struct {
	isDoctorAffiliatedFunc func(ctx context.Context, doctorID, hospitalID string) (bool, error)
}

func (m *mockDirectory) IsDoctorAffiliated(ctx context.Context, doctorID, hospitalID string) (bool, error) {
	if m.isDoctorAffiliatedFunc != nil {
		return m.isDoctorAffiliatedFunc(ctx, doctorID, hospitalID)
	}
	return true, nil
}

const (
	testDoctorID   = "507f1f77bcf86cd799439013"
	testHospitalID = "507f1f77bcf86cd799439014"
)

func newTestService(repo *mockCalendarRepository, dir *mockDirectory) AvailabilityService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:                 log,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		MaxSlotsPerCalendar: 96,
	}
	if dir == nil {
		dir = &mockDirectory{}
	}
	return NewAvailabilityService(repo, validator.NewCalendarValidator(log, cfg.MaxSlotsPerCalendar), dir, cfg)
}

func testSlots() []model.TimeSlot {
	return []model.TimeSlot{
		{StartTime: "09:00", EndTime: "09:30"},
		{StartTime: "09:30", EndTime: "10:00"},
	}
}

func TestPublishSchedule_Success(t *testing.T) {
	var upserted *model.Calendar
	repo := &mockCalendarRepository{
		upsertFunc: func(ctx context.Context, cal *model.Calendar) error {
			upserted = cal
			cal.ID = "507f1f77bcf86cd799439020"
			return nil
		},
	}
	svc := newTestService(repo, nil)

	doctor := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}
	date := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)

	cal, err := svc.PublishSchedule(context.Background(), doctor, testDoctorID, testHospitalID, date, testSlots())
	if err != nil {
		t.Fatalf("PublishSchedule() unexpected error: %v", err)
	}

	if !cal.IsPublished {
		t.Error("PublishSchedule() calendar should be published")
	}
	if !upserted.Date.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PublishSchedule() date not normalized to midnight, got %v", upserted.Date)
	}
	for i, slot := range upserted.TimeSlots {
		if slot.IsBooked || slot.AppointmentID != "" {
			t.Errorf("PublishSchedule() slot %d should start unbooked", i)
		}
	}
}

func TestPublishSchedule_StripsBookedState(t *testing.T) {
	var upserted *model.Calendar
	repo := &mockCalendarRepository{
		upsertFunc: func(ctx context.Context, cal *model.Calendar) error {
			upserted = cal
			return nil
		},
	}
	svc := newTestService(repo, nil)

	slots := []model.TimeSlot{
		{StartTime: "09:00", EndTime: "09:30", IsBooked: true, AppointmentID: "507f1f77bcf86cd799439099"},
	}

	doctor := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}
	_, err := svc.PublishSchedule(context.Background(), doctor, testDoctorID, testHospitalID, time.Now(), slots)
	if err != nil {
		t.Fatalf("PublishSchedule() unexpected error: %v", err)
	}

	if upserted.TimeSlots[0].IsBooked || upserted.TimeSlots[0].AppointmentID != "" {
		t.Error("PublishSchedule() must reset booked state supplied by the caller")
	}
}

func TestPublishSchedule_Forbidden(t *testing.T) {
	svc := newTestService(&mockCalendarRepository{}, nil)

	otherDoctor := model.Requester{ID: "507f1f77bcf86cd799439099", Role: model.RoleDoctor}
	_, err := svc.PublishSchedule(context.Background(), otherDoctor, testDoctorID, testHospitalID, time.Now(), testSlots())
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("PublishSchedule() expected Forbidden, got %v", err)
	}
}

func TestPublishSchedule_InvalidSlots(t *testing.T) {
	svc := newTestService(&mockCalendarRepository{}, nil)

	doctor := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}
	overlapping := []model.TimeSlot{
		{StartTime: "09:00", EndTime: "10:00"},
		{StartTime: "09:30", EndTime: "10:30"},
	}

	_, err := svc.PublishSchedule(context.Background(), doctor, testDoctorID, testHospitalID, time.Now(), overlapping)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("PublishSchedule() expected ValidationError, got %v", err)
	}
}

func TestPublishSchedule_NotAffiliated(t *testing.T) {
	dir := &mockDirectory{
		isDoctorAffiliatedFunc: func(ctx context.Context, doctorID, hospitalID string) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(&mockCalendarRepository{}, dir)

	doctor := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}
	_, err := svc.PublishSchedule(context.Background(), doctor, testDoctorID, testHospitalID, time.Now(), testSlots())
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("PublishSchedule() expected ValidationError for unaffiliated doctor, got %v", err)
	}
}

func TestGetPublishedCalendar_NotFound(t *testing.T) {
	svc := newTestService(&mockCalendarRepository{}, nil)

	_, err := svc.GetPublishedCalendar(context.Background(), testDoctorID, testHospitalID, time.Now())
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("GetPublishedCalendar() expected NotFound, got %v", err)
	}
}

func TestListAvailableSlots_FiltersBooked(t *testing.T) {
	repo := &mockCalendarRepository{
		findPublishedFunc: func(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error) {
			return &model.Calendar{
				DoctorID:    doctorID,
				HospitalID:  hospitalID,
				Date:        model.NormalizeDate(date),
				IsPublished: true,
				TimeSlots: []model.TimeSlot{
					{StartTime: "09:00", EndTime: "09:30", IsBooked: true, AppointmentID: "507f1f77bcf86cd799439099"},
					{StartTime: "09:30", EndTime: "10:00"},
					{StartTime: "10:00", EndTime: "10:30"},
				},
			}, nil
		},
	}
	svc := newTestService(repo, nil)

	slots, err := svc.ListAvailableSlots(context.Background(), testDoctorID, testHospitalID, time.Now())
	if err != nil {
		t.Fatalf("ListAvailableSlots() unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("ListAvailableSlots() expected 2 free slots, got %d", len(slots))
	}
	for _, slot := range slots {
		if slot.IsBooked {
			t.Errorf("ListAvailableSlots() returned booked slot %s-%s", slot.StartTime, slot.EndTime)
		}
	}
}

func TestGetOwnCalendars_Authorization(t *testing.T) {
	repo := &mockCalendarRepository{
		findByDoctorAndRangeFunc: func(ctx context.Context, doctorID string, from, to time.Time) ([]*model.Calendar, error) {
			return []*model.Calendar{{DoctorID: doctorID}}, nil
		},
	}
	svc := newTestService(repo, nil)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		requester model.Requester
		wantErr   bool
	}{
		{"owning doctor", model.Requester{ID: testDoctorID, Role: model.RoleDoctor}, false},
		{"admin", model.Requester{ID: "a", Role: model.RoleAdmin}, false},
		{"other doctor", model.Requester{ID: "507f1f77bcf86cd799439099", Role: model.RoleDoctor}, true},
		{"patient", model.Requester{ID: "p", Role: model.RolePatient}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetOwnCalendars(context.Background(), tt.requester, testDoctorID, from, to)
			gotErr := apperrors.IsCode(err, apperrors.CodeForbidden)
			if gotErr != tt.wantErr {
				t.Errorf("GetOwnCalendars() forbidden = %v, want %v (err: %v)", gotErr, tt.wantErr, err)
			}
		})
	}
}

func TestGetOwnCalendars_InvalidRange(t *testing.T) {
	svc := newTestService(&mockCalendarRepository{}, nil)

	doctor := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}
	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetOwnCalendars(context.Background(), doctor, testDoctorID, from, to)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("GetOwnCalendars() expected InvalidInput for inverted range, got %v", err)
	}
}

func TestSetPublished(t *testing.T) {
	calID := "507f1f77bcf86cd799439020"
	repo := &mockCalendarRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Calendar, error) {
			return &model.Calendar{ID: calID, DoctorID: testDoctorID, IsPublished: true}, nil
		},
	}
	svc := newTestService(repo, nil)

	tests := []struct {
		name      string
		requester model.Requester
		wantErr   string
	}{
		{"owning doctor", model.Requester{ID: testDoctorID, Role: model.RoleDoctor}, ""},
		{"admin", model.Requester{ID: "a", Role: model.RoleAdmin}, ""},
		{"other doctor", model.Requester{ID: "507f1f77bcf86cd799439099", Role: model.RoleDoctor}, apperrors.CodeForbidden},
		{"patient", model.Requester{ID: "p", Role: model.RolePatient}, apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := svc.SetPublished(context.Background(), tt.requester, calID, false)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("SetPublished() unexpected error: %v", err)
				}
				if cal.IsPublished {
					t.Error("SetPublished() should report the new publish state")
				}
				return
			}
			if !apperrors.IsCode(err, tt.wantErr) {
				t.Errorf("SetPublished() expected %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetCalendarByID_DraftVisibility(t *testing.T) {
	calID := "507f1f77bcf86cd799439020"
	repo := &mockCalendarRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Calendar, error) {
			return &model.Calendar{ID: calID, DoctorID: testDoctorID, IsPublished: false}, nil
		},
	}
	svc := newTestService(repo, nil)

	tests := []struct {
		name      string
		requester model.Requester
		wantErr   string
	}{
		{"owning doctor", model.Requester{ID: testDoctorID, Role: model.RoleDoctor}, ""},
		{"admin", model.Requester{ID: "a", Role: model.RoleAdmin}, ""},
		{"hospital admin", model.Requester{ID: "h", Role: model.RoleHospitalAdmin}, ""},
		{"other doctor", model.Requester{ID: "507f1f77bcf86cd799439099", Role: model.RoleDoctor}, apperrors.CodeForbidden},
		{"patient", model.Requester{ID: "p", Role: model.RolePatient}, apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := svc.GetCalendarByID(context.Background(), tt.requester, calID)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("GetCalendarByID() unexpected error: %v", err)
				}
				if cal.ID != calID {
					t.Errorf("GetCalendarByID() returned calendar %s, want %s", cal.ID, calID)
				}
				return
			}
			if !apperrors.IsCode(err, tt.wantErr) {
				t.Errorf("GetCalendarByID() expected %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetCalendarByID_PublishedIsPublic(t *testing.T) {
	calID := "507f1f77bcf86cd799439020"
	repo := &mockCalendarRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Calendar, error) {
			return &model.Calendar{ID: calID, DoctorID: testDoctorID, IsPublished: true}, nil
		},
	}
	svc := newTestService(repo, nil)

	patient := model.Requester{ID: "507f1f77bcf86cd799439077", Role: model.RolePatient}
	cal, err := svc.GetCalendarByID(context.Background(), patient, calID)
	if err != nil {
		t.Fatalf("GetCalendarByID() unexpected error: %v", err)
	}
	if !cal.IsPublished {
		t.Error("GetCalendarByID() should return the published calendar")
	}
}

func TestGetCalendarByID_NotFound(t *testing.T) {
	svc := newTestService(&mockCalendarRepository{}, nil)

	doctor := model.Requester{ID: testDoctorID, Role: model.RoleDoctor}
	_, err := svc.GetCalendarByID(context.Background(), doctor, "507f1f77bcf86cd799439021")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("GetCalendarByID() expected %s, got %v", apperrors.CodeNotFound, err)
	}
}
