package availability

import (
	"context"
	"sync"
	"testing"
	"time"

	"medibook/internal/availability/repository"
	"medibook/pkg/client"
	"medibook/pkg/config"
	"medibook/pkg/logger"
	"medibook/test/integration/testutil"
)

func newRepo(t *testing.T, helper *testutil.MongoHelper) repository.CalendarRepository {
	t.Helper()

	cfg := &config.Config{
		MongoDatabaseName: helper.DBName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "integration-test",
		}),
		Client: &client.Client{Mongo: helper.Client},
	}
	return repository.NewMongoCalendarRepository(cfg)
}

// TestReserveSlot_SingleWinner drives the conditional update against a real
// MongoDB to verify the store-level guarantee the whole booking protocol
// rests on: one document, one winner.
func TestReserveSlot_SingleWinner(t *testing.T) {
	helper := testutil.NewMongoHelper(t, "", "")
	defer helper.Close(t)
	helper.CleanCollection(t, testutil.CalendarsCollection)

	repo := newRepo(t, helper)
	cal := testutil.NewCalendarBuilder().Build()

	ctx := context.Background()
	if err := repo.Upsert(ctx, cal); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	const attempts = 20
	var wg sync.WaitGroup
	wins := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.ReserveSlot(ctx, cal.DoctorID, cal.HospitalID, cal.Date, "09:00", "09:30")
			if err != nil {
				t.Errorf("ReserveSlot() error: %v", err)
				return
			}
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly 1 winner, got %d", winners)
	}
}

func TestReserveThenReleaseRoundTrip(t *testing.T) {
	helper := testutil.NewMongoHelper(t, "", "")
	defer helper.Close(t)
	helper.CleanCollection(t, testutil.CalendarsCollection)

	repo := newRepo(t, helper)
	cal := testutil.NewCalendarBuilder().Build()

	ctx := context.Background()
	if err := repo.Upsert(ctx, cal); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	won, err := repo.ReserveSlot(ctx, cal.DoctorID, cal.HospitalID, cal.Date, "09:00", "09:30")
	if err != nil || !won {
		t.Fatalf("ReserveSlot() = %v, %v; want win", won, err)
	}

	apptID := "507f1f77bcf86cd799439099"
	if err := repo.StampAppointment(ctx, cal.DoctorID, cal.HospitalID, cal.Date, "09:00", "09:30", apptID); err != nil {
		t.Fatalf("StampAppointment() failed: %v", err)
	}

	stored, err := repo.FindPublished(ctx, cal.DoctorID, cal.HospitalID, cal.Date)
	if err != nil {
		t.Fatalf("FindPublished() failed: %v", err)
	}
	slot := stored.FindSlot("09:00", "09:30")
	if slot == nil || !slot.IsBooked || slot.AppointmentID != apptID {
		t.Fatalf("slot not bound as expected: %+v", slot)
	}

	released, err := repo.ReleaseSlot(ctx, cal.DoctorID, cal.HospitalID, cal.Date, apptID)
	if err != nil || !released {
		t.Fatalf("ReleaseSlot() = %v, %v; want release", released, err)
	}

	stored, err = repo.FindPublished(ctx, cal.DoctorID, cal.HospitalID, cal.Date)
	if err != nil {
		t.Fatalf("FindPublished() failed: %v", err)
	}
	slot = stored.FindSlot("09:00", "09:30")
	if slot.IsBooked || slot.AppointmentID != "" {
		t.Fatalf("slot not released: %+v", slot)
	}

	// The freed slot can be claimed again.
	won, err = repo.ReserveSlot(ctx, cal.DoctorID, cal.HospitalID, cal.Date, "09:00", "09:30")
	if err != nil || !won {
		t.Fatalf("ReserveSlot() after release = %v, %v; want win", won, err)
	}
}

func TestUpsert_ReplacesSlotList(t *testing.T) {
	helper := testutil.NewMongoHelper(t, "", "")
	defer helper.Close(t)
	helper.CleanCollection(t, testutil.CalendarsCollection)

	repo := newRepo(t, helper)
	cal := testutil.NewCalendarBuilder().Build()

	ctx := context.Background()
	if err := repo.Upsert(ctx, cal); err != nil {
		t.Fatalf("first Upsert() failed: %v", err)
	}
	if cal.ID == "" {
		t.Fatal("Upsert() should set the ID on insert")
	}

	replacement := testutil.NewCalendarBuilder().WithSlots(
		cal.TimeSlots[0],
	).Build()
	if err := repo.Upsert(ctx, replacement); err != nil {
		t.Fatalf("second Upsert() failed: %v", err)
	}
	if replacement.ID != cal.ID {
		t.Fatalf("Upsert() on an existing day should return its ID, got %q want %q", replacement.ID, cal.ID)
	}

	if n := helper.CountDocuments(t, testutil.CalendarsCollection); n != 1 {
		t.Fatalf("expected a single calendar document per key, got %d", n)
	}

	stored, err := repo.FindPublished(ctx, cal.DoctorID, cal.HospitalID, cal.Date)
	if err != nil {
		t.Fatalf("FindPublished() failed: %v", err)
	}
	if len(stored.TimeSlots) != 1 {
		t.Fatalf("expected replaced slot list of 1, got %d", len(stored.TimeSlots))
	}
}
