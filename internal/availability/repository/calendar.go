package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "medibook/internal/availability/errors"
	"medibook/pkg/config"
	"medibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Calendars"
)

type mongoCalendarRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type CalendarRepository interface {
	Upsert(ctx context.Context, cal *model.Calendar) error
	FindByID(ctx context.Context, id string) (*model.Calendar, error)
	FindPublished(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error)
	FindByKey(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error)
	FindByDoctorAndRange(ctx context.Context, doctorID string, from, to time.Time) ([]*model.Calendar, error)
	SetPublished(ctx context.Context, id string, published bool) error
	ReserveSlot(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime string) (bool, error)
	StampAppointment(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime, appointmentID string) error
	ReleaseSlot(ctx context.Context, doctorID, hospitalID string, date time.Time, appointmentID string) (bool, error)
	ReleaseSlotByTime(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime string) (bool, error)
}

func NewMongoCalendarRepository(cfg *config.Config) CalendarRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCalendarRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoCalendarRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining > timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func keyFilter(doctorID, hospitalID string, date time.Time) bson.M {
	return bson.M{
		"doctor_id":   doctorID,
		"hospital_id": hospitalID,
		"date":        model.NormalizeDate(date),
	}
}

// Upsert replaces the slot list for the (doctor, hospital, date) key, creating
// the calendar document if it does not exist yet. The unique index on the key
// makes concurrent upserts converge on a single document.
func (r *mongoCalendarRepository) Upsert(ctx context.Context, cal *model.Calendar) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	cal.Date = model.NormalizeDate(cal.Date)

	filter := keyFilter(cal.DoctorID, cal.HospitalID, cal.Date)
	update := bson.M{
		"$set": bson.M{
			"time_slots":   cal.TimeSlots,
			"is_published": cal.IsPublished,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"doctor_id":   cal.DoctorID,
			"hospital_id": cal.HospitalID,
			"date":        cal.Date,
			"created_at":  now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var updated model.Calendar
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return fmt.Errorf("failed to upsert calendar: %w", err)
	}

	cal.ID = updated.ID
	cal.CreatedAt = updated.CreatedAt
	cal.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *mongoCalendarRepository) FindByID(ctx context.Context, id string) (*model.Calendar, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	var cal model.Calendar
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&cal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	return &cal, nil
}

func (r *mongoCalendarRepository) FindPublished(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := keyFilter(doctorID, hospitalID, date)
	filter["is_published"] = true

	var cal model.Calendar
	err := r.collection.FindOne(ctx, filter).Decode(&cal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: doctor=%s hospital=%s date=%s",
				availabilityerrors.ErrNotFound, doctorID, hospitalID, model.NormalizeDate(date).Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find published calendar: %w", err)
	}

	return &cal, nil
}

func (r *mongoCalendarRepository) FindByKey(ctx context.Context, doctorID, hospitalID string, date time.Time) (*model.Calendar, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var cal model.Calendar
	err := r.collection.FindOne(ctx, keyFilter(doctorID, hospitalID, date)).Decode(&cal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: doctor=%s hospital=%s date=%s",
				availabilityerrors.ErrNotFound, doctorID, hospitalID, model.NormalizeDate(date).Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	return &cal, nil
}

func (r *mongoCalendarRepository) FindByDoctorAndRange(ctx context.Context, doctorID string, from, to time.Time) ([]*model.Calendar, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"doctor_id": doctorID,
		"date": bson.M{
			"$gte": model.NormalizeDate(from),
			"$lte": model.NormalizeDate(to),
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	defer cursor.Close(ctx)

	var calendars []*model.Calendar
	if err = cursor.All(ctx, &calendars); err != nil {
		return nil, fmt.Errorf("failed to decode calendars: %w", err)
	}
	return calendars, nil
}

func (r *mongoCalendarRepository) SetPublished(ctx context.Context, id string, published bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"is_published": published,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to set publish flag: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
	}
	return nil
}

// ReserveSlot is the atomic claim: a single conditional update that flips the
// slot matching (startTime, endTime, is_booked == false) to booked, scoped to
// the published calendar for the key. Mongo serializes writes to a single
// document, so of N concurrent attempts exactly one observes a modification.
// Returns false when the precondition no longer held (the slot was taken).
func (r *mongoCalendarRepository) ReserveSlot(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := keyFilter(doctorID, hospitalID, date)
	filter["is_published"] = true
	filter["time_slots"] = bson.M{
		"$elemMatch": bson.M{
			"start_time": startTime,
			"end_time":   endTime,
			"is_booked":  false,
		},
	}

	update := bson.M{
		"$set": bson.M{
			"time_slots.$.is_booked": true,
			"updated_at":             time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to reserve slot: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

// StampAppointment binds the freshly created appointment to the slot this
// request just won. The is_booked == true condition cannot race: the flag is
// exclusively owned by the winning request until released.
func (r *mongoCalendarRepository) StampAppointment(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime, appointmentID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := keyFilter(doctorID, hospitalID, date)
	filter["time_slots"] = bson.M{
		"$elemMatch": bson.M{
			"start_time": startTime,
			"end_time":   endTime,
			"is_booked":  true,
		},
	}

	update := bson.M{
		"$set": bson.M{
			"time_slots.$.appointment_id": appointmentID,
			"updated_at":                  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to stamp appointment on slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: slot %s-%s", availabilityerrors.ErrNotFound, startTime, endTime)
	}
	return nil
}

// ReleaseSlot resets the slot bound to the appointment back to free. Returns
// false without error when no slot references the appointment, so callers can
// surface the inconsistency instead of failing the cancellation.
func (r *mongoCalendarRepository) ReleaseSlot(ctx context.Context, doctorID, hospitalID string, date time.Time, appointmentID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := keyFilter(doctorID, hospitalID, date)
	filter["time_slots"] = bson.M{
		"$elemMatch": bson.M{
			"appointment_id": appointmentID,
		},
	}

	update := bson.M{
		"$set": bson.M{
			"time_slots.$.is_booked": false,
			"updated_at":             time.Now().UTC().Truncate(time.Millisecond),
		},
		"$unset": bson.M{
			"time_slots.$.appointment_id": "",
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to release slot: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

// ReleaseSlotByTime frees a booked slot identified by its time pair. Used by
// the reservation rollback, which runs before any appointment ID is stamped.
func (r *mongoCalendarRepository) ReleaseSlotByTime(ctx context.Context, doctorID, hospitalID string, date time.Time, startTime, endTime string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := keyFilter(doctorID, hospitalID, date)
	filter["time_slots"] = bson.M{
		"$elemMatch": bson.M{
			"start_time": startTime,
			"end_time":   endTime,
			"is_booked":  true,
		},
	}

	update := bson.M{
		"$set": bson.M{
			"time_slots.$.is_booked": false,
			"updated_at":             time.Now().UTC().Truncate(time.Millisecond),
		},
		"$unset": bson.M{
			"time_slots.$.appointment_id": "",
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to release slot: %w", err)
	}

	return result.ModifiedCount > 0, nil
}
