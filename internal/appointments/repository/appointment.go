package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmenterrors "medibook/internal/appointments/errors"
	"medibook/pkg/config"
	"medibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Appointments"
)

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindByPatient(ctx context.Context, patientID string, date *time.Time, limit int, offset int64) ([]*model.Appointment, error)
	FindByDoctor(ctx context.Context, doctorID string, date *time.Time, limit int, offset int64) ([]*model.Appointment, error)
	FindAll(ctx context.Context, date *time.Time, limit int, offset int64) ([]*model.Appointment, error)
	CountByPatient(ctx context.Context, patientID string, date *time.Time) (int64, error)
	CountByDoctor(ctx context.Context, doctorID string, date *time.Time) (int64, error)
	Count(ctx context.Context, date *time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	UpdateNotes(ctx context.Context, id string, notes string) error
	Delete(ctx context.Context, id string) error
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appt.Date = model.NormalizeDate(appt.Date)
	appt.CreatedAt = now
	appt.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmenterrors.ErrInvalidID, id)
	}

	var appt model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appt, nil
}

func dateFilter(base bson.M, date *time.Time) bson.M {
	if date != nil {
		base["date"] = model.NormalizeDate(*date)
	}
	return base
}

func (r *mongoAppointmentRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

func (r *mongoAppointmentRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) FindByPatient(ctx context.Context, patientID string, date *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
	return r.find(ctx, dateFilter(bson.M{"patient_id": patientID}, date), limit, offset)
}

func (r *mongoAppointmentRepository) FindByDoctor(ctx context.Context, doctorID string, date *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
	return r.find(ctx, dateFilter(bson.M{"doctor_id": doctorID}, date), limit, offset)
}

func (r *mongoAppointmentRepository) FindAll(ctx context.Context, date *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
	return r.find(ctx, dateFilter(bson.M{}, date), limit, offset)
}

func (r *mongoAppointmentRepository) CountByPatient(ctx context.Context, patientID string, date *time.Time) (int64, error) {
	return r.count(ctx, dateFilter(bson.M{"patient_id": patientID}, date))
}

func (r *mongoAppointmentRepository) CountByDoctor(ctx context.Context, doctorID string, date *time.Time) (int64, error) {
	return r.count(ctx, dateFilter(bson.M{"doctor_id": doctorID}, date))
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, date *time.Time) (int64, error) {
	return r.count(ctx, dateFilter(bson.M{}, date))
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.updateFields(ctx, id, bson.M{"status": status})
}

func (r *mongoAppointmentRepository) UpdateNotes(ctx context.Context, id string, notes string) error {
	return r.updateFields(ctx, id, bson.M{"notes": notes})
}

func (r *mongoAppointmentRepository) updateFields(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrInvalidID, id)
	}

	fields["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoAppointmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, id)
	}
	return nil
}
