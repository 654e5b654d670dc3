package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/ema-randomizer/internal/models"
	"github.com/ArowuTest/ema-randomizer/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DrawAuditRepository implements the repositories.DrawAuditRepository interface
type DrawAuditRepository struct {
	draws *mongo.Collection
	runs  *mongo.Collection
}

// NewDrawAuditRepository creates a new DrawAuditRepository
func NewDrawAuditRepository(db *mongo.Database) repositories.DrawAuditRepository {
	return &DrawAuditRepository{
		draws: db.Collection("ema_draws"),
		runs:  db.Collection("assignment_runs"),
	}
}

// RecordDraw inserts one issued value
func (r *DrawAuditRepository) RecordDraw(ctx context.Context, record *models.DrawRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	res, err := r.draws.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert draw record: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = id
	}
	return nil
}

// SaveRun upserts the run report keyed by run id
func (r *DrawAuditRepository) SaveRun(ctx context.Context, report *models.RunReport) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.runs.ReplaceOne(ctx, bson.M{"runId": report.RunID}, report, opts)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", report.RunID, err)
	}
	return nil
}

// FindRecentRuns finds the latest runs, newest first
func (r *DrawAuditRepository) FindRecentRuns(ctx context.Context, limit int) ([]*models.RunReport, error) {
	opts := options.Find().SetSort(bson.M{"startedAt": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.runs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []*models.RunReport
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []*models.RunReport{}
	}
	return runs, nil
}

// FindDrawsByParticipant finds a participant's draws in the order they were issued
func (r *DrawAuditRepository) FindDrawsByParticipant(ctx context.Context, participantID string) ([]*models.DrawRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "category", Value: 1}})
	cursor, err := r.draws.Find(ctx, bson.M{"participantId": participantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.DrawRecord
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	return draws, nil
}
