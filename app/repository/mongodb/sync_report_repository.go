package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "student-progress-dashboard/app/models/mongodb"
)

const syncReportCollection = "sync_reports"

type SyncReportRepository interface {
	InsertReport(ctx context.Context, report *models.SyncReport) (primitive.ObjectID, error)
	GetRecentReports(ctx context.Context, limit int64) ([]models.SyncReport, error)
	GetReportByID(ctx context.Context, id primitive.ObjectID) (*models.SyncReport, error)
}

type syncReportRepository struct {
	collection *mongo.Collection
}

func NewSyncReportRepository(db *mongo.Database) SyncReportRepository {
	return &syncReportRepository{collection: db.Collection(syncReportCollection)}
}

func (r *syncReportRepository) InsertReport(ctx context.Context, report *models.SyncReport) (primitive.ObjectID, error) {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	if report.Results == nil {
		report.Results = []models.SyncResult{}
	}
	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		return primitive.NilObjectID, err
	}
	return report.ID, nil
}

// GetRecentReports returns the newest runs first.
func (r *syncReportRepository) GetRecentReports(ctx context.Context, limit int64) ([]models.SyncReport, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []models.SyncReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *syncReportRepository) GetReportByID(ctx context.Context, id primitive.ObjectID) (*models.SyncReport, error) {
	var report models.SyncReport
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}
