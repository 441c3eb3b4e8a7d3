package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/meyvali/backoffice/internal/domain/models"
)

const reportsCollection = "daily_reports"

// ErrReportNotFound is returned when no report is archived for a date.
var ErrReportNotFound = errors.New("daily report not found")

// Repository archives daily reports.
type Repository interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
	DailyReport(ctx context.Context, date string) (models.DailyReport, error)
}

// MongoDBRepository implements Repository on a MongoDB collection keyed by date.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects to uri and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}

	_, err = repo.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create report index: %w", err)
	}

	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveDailyReport stores report, replacing any earlier report of the same date.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	_, err := r.collection().ReplaceOne(ctx,
		bson.M{"date": report.Date},
		report,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily report %s: %w", report.Date, err)
	}
	return nil
}

// DailyReport loads the archived report of date.
func (r *MongoDBRepository) DailyReport(ctx context.Context, date string) (models.DailyReport, error) {
	var report models.DailyReport
	err := r.collection().FindOne(ctx, bson.M{"date": date}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DailyReport{}, fmt.Errorf("%s: %w", date, ErrReportNotFound)
	}
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("failed to load daily report %s: %w", date, err)
	}
	return report, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
