package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

const (
	issuancesCollection = "issuances"
	reportsCollection   = "stock_reports"
)

// Repository defines the interface for issuance and report storage.
type Repository interface {
	RecordIssuance(ctx context.Context, record models.IssuanceRecord) error
	RecentIssuances(ctx context.Context, limit int64) ([]models.IssuanceRecord, error)
	SaveStockReport(ctx context.Context, report models.StockReport) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := newRepository(client, dbName)
	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

func newRepository(client *mongo.Client, dbName string) *MongoDBRepository {
	return &MongoDBRepository{client: client, dbName: dbName}
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection(issuancesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recorded_at", Value: -1}}},
		{Keys: bson.D{{Key: "attempt_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create issuance indexes: %w", err)
	}
	return nil
}

// RecordIssuance journals an issuance attempt.
func (r *MongoDBRepository) RecordIssuance(ctx context.Context, record models.IssuanceRecord) error {
	if _, err := r.collection(issuancesCollection).InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert issuance: %w", err)
	}
	return nil
}

// RecentIssuances returns up to limit journaled issuances, newest first.
func (r *MongoDBRepository) RecentIssuances(ctx context.Context, limit int64) ([]models.IssuanceRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection(issuancesCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query issuances: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.IssuanceRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode issuances: %w", err)
	}
	return records, nil
}

// SaveStockReport saves a stock-level report to the database.
func (r *MongoDBRepository) SaveStockReport(ctx context.Context, report models.StockReport) error {
	if _, err := r.collection(reportsCollection).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert stock report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
