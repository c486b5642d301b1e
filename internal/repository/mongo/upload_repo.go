package mongo

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoUploadRepository implements repository.UploadRepository
type mongoUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoUploadRepository creates a new Upload repository backed by MongoDB.
func NewMongoUploadRepository(db *mongo.Database) repository.UploadRepository {
	return &mongoUploadRepository{
		collection: db.Collection(uploadCollectionName),
	}
}

// Create inserts new upload metadata into the database.
func (r *mongoUploadRepository) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.WorkoutID == primitive.NilObjectID ||
		upload.EntryID == primitive.NilObjectID ||
		upload.UserID == primitive.NilObjectID ||
		upload.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires workoutId, entryId, userId, and s3ObjectKey")
	}

	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, upload)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetLatestByEntryID retrieves the most recent upload of a workout exercise.
func (r *mongoUploadRepository) GetLatestByEntryID(ctx context.Context, entryID primitive.ObjectID) (*domain.Upload, error) {
	var upload domain.Upload
	findOneOptions := options.FindOne().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	err := r.collection.FindOne(ctx, bson.M{"entryId": entryID}, findOneOptions).Decode(&upload)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &upload, nil
}

// ListByWorkoutID returns every upload recorded for a workout.
func (r *mongoUploadRepository) ListByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Upload, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"workoutId": workoutID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	uploads := []domain.Upload{}
	if err = cursor.All(ctx, &uploads); err != nil {
		return nil, err
	}
	return uploads, cursor.Err()
}

// DeleteByWorkoutID removes the metadata of every upload of a workout.
func (r *mongoUploadRepository) DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureUploadIndexes creates necessary indexes for the uploads collection.
func EnsureUploadIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "entryId", Value: 1}, {Key: "uploadedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "s3ObjectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
