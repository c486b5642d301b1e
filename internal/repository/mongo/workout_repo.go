package mongo

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoWorkoutRepository implements repository.WorkoutRepository.
// A workout, its exercises and their sets live in one document, so every
// write of the aggregate is atomic and deleting the workout deletes its children.
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout at version 1.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires userId and name")
	}
	workout.ID = primitive.NewObjectID()
	workout.Version = 1
	if workout.Exercises == nil {
		workout.Exercises = []domain.WorkoutExercise{}
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a workout owned by userID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id, userID primitive.ObjectID) (*domain.Workout, error) {
	return r.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

// GetByEntryID retrieves the workout that embeds the given exercise entry.
func (r *mongoWorkoutRepository) GetByEntryID(ctx context.Context, entryID, userID primitive.ObjectID) (*domain.Workout, error) {
	return r.findOne(ctx, bson.M{"exercises._id": entryID, "userId": userID})
}

// GetBySetID retrieves the workout that embeds the given set.
func (r *mongoWorkoutRepository) GetBySetID(ctx context.Context, setID, userID primitive.ObjectID) (*domain.Workout, error) {
	return r.findOne(ctx, bson.M{"exercises.sets._id": setID, "userId": userID})
}

func (r *mongoWorkoutRepository) findOne(ctx context.Context, filter bson.M) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListByUser returns one page of the user's workouts, newest first, and the total count.
func (r *mongoWorkoutRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]domain.Workout, int64, error) {
	filter := bson.M{"userId": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page) * int64(pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, 0, err
	}
	if err = cursor.Err(); err != nil {
		return nil, 0, err
	}
	return workouts, total, nil
}

// Update replaces the whole aggregate, guarded by the version read earlier.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}

	expected := workout.Version
	filter := bson.M{
		"_id":     workout.ID,
		"userId":  workout.UserID,
		"version": expected,
	}
	workout.Version = expected + 1

	result, err := r.collection.ReplaceOne(ctx, filter, workout)
	if err != nil {
		workout.Version = expected
		return err
	}
	if result.MatchedCount == 0 {
		workout.Version = expected
		// A missing document means it was deleted meanwhile, not outrun.
		n, err := r.collection.CountDocuments(ctx,
			bson.M{"_id": workout.ID, "userId": workout.UserID},
			options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

// Delete removes the workout together with its embedded exercises and sets.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if id == primitive.NilObjectID || userID == primitive.NilObjectID {
		return errors.New("workout ID and user ID are required for deletion")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Owner listing, newest first
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Tracker lookups for set logging
			Keys:    bson.D{{Key: "exercises._id", Value: 1}},
			Options: options.Index(),
		},
		{
			// Set lookups for set completion
			Keys:    bson.D{{Key: "exercises.sets._id", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
