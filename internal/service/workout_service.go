package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/storage"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SessionSpec holds the caller-supplied fields of a new workout session.
type SessionSpec struct {
	Name           string
	Description    string
	TrainerID      *primitive.ObjectID
	ScheduledAt    *time.Time
	CaloriesBurned *int
	Notes          string
}

// WorkoutPage is one page of a user's workouts.
type WorkoutPage struct {
	Items    []domain.Workout `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int64            `json:"total"`
}

// WorkoutService drives workout sessions, their exercises and sets through
// their lifecycles. Each mutating call is a single read-validate-write of the
// whole workout aggregate.
type WorkoutService interface {
	// Sessions
	CreateSession(ctx context.Context, userID primitive.ObjectID, spec SessionSpec) (*domain.Workout, error)
	GetSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	ListSessions(ctx context.Context, userID primitive.ObjectID, page, pageSize int) (*WorkoutPage, error)
	StartSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	CompleteSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	CancelSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	DeleteSession(ctx context.Context, userID, workoutID primitive.ObjectID) error
	RepairSession(ctx context.Context, userID, workoutID primitive.ObjectID) (bool, error)

	// Workout exercises
	AddTracker(ctx context.Context, userID, workoutID, exerciseID primitive.ObjectID, plan domain.ExercisePlan) (*domain.WorkoutExercise, error)
	ListTrackers(ctx context.Context, userID, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error)
	StartTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error)
	CompleteTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error)
	SkipTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error)
	UpdateTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID, patch domain.ExercisePatch) (*domain.WorkoutExercise, error)

	// Sets
	LogSet(ctx context.Context, userID, entryID primitive.ObjectID, data domain.SetData) (*domain.ExerciseSet, error)
	CompleteSet(ctx context.Context, userID, setID primitive.ObjectID) (*domain.ExerciseSet, error)
	ListSets(ctx context.Context, userID, entryID primitive.ObjectID) ([]domain.ExerciseSet, error)

	// Subscribe registers a callback for committed state changes.
	Subscribe(sub Subscriber)
}

// Option configures a workoutService.
type Option func(*workoutService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *workoutService) {
		s.clock = clock
	}
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
	exercises   repository.ExerciseFinder
	uploadRepo  repository.UploadRepository
	fileStorage storage.FileStorage
	tx          repository.TxRunner
	clock       func() time.Time
	bus         eventBus
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	exercises repository.ExerciseFinder,
	uploadRepo repository.UploadRepository,
	fileStorage storage.FileStorage,
	tx repository.TxRunner,
	opts ...Option,
) WorkoutService {
	s := &workoutService{
		workoutRepo: workoutRepo,
		userRepo:    userRepo,
		exercises:   exercises,
		uploadRepo:  uploadRepo,
		fileStorage: fileStorage,
		tx:          tx,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *workoutService) Subscribe(sub Subscriber) {
	s.bus.subscribe(sub)
}

// now is truncated to the storage precision so in-memory and stored values agree.
func (s *workoutService) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

// errUnchanged is returned by an apply func that found nothing to write.
var errUnchanged = errors.New("workout unchanged")

// mutate performs one read-validate-write cycle: load re-reads the aggregate,
// apply checks the state-machine guard and changes it in memory, and the
// versioned Update commits it. An apply returning errUnchanged ends the cycle
// without a write. When the Update loses a race the mutation is not retried;
// see recheck.
func (s *workoutService) mutate(
	ctx context.Context,
	load func(ctx context.Context) (*domain.Workout, error),
	notFound error,
	apply func(w *domain.Workout, now time.Time) ([]Event, error),
) (*domain.Workout, error) {
	workout, err := load(ctx)
	if err != nil {
		return nil, mapRepoError(err, notFound)
	}

	events, err := apply(workout, s.now())
	if errors.Is(err, errUnchanged) {
		return workout, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			logrus.WithFields(logrus.Fields{
				"user_id":    workout.UserID.Hex(),
				"workout_id": workout.ID.Hex(),
			}).Warn("workout update lost a concurrent write race")
			return nil, s.recheck(ctx, load, notFound, apply)
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound
		}
		return nil, err
	}

	s.bus.publish(ctx, events...)
	return workout, nil
}

// recheck re-reads the aggregate after a lost race and runs apply against the
// fresh copy, which is then discarded. A guard that now fails reports the real
// reason (InvalidState, NotFound); otherwise the caller gets ErrConflict.
func (s *workoutService) recheck(
	ctx context.Context,
	load func(ctx context.Context) (*domain.Workout, error),
	notFound error,
	apply func(w *domain.Workout, now time.Time) ([]Event, error),
) error {
	fresh, err := load(ctx)
	if err != nil {
		return mapRepoError(err, notFound)
	}
	if _, err := apply(fresh, s.now()); err != nil && !errors.Is(err, errUnchanged) {
		return err
	}
	return ErrConflict
}

func (s *workoutService) loadWorkout(userID, workoutID primitive.ObjectID) func(ctx context.Context) (*domain.Workout, error) {
	return func(ctx context.Context) (*domain.Workout, error) {
		return s.workoutRepo.GetByID(ctx, workoutID, userID)
	}
}

// === Sessions ===

// CreateSession stores a new Planned workout for an existing user.
func (s *workoutService) CreateSession(ctx context.Context, userID primitive.ObjectID, spec SessionSpec) (*domain.Workout, error) {
	if err := validateSessionSpec(spec); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, mapRepoError(err, ErrOwnerNotFound)
	}
	if spec.TrainerID != nil {
		trainer, err := s.userRepo.GetByID(ctx, *spec.TrainerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationError("trainer %s does not exist", spec.TrainerID.Hex())
			}
			return nil, err
		}
		if !trainer.IsTrainer() {
			return nil, validationError("user %s is not a trainer", spec.TrainerID.Hex())
		}
	}

	workout := domain.NewWorkout(userID, spec.Name, s.now())
	workout.Description = spec.Description
	workout.TrainerID = spec.TrainerID
	workout.ScheduledAt = spec.ScheduledAt
	workout.CaloriesBurned = spec.CaloriesBurned
	workout.Notes = spec.Notes

	if _, err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID.Hex(),
		"workout_id": workout.ID.Hex(),
	}).Info("workout created")
	return workout, nil
}

// GetSession returns a workout owned by the user.
func (s *workoutService) GetSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID, userID)
	if err != nil {
		return nil, mapRepoError(err, ErrWorkoutNotFound)
	}
	return workout, nil
}

// ListSessions returns the user's workouts, newest first. Page is zero-based.
func (s *workoutService) ListSessions(ctx context.Context, userID primitive.ObjectID, page, pageSize int) (*WorkoutPage, error) {
	if page < 0 {
		return nil, validationError("page must be zero or positive")
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, validationError("page size must be between 1 and %d", MaxPageSize)
	}

	workouts, total, err := s.workoutRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &WorkoutPage{Items: workouts, Page: page, PageSize: pageSize, Total: total}, nil
}

// StartSession moves a Planned workout to InProgress.
func (s *workoutService) StartSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.mutate(ctx, s.loadWorkout(userID, workoutID), ErrWorkoutNotFound,
		func(w *domain.Workout, now time.Time) ([]Event, error) {
			if err := w.Start(now); err != nil {
				return nil, err
			}
			return []Event{sessionEvent(EventSessionStarted, w, TriggerExplicit, now)}, nil
		})
}

// CompleteSession completes an InProgress workout together with every
// exercise still InProgress, and derives the duration.
func (s *workoutService) CompleteSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.mutate(ctx, s.loadWorkout(userID, workoutID), ErrWorkoutNotFound,
		func(w *domain.Workout, now time.Time) ([]Event, error) {
			cascaded, err := w.Complete(now)
			if err != nil {
				return nil, err
			}
			events := entryEvents(w, cascaded, TriggerCascade, now)
			return append(events, sessionEvent(EventSessionCompleted, w, "", now)), nil
		})
}

// CancelSession abandons a Planned workout.
func (s *workoutService) CancelSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.mutate(ctx, s.loadWorkout(userID, workoutID), ErrWorkoutNotFound,
		func(w *domain.Workout, now time.Time) ([]Event, error) {
			if err := w.Cancel(now); err != nil {
				return nil, err
			}
			return []Event{sessionEvent(EventSessionCancelled, w, "", now)}, nil
		})
}

// DeleteSession removes a workout in any status. Its exercises and sets go
// with the document; upload metadata is removed in the same transaction and
// the stored files afterwards.
func (s *workoutService) DeleteSession(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	var uploads []domain.Upload
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.workoutRepo.Delete(txCtx, workoutID, userID); err != nil {
			return err
		}
		var err error
		uploads, err = s.uploadRepo.ListByWorkoutID(txCtx, workoutID)
		if err != nil {
			return err
		}
		_, err = s.uploadRepo.DeleteByWorkoutID(txCtx, workoutID)
		return err
	})
	if err != nil {
		return mapRepoError(err, ErrWorkoutNotFound)
	}

	for _, upload := range uploads {
		if err := s.fileStorage.DeleteObject(ctx, upload.S3ObjectKey); err != nil {
			logrus.WithFields(logrus.Fields{
				"workout_id": workoutID.Hex(),
				"object_key": upload.S3ObjectKey,
			}).WithError(err).Error("failed to delete media of deleted workout")
		}
	}

	s.bus.publish(ctx, Event{
		Type:      EventSessionDeleted,
		UserID:    userID,
		WorkoutID: workoutID,
		At:        s.now(),
	})
	return nil
}

func sessionEvent(t EventType, w *domain.Workout, trigger string, now time.Time) Event {
	return Event{Type: t, UserID: w.UserID, WorkoutID: w.ID, Trigger: trigger, At: now}
}

func entryEvents(w *domain.Workout, entryIDs []primitive.ObjectID, trigger string, now time.Time) []Event {
	events := make([]Event, 0, len(entryIDs)+1)
	for _, id := range entryIDs {
		events = append(events, Event{
			Type:      EventExerciseCompleted,
			UserID:    w.UserID,
			WorkoutID: w.ID,
			EntryID:   id,
			Trigger:   trigger,
			At:        now,
		})
	}
	return events
}
