package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memWorkoutRepo keeps workouts as BSON documents, so callers never share
// memory with the store, the way they would not with Mongo.
type memWorkoutRepo struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID][]byte

	// beforeUpdate runs under the lock just before the version check.
	beforeUpdate func(stored *domain.Workout)
	// deleteOnUpdate removes the workout just before the version check.
	deleteOnUpdate bool
	updates        int
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{docs: make(map[primitive.ObjectID][]byte)}
}

func (r *memWorkoutRepo) put(w *domain.Workout) {
	raw, err := bson.Marshal(w)
	if err != nil {
		panic(err)
	}
	r.docs[w.ID] = raw
}

func (r *memWorkoutRepo) load(id primitive.ObjectID) *domain.Workout {
	raw, ok := r.docs[id]
	if !ok {
		return nil
	}
	var w domain.Workout
	if err := bson.Unmarshal(raw, &w); err != nil {
		panic(err)
	}
	return &w
}

// stored returns a copy of the workout regardless of owner.
func (r *memWorkoutRepo) stored(id primitive.ObjectID) *domain.Workout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(id)
}

// seed stores w as is, bypassing every service rule.
func (r *memWorkoutRepo) seed(w *domain.Workout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	if w.Version == 0 {
		w.Version = 1
	}
	r.put(w)
}

func (r *memWorkoutRepo) Create(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = primitive.NewObjectID()
	w.Version = 1
	r.put(w)
	return w.ID, nil
}

func (r *memWorkoutRepo) find(userID primitive.ObjectID, match func(w *domain.Workout) bool) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.docs {
		w := r.load(id)
		if w.UserID == userID && match(w) {
			return w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memWorkoutRepo) GetByID(_ context.Context, id, userID primitive.ObjectID) (*domain.Workout, error) {
	return r.find(userID, func(w *domain.Workout) bool { return w.ID == id })
}

func (r *memWorkoutRepo) GetByEntryID(_ context.Context, entryID, userID primitive.ObjectID) (*domain.Workout, error) {
	return r.find(userID, func(w *domain.Workout) bool { return w.Exercise(entryID) != nil })
}

func (r *memWorkoutRepo) GetBySetID(_ context.Context, setID, userID primitive.ObjectID) (*domain.Workout, error) {
	return r.find(userID, func(w *domain.Workout) bool {
		_, set := w.ExerciseForSet(setID)
		return set != nil
	})
}

func (r *memWorkoutRepo) ListByUser(_ context.Context, userID primitive.ObjectID, page, pageSize int) ([]domain.Workout, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Workout
	for id := range r.docs {
		if w := r.load(id); w.UserID == userID {
			all = append(all, *w)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.Hex() > all[j].ID.Hex()
	})

	total := int64(len(all))
	from := page * pageSize
	if from >= len(all) {
		return []domain.Workout{}, total, nil
	}
	to := min(from+pageSize, len(all))
	return all[from:to], total, nil
}

func (r *memWorkoutRepo) Update(_ context.Context, w *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteOnUpdate {
		delete(r.docs, w.ID)
	}
	current := r.load(w.ID)
	if current == nil || current.UserID != w.UserID {
		return repository.ErrNotFound
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(current)
		r.put(current)
	}
	if current.Version != w.Version {
		return repository.ErrConflict
	}
	w.Version++
	r.put(w)
	r.updates++
	return nil
}

func (r *memWorkoutRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.load(id)
	if w == nil || w.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

// --- testify mocks ---

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExerciseRepo struct {
	mock.Mock
}

func (m *mockExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	args := m.Called(ctx, id)
	if e := args.Get(0); e != nil {
		return e.(*domain.Exercise), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	args := m.Called(ctx, exercise)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockExerciseRepo) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	args := m.Called(ctx, filter)
	if l := args.Get(0); l != nil {
		return l.([]domain.Exercise), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	return m.Called(ctx, exercise).Error(0)
}

func (m *mockExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate(id primitive.ObjectID) {
	m.Called(id)
}

type mockUploadRepo struct {
	mock.Mock
}

func (m *mockUploadRepo) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	args := m.Called(ctx, upload)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockUploadRepo) GetLatestByEntryID(ctx context.Context, entryID primitive.ObjectID) (*domain.Upload, error) {
	args := m.Called(ctx, entryID)
	if u := args.Get(0); u != nil {
		return u.(*domain.Upload), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploadRepo) ListByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Upload, error) {
	args := m.Called(ctx, workoutID)
	if l := args.Get(0); l != nil {
		return l.([]domain.Upload), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploadRepo) DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, workoutID)
	return args.Get(0).(int64), args.Error(1)
}

type mockFileStorage struct {
	mock.Mock
}

func (m *mockFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *mockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expires)
	return args.String(0), args.Error(1)
}

func (m *mockFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return m.Called(ctx, objectKey).Error(0)
}

// inlineTx runs fn directly; the in-memory stores have no transactions.
type inlineTx struct {
	calls int
}

func (tx *inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

// stepClock is a settable clock.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
