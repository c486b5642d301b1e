package api

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/metrics"
	"alcyxob/fitness-tracker/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

const testSecret = "router-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type mockWorkoutService struct {
	mock.Mock
}

func (m *mockWorkoutService) workout(args mock.Arguments) (*domain.Workout, error) {
	if w := args.Get(0); w != nil {
		return w.(*domain.Workout), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkoutService) entry(args mock.Arguments) (*domain.WorkoutExercise, error) {
	if e := args.Get(0); e != nil {
		return e.(*domain.WorkoutExercise), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkoutService) set(args mock.Arguments) (*domain.ExerciseSet, error) {
	if s := args.Get(0); s != nil {
		return s.(*domain.ExerciseSet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkoutService) CreateSession(ctx context.Context, userID primitive.ObjectID, spec service.SessionSpec) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, userID, spec))
}

func (m *mockWorkoutService) GetSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, userID, workoutID))
}

func (m *mockWorkoutService) ListSessions(ctx context.Context, userID primitive.ObjectID, page, pageSize int) (*service.WorkoutPage, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if p := args.Get(0); p != nil {
		return p.(*service.WorkoutPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkoutService) StartSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, userID, workoutID))
}

func (m *mockWorkoutService) CompleteSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, userID, workoutID))
}

func (m *mockWorkoutService) CancelSession(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, userID, workoutID))
}

func (m *mockWorkoutService) DeleteSession(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	return m.Called(ctx, userID, workoutID).Error(0)
}

func (m *mockWorkoutService) RepairSession(ctx context.Context, userID, workoutID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, userID, workoutID)
	return args.Bool(0), args.Error(1)
}

func (m *mockWorkoutService) AddTracker(ctx context.Context, userID, workoutID, exerciseID primitive.ObjectID, plan domain.ExercisePlan) (*domain.WorkoutExercise, error) {
	return m.entry(m.Called(ctx, userID, workoutID, exerciseID, plan))
}

func (m *mockWorkoutService) ListTrackers(ctx context.Context, userID, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	args := m.Called(ctx, userID, workoutID)
	if l := args.Get(0); l != nil {
		return l.([]domain.WorkoutExercise), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkoutService) StartTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error) {
	return m.entry(m.Called(ctx, userID, workoutID, entryID))
}

func (m *mockWorkoutService) CompleteTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error) {
	return m.entry(m.Called(ctx, userID, workoutID, entryID))
}

func (m *mockWorkoutService) SkipTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (*domain.WorkoutExercise, error) {
	return m.entry(m.Called(ctx, userID, workoutID, entryID))
}

func (m *mockWorkoutService) UpdateTracker(ctx context.Context, userID, workoutID, entryID primitive.ObjectID, patch domain.ExercisePatch) (*domain.WorkoutExercise, error) {
	return m.entry(m.Called(ctx, userID, workoutID, entryID, patch))
}

func (m *mockWorkoutService) LogSet(ctx context.Context, userID, entryID primitive.ObjectID, data domain.SetData) (*domain.ExerciseSet, error) {
	return m.set(m.Called(ctx, userID, entryID, data))
}

func (m *mockWorkoutService) CompleteSet(ctx context.Context, userID, setID primitive.ObjectID) (*domain.ExerciseSet, error) {
	return m.set(m.Called(ctx, userID, setID))
}

func (m *mockWorkoutService) ListSets(ctx context.Context, userID, entryID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	args := m.Called(ctx, userID, entryID)
	if l := args.Get(0); l != nil {
		return l.([]domain.ExerciseSet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkoutService) Subscribe(sub service.Subscriber) {
	m.Called(sub)
}

type testServer struct {
	router   *gin.Engine
	workouts *mockWorkoutService
	metrics  *metrics.Manager
	userID   primitive.ObjectID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m, reg := metrics.NewTestManagerAndRegistry()
	s := &testServer{
		router:   gin.New(),
		workouts: new(mockWorkoutService),
		metrics:  m,
		userID:   primitive.NewObjectID(),
	}
	SetupRoutes(s.router, testSecret, Services{Workout: s.workouts}, m, reg)
	return s
}

func signToken(t *testing.T, secret string, userID primitive.ObjectID, role domain.Role, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &service.TokenClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path string, body any, role domain.Role) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, s.userID, role, time.Now().Add(time.Hour)))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", s.userID, domain.RoleUser, time.Now().Add(time.Hour))},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, s.userID, domain.RoleUser, time.Now().Add(-time.Minute))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, CodeUnauthorized, decodeError(t, rec).Code)
		})
	}

	rec := s.do(t, http.MethodGet, "/api/v1/me", nil, domain.RoleTrainer)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, s.userID.Hex(), me["userId"])
	assert.Equal(t, "trainer", me["role"])
}

func TestRoleMiddleware_CatalogEditsNeedTrainer(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/exercises", map[string]string{"name": "Plank"}, domain.RoleUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, CodeForbidden, decodeError(t, rec).Code)
}

func TestStartWorkout_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "not found", err: service.ErrWorkoutNotFound, wantCode: http.StatusNotFound, wantBody: CodeNotFound},
		{name: "invalid state", err: fmt.Errorf("%w: workout is in_progress", service.ErrInvalidState), wantCode: http.StatusConflict, wantBody: CodeInvalidState},
		{name: "conflict", err: service.ErrConflict, wantCode: http.StatusConflict, wantBody: CodeConflict},
		{name: "unexpected", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError, wantBody: CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			workoutID := primitive.NewObjectID()
			s.workouts.On("StartSession", mock.Anything, s.userID, workoutID).Return(nil, tt.err).Once()

			rec := s.do(t, http.MethodPost, "/api/v1/workouts/"+workoutID.Hex()+"/start", nil, domain.RoleUser)
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantBody, body.Code)
			assert.NotContains(t, body.Error, "connection reset")
			s.workouts.AssertExpectations(t)
		})
	}
}

func TestWorkoutRoutes_BadObjectID(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/api/v1/workouts/nope",
		"/api/v1/workout-exercises/nope/sets",
	} {
		rec := s.do(t, http.MethodGet, path, nil, domain.RoleUser)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, CodeValidation, decodeError(t, rec).Code, path)
	}
	s.workouts.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateWorkout(t *testing.T) {
	s := newTestServer(t)
	now := time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)
	created := domain.NewWorkout(s.userID, "Pull", now)
	created.ID = primitive.NewObjectID()

	s.workouts.On("CreateSession", mock.Anything, s.userID, mock.MatchedBy(func(spec service.SessionSpec) bool {
		return spec.Name == "Pull" && spec.TrainerID == nil
	})).Return(created, nil).Once()

	rec := s.do(t, http.MethodPost, "/api/v1/workouts", map[string]any{"name": "Pull"}, domain.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp WorkoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.ID.Hex(), resp.ID)
	assert.Equal(t, domain.WorkoutPlanned, resp.Status)

	rec = s.do(t, http.MethodPost, "/api/v1/workouts", map[string]any{"description": "no name"}, domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.workouts.AssertExpectations(t)
}

func TestListWorkouts_Query(t *testing.T) {
	s := newTestServer(t)
	s.workouts.On("ListSessions", mock.Anything, s.userID, 2, 5).
		Return(&service.WorkoutPage{Items: []domain.Workout{}, Page: 2, PageSize: 5, Total: 11}, nil).Once()

	rec := s.do(t, http.MethodGet, "/api/v1/workouts?page=2&size=5", nil, domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp WorkoutPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 11, resp.Total)
	assert.Equal(t, 5, resp.PageSize)

	rec = s.do(t, http.MethodGet, "/api/v1/workouts?page=x", nil, domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.workouts.AssertExpectations(t)
}

func TestDeleteAndRepairWorkout(t *testing.T) {
	s := newTestServer(t)
	workoutID := primitive.NewObjectID()
	s.workouts.On("DeleteSession", mock.Anything, s.userID, workoutID).Return(nil).Once()
	s.workouts.On("RepairSession", mock.Anything, s.userID, workoutID).Return(true, nil).Once()

	rec := s.do(t, http.MethodDelete, "/api/v1/workouts/"+workoutID.Hex(), nil, domain.RoleUser)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/workouts/"+workoutID.Hex()+"/repair", nil, domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"repaired":true}`, rec.Body.String())
	s.workouts.AssertExpectations(t)
}

func TestAddWorkoutExercise(t *testing.T) {
	s := newTestServer(t)
	workoutID := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	entry := domain.NewWorkoutExercise(exerciseID, domain.ExercisePlan{OrderIndex: 0, PlannedSets: intPtr(3)}, time.Now().UTC())

	s.workouts.On("AddTracker", mock.Anything, s.userID, workoutID, exerciseID, mock.MatchedBy(func(p domain.ExercisePlan) bool {
		return p.OrderIndex == 0 && p.PlannedSets != nil && *p.PlannedSets == 3
	})).Return(&entry, nil).Once()

	path := "/api/v1/workouts/" + workoutID.Hex() + "/exercises"
	rec := s.do(t, http.MethodPost, path, map[string]any{
		"exerciseId": exerciseID.Hex(), "orderIndex": 0, "plannedSets": 3,
	}, domain.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)

	// orderIndex has no default.
	rec = s.do(t, http.MethodPost, path, map[string]any{"exerciseId": exerciseID.Hex(), "plannedSets": 3}, domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.workouts.AssertExpectations(t)
}

func TestSets(t *testing.T) {
	s := newTestServer(t)
	entryID := primitive.NewObjectID()
	set := domain.NewExerciseSet(domain.SetData{SetNumber: 1}, time.Now().UTC())

	s.workouts.On("LogSet", mock.Anything, s.userID, entryID, mock.MatchedBy(func(d domain.SetData) bool {
		return d.SetNumber == 1 && d.RPEScore != nil && *d.RPEScore == 7
	})).Return(&set, nil).Once()
	s.workouts.On("CompleteSet", mock.Anything, s.userID, set.ID).
		Return(nil, fmt.Errorf("%w: set is completed", service.ErrInvalidState)).Once()

	rec := s.do(t, http.MethodPost, "/api/v1/workout-exercises/"+entryID.Hex()+"/sets",
		map[string]any{"setNumber": 1, "rpeScore": 7}, domain.RoleUser)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/workout-exercises/"+entryID.Hex()+"/sets",
		map[string]any{"setNumber": 1, "rpeScore": 11}, domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/sets/"+set.ID.Hex()+"/complete", nil, domain.RoleUser)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeInvalidState, decodeError(t, rec).Code)

	s.workouts.AssertExpectations(t)
}

func TestMetricsMiddleware(t *testing.T) {
	s := newTestServer(t)
	workoutID := primitive.NewObjectID()
	s.workouts.On("GetSession", mock.Anything, s.userID, workoutID).Return(nil, service.ErrWorkoutNotFound)

	s.do(t, http.MethodGet, "/api/v1/workouts/"+workoutID.Hex(), nil, domain.RoleUser)
	s.do(t, http.MethodGet, "/ping", nil, "")

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterRequests.WithLabelValues("GET", "/api/v1/workouts/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterRequests.WithLabelValues("GET", "/ping", "200")))

	rec := s.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fitness_tracker_test_")
}

func TestRequestLogger_RequestID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/ping", nil, "")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func intPtr(v int) *int { return &v }
