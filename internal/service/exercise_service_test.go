package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateExercise(t *testing.T) {
	ctx := context.Background()
	repo := new(mockExerciseRepo)
	cache := new(mockInvalidator)
	svc := NewExerciseService(repo, repo, cache)
	actor := primitive.NewObjectID()
	newID := primitive.NewObjectID()

	repo.On("Create", ctx, mock.MatchedBy(func(e *domain.Exercise) bool {
		return e.Name == "Deadlift" && e.Active && e.CreatedBy == actor
	})).Return(newID, nil).Once()

	ex, err := svc.CreateExercise(ctx, actor, ExerciseInput{Name: " Deadlift ", Category: domain.CategoryStrength})
	require.NoError(t, err)
	assert.Equal(t, newID, ex.ID)

	repo.On("Create", ctx, mock.Anything).Return(primitive.NilObjectID, repository.ErrDuplicate).Once()
	_, err = svc.CreateExercise(ctx, actor, ExerciseInput{Name: "Deadlift", Category: domain.CategoryStrength})
	assert.ErrorIs(t, err, ErrExerciseNameTaken)

	_, err = svc.CreateExercise(ctx, actor, ExerciseInput{Name: "Deadlift", Category: "yoga"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateExercise(ctx, actor, ExerciseInput{Category: domain.CategoryCardio})
	assert.ErrorIs(t, err, ErrValidation)

	repo.AssertExpectations(t)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestUpdateExercise_Permissions(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()
	in := ExerciseInput{Name: "Row", Category: domain.CategoryCardio}

	tests := []struct {
		name    string
		actor   primitive.ObjectID
		role    domain.Role
		wantErr error
	}{
		{name: "creator", actor: creator, role: domain.RoleTrainer},
		{name: "admin", actor: primitive.NewObjectID(), role: domain.RoleAdmin},
		{name: "other trainer", actor: primitive.NewObjectID(), role: domain.RoleTrainer, wantErr: ErrExerciseAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockExerciseRepo)
			cache := new(mockInvalidator)
			svc := NewExerciseService(repo, repo, cache)
			repo.On("GetByID", ctx, exerciseID).Return(&domain.Exercise{ID: exerciseID, CreatedBy: creator, Name: "Old", Active: true}, nil)
			repo.On("Update", ctx, mock.Anything).Return(nil).Maybe()
			cache.On("Invalidate", exerciseID).Return().Maybe()

			ex, err := svc.UpdateExercise(ctx, tt.actor, tt.role, exerciseID, in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				cache.AssertNotCalled(t, "Invalidate", mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Row", ex.Name)
			assert.True(t, ex.Active, "active stays unless set")
			cache.AssertCalled(t, "Invalidate", exerciseID)
		})
	}
}

func TestDeleteExercise(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()

	repo := new(mockExerciseRepo)
	cache := new(mockInvalidator)
	svc := NewExerciseService(repo, repo, cache)
	repo.On("GetByID", ctx, exerciseID).Return(&domain.Exercise{ID: exerciseID, CreatedBy: creator}, nil)
	repo.On("Delete", ctx, exerciseID).Return(nil).Once()
	cache.On("Invalidate", exerciseID).Return().Once()

	err := svc.DeleteExercise(ctx, primitive.NewObjectID(), domain.RoleUser, exerciseID)
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)

	require.NoError(t, svc.DeleteExercise(ctx, creator, domain.RoleTrainer, exerciseID))
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)

	missing := primitive.NewObjectID()
	repo.On("GetByID", ctx, missing).Return(nil, repository.ErrNotFound)
	err = svc.DeleteExercise(ctx, creator, domain.RoleAdmin, missing)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestListExercises_RejectsUnknownCategory(t *testing.T) {
	repo := new(mockExerciseRepo)
	svc := NewExerciseService(repo, repo, new(mockInvalidator))

	_, err := svc.ListExercises(context.Background(), repository.ExerciseFilter{Category: "juggling"})
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
