package metrics

import (
	"alcyxob/fitness-tracker/internal/service"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveWorkoutEvent(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	var sub service.Subscriber = m.ObserveWorkoutEvent

	ctx := context.Background()
	sub(ctx, service.Event{Type: service.EventSessionStarted, Trigger: service.TriggerImplicit})
	sub(ctx, service.Event{Type: service.EventExerciseCompleted, Trigger: service.TriggerAuto})
	sub(ctx, service.Event{Type: service.EventExerciseCompleted, Trigger: service.TriggerAuto})
	sub(ctx, service.Event{Type: service.EventSessionCompleted})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWorkoutEvents.WithLabelValues("session.started", "implicit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterWorkoutEvents.WithLabelValues("exercise.completed", "auto")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWorkoutEvents.WithLabelValues("session.completed", "none")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fitness_tracker_test_workout_events")
}
