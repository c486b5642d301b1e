package metrics

import (
	"alcyxob/fitness-tracker/internal/service"
	"context"
)

// ObserveWorkoutEvent counts a committed workout event. Its signature matches
// service.Subscriber.
func (m *Manager) ObserveWorkoutEvent(_ context.Context, ev service.Event) {
	trigger := ev.Trigger
	if trigger == "" {
		trigger = "none"
	}
	m.CounterWorkoutEvents.WithLabelValues(string(ev.Type), trigger).Inc()
}
