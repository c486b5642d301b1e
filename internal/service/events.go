package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType names a committed workout state change.
type EventType string

const (
	EventSessionStarted    EventType = "session.started"
	EventSessionCompleted  EventType = "session.completed"
	EventSessionCancelled  EventType = "session.cancelled"
	EventSessionDeleted    EventType = "session.deleted"
	EventSessionRepaired   EventType = "session.repaired"
	EventExerciseCompleted EventType = "exercise.completed"
)

// Completion triggers carried by EventExerciseCompleted.
const (
	TriggerExplicit = "explicit"
	TriggerAuto     = "auto"    // Planned set count reached
	TriggerCascade  = "cascade" // Parent workout completed or repaired
	TriggerImplicit = "implicit"
)

// Event describes a state change after it has been committed.
type Event struct {
	Type      EventType
	UserID    primitive.ObjectID
	WorkoutID primitive.ObjectID
	EntryID   primitive.ObjectID // Zero for session-level events
	Trigger   string
	At        time.Time
}

// Subscriber receives committed events. It runs synchronously on the request
// path, so it must not block.
type Subscriber func(ctx context.Context, ev Event)

type eventBus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

func (b *eventBus) subscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, sub)
}

func (b *eventBus) publish(ctx context.Context, events ...Event) {
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, ev := range events {
		for _, sub := range subs {
			sub(ctx, ev)
		}
	}
}

// LoggingSubscriber writes every event to the log.
func LoggingSubscriber(ctx context.Context, ev Event) {
	fields := logrus.Fields{
		"event":      ev.Type,
		"user_id":    ev.UserID.Hex(),
		"workout_id": ev.WorkoutID.Hex(),
	}
	if !ev.EntryID.IsZero() {
		fields["entry_id"] = ev.EntryID.Hex()
	}
	if ev.Trigger != "" {
		fields["trigger"] = ev.Trigger
	}
	logrus.WithContext(ctx).WithFields(fields).Info("workout event")
}
