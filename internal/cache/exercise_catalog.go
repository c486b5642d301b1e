package cache

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const megabyte = 1024 * 1024

// ExerciseCatalog is a read-through cache of catalog exercises in front of a
// repository. Misses are not cached, so a newly created exercise is visible at once.
type ExerciseCatalog struct {
	cache  *freecache.Cache
	source repository.ExerciseFinder
	ttl    int // seconds
}

func NewExerciseCatalog(source repository.ExerciseFinder, sizeMB int, ttl time.Duration) *ExerciseCatalog {
	return &ExerciseCatalog{
		cache:  freecache.NewCache(sizeMB * megabyte),
		source: source,
		ttl:    int(ttl / time.Second),
	}
}

// GetByID implements repository.ExerciseFinder.
func (c *ExerciseCatalog) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	key := id[:]
	if cached, err := c.cache.Get(key); err == nil {
		exercise := &domain.Exercise{}
		if err = json.Unmarshal(cached, exercise); err == nil {
			return exercise, nil
		}
		log.Errorf("failed to unmarshal cached exercise %s: %s", id.Hex(), err)
	}

	exercise, err := c.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(exercise); err != nil {
		log.Errorf("failed to marshal exercise %s for cache: %s", id.Hex(), err)
	} else if err = c.cache.Set(key, data, c.ttl); err != nil {
		log.Debugf("exercise %s not cached: %s", id.Hex(), err)
	}
	return exercise, nil
}

// Invalidate drops the cached copy of an exercise.
func (c *ExerciseCatalog) Invalidate(id primitive.ObjectID) {
	c.cache.Del(id[:])
}
