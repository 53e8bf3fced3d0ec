// Package service orchestrates the project and task use cases: load, check
// the rules, mutate, persist inside one unit of work, then build the view.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/cache"
	"projecttracker/internal/events"
	"projecttracker/internal/model"
	"projecttracker/internal/repository"
)

// DefaultActor is recorded when a caller does not identify itself.
const DefaultActor = "system"

// Deps are the collaborators shared by both services.
type Deps struct {
	Store  repository.Store
	Cache  *cache.StatsCache
	Events *events.Emitter
	Logger *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

func (d Deps) today() model.Date { return model.DateOf(d.Now()) }

func actorOrDefault(actor string) string {
	if actor == "" {
		return DefaultActor
	}
	return actor
}

// storeErr classifies a repository failure. what names the missing entity.
func storeErr(err error, what string, id int64) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s not found with id %d", what, id)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperr.Unexpected(err, "failed to access "+what)
}

func storeListErr(err error, what string) error {
	if err == nil {
		return nil
	}
	return apperr.Unexpected(err, "failed to list "+what)
}
