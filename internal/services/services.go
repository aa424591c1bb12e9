// Package services implements the ledger and reporting operations.
//
// Each operation acquires its own storage session, closes it before returning,
// and reports failures as *core.Failure values whose Message is safe to show.
package services

import (
	"context"
	"errors"
	"time"

	"finassist/internal/core"
	applog "finassist/internal/log"
	"finassist/internal/storage"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store  storage.Connector
	Logger *applog.Logger
	// Now is the wall clock; nil means time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) today() core.Date {
	return core.DateOf(d.now())
}

func (d Deps) logger(component string) *applog.Logger {
	if d.Logger != nil {
		return d.Logger.WithComponent(component)
	}
	return applog.FromContext(context.Background()).WithComponent(component)
}

// connect acquires a session or returns a connection failure.
func connect(ctx context.Context, store storage.Connector, log *applog.Logger, op string) (storage.Session, error) {
	sess, err := store.Connect(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Storage connection failed",
			applog.FieldOperation, op,
			applog.FieldError, err)
		return nil, core.Fail(core.ErrConnection, core.MsgConnectionFailed, err)
	}
	return sess, nil
}

// release closes sess and logs, but does not return, close errors.
func release(ctx context.Context, sess storage.Session, log *applog.Logger) {
	if err := sess.Close(); err != nil {
		log.WarnContext(ctx, "Failed to release storage session", applog.FieldError, err)
	}
}

// queryFailure wraps an unexpected storage read error.
func queryFailure(err error) error {
	return core.Fail(core.ErrConnection, core.MsgConnectionFailed, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
