// Package store holds the in-memory reservation set for the selected
// scope and keeps it consistent with the DataSource.  Every refresh is a
// full reload; change notifications never patch rows incrementally.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ErrStaleScope is returned by Load when the scope was changed by a newer
// Load before this one completed.  The result was discarded.
var ErrStaleScope = errors.New("stale scope: result discarded")

// Store caches reservation records for one scope at a time.  The cache
// is owned by the Store; readers only ever receive copies.
type Store struct {
	ds  DataSource
	log *zap.Logger

	// RefreshTimeout bounds each subscription-triggered reload.
	RefreshTimeout time.Duration

	mu        sync.Mutex
	requested Scope // scope of the most recently initiated Load
	scope     Scope // scope of the records currently held
	loaded    bool
	records   []model.ReservationRecord
}

// New returns an empty Store reading from ds.
func New(ds DataSource, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{ds: ds, log: log, RefreshTimeout: 10 * time.Second}
}

// Load fetches the current records for scope and replaces the cached set
// wholesale.  When another Load for a different scope was initiated while
// this one was in flight, the result is dropped and ErrStaleScope is
// returned.  On fetch failure the cache is left untouched.
func (s *Store) Load(ctx context.Context, scope Scope) ([]model.ReservationRecord, error) {
	s.mu.Lock()
	s.requested = scope
	s.mu.Unlock()
	return s.fetch(ctx, scope)
}

// loadIf reloads scope only while it is still the most recently requested
// one.  The check and the start happen under one lock so a Load for
// another scope is never overwritten.
func (s *Store) loadIf(ctx context.Context, scope Scope) ([]model.ReservationRecord, error) {
	s.mu.Lock()
	if s.requested != scope {
		s.mu.Unlock()
		return nil, ErrStaleScope
	}
	s.mu.Unlock()
	return s.fetch(ctx, scope)
}

func (s *Store) fetch(ctx context.Context, scope Scope) ([]model.ReservationRecord, error) {
	recs, err := s.ds.FetchReservations(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load reservations for %s: %w", scope, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requested != scope {
		s.log.Debug("discarding stale reservation load",
			zap.String("scope", string(scope)),
			zap.String("current", string(s.requested)))
		return nil, ErrStaleScope
	}
	// Same-scope loads race freely: whichever completes last wins.
	s.records = model.CloneRecords(recs)
	s.scope = scope
	s.loaded = true
	return model.CloneRecords(recs), nil
}

// Subscribe listens for changes on the reservation and assignment tables.
// Each notification triggers a full Load of the current scope and then
// onChange, once the refreshed set is in place.  Failed reloads are logged
// and onChange is not called.
func (s *Store) Subscribe(ctx context.Context, onChange func()) (Unsubscribe, error) {
	unsub, err := s.ds.SubscribeChanges(ctx, WatchedTables, func(ch Change) {
		s.refresh(ctx, ch, onChange)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe reservation changes: %w", err)
	}
	return unsub, nil
}

func (s *Store) refresh(ctx context.Context, ch Change, onChange func()) {
	s.mu.Lock()
	scope, ok := s.requested, s.requested != ""
	s.mu.Unlock()
	if !ok {
		// Nothing has been loaded yet, there is no scope to refresh.
		return
	}

	rctx, cancel := context.WithTimeout(ctx, s.RefreshTimeout)
	defer cancel()
	if _, err := s.loadIf(rctx, scope); err != nil {
		if !errors.Is(err, ErrStaleScope) {
			s.log.Warn("reservation refresh failed",
				zap.String("table", ch.Table),
				zap.String("op", ch.Op),
				zap.String("scope", string(scope)),
				zap.Error(err))
		}
		return
	}
	if onChange != nil {
		onChange()
	}
}

// UpdateStatus writes a new status remotely and, only on success, patches
// the cached record in place.  On failure the cache is unchanged and false
// is returned.  Unknown statuses are rejected without a remote call.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) bool {
	if !model.ValidStatus(status) {
		s.log.Warn("rejecting unknown reservation status", zap.String("id", id), zap.String("status", status))
		return false
	}
	if err := s.ds.UpdateReservationStatus(ctx, id, status); err != nil {
		s.log.Warn("reservation status update failed",
			zap.String("id", id), zap.String("status", status), zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Status = status
		}
	}
	return true
}

// Records returns a copy of the cached records.
func (s *Store) Records() []model.ReservationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneRecords(s.records)
}

// Get returns a copy of one cached record.
func (s *Store) Get(id string) (model.ReservationRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return model.ReservationRecord{}, false
}

// Snapshot returns the held scope and a copy of its records together,
// and false when nothing has been loaded yet.
func (s *Store) Snapshot() (Scope, []model.ReservationRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope, model.CloneRecords(s.records), s.loaded
}

// Scope returns the scope of the records currently held, and false when
// nothing has been loaded yet.
func (s *Store) Scope() (Scope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope, s.loaded
}
