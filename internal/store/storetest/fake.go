// Package storetest provides an in-memory store.DataSource for tests.
package storetest

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/store"
)

// ErrFetch is the error returned by FetchReservations when a scope is
// configured to fail.
var ErrFetch = errors.New("fake fetch failure")

// ErrUpdate is returned by UpdateReservationStatus when updates fail.
var ErrUpdate = errors.New("fake update failure")

// Source is a fake DataSource.  Fetches for a scope can be held open with
// Hold and released with Release so tests control completion order.
type Source struct {
	mu           sync.Mutex
	data         map[store.Scope][]model.ReservationRecord
	failFetch    map[store.Scope]bool
	FailUpdate   bool
	holds        map[store.Scope]chan struct{}
	started      map[store.Scope]chan struct{}
	subs         map[int]func(store.Change)
	nextSub      int
	Updates      []string
	FetchCount   int
	Subscribed   []string
	SubscribeErr error
}

// NewSource returns an empty fake.
func NewSource() *Source {
	return &Source{
		data:      make(map[store.Scope][]model.ReservationRecord),
		failFetch: make(map[store.Scope]bool),
		holds:     make(map[store.Scope]chan struct{}),
		started:   make(map[store.Scope]chan struct{}),
		subs:      make(map[int]func(store.Change)),
	}
}

// Set replaces the rows returned for scope.
func (s *Source) Set(scope store.Scope, recs ...model.ReservationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[scope] = model.CloneRecords(recs)
}

// FailFetch makes fetches for scope fail (or succeed again).
func (s *Source) FailFetch(scope store.Scope, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFetch[scope] = fail
}

// Hold makes the next fetches for scope block until Release is called.
// The returned channel is closed once a fetch for scope has started.
func (s *Source) Hold(scope store.Scope) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[scope] = make(chan struct{})
	s.started[scope] = make(chan struct{})
	return s.started[scope]
}

// Release unblocks fetches held for scope.
func (s *Source) Release(scope store.Scope) {
	s.mu.Lock()
	ch := s.holds[scope]
	delete(s.holds, scope)
	s.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// FetchReservations implements store.DataSource.
func (s *Source) FetchReservations(ctx context.Context, scope store.Scope) ([]model.ReservationRecord, error) {
	s.mu.Lock()
	s.FetchCount++
	hold := s.holds[scope]
	if started := s.started[scope]; started != nil {
		close(started)
		delete(s.started, scope)
	}
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFetch[scope] {
		return nil, ErrFetch
	}
	return model.CloneRecords(s.data[scope]), nil
}

// SubscribeChanges implements store.DataSource.
func (s *Source) SubscribeChanges(ctx context.Context, tables []string, fn func(store.Change)) (store.Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SubscribeErr != nil {
		return nil, s.SubscribeErr
	}
	s.Subscribed = append([]string(nil), tables...)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

// UpdateReservationStatus implements store.DataSource.  On success it
// also updates the stored rows so later fetches see the change.
func (s *Source) UpdateReservationStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate {
		return ErrUpdate
	}
	s.Updates = append(s.Updates, id+"="+status)
	for scope, recs := range s.data {
		for i := range recs {
			if recs[i].ID == id {
				s.data[scope][i].Status = status
			}
		}
	}
	return nil
}

// Emit delivers a change to every live subscriber synchronously.
func (s *Source) Emit(ch store.Change) {
	s.mu.Lock()
	fns := make([]func(store.Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Source) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
