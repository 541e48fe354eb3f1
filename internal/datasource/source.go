// Package datasource binds the reservation store to MySQL for reads and
// writes and to RabbitMQ for change notifications.
package datasource

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/store"
)

// ReservationReader is the subset of repository.ReservationRepo used here.
type ReservationReader interface {
	ListByDate(ctx context.Context, date string) ([]model.ReservationRecord, error)
	ListAll(ctx context.Context) ([]model.ReservationRecord, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// TableReader is the subset of repository.TableRepo used here.
type TableReader interface {
	List(ctx context.Context) ([]model.TableResource, error)
}

// EventPublisher announces committed changes.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ChangeEvent) error
}

// EventSubscriber delivers change events until the returned stop func runs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, tables []string, fn func(queue.ChangeEvent)) (func(), error)
}

// Source implements store.DataSource and dashboard.TableLister.
type Source struct {
	reservations ReservationReader
	tables       TableReader
	pub          EventPublisher
	sub          EventSubscriber
	log          *zap.Logger

	// QueryTimeout bounds every database call; zero means no extra bound.
	QueryTimeout time.Duration
}

func New(reservations ReservationReader, tables TableReader, pub EventPublisher, sub EventSubscriber, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{reservations: reservations, tables: tables, pub: pub, sub: sub, log: log}
}

var _ store.DataSource = (*Source)(nil)

func (s *Source) FetchReservations(ctx context.Context, scope store.Scope) ([]model.ReservationRecord, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if scope.IsAll() {
		return s.reservations.ListAll(ctx)
	}
	return s.reservations.ListByDate(ctx, string(scope))
}

func (s *Source) SubscribeChanges(ctx context.Context, tables []string, fn func(store.Change)) (store.Unsubscribe, error) {
	stop, err := s.sub.Subscribe(ctx, tables, func(ev queue.ChangeEvent) {
		fn(store.Change{Table: ev.Table, Op: ev.Op, RowID: ev.RowID})
	})
	if err != nil {
		return nil, err
	}
	return store.Unsubscribe(stop), nil
}

// UpdateReservationStatus writes the status, then announces the change so
// every subscriber reloads.  A failed announcement does not fail the write.
func (s *Source) UpdateReservationStatus(ctx context.Context, id, status string) error {
	dbctx, cancel := s.bound(ctx)
	err := s.reservations.UpdateStatus(dbctx, id, status)
	cancel()
	if err != nil {
		return err
	}
	if s.pub == nil {
		return nil
	}
	ev := queue.NewChangeEvent(store.TableReservations, queue.OpUpdate, id)
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("change event not published",
			zap.String("reservation_id", id), zap.Error(err))
	}
	return nil
}

// ListTables returns every restaurant table.
func (s *Source) ListTables(ctx context.Context) ([]model.TableResource, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.tables.List(ctx)
}

func (s *Source) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.QueryTimeout)
}
