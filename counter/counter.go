// Package counter implements the visitor count read-modify-write cycle on
// top of a storage.Table.
package counter

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/event"
	"github.com/awantoch/visitorcount/model"
	"github.com/awantoch/visitorcount/storage"
	"github.com/awantoch/visitorcount/telemetry"
	"github.com/awantoch/visitorcount/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/awantoch/visitorcount/counter")

// ErrCountOverflow is returned instead of wrapping a count at math.MaxInt64.
var ErrCountOverflow = errors.New("count is at its maximum")

// Service records visits against the single Counter Record in a Table.
//
// Increment is a plain read-then-replace. Two concurrent visits can read the
// same count and both write count+1, losing one visit.
type Service struct {
	table   storage.Table
	bus     event.EventBus
	errWrap *utils.ErrorWrapper
}

// Option configures a Service.
type Option func(*Service)

// WithEventBus publishes a visit event after every successful visit.
func WithEventBus(bus event.EventBus) Option {
	return func(s *Service) { s.bus = bus }
}

func NewService(table storage.Table, opts ...Option) *Service {
	s := &Service{table: table, errWrap: utils.NewErrorWrapper("counter")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the Counter Record, creating it with count 0 when the
// table has none.
func (s *Service) GetOrCreate(ctx context.Context) (model.CounterRecord, error) {
	ctx, span := tracer.Start(ctx, constants.SpanGetOrCreate)
	defer span.End()

	rec, err := s.read(ctx)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		telemetry.ObserveFailure("read")
		return model.CounterRecord{}, fail(span, err)
	}

	utils.InfoCtx(ctx, constants.LogCounterNotFound)
	span.AddEvent("create")
	fresh := model.CounterRecord{Count: 0}
	err = s.table.CreateEntity(ctx, fresh.Entity())
	switch {
	case err == nil:
		return fresh, nil
	case errors.Is(err, storage.ErrAlreadyExists):
		// another visit created it between our read and create
		utils.DebugCtx(ctx, constants.LogCounterRaced)
		rec, err = s.read(ctx)
		if err != nil {
			telemetry.ObserveFailure("read")
			return model.CounterRecord{}, fail(span, err)
		}
		return rec, nil
	default:
		telemetry.ObserveFailure("create")
		return model.CounterRecord{}, fail(span, s.errWrap.Wrapf(err, "create counter"))
	}
}

// Increment writes rec.Count+1 back as a full replace and returns the new record.
func (s *Service) Increment(ctx context.Context, rec model.CounterRecord) (model.CounterRecord, error) {
	ctx, span := tracer.Start(ctx, constants.SpanIncrement)
	defer span.End()

	if rec.Count == math.MaxInt64 {
		telemetry.ObserveFailure("write")
		return rec, fail(span, s.errWrap.Wrapf(ErrCountOverflow, "increment %d", rec.Count))
	}
	next := model.CounterRecord{Count: rec.Count + 1}
	if err := s.table.UpsertEntity(ctx, next.Entity()); err != nil {
		telemetry.ObserveFailure("write")
		return rec, fail(span, s.errWrap.Wrapf(err, "update counter"))
	}
	span.SetAttributes(attribute.Int64("counter.count", next.Count))
	return next, nil
}

// Visit records one visit and returns the new count.
func (s *Service) Visit(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, constants.SpanVisit)
	defer span.End()

	rec, err := s.GetOrCreate(ctx)
	if err != nil {
		return 0, fail(span, err)
	}
	next, err := s.Increment(ctx, rec)
	if err != nil {
		return 0, fail(span, err)
	}
	utils.InfoCtx(ctx, fmt.Sprintf(constants.LogCounterIncremented, next.Count))
	telemetry.ObserveVisit(next.Count)

	if err := event.PublishVisit(ctx, s.bus, next.Count); err != nil {
		utils.WarnCtx(ctx, fmt.Sprintf(constants.LogPublishFailed, err))
	}
	span.SetAttributes(attribute.Int64("counter.count", next.Count))
	return next.Count, nil
}

// Current returns the count without creating or changing the record. A
// missing record reads as zero.
func (s *Service) Current(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, constants.SpanCurrent)
	defer span.End()

	rec, err := s.read(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fail(span, err)
	}
	telemetry.ObserveCount(rec.Count)
	return rec.Count, nil
}

func (s *Service) read(ctx context.Context) (model.CounterRecord, error) {
	e, err := s.table.GetEntity(ctx, model.CounterKey.PartitionKey, model.CounterKey.RowKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.CounterRecord{}, err
		}
		return model.CounterRecord{}, s.errWrap.Wrapf(err, "read counter")
	}
	rec, err := model.CounterFromEntity(e)
	if err != nil {
		return model.CounterRecord{}, s.errWrap.Wrapf(err, "read counter")
	}
	return rec, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
