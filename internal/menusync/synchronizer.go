package menusync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/menus/internal/keylock"
	"github.com/mesh-intelligence/menus/internal/logging"
	"github.com/mesh-intelligence/menus/internal/menutree"
	"github.com/mesh-intelligence/menus/internal/metrics"
	"github.com/mesh-intelligence/menus/internal/purge"
	"github.com/mesh-intelligence/menus/pkg/types"
)

const tracerName = "github.com/mesh-intelligence/menus/internal/menusync"

// Synchronizer performs whole-tree replacements of menu items.
type Synchronizer struct {
	menus    types.MenuStore
	items    types.ItemStore
	locks    *keylock.Table
	log      *slog.Logger
	recorder metrics.Recorder
	tracer   trace.Tracer
	timeout  time.Duration
	now      func() time.Time
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder sets the metrics recorder. The default is metrics.NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Synchronizer) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithTracerProvider sets where replace spans are sent. The default is the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Synchronizer) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithTimeout bounds each replace, lock wait included. Zero means no bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) { s.timeout = d }
}

// WithLocks shares a lock table between synchronizers over the same store.
func WithLocks(t *keylock.Table) Option {
	return func(s *Synchronizer) {
		if t != nil {
			s.locks = t
		}
	}
}

// New creates a Synchronizer over the given stores. A single backend
// usually serves as both.
func New(menus types.MenuStore, items types.ItemStore, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		menus:    menus,
		items:    items,
		locks:    keylock.New(),
		log:      logging.Discard(),
		recorder: metrics.NoopRecorder{},
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReplaceMenuItemsJSON decodes raw as a JSON array of node descriptors and
// replaces the items of menuID with it. Malformed input is rejected with
// types.ErrInvalidItems before any storage access.
func (s *Synchronizer) ReplaceMenuItemsJSON(ctx context.Context, menuID string, raw []byte) (types.ReplaceResult, error) {
	nodes, err := menutree.Decode(raw)
	if err != nil {
		s.recorder.IncSyncOutcome(metrics.OutcomeInvalid)
		return types.ReplaceResult{MenuID: menuID}, err
	}
	return s.ReplaceMenuItems(ctx, menuID, nodes)
}

// ReplaceMenuItems discards every item of menuID and creates items in their
// place, preserving nesting and sibling order. A nil items slice empties
// the menu.
//
// It returns types.ErrNotFound if the menu does not exist and
// types.ErrTransactionFailed if the replace was rolled back; in both cases
// the stored tree is unchanged.
func (s *Synchronizer) ReplaceMenuItems(ctx context.Context, menuID string, items []types.NodeDescriptor) (types.ReplaceResult, error) {
	res := types.ReplaceResult{MenuID: menuID}
	if menuID == "" {
		s.recorder.IncSyncOutcome(metrics.OutcomeInvalid)
		return res, types.ErrInvalidID
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "menusync.ReplaceMenuItems",
		trace.WithAttributes(attribute.String("menu.id", menuID)))
	defer span.End()

	nodes := menutree.Normalize(items)
	span.SetAttributes(attribute.Int("menu.nodes", len(nodes)))

	waitStart := s.now()
	release, ok := s.locks.TryLock(menuID)
	if !ok {
		s.recorder.IncLockContended()
		s.log.Debug("waiting for menu lock", logging.MenuID(menuID))
		var err error
		release, err = s.locks.Lock(ctx, menuID)
		if err != nil {
			failSpan(span, err)
			s.recorder.IncSyncOutcome(metrics.OutcomeCanceled)
			return res, fmt.Errorf("waiting for menu %s: %w", menuID, err)
		}
	}
	defer release()
	s.recorder.ObserveLockWait(s.now().Sub(waitStart))

	start := s.now()
	defer func() { s.recorder.ObserveSyncDuration(s.now().Sub(start)) }()

	exists, err := s.menus.MenuExists(ctx, menuID)
	if err != nil {
		failSpan(span, err)
		s.recorder.IncSyncOutcome(outcomeOf(err))
		return res, fmt.Errorf("checking menu %s: %w", menuID, err)
	}
	if !exists {
		failSpan(span, types.ErrNotFound)
		s.recorder.IncSyncOutcome(metrics.OutcomeNotFound)
		return res, fmt.Errorf("menu %s: %w", menuID, types.ErrNotFound)
	}

	log := s.log.With(logging.MenuID(menuID))
	phase := PhaseIdle
	enter := func(p Phase) {
		phase = p
		span.AddEvent(p.String())
		log.Debug("replace phase", logging.Phase(p.String()))
	}

	var created int
	var purged int64
	err = s.items.InTx(ctx, func(ctx context.Context, tx types.ItemTx) error {
		enter(PhasePurging)
		st, err := purge.DetachThenDelete(ctx, tx, menuID)
		if err != nil {
			return err
		}
		purged = st.Deleted

		enter(PhaseMaterializing)
		created, err = Materialize(ctx, tx, menuID, nodes)
		return err
	})
	if err != nil {
		failed := phase
		enter(PhaseRolledBack)
		log.Warn("replace rolled back",
			slog.String("failed_phase", failed.String()),
			logging.Error(err))
		failSpan(span, err)
		s.recorder.IncSyncOutcome(outcomeOf(err))
		return res, fmt.Errorf("%w: %s: %w", types.ErrTransactionFailed, failed, err)
	}

	enter(PhaseCommitted)
	log.Info("menu items replaced", logging.Created(created), logging.Purged(purged),
		logging.DurationMS(float64(s.now().Sub(start).Microseconds())/1000))
	s.recorder.IncSyncOutcome(metrics.OutcomeSuccess)
	s.recorder.AddItemsCreated(created)
	s.recorder.AddItemsPurged(purged)

	span.SetAttributes(attribute.Int("menu.items.created", created), attribute.Int64("menu.items.purged", purged))

	res.Success = true
	res.Created = created
	res.Purged = purged
	return res, nil
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func outcomeOf(err error) metrics.Outcome {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeCanceled
	}
	return metrics.OutcomeFailed
}
