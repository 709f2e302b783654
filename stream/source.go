package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/streamcache/internal/metrics"
)

const instrumentationName = "github.com/BaSui01/streamcache/stream"

// Upstream is the pull interface a cached source drains. A clean end of
// sequence is reported as io.EOF; any other error is an upstream failure.
// Network streams, SDK adapters and test doubles implement only this.
type Upstream[T any] interface {
	Recv(ctx context.Context) (T, error)
}

// Source caches an asynchronously produced upstream sequence so any number of
// independent consumers can replay it. Exactly one internal driver task pulls
// from the upstream and feeds the cache, no matter how many consumers attach
// or when; the upstream is never iterated more than once. The driver keeps
// draining even if every consumer cursor is abandoned, so late joiners always
// observe the full sequence.
type Source[T any] struct {
	upstream  Upstream[T]
	it        *Iterator[T]
	id        string
	logger    *zap.Logger
	tracer    oteltrace.Tracer
	collector *metrics.Collector

	mu      sync.Mutex
	started bool
}

type sourceConfig struct {
	logger           *zap.Logger
	tracer           oteltrace.Tracer
	metricsNamespace string
	eager            bool
}

// SourceOption configures a Source.
type SourceOption func(*sourceConfig)

// WithLogger sets a custom zap logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) SourceOption {
	return func(cfg *sourceConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer used for the drive span. The
// default comes from the global tracer provider.
func WithTracer(tracer oteltrace.Tracer) SourceOption {
	return func(cfg *sourceConfig) {
		if tracer != nil {
			cfg.tracer = tracer
		}
	}
}

// WithMetricsNamespace enables prometheus metrics for this source under the
// given namespace. Sources sharing a namespace share one set of collectors.
func WithMetricsNamespace(namespace string) SourceOption {
	return func(cfg *sourceConfig) {
		cfg.metricsNamespace = namespace
	}
}

// WithEagerStart launches the driver at construction instead of on the first
// consumer.
func WithEagerStart() SourceOption {
	return func(cfg *sourceConfig) {
		cfg.eager = true
	}
}

// NewSource creates a cached source over upstream. The driver starts lazily
// on the first NewCursor/AwaitCompletion call (or eagerly with
// WithEagerStart) and runs exactly once for the lifetime of the source.
func NewSource[T any](upstream Upstream[T], opts ...SourceOption) *Source[T] {
	cfg := sourceConfig{
		logger: zap.NewNop(),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Source[T]{
		upstream: upstream,
		it:       NewIterator[T](),
		id:       uuid.NewString(),
		logger:   cfg.logger.With(zap.String("component", "stream.source")),
		tracer:   cfg.tracer,
	}
	if cfg.metricsNamespace != "" {
		s.collector = metrics.ForNamespace(cfg.metricsNamespace, cfg.logger)
	}
	if cfg.eager {
		s.Start()
	}
	return s
}

// ID returns the unique identifier of this source instance, used in logs and
// trace attributes.
func (s *Source[T]) ID() string {
	return s.id
}

// Start launches the driver if it has not run yet. It is safe to call from
// any goroutine at any time; only the first call has an effect.
func (s *Source[T]) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.drive()
}

// NewCursor starts the driver if needed and returns an independent cursor
// over the cached sequence, positioned at the first item.
func (s *Source[T]) NewCursor() *Cursor[T] {
	s.Start()
	if s.collector != nil {
		s.collector.RecordCursor()
	}
	return s.it.NewCursor()
}

// AwaitCompletion starts the driver if needed and blocks until the upstream
// has been fully drained. It returns nil on a clean end, the upstream failure
// if there was one, or ctx.Err() if ctx is cancelled first.
func (s *Source[T]) AwaitCompletion(ctx context.Context) error {
	s.Start()
	return s.it.AwaitCompletion(ctx)
}

// Completed reports whether the upstream has been fully drained.
func (s *Source[T]) Completed() bool {
	return s.it.Completed()
}

// Len returns the number of items cached so far.
func (s *Source[T]) Len() int {
	return s.it.Len()
}

// drive pulls from the upstream one item at a time and feeds the cache until
// end of sequence or failure. It is the only writer of the internal iterator
// and is deliberately detached from consumer lifetimes: cache correctness
// must not depend on having an active consumer.
func (s *Source[T]) drive() {
	ctx, span := s.tracer.Start(context.Background(), "stream.drive",
		oteltrace.WithAttributes(attribute.String("stream.source_id", s.id)))
	defer span.End()

	start := time.Now()
	count := 0
	for {
		item, err := s.upstream.Recv(ctx)
		if err != nil {
			elapsed := time.Since(start)
			span.SetAttributes(attribute.Int("stream.items", count))

			if errors.Is(err, io.EOF) {
				s.it.Complete()
				s.logger.Debug("upstream drained",
					zap.String("source_id", s.id),
					zap.Int("items", count),
					zap.Duration("elapsed", elapsed))
				if s.collector != nil {
					s.collector.RecordSeal("ok", count, elapsed)
				}
				return
			}

			// Recorded verbatim; every consumer observes this exact error.
			s.it.CompleteWithError(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "upstream failed")
			s.logger.Warn("upstream failed",
				zap.String("source_id", s.id),
				zap.Int("items", count),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
			if s.collector != nil {
				s.collector.RecordSeal("error", count, elapsed)
			}
			return
		}

		if appendErr := s.it.Append(item); appendErr != nil {
			// Unreachable while the driver is the sole writer; bail out
			// rather than spin if that invariant is ever broken.
			s.logger.Error("append rejected mid-drive",
				zap.String("source_id", s.id),
				zap.Error(appendErr))
			return
		}
		count++
		if s.collector != nil {
			s.collector.RecordItem()
		}
	}
}
