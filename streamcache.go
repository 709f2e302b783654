// Package streamcache provides a top-level convenience entry point for the
// replayable stream cache primitives.
//
// Usage:
//
//	import "github.com/BaSui01/streamcache"
//
//	it := streamcache.NewIterator[string]()
//	src := streamcache.NewSource(upstream, streamcache.WithLogger(logger))
//	acc := streamcache.NewAccumulator()
//
// This is a thin wrapper around the stream package; both produce identical
// results. Use this package when you prefer the shorter import path.
package streamcache

import (
	"github.com/BaSui01/streamcache/stream"
)

// NewIterator creates an empty, open appendable iterator.
func NewIterator[T any]() *stream.Iterator[T] {
	return stream.NewIterator[T]()
}

// NewSource creates a cached source over a pull-based upstream.
func NewSource[T any](upstream stream.Upstream[T], opts ...stream.SourceOption) *stream.Source[T] {
	return stream.NewSource(upstream, opts...)
}

// NewAccumulator creates an empty, open string accumulator.
func NewAccumulator() *stream.Accumulator {
	return stream.NewAccumulator()
}

// Re-export source options so callers never need to import stream/.

// WithLogger sets a custom zap logger on a source.
var WithLogger = stream.WithLogger

// WithTracer overrides the OpenTelemetry tracer used by a source.
var WithTracer = stream.WithTracer

// WithMetricsNamespace enables prometheus metrics for a source.
var WithMetricsNamespace = stream.WithMetricsNamespace

// WithEagerStart drains the upstream from construction instead of waiting
// for the first consumer.
var WithEagerStart = stream.WithEagerStart
