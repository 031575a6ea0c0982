// Package persist mirrors an in-memory list into storage.Storage under a
// fixed key. Write failures never reach the caller as errors: they are logged,
// counted and reported through Outcome so the in-memory state stays
// authoritative for the session.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

var (
	saveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_persist_failures_total",
			Help: "Total number of list writes that could not be persisted",
		},
		[]string{"key"},
	)

	loadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_persist_load_failures_total",
			Help: "Total number of list reads that failed or held corrupt data",
		},
		[]string{"key"},
	)
)

// Outcome reports whether a save reached storage.
type Outcome struct {
	Persisted bool
	Err       error
}

// Ok is the outcome of a successful save.
var Ok = Outcome{Persisted: true}

// Failed wraps err as an unpersisted outcome.
func Failed(err error) Outcome {
	return Outcome{Persisted: false, Err: err}
}

// List loads and saves a []T as one JSON array under key.
type List[T any] struct {
	store  storage.Storage
	key    string
	logger *slog.Logger
}

// NewList creates a List bound to key.
func NewList[T any](store storage.Storage, key string, l *slog.Logger) *List[T] {
	if l == nil {
		l = slog.Default()
	}
	return &List[T]{store: store, key: key, logger: l}
}

// Key returns the storage key.
func (l *List[T]) Key() string {
	return l.key
}

// Load reads the list. A missing key, a read error or corrupt JSON all
// produce an empty list; the last two are logged.
func (l *List[T]) Load(ctx context.Context) []T {
	raw, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		loadFailures.WithLabelValues(l.key).Inc()
		logger.WithContext(ctx, l.logger).WarnContext(ctx, "failed to read persisted list",
			slog.String("key", l.key),
			slog.String("error", err.Error()),
		)
		return []T{}
	}
	if !ok || raw == "" {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		loadFailures.WithLabelValues(l.key).Inc()
		logger.WithContext(ctx, l.logger).WarnContext(ctx, "discarding corrupt persisted list",
			slog.String("key", l.key),
			slog.String("error", err.Error()),
		)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// Save serializes the full list and writes it.
func (l *List[T]) Save(ctx context.Context, items []T) Outcome {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return l.fail(ctx, fmt.Errorf("encode %s: %w", l.key, err))
	}
	if err := l.store.Set(ctx, l.key, string(data)); err != nil {
		return l.fail(ctx, fmt.Errorf("write %s: %w", l.key, err))
	}
	return Ok
}

func (l *List[T]) fail(ctx context.Context, err error) Outcome {
	saveFailures.WithLabelValues(l.key).Inc()
	logger.WithContext(ctx, l.logger).ErrorContext(ctx, "failed to persist list, keeping in-memory state",
		slog.String("key", l.key),
		slog.String("error", err.Error()),
	)
	return Failed(err)
}
