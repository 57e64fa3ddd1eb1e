package heatmap

import (
	"context"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/claude/musclemap/internal/classify"
	"github.com/claude/musclemap/internal/models"
)

// LogSource loads a user's workout logs dated on or after since.
type LogSource interface {
	QueryWorkoutLogs(ctx context.Context, since time.Time, userID int) ([]models.WorkoutLogEntry, error)
}

// Versioner is implemented by sources that can cheaply report a version of
// a user's log collection that changes whenever the logs change.
type Versioner interface {
	WorkoutLogVersion(ctx context.Context, userID int) (string, error)
}

// Engine serves heatmap queries over a LogSource. Results are memoized by
// (user, window, log version, minute) and concurrent identical queries are
// coalesced. Memoization never changes a result: the clock is truncated to
// the minute on every query, cached or not.
type Engine struct {
	src        LogSource
	classifier *classify.Classifier
	cache      *lru.Cache
	group      singleflight.Group
	now        func() time.Time
}

// NewEngine creates an Engine caching up to cacheSize results.
func NewEngine(src LogSource, cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating heatmap cache: %w", err)
	}
	return &Engine{
		src:        src,
		classifier: classify.Default(),
		cache:      cache,
		now:        time.Now,
	}, nil
}

// loadTimeout bounds a shared log load once it no longer follows any
// caller's cancellation.
const loadTimeout = 30 * time.Second

type cacheKey struct {
	userID     int
	windowDays int
	version    string
	minute     int64
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%d/%d/%s/%d", k.userID, k.windowDays, k.version, k.minute)
}

// Now returns the engine's query time, truncated to the minute.
func (e *Engine) Now() time.Time {
	return e.now().UTC().Truncate(time.Minute)
}

// Heatmap returns the heatmap for a user's logs over the last windowDays.
func (e *Engine) Heatmap(ctx context.Context, userID, windowDays int) (Heatmap, error) {
	now := e.Now()
	key := cacheKey{userID: userID, windowDays: windowDays, minute: now.Unix() / 60}

	if v, ok := e.src.(Versioner); ok {
		version, err := v.WorkoutLogVersion(ctx, userID)
		if err != nil {
			return Heatmap{}, fmt.Errorf("reading log version: %w", err)
		}
		key.version = version
		if h, ok := e.lookup(key); ok {
			return h, nil
		}
	}

	// The load is shared by every caller coalesced onto key, so it must not
	// end when the first caller goes away. Each caller still honors its own ctx.
	ch := e.group.DoChan(key.String(), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		logs, err := e.src.QueryWorkoutLogs(loadCtx, Cutoff(now, windowDays), userID)
		if err != nil {
			return nil, fmt.Errorf("loading workout logs: %w", err)
		}
		k := key
		if k.version == "" {
			k.version = Fingerprint(logs)
			if h, ok := e.lookup(k); ok {
				return h, nil
			}
		}
		h := BuildWith(e.classifier, logs, Query{WindowDays: windowDays, Now: now})
		e.cache.Add(k, h)
		return h, nil
	})

	select {
	case <-ctx.Done():
		return Heatmap{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Heatmap{}, res.Err
		}
		return clone(res.Val.(Heatmap)), nil
	}
}

// Preview builds a heatmap from explicit intensities without loading logs.
// A nil overrides map yields the built-in example.
func (e *Engine) Preview(windowDays int, overrides Intensities) Heatmap {
	return BuildWith(e.classifier, nil, Query{WindowDays: windowDays, Now: e.Now(), Overrides: overrides})
}

func (e *Engine) lookup(k cacheKey) (Heatmap, bool) {
	v, ok := e.cache.Get(k)
	if !ok {
		return Heatmap{}, false
	}
	return clone(v.(Heatmap)), true
}

func clone(h Heatmap) Heatmap {
	h.Muscles = slices.Clone(h.Muscles)
	return h
}
