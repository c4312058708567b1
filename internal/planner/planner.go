// Package planner turns occupancy snapshots into published paths, one
// search run per snapshot.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	astar "github.com/pdrpinto/gridplanner"
	"github.com/pdrpinto/gridplanner/internal/msgs"
)

// Publisher delivers planned paths downstream.
type Publisher interface {
	Publish(ctx context.Context, path msgs.Path) error
}

// Planner owns the fixed configuration and runs one search per snapshot.
// No search state survives between snapshots. Runs are serialized across all
// entry points, so a Planner may be shared between goroutines.
type Planner struct {
	mu        sync.Mutex
	config    Config
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// Option is a function that modifies a Planner.
type Option func(*Planner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// WithClock replaces time.Now for path stamps.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New creates a Planner publishing to publisher.
func New(cfg Config, publisher Publisher, options ...Option) *Planner {
	p := &Planner{
		config:    cfg,
		publisher: publisher,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *Planner) Config() Config { return p.config }

// Plan runs a full search over snapshot and returns the resulting path
// message. astar.ErrEmptyMap means the cycle should be skipped.
func (p *Planner) Plan(snapshot msgs.OccupancyGrid) (msgs.Path, astar.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plan(snapshot)
}

func (p *Planner) plan(snapshot msgs.OccupancyGrid) (msgs.Path, astar.Result, error) {
	if err := p.checkGeometry(snapshot.Info); err != nil {
		return msgs.Path{}, astar.Result{}, err
	}

	grid, err := astar.GridFromBuffer(p.config.Side, snapshot.Data, p.config.Occupied)
	if err != nil {
		return msgs.Path{}, astar.Result{}, err
	}

	result, err := astar.Search(grid, p.config.Source(), p.config.Target(), astar.WithConnectivity(p.config.Connectivity))
	if err != nil {
		return msgs.Path{}, astar.Result{}, err
	}
	return ToPath(result.Path, p.config, p.now()), result, nil
}

// Execute plans for one snapshot, stamps a run id on the path and publishes
// it. Errors from planning are returned unpublished, astar.ErrEmptyMap
// included.
func (p *Planner) Execute(ctx context.Context, snapshot msgs.OccupancyGrid) (msgs.Path, astar.Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))

	started := time.Now()
	path, result, err := p.Plan(snapshot)
	if err != nil {
		return msgs.Path{}, astar.Result{}, fmt.Errorf("plan: %w", err)
	}
	path.RunID = runID

	logger.Debug("Search finished",
		zap.Stringer("outcome", result.Outcome),
		zap.Bool("fell_back", result.FellBack),
		zap.Stringer("terminal", result.Terminal),
		zap.Uint("cost", result.Cost),
		zap.Int("expanded", result.Expanded),
		zap.Int("poses", len(path.Poses)),
		zap.Duration("elapsed", time.Since(started)))
	if result.FellBack {
		logger.Info("Target unreachable, using closest reachable cell", zap.Stringer("terminal", result.Terminal))
	}

	if err := p.publisher.Publish(ctx, path); err != nil {
		return path, result, fmt.Errorf("publish path: %w", err)
	}
	return path, result, nil
}

// Handle plans for one snapshot and publishes the result. Snapshots without
// occupied cells are skipped and nothing is published.
func (p *Planner) Handle(ctx context.Context, snapshot msgs.OccupancyGrid) error {
	_, _, err := p.Execute(ctx, snapshot)
	if errors.Is(err, astar.ErrEmptyMap) {
		p.logger.Info("No occupied cells in map, skipping")
		return nil
	}
	return err
}

// Run handles snapshots until the channel closes or ctx is cancelled. Runs
// never overlap; a snapshot that arrives while a run is in progress replaces
// any snapshot still waiting.
func (p *Planner) Run(ctx context.Context, snapshots <-chan msgs.OccupancyGrid) error {
	mailbox := make(chan msgs.OccupancyGrid, 1)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(mailbox)
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case snapshot, ok := <-snapshots:
				if !ok {
					return nil
				}
				select {
				case <-mailbox:
					p.logger.Debug("Dropping stale snapshot")
				default:
				}
				mailbox <- snapshot
			}
		}
	})

	group.Go(func() error {
		for snapshot := range mailbox {
			if groupCtx.Err() != nil {
				return nil
			}
			if err := p.Handle(groupCtx, snapshot); err != nil {
				p.logger.Warn("Snapshot cycle failed", zap.Error(err))
			}
		}
		return nil
	})

	return group.Wait()
}

func (p *Planner) checkGeometry(info msgs.MapMetaData) error {
	if info.Width != 0 && info.Width != p.config.Side {
		return fmt.Errorf("%w: snapshot width %d, want %d", ErrGeometry, info.Width, p.config.Side)
	}
	if info.Height != 0 && info.Height != p.config.Side {
		return fmt.Errorf("%w: snapshot height %d, want %d", ErrGeometry, info.Height, p.config.Side)
	}
	return nil
}
