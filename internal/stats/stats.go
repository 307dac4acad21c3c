package stats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rickgorman/dockers/internal/engine"
)

// ErrListingFailed is logged when a discovery tick cannot list containers.
// The next tick retries.
var ErrListingFailed = errors.New("listing containers failed")

const (
	DefaultDiscoveryInterval = time.Second
	DefaultRenderInterval    = 100 * time.Millisecond
)

// Config controls the dashboard loops.
type Config struct {
	DiscoveryInterval time.Duration
	RenderInterval    time.Duration
}

// Aggregator owns the cache and the goroutines feeding and painting it.
type Aggregator struct {
	eng    engine.Engine
	cfg    Config
	cache  *Cache
	logger *log.Logger

	pollers sync.WaitGroup
}

// New creates an Aggregator. Zero intervals fall back to the defaults.
func New(eng engine.Engine, cfg Config, logger *log.Logger) *Aggregator {
	if cfg.DiscoveryInterval <= 0 {
		cfg.DiscoveryInterval = DefaultDiscoveryInterval
	}
	if cfg.RenderInterval <= 0 {
		cfg.RenderInterval = DefaultRenderInterval
	}
	return &Aggregator{
		eng:    eng,
		cfg:    cfg,
		cache:  NewCache(),
		logger: logger,
	}
}

// Cache returns the shared sample cache.
func (a *Aggregator) Cache() *Cache {
	return a.cache
}

// Run drives discovery and rendering until ctx is cancelled or painting fails.
// The screen is restored before Run returns.
func (a *Aggregator) Run(ctx context.Context, screen *Screen) error {
	defer screen.Restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var discovery sync.WaitGroup
	discovery.Add(1)
	go func() {
		defer discovery.Done()
		a.discoverLoop(ctx)
	}()

	err := a.renderLoop(ctx, screen)

	cancel()
	discovery.Wait()
	a.pollers.Wait()
	return err
}

// Discover lists every container once and starts pollers for newcomers.
func (a *Aggregator) Discover(ctx context.Context) error {
	containers, err := a.eng.List(ctx, engine.ListOptions{All: true})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListingFailed, err)
	}

	start, evicted := a.cache.Reconcile(containers)
	a.logger.Debug("discovered containers", "listed", len(containers), "new", len(start), "evicted", len(evicted))

	for _, id := range start {
		a.pollers.Add(1)
		go func() {
			defer a.pollers.Done()
			a.poll(ctx, id)
		}()
	}
	return nil
}

func (a *Aggregator) discoverLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.DiscoveryInterval)
	defer ticker.Stop()

	for {
		if err := a.Discover(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("discovery failed, retrying on next tick", "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll copies samples for one container into the cache until its stream ends.
func (a *Aggregator) poll(ctx context.Context, id string) {
	logger := a.logger.With("container", engine.ShortID(id))

	stream, err := a.eng.Stats(ctx, id)
	if err != nil {
		logger.Error("failed to open stats stream", "err", err)
		a.cache.finish(id, failed)
		return
	}
	defer stream.Close()

	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer stop()

	logger.Debug("waiting for first sample")
	for {
		snap, err := stream.Next()
		if err == io.EOF {
			logger.Debug("stats stream ended")
			a.cache.finish(id, ended)
			return
		}
		if err != nil && ctx.Err() != nil {
			logger.Debug("stats stream closed on shutdown")
			return
		}
		if err != nil {
			logger.Error("stats stream failed", "err", err)
			a.cache.finish(id, failed)
			return
		}
		a.cache.Set(id, snap)
	}
}

func (a *Aggregator) renderLoop(ctx context.Context, screen *Screen) error {
	ticker := time.NewTicker(a.cfg.RenderInterval)
	defer ticker.Stop()

	var frame bytes.Buffer
	for {
		frame.Reset()
		Render(&frame, a.cache.Snapshots())
		if err := screen.Paint(frame.Bytes()); err != nil {
			return fmt.Errorf("failed to paint stats: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
