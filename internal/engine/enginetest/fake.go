// Package enginetest provides an in-memory engine.Engine for tests.
package enginetest

import (
	"context"
	"sync"

	"github.com/rickgorman/dockers/internal/engine"
)

var _ engine.Engine = (*Fake)(nil)

// Call records one engine call.
type Call struct {
	Op     string
	Target string
}

// Fake is a programmable engine.Engine. Nil hooks succeed with zero values.
type Fake struct {
	CreateFunc      func(ctx context.Context, cfg engine.CreateConfig) (engine.Created, error)
	StartFunc       func(ctx context.Context, id string) error
	StopFunc        func(ctx context.Context, id string, opts engine.StopOptions) error
	RemoveFunc      func(ctx context.Context, id string, opts engine.RemoveOptions) error
	RemoveImageFunc func(ctx context.Context, ref string, opts engine.RemoveImageOptions) ([]engine.ImageDeletion, error)
	ListFunc        func(ctx context.Context, opts engine.ListOptions) ([]engine.Container, error)
	AttachFunc      func(ctx context.Context, id string, opts engine.AttachOptions) (*engine.Attachment, error)
	StatsFunc       func(ctx context.Context, id string) (engine.SampleStream, error)
	LogsFunc        func(ctx context.Context, id string, opts engine.LogOptions) (engine.ChunkStream, error)
	EventsFunc      func(ctx context.Context, filters engine.Filters) (engine.EventStream, error)

	mu    sync.Mutex
	calls []Call
}

func (f *Fake) record(op, target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Target: target})
}

// Calls returns every call made so far, in call order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Targets returns the targets of every call to op, in call order.
func (f *Fake) Targets(op string) []string {
	var targets []string
	for _, c := range f.Calls() {
		if c.Op == op {
			targets = append(targets, c.Target)
		}
	}
	return targets
}

func (f *Fake) Create(ctx context.Context, cfg engine.CreateConfig) (engine.Created, error) {
	f.record("create", cfg.Image)
	if f.CreateFunc == nil {
		return engine.Created{ID: "created-" + cfg.Image}, nil
	}
	return f.CreateFunc(ctx, cfg)
}

func (f *Fake) Start(ctx context.Context, id string) error {
	f.record("start", id)
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx, id)
}

func (f *Fake) Stop(ctx context.Context, id string, opts engine.StopOptions) error {
	f.record("stop", id)
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc(ctx, id, opts)
}

func (f *Fake) Remove(ctx context.Context, id string, opts engine.RemoveOptions) error {
	f.record("remove", id)
	if f.RemoveFunc == nil {
		return nil
	}
	return f.RemoveFunc(ctx, id, opts)
}

func (f *Fake) RemoveImage(ctx context.Context, ref string, opts engine.RemoveImageOptions) ([]engine.ImageDeletion, error) {
	f.record("remove-image", ref)
	if f.RemoveImageFunc == nil {
		return nil, nil
	}
	return f.RemoveImageFunc(ctx, ref, opts)
}

func (f *Fake) List(ctx context.Context, opts engine.ListOptions) ([]engine.Container, error) {
	f.record("list", "")
	if f.ListFunc == nil {
		return nil, nil
	}
	return f.ListFunc(ctx, opts)
}

func (f *Fake) Attach(ctx context.Context, id string, opts engine.AttachOptions) (*engine.Attachment, error) {
	f.record("attach", id)
	if f.AttachFunc == nil {
		return &engine.Attachment{Output: Chunks()}, nil
	}
	return f.AttachFunc(ctx, id, opts)
}

func (f *Fake) Stats(ctx context.Context, id string) (engine.SampleStream, error) {
	f.record("stats", id)
	if f.StatsFunc == nil {
		return NewSampleFeed(), nil
	}
	return f.StatsFunc(ctx, id)
}

func (f *Fake) Logs(ctx context.Context, id string, opts engine.LogOptions) (engine.ChunkStream, error) {
	f.record("logs", id)
	if f.LogsFunc == nil {
		return Chunks(), nil
	}
	return f.LogsFunc(ctx, id, opts)
}

func (f *Fake) Events(ctx context.Context, filters engine.Filters) (engine.EventStream, error) {
	f.record("events", "")
	if f.EventsFunc == nil {
		return Events(), nil
	}
	return f.EventsFunc(ctx, filters)
}
