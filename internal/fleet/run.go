package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickgorman/dockers/internal/engine"
	"github.com/rickgorman/dockers/internal/ports"
	"github.com/rickgorman/dockers/internal/ui"
)

// RunOptions describes the container to create for Run.
type RunOptions struct {
	Image   string
	Cmd     []string
	Name    string
	Network string
	Volumes []string
	Publish []string
	Expose  []string
	// Remove deletes the container after its output ends.
	Remove      bool
	Interactive bool
}

// Run creates a container, attaches to it, starts it and relays its output
// until it exits. Port and volume specs are validated before the engine is
// contacted.
func (f *Fleet) Run(ctx context.Context, opts RunOptions) error {
	spec, err := ports.Parse(opts.Publish)
	if err != nil {
		return err
	}
	if err := spec.Expose(opts.Expose...); err != nil {
		return err
	}
	binds, err := ParseVolumes(opts.Volumes)
	if err != nil {
		return err
	}

	created, err := f.eng.Create(ctx, engine.CreateConfig{
		Name:        opts.Name,
		Image:       opts.Image,
		Cmd:         opts.Cmd,
		NetworkMode: opts.Network,
		Binds:       binds,
		Exposed:     spec.Exposed(),
		Published:   spec.PortMap(),
		OpenStdin:   opts.Interactive,
	})
	if err != nil {
		return err
	}
	ref := engine.ContainerRef{ID: created.ID, Name: opts.Name}
	logger := f.logger.With("container", ref.ShortID())
	logger.Debug("created container", "image", opts.Image)

	if len(created.Warnings) > 0 {
		ui.Warn("Warnings while creating the container")
		for _, w := range created.Warnings {
			ui.Warn("%s", w)
		}
	}

	session, err := f.dup.Attach(ctx, ref, opts.Interactive)
	if err != nil {
		return f.cleanup(ctx, ref, opts.Remove, err)
	}

	if err := f.eng.Start(ctx, ref.ID); err != nil {
		session.Close()
		_ = session.Wait()
		return f.cleanup(ctx, ref, opts.Remove, err)
	}
	logger.Debug("started container")

	return f.cleanup(ctx, ref, opts.Remove, session.Wait())
}

// cleanup removes the container when requested and merges any removal error into err.
// Removal still runs after ctx is cancelled so an interrupted run leaves nothing behind.
func (f *Fleet) cleanup(ctx context.Context, ref engine.ContainerRef, remove bool, err error) error {
	if !remove {
		return err
	}
	if rmErr := f.eng.Remove(context.WithoutCancel(ctx), ref.ID, engine.RemoveOptions{}); rmErr != nil {
		return errors.Join(err, fmt.Errorf("failed to remove container after run: %w", rmErr))
	}
	f.logger.Debug("removed container", "container", ref.ShortID())
	return err
}
