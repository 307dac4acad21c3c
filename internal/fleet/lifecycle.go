package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickgorman/dockers/internal/batch"
	"github.com/rickgorman/dockers/internal/engine"
)

// StartOptions controls Start.
type StartOptions struct {
	Attach      bool
	Interactive bool
}

// Start starts every target concurrently. With Attach or Interactive exactly
// one target is allowed; the terminal is attached before the start is issued
// and the session is joined once the start completes.
func (f *Fleet) Start(ctx context.Context, targets []string, opts StartOptions) error {
	attach := opts.Attach || opts.Interactive
	if attach && len(targets) != 1 {
		return fmt.Errorf("%w: got %d containers", ErrMultiAttachUnsupported, len(targets))
	}

	var join func(error) error
	if attach {
		session, err := f.dup.Attach(ctx, engine.ContainerRef{ID: targets[0]}, opts.Interactive)
		if err != nil {
			return err
		}
		join = func(startErr error) error {
			if startErr != nil {
				session.Close()
			}
			return errors.Join(startErr, session.Wait())
		}
	}

	_, err := batch.Run(ctx, f.reporter("start"), targets, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, f.eng.Start(ctx, id)
	}, nil)

	if join != nil {
		return join(err)
	}
	return err
}

// StopOptions controls Stop.
type StopOptions struct {
	// Timeout is the grace period in seconds before the container is killed; nil uses the engine default.
	Timeout *int
	Signal  string
}

// Stop stops every target concurrently.
func (f *Fleet) Stop(ctx context.Context, targets []string, opts StopOptions) error {
	stop := engine.StopOptions{Timeout: opts.Timeout, Signal: opts.Signal}
	_, err := batch.Run(ctx, f.reporter("stop"), targets, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, f.eng.Stop(ctx, id, stop)
	}, nil)
	return err
}

// RemoveOptions controls Remove.
type RemoveOptions = engine.RemoveOptions

// Remove removes every target container concurrently.
func (f *Fleet) Remove(ctx context.Context, targets []string, opts RemoveOptions) error {
	_, err := batch.Run(ctx, f.reporter("remove"), targets, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, f.eng.Remove(ctx, id, opts)
	}, nil)
	return err
}

// RemoveImageOptions controls RemoveImages.
type RemoveImageOptions = engine.RemoveImageOptions

// RemoveImages removes every image concurrently and prints what each removal untagged and deleted.
func (f *Fleet) RemoveImages(ctx context.Context, refs []string, opts RemoveImageOptions) error {
	_, err := batch.Run(ctx, f.reporter("remove image"), refs, func(ctx context.Context, ref string) ([]engine.ImageDeletion, error) {
		return f.eng.RemoveImage(ctx, ref, opts)
	}, deletionLines)
	return err
}

func deletionLines(deletions []engine.ImageDeletion) []string {
	lines := make([]string, 0, len(deletions))
	for _, d := range deletions {
		if d.Untagged != "" {
			lines = append(lines, "Untagged: "+d.Untagged)
		}
		if d.Deleted != "" {
			lines = append(lines, "Deleted: "+d.Deleted)
		}
	}
	return lines
}
