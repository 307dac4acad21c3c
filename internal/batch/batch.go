package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// ErrBatchFailed is returned when at least one target failed.
var ErrBatchFailed = errors.New("batch failed")

// Op is applied to a single target.
type Op[R any] func(ctx context.Context, target string) (R, error)

// Outcome is the result of applying an Op to one target.
type Outcome[R any] struct {
	Target string
	Value  R
	Err    error
}

// Reporter reports outcomes as they arrive: successes go to Out, failures to Logger.
type Reporter struct {
	Out    io.Writer
	Logger *log.Logger
	// Err, when set, also receives a "target: error" line per failure. Use it
	// when Logger does not write to the terminal.
	Err io.Writer
	// Action names the operation in log lines, e.g. "stop".
	Action string
}

func (r Reporter) success(target string, payload []string) {
	fmt.Fprintln(r.Out, target)
	for _, line := range payload {
		fmt.Fprintln(r.Out, line)
	}
}

func (r Reporter) failure(target string, err error) {
	r.Logger.Error("operation failed", "action", r.Action, "target", target, "err", err)
	if r.Err != nil {
		fmt.Fprintf(r.Err, "%s: %v\n", target, err)
	}
}

// Run applies op to every target concurrently and waits for all of them.
// A failing target never prevents the others from being attempted. Each
// outcome is reported as soon as it arrives; payload, when non-nil, adds
// extra success lines for a value. The returned outcomes hold exactly one
// entry per target in completion order, and the error wraps ErrBatchFailed
// if any target failed.
func Run[R any](ctx context.Context, rep Reporter, targets []string, op Op[R], payload func(R) []string) ([]Outcome[R], error) {
	results := make(chan Outcome[R])

	var g errgroup.Group
	for _, target := range targets {
		g.Go(func() error {
			v, err := op(ctx, target)
			results <- Outcome[R]{Target: target, Value: v, Err: err}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	outcomes := make([]Outcome[R], 0, len(targets))
	failed := 0
	for o := range results {
		outcomes = append(outcomes, o)
		if o.Err != nil {
			failed++
			rep.failure(o.Target, o.Err)
			continue
		}
		var lines []string
		if payload != nil {
			lines = payload(o.Value)
		}
		rep.success(o.Target, lines)
	}

	if failed > 0 {
		return outcomes, fmt.Errorf("%w: %d of %d targets failed to %s", ErrBatchFailed, failed, len(targets), rep.Action)
	}
	return outcomes, nil
}

// Errors returns the failed outcomes' errors keyed by target.
func Errors[R any](outcomes []Outcome[R]) map[string]error {
	errs := make(map[string]error)
	for _, o := range outcomes {
		if o.Err != nil {
			errs[o.Target] = o.Err
		}
	}
	return errs
}
