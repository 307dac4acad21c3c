package fleet

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rickgorman/dockers/internal/batch"
	"github.com/rickgorman/dockers/internal/engine"
	"github.com/rickgorman/dockers/internal/stream"
)

var (
	// ErrMultiAttachUnsupported is returned when attaching is requested for more than one container.
	ErrMultiAttachUnsupported = errors.New("attaching to more than one container is not supported")
	// ErrInvalidFilter is returned for a filter that is not key=value.
	ErrInvalidFilter = errors.New("invalid filter")
)

// Fleet runs commands against one engine.
type Fleet struct {
	eng    engine.Engine
	dup    *stream.Duplexer
	out    io.Writer
	logger *log.Logger
	now    func() time.Time

	// failures echoes per-target batch failures when set.
	failures io.Writer
}

// New creates a Fleet. Results are written to term.Out.
func New(eng engine.Engine, term stream.Terminal, logger *log.Logger) *Fleet {
	return &Fleet{
		eng:    eng,
		dup:    stream.NewDuplexer(eng, term, logger),
		out:    term.Out,
		logger: logger,
		now:    time.Now,
	}
}

// EchoFailures makes batch commands print each failing target to w as well
// as logging it, for when the log does not reach the terminal.
func (f *Fleet) EchoFailures(w io.Writer) {
	f.failures = w
}

func (f *Fleet) reporter(action string) batch.Reporter {
	return batch.Reporter{Out: f.out, Logger: f.logger, Err: f.failures, Action: action}
}

// ParseFilters turns key=value strings into engine filters.
// Repeated keys accumulate values.
func ParseFilters(raw []string) (engine.Filters, error) {
	filters := engine.Filters{}
	for _, r := range raw {
		key, value, ok := strings.Cut(r, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w %q: expected key=value", ErrInvalidFilter, r)
		}
		filters.Add(key, value)
	}
	return filters, nil
}
