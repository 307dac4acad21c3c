package fleet

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/rickgorman/dockers/internal/engine"
)

// Logs relays a container's logs to the terminal.
func (f *Fleet) Logs(ctx context.Context, id string, opts engine.LogOptions) error {
	return f.dup.Follow(ctx, id, opts)
}

// Events prints engine events, one per line, until ctx is cancelled or the stream ends.
func (f *Fleet) Events(ctx context.Context, rawFilters []string) error {
	filters, err := ParseFilters(rawFilters)
	if err != nil {
		return err
	}

	events, err := f.eng.Events(ctx, filters)
	if err != nil {
		return err
	}
	defer events.Close()

	stop := context.AfterFunc(ctx, func() { _ = events.Close() })
	defer stop()

	for {
		ev, err := events.Next()
		if err == io.EOF || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(f.out, formatEvent(ev))
	}
}

func formatEvent(ev engine.Event) string {
	var b strings.Builder
	if ev.Time != 0 {
		b.WriteString(time.Unix(ev.Time, 0).UTC().Format(time.RFC3339))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%s %s %s", ev.Type, ev.Action, ev.ActorID)
	if len(ev.Attributes) > 0 {
		attrs := make([]string, 0, len(ev.Attributes))
		for _, k := range slices.Sorted(maps.Keys(ev.Attributes)) {
			attrs = append(attrs, k+"="+ev.Attributes[k])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(attrs, ", "))
	}
	return b.String()
}
