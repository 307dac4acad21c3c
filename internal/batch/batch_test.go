package batch

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReporter(action string) (Reporter, *bytes.Buffer, *bytes.Buffer) {
	var out, logs bytes.Buffer
	return Reporter{
		Out:    &out,
		Logger: log.NewWithOptions(&logs, log.Options{Level: log.ErrorLevel}),
		Action: action,
	}, &out, &logs
}

func sortedLines(s string) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	sort.Strings(lines)
	return lines
}

func TestRunAttemptsEveryTargetDespiteFailure(t *testing.T) {
	rep, out, logs := newReporter("stop")
	boom := errors.New("no such container")

	var mu sync.Mutex
	attempts := map[string]int{}
	op := func(ctx context.Context, target string) (struct{}, error) {
		mu.Lock()
		attempts[target]++
		mu.Unlock()
		if target == "B" {
			return struct{}{}, boom
		}
		return struct{}{}, nil
	}

	outcomes, err := Run(context.Background(), rep, []string{"A", "B", "C"}, op, nil)

	require.ErrorIs(t, err, ErrBatchFailed)
	assert.Contains(t, err.Error(), "1 of 3")
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1}, attempts)

	targets := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		targets = append(targets, o.Target)
	}
	assert.ElementsMatch(t, []string{"A", "B", "C"}, targets)
	assert.Equal(t, map[string]error{"B": boom}, Errors(outcomes))

	assert.Equal(t, []string{"A", "C"}, sortedLines(out.String()))
	assert.Contains(t, logs.String(), "target=B")
	assert.Contains(t, logs.String(), "no such container")
}

func TestRunEchoesFailuresToErr(t *testing.T) {
	rep, out, _ := newReporter("start")
	var errOut bytes.Buffer
	rep.Err = &errOut
	op := func(ctx context.Context, target string) (struct{}, error) {
		if target == "db" {
			return struct{}{}, errors.New("no such container")
		}
		return struct{}{}, nil
	}

	_, err := Run(context.Background(), rep, []string{"web", "db"}, op, nil)

	require.ErrorIs(t, err, ErrBatchFailed)
	assert.Equal(t, "web\n", out.String())
	assert.Equal(t, "db: no such container\n", errOut.String())
}

func TestRunAllSucceed(t *testing.T) {
	rep, out, logs := newReporter("start")
	op := func(ctx context.Context, target string) (string, error) {
		return strings.ToUpper(target), nil
	}

	outcomes, err := Run(context.Background(), rep, []string{"web", "db"}, op, nil)

	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
	assert.Equal(t, []string{"db", "web"}, sortedLines(out.String()))
	assert.Empty(t, logs.String())
}

func TestRunPrintsPayload(t *testing.T) {
	rep, out, _ := newReporter("remove")
	op := func(ctx context.Context, target string) ([]string, error) {
		return []string{"Untagged: " + target, "Deleted: sha256:abc"}, nil
	}
	payload := func(lines []string) []string { return lines }

	_, err := Run(context.Background(), rep, []string{"alpine:latest"}, op, payload)

	require.NoError(t, err)
	assert.Equal(t, "alpine:latest\nUntagged: alpine:latest\nDeleted: sha256:abc\n", out.String())
}

func TestRunIsConcurrent(t *testing.T) {
	rep, _, _ := newReporter("stop")
	targets := []string{"a", "b", "c", "d"}

	var started sync.WaitGroup
	started.Add(len(targets))
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	op := func(ctx context.Context, target string) (struct{}, error) {
		started.Done()
		select {
		case <-allStarted:
			return struct{}{}, nil
		case <-time.After(2 * time.Second):
			return struct{}{}, errors.New("targets were not dispatched concurrently")
		}
	}

	_, err := Run(context.Background(), rep, targets, op, nil)
	assert.NoError(t, err)
}

func TestRunNoTargets(t *testing.T) {
	rep, out, _ := newReporter("stop")
	op := func(ctx context.Context, target string) (struct{}, error) {
		t.Fatalf("op called for %q", target)
		return struct{}{}, nil
	}

	outcomes, err := Run(context.Background(), rep, nil, op, nil)

	assert.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, out.String())
}

func TestRunKeepsDuplicateTargets(t *testing.T) {
	rep, out, _ := newReporter("stop")
	op := func(ctx context.Context, target string) (struct{}, error) {
		return struct{}{}, nil
	}

	outcomes, err := Run(context.Background(), rep, []string{"web", "web"}, op, nil)

	assert.NoError(t, err)
	assert.Len(t, outcomes, 2)
	assert.Equal(t, []string{"web", "web"}, sortedLines(out.String()))
}
