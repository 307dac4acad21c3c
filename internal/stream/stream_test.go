package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgorman/dockers/internal/engine"
	"github.com/rickgorman/dockers/internal/engine/enginetest"
	"github.com/rickgorman/dockers/internal/logging"
)

var web = engine.ContainerRef{ID: "0123456789abcdef", Name: "web"}

func attachReturning(att *engine.Attachment) *enginetest.Fake {
	return &enginetest.Fake{
		AttachFunc: func(ctx context.Context, id string, opts engine.AttachOptions) (*engine.Attachment, error) {
			return att, nil
		},
	}
}

func TestAttachRoutesChunksByTag(t *testing.T) {
	output := enginetest.Chunks(
		engine.Chunk{Kind: engine.Stdout, Data: []byte("out 1\n")},
		engine.Chunk{Kind: engine.Stderr, Data: []byte("err 1\n")},
		engine.Chunk{Kind: engine.Console, Data: []byte("tty\n")},
		engine.Chunk{Kind: engine.Stdout, Data: []byte("out 2\n")},
	)
	var stdout, stderr bytes.Buffer
	fake := attachReturning(&engine.Attachment{Output: output})
	d := NewDuplexer(fake, Terminal{In: strings.NewReader(""), Out: &stdout, Err: &stderr}, logging.Discard())

	session, err := d.Attach(context.Background(), web, false)
	require.NoError(t, err)
	require.NoError(t, session.Wait())

	assert.Equal(t, "out 1\ntty\nout 2\n", stdout.String())
	assert.Equal(t, "err 1\n", stderr.String())
	assert.Equal(t, []string{web.ID}, fake.Targets("attach"))
	assert.True(t, output.Closed())
}

func TestAttachFlushesEveryChunk(t *testing.T) {
	var underlying bytes.Buffer
	out := bufio.NewWriterSize(&underlying, 4096)
	fake := attachReturning(&engine.Attachment{Output: enginetest.Chunks(
		engine.Chunk{Kind: engine.Stdout, Data: []byte("a")},
		engine.Chunk{Kind: engine.Stdout, Data: []byte("b")},
	)})
	d := NewDuplexer(fake, Terminal{Out: out, Err: io.Discard}, logging.Discard())

	session, err := d.Attach(context.Background(), web, false)
	require.NoError(t, err)
	require.NoError(t, session.Wait())

	assert.Equal(t, "ab", underlying.String())
}

func TestAttachPropagatesOutputError(t *testing.T) {
	boom := errors.New("connection reset")
	var stdout bytes.Buffer
	fake := attachReturning(&engine.Attachment{Output: enginetest.ChunksThenError(boom,
		engine.Chunk{Kind: engine.Stdout, Data: []byte("partial")},
	)})
	d := NewDuplexer(fake, Terminal{Out: &stdout, Err: io.Discard}, logging.Discard())

	session, err := d.Attach(context.Background(), web, false)
	require.NoError(t, err)

	assert.ErrorIs(t, session.Wait(), boom)
	assert.Equal(t, "partial", stdout.String())
}

func TestAttachRejectsInputEcho(t *testing.T) {
	fake := attachReturning(&engine.Attachment{Output: enginetest.Chunks(
		engine.Chunk{Kind: engine.Stdin, Data: []byte("echo")},
	)})
	d := NewDuplexer(fake, Terminal{Out: io.Discard, Err: io.Discard}, logging.Discard())

	session, err := d.Attach(context.Background(), web, false)
	require.NoError(t, err)

	err = session.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin")
}

func TestAttachFailureIsReturned(t *testing.T) {
	boom := errors.New("no such container")
	fake := &enginetest.Fake{
		AttachFunc: func(ctx context.Context, id string, opts engine.AttachOptions) (*engine.Attachment, error) {
			return nil, boom
		},
	}
	d := NewDuplexer(fake, StdTerminal(), logging.Discard())

	_, err := d.Attach(context.Background(), web, true)
	assert.ErrorIs(t, err, boom)
}

func TestInteractiveForwardsLines(t *testing.T) {
	output := enginetest.NewChunkFeed()
	input := &enginetest.Input{}
	var requested engine.AttachOptions
	fake := &enginetest.Fake{
		AttachFunc: func(ctx context.Context, id string, opts engine.AttachOptions) (*engine.Attachment, error) {
			requested = opts
			return &engine.Attachment{Output: output, Input: input}, nil
		},
	}
	term := Terminal{In: strings.NewReader("echo hi\nexit"), Out: io.Discard, Err: io.Discard}
	d := NewDuplexer(fake, term, logging.Discard())

	session, err := d.Attach(context.Background(), web, true)
	require.NoError(t, err)
	assert.True(t, requested.Stdin)

	require.Eventually(t, input.Closed, time.Second, 5*time.Millisecond)
	assert.Equal(t, "echo hi\nexit", input.String())

	output.End()
	require.NoError(t, session.Wait())
}

func TestInteractiveWriteErrorIsSurfaced(t *testing.T) {
	output := enginetest.NewChunkFeed()
	input := &enginetest.Input{}
	require.NoError(t, input.Close())
	fake := attachReturning(&engine.Attachment{Output: output, Input: input})
	term := Terminal{In: strings.NewReader("ls\n"), Out: io.Discard, Err: io.Discard}
	d := NewDuplexer(fake, term, logging.Discard())

	session, err := d.Attach(context.Background(), web, true)
	require.NoError(t, err)

	assert.ErrorIs(t, session.Wait(), io.ErrClosedPipe)
}

func TestCloseStopsSession(t *testing.T) {
	output := enginetest.NewChunkFeed()
	fake := attachReturning(&engine.Attachment{Output: output, Input: &enginetest.Input{}})
	blocked, _ := io.Pipe()
	d := NewDuplexer(fake, Terminal{In: blocked, Out: io.Discard, Err: io.Discard}, logging.Discard())

	session, err := d.Attach(context.Background(), web, true)
	require.NoError(t, err)

	session.Close()
	assert.NoError(t, session.Wait())
}

func TestFollowPumpsLogs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	var requested engine.LogOptions
	fake := &enginetest.Fake{
		LogsFunc: func(ctx context.Context, id string, opts engine.LogOptions) (engine.ChunkStream, error) {
			requested = opts
			return enginetest.Chunks(
				engine.Chunk{Kind: engine.Stdout, Data: []byte("line 1\n")},
				engine.Chunk{Kind: engine.Stderr, Data: []byte("warn\n")},
			), nil
		},
	}
	d := NewDuplexer(fake, Terminal{Out: &stdout, Err: &stderr}, logging.Discard())

	err := d.Follow(context.Background(), web.ID, engine.LogOptions{Follow: true, Tail: "10"})
	require.NoError(t, err)

	assert.Equal(t, engine.LogOptions{Follow: true, Tail: "10"}, requested)
	assert.Equal(t, "line 1\n", stdout.String())
	assert.Equal(t, "warn\n", stderr.String())
}
