package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/pkg/stdcopy"
)

var errStreamClosed = errors.New("stream closed")

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// chunkStream demultiplexes an engine output stream into tagged chunks.
type chunkStream struct {
	ch     chan Chunk
	done   chan struct{}
	closer io.Closer
	once   sync.Once

	// err is written by pump before ch is closed.
	err error
}

func newChunkStream(r io.Reader, closer io.Closer, tty bool) *chunkStream {
	s := &chunkStream{
		ch:     make(chan Chunk),
		done:   make(chan struct{}),
		closer: closer,
	}
	go s.pump(r, tty)
	return s
}

func (s *chunkStream) pump(r io.Reader, tty bool) {
	defer close(s.ch)

	var err error
	if tty {
		_, err = io.Copy(chunkWriter{s: s, kind: Console}, r)
	} else {
		_, err = stdcopy.StdCopy(chunkWriter{s: s, kind: Stdout}, chunkWriter{s: s, kind: Stderr}, r)
	}
	s.err = err
}

func (s *chunkStream) Next() (Chunk, error) {
	c, ok := <-s.ch
	if ok {
		return c, nil
	}
	select {
	case <-s.done:
		return Chunk{}, io.EOF
	default:
	}
	if s.err != nil {
		return Chunk{}, fmt.Errorf("failed to read container output: %w", s.err)
	}
	return Chunk{}, io.EOF
}

func (s *chunkStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.closer.Close()
	})
	return err
}

type chunkWriter struct {
	s    *chunkStream
	kind StreamKind
}

func (w chunkWriter) Write(p []byte) (int, error) {
	// The demultiplexer reuses its buffer, so each chunk gets its own copy.
	data := make([]byte, len(p))
	copy(data, p)

	select {
	case w.s.ch <- Chunk{Kind: w.kind, Data: data}:
		return len(p), nil
	case <-w.s.done:
		return 0, errStreamClosed
	}
}

// hijackedInput is the write half of an attach connection.
type hijackedInput struct {
	conn       net.Conn
	closeWrite func() error
}

func (h *hijackedInput) Write(p []byte) (int, error) {
	return h.conn.Write(p)
}

// Close half-closes the connection so the container sees EOF on stdin
// while its output keeps flowing.
func (h *hijackedInput) Close() error {
	return h.closeWrite()
}

// sampleStream decodes the JSON documents of a streaming stats response.
type sampleStream struct {
	body   io.ReadCloser
	dec    *json.Decoder
	closed atomic.Bool
}

func newSampleStream(body io.ReadCloser) *sampleStream {
	return &sampleStream{body: body, dec: json.NewDecoder(body)}
}

func (s *sampleStream) Next() (Snapshot, error) {
	var w wireStats
	if err := s.dec.Decode(&w); err != nil {
		// Closing the body under a blocked decode surfaces as a read error.
		if errors.Is(err, io.EOF) || s.closed.Load() {
			return Snapshot{}, io.EOF
		}
		return Snapshot{}, fmt.Errorf("failed to decode stats: %w", err)
	}
	return w.snapshot(), nil
}

func (s *sampleStream) Close() error {
	s.closed.Store(true)
	return s.body.Close()
}

type eventStream struct {
	ctx    context.Context
	msgs   <-chan events.Message
	errs   <-chan error
	cancel context.CancelFunc
}

func (s *eventStream) Next() (Event, error) {
	select {
	case m := <-s.msgs:
		return Event{
			Time:       m.Time,
			Type:       string(m.Type),
			Action:     string(m.Action),
			ActorID:    m.Actor.ID,
			Attributes: m.Actor.Attributes,
		}, nil
	case err := <-s.errs:
		if err == nil || errors.Is(err, io.EOF) || s.ctx.Err() != nil {
			return Event{}, io.EOF
		}
		return Event{}, callErr("receive events", "", err)
	}
}

func (s *eventStream) Close() error {
	s.cancel()
	return nil
}
