package enginetest

import (
	"bytes"
	"io"
	"sync"

	"github.com/rickgorman/dockers/internal/engine"
)

// ChunkList is a finite engine.ChunkStream.
type ChunkList struct {
	mu     sync.Mutex
	chunks []engine.Chunk
	err    error
	closed bool
}

// Chunks returns a stream that yields chunks then io.EOF.
func Chunks(chunks ...engine.Chunk) *ChunkList {
	return &ChunkList{chunks: chunks}
}

// ChunksThenError returns a stream that yields chunks then err.
func ChunksThenError(err error, chunks ...engine.Chunk) *ChunkList {
	return &ChunkList{chunks: chunks, err: err}
}

func (l *ChunkList) Next() (engine.Chunk, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return engine.Chunk{}, io.EOF
	}
	if len(l.chunks) == 0 {
		if l.err != nil {
			return engine.Chunk{}, l.err
		}
		return engine.Chunk{}, io.EOF
	}
	c := l.chunks[0]
	l.chunks = l.chunks[1:]
	return c, nil
}

func (l *ChunkList) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Closed reports whether Close was called.
func (l *ChunkList) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

type sample struct {
	snap engine.Snapshot
	err  error
}

// SampleFeed is an engine.SampleStream driven by the test.
type SampleFeed struct {
	ch   chan sample
	done chan struct{}
	once sync.Once
}

// NewSampleFeed returns an open feed. Next blocks until Send, End, Fail or Close.
func NewSampleFeed() *SampleFeed {
	return &SampleFeed{ch: make(chan sample), done: make(chan struct{})}
}

// Send delivers one sample and waits for it to be received.
func (f *SampleFeed) Send(s engine.Snapshot) {
	select {
	case f.ch <- sample{snap: s}:
	case <-f.done:
	}
}

// End makes the next receive return io.EOF.
func (f *SampleFeed) End() {
	f.Fail(io.EOF)
}

// Fail makes the next receive return err.
func (f *SampleFeed) Fail(err error) {
	select {
	case f.ch <- sample{err: err}:
	case <-f.done:
	}
}

func (f *SampleFeed) Next() (engine.Snapshot, error) {
	select {
	case s := <-f.ch:
		return s.snap, s.err
	case <-f.done:
		return engine.Snapshot{}, io.EOF
	}
}

func (f *SampleFeed) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

// EventList is a finite engine.EventStream.
type EventList struct {
	mu     sync.Mutex
	events []engine.Event
}

// Events returns a stream that yields events then io.EOF.
func Events(events ...engine.Event) *EventList {
	return &EventList{events: events}
}

func (l *EventList) Next() (engine.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return engine.Event{}, io.EOF
	}
	e := l.events[0]
	l.events = l.events[1:]
	return e, nil
}

func (l *EventList) Close() error { return nil }

// Input records what is written to a container's stdin.
type Input struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (in *Input) Write(p []byte) (int, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return 0, io.ErrClosedPipe
	}
	return in.buf.Write(p)
}

func (in *Input) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
	return nil
}

// Closed reports whether Close was called.
func (in *Input) Closed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}

// String returns everything written so far.
func (in *Input) String() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.buf.String()
}

// ChunkFeed is an engine.ChunkStream driven by the test.
type ChunkFeed struct {
	ch   chan engine.Chunk
	done chan struct{}
	once sync.Once
}

// NewChunkFeed returns an open feed. Next blocks until Send, End or Close.
func NewChunkFeed() *ChunkFeed {
	return &ChunkFeed{ch: make(chan engine.Chunk), done: make(chan struct{})}
}

// Send delivers one chunk and waits for it to be received.
func (f *ChunkFeed) Send(c engine.Chunk) {
	select {
	case f.ch <- c:
	case <-f.done:
	}
}

// End ends the stream.
func (f *ChunkFeed) End() {
	_ = f.Close()
}

func (f *ChunkFeed) Next() (engine.Chunk, error) {
	select {
	case c := <-f.ch:
		return c, nil
	case <-f.done:
		return engine.Chunk{}, io.EOF
	}
}

func (f *ChunkFeed) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}
