package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/rickgorman/dockers/internal/engine"
)

// Terminal is the controlling terminal a session reads from and writes to.
type Terminal struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdTerminal returns the process's own stdin, stdout and stderr.
func StdTerminal() Terminal {
	return Terminal{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Duplexer attaches terminals to containers.
type Duplexer struct {
	eng    engine.Engine
	term   Terminal
	logger *log.Logger
}

// NewDuplexer creates a Duplexer pumping through term.
func NewDuplexer(eng engine.Engine, term Terminal, logger *log.Logger) *Duplexer {
	return &Duplexer{eng: eng, term: term, logger: logger}
}

// Session is a live attachment with its background tasks.
type Session struct {
	att    *engine.Attachment
	g      errgroup.Group
	cancel context.CancelFunc
}

// Attach attaches to a container and starts relaying its output. When
// interactive is set, terminal input lines are forwarded to the container too.
// The attach call itself happens before Attach returns, so output produced
// by a container started afterwards is not missed.
func (d *Duplexer) Attach(ctx context.Context, ref engine.ContainerRef, interactive bool) (*Session, error) {
	att, err := d.eng.Attach(ctx, ref.ID, engine.AttachOptions{Stdin: interactive})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{att: att, cancel: cancel}
	context.AfterFunc(ctx, func() { _ = att.Output.Close() })

	logger := d.logger.With("container", ref.ShortID())
	logger.Debug("attached", "interactive", interactive)

	s.g.Go(func() error {
		// Input forwarding has nothing left to do once the output closes.
		defer cancel()
		if err := pump(att.Output, d.term); err != nil {
			logger.Error("output stream failed", "err", err)
			return err
		}
		logger.Debug("output stream ended")
		return nil
	})

	if interactive && att.Input != nil {
		lines := readLines(ctx, d.term.In)
		s.g.Go(func() error {
			if err := forward(ctx, lines, att.Input); err != nil {
				logger.Error("input forwarding failed", "err", err)
				cancel()
				return err
			}
			return nil
		})
	}

	return s, nil
}

// Wait blocks until every task of the session has finished and returns the first error.
func (s *Session) Wait() error {
	err := s.g.Wait()
	s.cancel()
	// Both halves may already be closed by the tasks; a second close can only fail.
	_ = s.att.Close()
	return err
}

// Close stops the session's tasks. Wait still has to be called to collect errors.
func (s *Session) Close() {
	s.cancel()
}

// Follow relays a container's log stream to the terminal until it ends or ctx is cancelled.
func (d *Duplexer) Follow(ctx context.Context, id string, opts engine.LogOptions) error {
	logs, err := d.eng.Logs(ctx, id, opts)
	if err != nil {
		return err
	}
	defer logs.Close()

	stop := context.AfterFunc(ctx, func() { _ = logs.Close() })
	defer stop()

	return pump(logs, d.term)
}

type flusher interface {
	Flush() error
}

// pump writes every chunk to the terminal stream it is tagged for, flushing
// after each one. It returns nil when the stream ends.
func pump(out engine.ChunkStream, term Terminal) error {
	for {
		chunk, err := out.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := write(term, chunk); err != nil {
			return err
		}
	}
}

func write(term Terminal, c engine.Chunk) error {
	var w io.Writer
	switch c.Kind {
	case engine.Stdout, engine.Console:
		w = term.Out
	case engine.Stderr:
		w = term.Err
	default:
		return fmt.Errorf("unexpected %s chunk in container output", c.Kind)
	}

	if _, err := w.Write(c.Data); err != nil {
		return fmt.Errorf("failed to write container output: %w", err)
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush container output: %w", err)
		}
	}
	return nil
}

type line struct {
	data []byte
	err  error
}

// readLines reads r line by line in the background. The read itself cannot
// be interrupted, so a reader blocked on the terminal lives until process exit.
func readLines(ctx context.Context, r io.Reader) <-chan line {
	lines := make(chan line)
	go func() {
		defer close(lines)
		br := bufio.NewReader(r)
		for {
			data, err := br.ReadBytes('\n')
			if len(data) > 0 {
				select {
				case lines <- line{data: data}:
				case <-ctx.Done():
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				select {
				case lines <- line{err: err}:
				case <-ctx.Done():
				}
				return
			}
		}
	}()
	return lines
}

// forward writes each terminal line to the container's stdin. Terminal EOF
// closes the container's stdin.
func forward(ctx context.Context, lines <-chan line, in io.WriteCloser) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				if err := in.Close(); err != nil {
					return fmt.Errorf("failed to close container input: %w", err)
				}
				return nil
			}
			if l.err != nil {
				return fmt.Errorf("failed to read terminal input: %w", l.err)
			}
			if _, err := in.Write(l.data); err != nil {
				return fmt.Errorf("failed to write container input: %w", err)
			}
		}
	}
}
