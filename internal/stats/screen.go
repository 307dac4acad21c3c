package stats

import (
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/muesli/termenv"
)

// Screen paints whole frames onto a terminal. Unless keep is set it switches
// to the alternate screen on open and clears before every frame.
type Screen struct {
	out  *termenv.Output
	keep bool

	restore sync.Once
	signals chan os.Signal
	done    chan struct{}
}

// OpenScreen prepares w for painting. Unless keep is set it also installs an
// interrupt handler that restores the terminal and exits the process with
// status 0.
func OpenScreen(w io.Writer, keep bool) *Screen {
	s := openScreen(w, keep, os.Exit)
	if !keep {
		signal.Notify(s.signals, os.Interrupt)
	}
	return s
}

func openScreen(w io.Writer, keep bool, exit func(int)) *Screen {
	s := &Screen{
		out:     termenv.NewOutput(w),
		keep:    keep,
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	if !keep {
		s.out.AltScreen()
	}
	go s.watch(exit)
	return s
}

func (s *Screen) watch(exit func(int)) {
	select {
	case <-s.signals:
		s.Restore()
		exit(0)
	case <-s.done:
	}
}

// Paint replaces the visible frame.
func (s *Screen) Paint(frame []byte) error {
	if !s.keep {
		s.out.ClearScreen()
		s.out.MoveCursor(1, 1)
	}
	_, err := s.out.Write(frame)
	return err
}

// Restore leaves the alternate screen and removes the interrupt handler.
// Only the first call has any effect.
func (s *Screen) Restore() {
	s.restore.Do(func() {
		signal.Stop(s.signals)
		close(s.done)
		if !s.keep {
			s.out.ExitAltScreen()
		}
	})
}
