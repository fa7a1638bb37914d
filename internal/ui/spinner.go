package ui

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/atomic"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows a waiting line with the elapsed time while a one-shot
// command waits for its transaction. The studio console has its own pending
// line and does not use it.
type Spinner struct {
	out      io.Writer
	msg      atomic.String
	interval time.Duration
	started  time.Time
	stop     chan struct{}
	done     chan struct{}
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, msg string) *Spinner {
	s := &Spinner{
		out:      out,
		interval: 80 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.msg.Store(msg)
	return s
}

// SetMsg replaces the message from any goroutine.
func (s *Spinner) SetMsg(msg string) { s.msg.Store(msg) }

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	s.started = time.Now()
	go func() {
		defer close(s.done)
		tick := time.NewTicker(s.interval)
		defer tick.Stop()
		for i := 0; ; i++ {
			s.render(i)
			select {
			case <-s.stop:
				fmt.Fprintf(s.out, "\r%-72s\r", "")
				return
			case <-tick.C:
			}
		}
	}()
}

// Stop halts the spinner, clears its line and returns how long it ran.
func (s *Spinner) Stop() time.Duration {
	close(s.stop)
	<-s.done
	return time.Since(s.started)
}

func (s *Spinner) render(i int) {
	frame := StyleChain.Render(spinnerFrames[i%len(spinnerFrames)])
	elapsed := time.Since(s.started).Truncate(time.Second)
	fmt.Fprintf(s.out, "\r%s  %s %s", frame, s.msg.Load(), StyleMeta.Render(elapsed.String()))
}
