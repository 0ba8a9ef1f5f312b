// Package spinner draws a one-line progress indicator while a stage waits on
// the completion backend.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Spinner animates a message on a single terminal line.
type Spinner struct {
	w       io.Writer
	mu      sync.Mutex
	message string
	width   int
	done    chan struct{}
	cleared chan struct{}
	once    sync.Once
}

// Start displays an animated spinner with message on w and returns it
// running. Writers that are files but not terminals get no animation.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		message: message,
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	if f, ok := w.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		close(s.cleared)
		return s
	}
	go s.loop()
	return s
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	<-s.cleared
}

func (s *Spinner) loop() {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-s.done:
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width)) //nolint:errcheck
			close(s.cleared)
			return
		case <-ticker.C:
			s.mu.Lock()
			line := frames[i%len(frames)] + " " + s.message
			s.mu.Unlock()
			// Pad over a longer previous message.
			w := runewidth.StringWidth(line)
			pad := ""
			if s.width > w {
				pad = strings.Repeat(" ", s.width-w)
			} else {
				s.width = w
			}
			fmt.Fprintf(s.w, "\r%s%s", line, pad) //nolint:errcheck
			i++
		}
	}
}
