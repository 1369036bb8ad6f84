// Package progress draws a one-line spinner with a counter, redrawn in place.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type ProgressTracker struct {
	out       io.Writer
	total     int
	current   int
	message   string
	mu        sync.Mutex
	startTime time.Time
	done      chan struct{}
	stopped   chan struct{}
	once      sync.Once
}

// NewProgress starts drawing to out until Finish is called.
func NewProgress(out io.Writer, total int, message string) *ProgressTracker {
	p := &ProgressTracker{
		out:       out,
		total:     total,
		message:   message,
		startTime: time.Now(),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go p.render(100 * time.Millisecond)
	return p
}

func (p *ProgressTracker) render(interval time.Duration) {
	defer close(p.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-p.done:
			p.mu.Lock()
			elapsed := time.Since(p.startTime)
			fmt.Fprintf(p.out, "\r✓ %s (%d/%d, %s)          \n",
				p.message, p.current, p.total, elapsed.Round(time.Millisecond))
			p.mu.Unlock()
			return

		case <-ticker.C:
			p.mu.Lock()
			if p.total > 0 {
				percent := float64(p.current) / float64(p.total) * 100
				fmt.Fprintf(p.out, "\r%s %s [%d/%d] %.0f%%  ",
					spinner[frame%len(spinner)], p.message, p.current, p.total, percent)
			} else {
				fmt.Fprintf(p.out, "\r%s %s [%d]  ",
					spinner[frame%len(spinner)], p.message, p.current)
			}
			p.mu.Unlock()
			frame++
		}
	}
}

func (p *ProgressTracker) Increment() {
	p.mu.Lock()
	p.current++
	p.mu.Unlock()
}

func (p *ProgressTracker) SetCurrent(n int) {
	p.mu.Lock()
	p.current = n
	p.mu.Unlock()
}

// Finish prints the final line and returns once drawing has stopped. It is
// safe to call more than once.
func (p *ProgressTracker) Finish() {
	p.once.Do(func() { close(p.done) })
	<-p.stopped
}
