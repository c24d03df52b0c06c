package console

import (
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// StartSpinner draws the first frame next to message immediately and keeps
// animating until stop is called. stop erases the line and returns only once
// the animation goroutine has exited, so nothing printed afterwards shares a
// line with a frame. stop may be called more than once.
func (pr *Printer) StartSpinner(message string) (stop func()) {
	// frame + space + message, measured in terminal cells
	width := runewidth.StringWidth(message) + 2
	draw := func(i int) {
		pr.Printf("\r%s%s%s %s", pr.p.Cyan, spinnerFrames[i%len(spinnerFrames)], pr.p.Reset, message)
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	draw(0)

	go func() {
		defer close(exited)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 1; ; i++ {
			select {
			case <-done:
				pr.Printf("\r%s\r", strings.Repeat(" ", width))
				return
			case <-ticker.C:
				draw(i)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
