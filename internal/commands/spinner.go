package commands

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Sweep colors, matching the TUI's tokyonight palette
var sweepColors = []lipgloss.Color{
	lipgloss.Color("#7aa2f7"), // Blue
	lipgloss.Color("#7dcfff"), // Cyan
	lipgloss.Color("#bb9af7"), // Purple
	lipgloss.Color("#2ac3de"), // Teal
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner handles the animated loading indicator
type spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner
func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(90 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor while animating
		fmt.Fprint(os.Stderr, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(os.Stderr, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame: a braille spinner and a short
// pulse bar whose bright head sweeps back and forth
func (s *spinner) render() {
	glyph := spinnerFrames[s.frame%len(spinnerFrames)]
	color := sweepColors[(s.frame/len(spinnerFrames))%len(sweepColors)]
	spin := lipgloss.NewStyle().Foreground(color).Bold(true).Render(glyph)

	const barWidth = 10
	span := 2 * (barWidth - 1)
	head := s.frame % span
	if head >= barWidth {
		head = span - head
	}

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i == head:
			bar.WriteString(lipgloss.NewStyle().Foreground(color).Render("●"))
		case i == head-1 || i == head+1:
			bar.WriteString(lipgloss.NewStyle().Foreground(colorTextDim).Render("●"))
		default:
			bar.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("·"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(os.Stderr, "\r\033[K%s %s %s", spin, bar.String(), msg)
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows a success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	check := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(os.Stderr, "%s %s\n", check, msg)
}

// stopWithError stops the spinner silently
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}
