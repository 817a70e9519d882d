package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

const barWidth = 30

// ProgressBar draws a status line and a 0-100% bar. On a terminal it
// redraws in place; elsewhere it prints one line per change.
type ProgressBar struct {
	out          io.Writer
	output       *termenv.Output
	interactive  bool
	colorEnabled bool
	lastLine     string
	drawn        bool
}

func NewProgressBar(out io.Writer, interactive bool, colorEnabled bool) *ProgressBar {
	return &ProgressBar{
		out:          out,
		output:       termenv.NewOutput(out),
		interactive:  interactive,
		colorEnabled: colorEnabled,
	}
}

// Update renders status at percent (clamped to 0..100).
func (p *ProgressBar) Update(status string, percent int) {
	line := p.render(status, percent)
	if line == p.lastLine {
		return
	}
	p.lastLine = line

	if p.interactive {
		fmt.Fprintf(p.out, "\r\033[2K%s", line)
		p.drawn = true
		return
	}
	fmt.Fprintln(p.out, line)
}

// Finish ends the in-place line so later output starts on a fresh line.
func (p *ProgressBar) Finish() {
	if p.interactive && p.drawn {
		fmt.Fprintln(p.out)
	}
	p.drawn = false
	p.lastLine = ""
}

func (p *ProgressBar) render(status string, percent int) string {
	return fmt.Sprintf("%s %3d%%  %s", p.bar(percent), clampPercent(percent), strings.TrimSpace(status))
}

func (p *ProgressBar) bar(percent int) string {
	filled := clampPercent(percent) * barWidth / 100
	done := strings.Repeat("#", filled)
	rest := strings.Repeat("-", barWidth-filled)
	if p.colorEnabled && done != "" {
		done = p.output.String(done).Foreground(p.output.Color("2")).String()
	}
	return "[" + done + rest + "]"
}

func clampPercent(percent int) int {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return percent
	}
}
