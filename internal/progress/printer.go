package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"prodimport/internal/tracker"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text or json)", s)
	}
}

const barWidth = 30

// Printer renders tracker callbacks to a terminal, either as a single
// redrawn progress bar or as one JSON object per line.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	drawn  bool
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

type printedEvent struct {
	Event EventType `json:"event"`
	tracker.Progress
	Error string `json:"error,omitempty"`
}

func (p *Printer) OnProgress(pr tracker.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.format == FormatJSON {
		p.encode(printedEvent{Event: EventProgress, Progress: pr})
		return
	}
	fmt.Fprint(p.w, "\r"+Line(pr))
	p.drawn = true
}

func (p *Printer) OnComplete(pr tracker.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.format == FormatJSON {
		p.encode(printedEvent{Event: EventCompleted, Progress: pr})
		return
	}
	fmt.Fprint(p.w, "\r"+Line(pr)+"\n")
	p.drawn = false
}

func (p *Printer) OnFailed(jobID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.format == FormatJSON {
		p.encode(printedEvent{Event: EventFailed, Progress: tracker.Progress{JobID: jobID}, Error: err.Error()})
		return
	}
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
	fmt.Fprintf(p.w, "Import %s failed: %v\n", jobID, err)
}

func (p *Printer) encode(v printedEvent) {
	_ = json.NewEncoder(p.w).Encode(v)
}

// Line formats one progress state as "[####------]  42% completed".
func Line(pr tracker.Progress) string {
	filled := int(pr.Percent / 100 * barWidth)
	filled = max(0, min(barWidth, filled))
	line := fmt.Sprintf("[%s%s] %3.0f%% completed",
		strings.Repeat("#", filled), strings.Repeat("-", barWidth-filled), pr.Percent)
	if pr.Message != "" {
		line += "  " + pr.Message
	}
	return line
}
