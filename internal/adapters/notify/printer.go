// Package notify prints notifications to the terminal.
package notify

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/ui/output"
	"go.trai.ch/daybook/internal/ui/style"
)

// Printer writes each added notification as one styled line.
type Printer struct {
	mu  sync.Mutex
	out *termenv.Output
}

// NewPrinter creates a printer writing to w, or to stderr when w is nil.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: output.New(w)}
}

// SetOutput changes the destination of subsequent lines.
func (p *Printer) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	p.out = output.New(w)
}

// Handle prints entries as they are added. Removals are not printed.
func (p *Printer) Handle(ev domain.ToastEvent) {
	if ev.Kind != domain.ToastAdded {
		return
	}
	p.Print(ev.Entry)
}

// Print writes entry.
func (p *Printer) Print(entry domain.ToastEntry) {
	icon, color := decoration(entry.Kind)
	line := icon + " " + strings.ReplaceAll(entry.Message, "\n", " ")

	p.mu.Lock()
	defer p.mu.Unlock()

	styled := p.out.String(line).Foreground(termenv.RGBColor(string(color)))
	_, _ = p.out.WriteString(styled.String() + "\n")
}

func decoration(kind domain.ToastKind) (string, lipgloss.Color) {
	switch kind {
	case domain.ToastWarn:
		return style.Warning, style.Yellow
	case domain.ToastError:
		return style.Cross, style.Red
	default:
		return style.Check, style.Green
	}
}
