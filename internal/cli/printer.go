package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Printer is the CLI's itinerary.Presenter and voice.Notifier. Background
// syncs report through it, so writes are serialized.
type Printer struct {
	mu sync.Mutex
	w  io.Writer

	ok     lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
}

func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:      w,
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		header: r.NewStyle().Bold(true),
		muted:  r.NewStyle().Faint(true),
	}
}

func (p *Printer) Success(msg string) { p.line(p.ok.Render("✓ " + msg)) }
func (p *Printer) Warning(msg string) { p.line(p.warn.Render("! " + msg)) }
func (p *Printer) Error(msg string)   { p.line(p.fail.Render("✗ " + msg)) }

func (p *Printer) PromptLogin() {
	p.line(p.warn.Render("! please log in: tripctl login --email <email>"))
}

func (p *Printer) ShowList() {
	p.line(p.muted.Render("run `tripctl itinerary list` to see your itineraries"))
}

func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *Printer) Header(s string) { p.line(p.header.Render(s)) }

// Table prints an aligned table. Widths are measured in terminal cells so
// CJK text lines up.
func (p *Printer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	render := func(cells []string) string {
		var b strings.Builder
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		return strings.TrimRight(b.String(), " ")
	}

	p.line(p.header.Render(render(headers)))
	for _, row := range rows {
		p.line(render(row))
	}
}

func (p *Printer) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}
