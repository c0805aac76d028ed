package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewOutput returns a termenv output for w. Colors are only enabled when w is a terminal.
func NewOutput(w io.Writer) *termenv.Output {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.NewOutput(w)
	}
	return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
}

// Printer writes notifications one per line, colored by lifecycle step.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, out: NewOutput(w)}
}

// Print writes the action type followed by its other fields as JSON.
func (p *Printer) Print(action domain.Action) {
	typ, _ := action.Type()
	label := p.out.String(fmt.Sprintf("%-8s", stepOf(typ))).Bold()
	switch stepOf(typ) {
	case string(domain.StepRequest):
		label = label.Foreground(p.out.Color("#38bdf8"))
	case string(domain.StepSuccess):
		label = label.Foreground(p.out.Color("#4ade80"))
	case string(domain.StepFailure):
		label = label.Foreground(p.out.Color("#f87171"))
	}

	fmt.Fprintf(p.w, "%s %s%s\n", label, typ, p.fields(action))
}

// PrintErrors writes validation messages.
func (p *Printer) PrintErrors(msgs []string) {
	for _, msg := range msgs {
		fmt.Fprintf(p.w, "%s %s\n", p.out.String("invalid ").Bold().Foreground(p.out.Color("#fbbf24")), msg)
	}
}

func (p *Printer) fields(action domain.Action) string {
	keys := slices.Sorted(maps.Keys(action))
	var sb strings.Builder
	for _, k := range keys {
		if k == domain.KeyType {
			continue
		}
		v, err := json.Marshal(action[k])
		if err != nil {
			v = []byte(fmt.Sprintf("%q", fmt.Sprint(action[k])))
		}
		sb.WriteString(" ")
		sb.WriteString(p.out.String(k + "=").Faint().String())
		sb.Write(v)
	}
	return sb.String()
}

func stepOf(typ string) string {
	i := strings.LastIndex(typ, domain.TokenSeparator)
	if i < 0 {
		return "ACTION"
	}
	if step, ok := domain.ParseStep(typ[i+1:]); ok {
		return string(step)
	}
	return "ACTION"
}
