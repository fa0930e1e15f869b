package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	textbook "github.com/alnah/go-textbook"
)

// reportPrinter writes the operator-facing build report.
type reportPrinter struct {
	w       io.Writer
	quiet   bool
	verbose bool

	ok     *color.Color
	warn   *color.Color
	fail   *color.Color
	faint  *color.Color
	notice *color.Color
}

func newReportPrinter(w io.Writer, f commonFlags) *reportPrinter {
	p := &reportPrinter{
		w:       w,
		quiet:   f.quiet,
		verbose: f.verbose,
		ok:      color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed, color.Bold),
		faint:   color.New(color.Faint),
		notice:  color.New(color.FgCyan),
	}
	if f.noColor {
		for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.faint, p.notice} {
			c.DisableColor()
		}
	}
	return p
}

// Print writes one line per executed or failed notebook (every notebook
// with -v), the advisories with their hints, and a summary. Quiet mode
// prints failures only.
func (p *reportPrinter) Print(r *textbook.Report) {
	for _, nb := range r.Notebooks {
		switch {
		case nb.Err != nil:
			p.fail.Fprintf(p.w, "failed    %s: %v\n", nb.Notebook, nb.Err)
		case p.quiet:
		case nb.Initiated && nb.FullyExecuted:
			p.ok.Fprintf(p.w, "executed  %s (%s, %s)\n", nb.Notebook, nb.Decision.Reason, roundDuration(nb.Duration))
		case nb.Initiated:
			p.warn.Fprintf(p.w, "partial   %s (%s, %d/%d cells, %s)\n",
				nb.Notebook, nb.Decision.Reason, nb.ExecutedCells, nb.CodeCells, roundDuration(nb.Duration))
		case p.verbose:
			p.faint.Fprintf(p.w, "skipped   %s (%s)\n", nb.Notebook, nb.Decision.Reason)
		}
	}
	if p.quiet {
		return
	}

	for _, a := range r.AllAdvisories() {
		if a.IsWarning() {
			p.warn.Fprintf(p.w, "warning: %s%s\n", a.Message(), a.Hint())
		} else {
			p.notice.Fprintf(p.w, "notice: %s%s\n", a.Message(), a.Hint())
		}
	}

	fmt.Fprintf(p.w, "%s build, %s: %d notebooks, %d executed, %d failed, %d warnings in %s\n",
		r.Mode, r.Filter, len(r.Notebooks), r.Executed(), len(r.Failed()), r.Warnings(), roundDuration(r.Duration))
}

func roundDuration(d time.Duration) time.Duration {
	if d < time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(100 * time.Millisecond)
}
