// Package render converts notebooks into the HTML fragments and section
// maps stored in the notebook sidecars.
package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-textbook/internal/fileutil"
	"github.com/alnah/go-textbook/internal/notebook"
)

// Output mime types rendered from code cells.
const (
	mimeText = "text/plain"
	mimePNG  = "image/png"
)

// ansiEscape matches terminal colour sequences found in tracebacks.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// Options configures a Renderer.
type Options struct {
	// InlineImages embeds figures as base64 data URIs instead of writing
	// fig_NN.png files.
	InlineImages bool
}

// Renderer converts notebooks to HTML.
type Renderer struct {
	conv *Converter
	opts Options
}

// New returns a Renderer.
func New(opts Options) *Renderer {
	return &Renderer{conv: NewConverter(), opts: opts}
}

// Page is a rendered notebook.
type Page struct {
	HTML    string
	Figures []string // written figure paths, in order
}

// FigureDir returns the directory holding a notebook's figures.
func FigureDir(outDir, notebookName string) string {
	return filepath.Join(outDir, "output_nb_"+fileutil.Stem(notebookName))
}

// Render converts nb to HTML. Figures are written under
// FigureDir(outDir, nb.Name) unless images are inlined.
func (r *Renderer) Render(ctx context.Context, nb *notebook.Notebook, outDir string) (*Page, error) {
	p := &pageBuilder{
		renderer: r,
		figDir:   FigureDir(outDir, nb.Name),
		page:     &Page{},
	}

	for i, cell := range nb.Cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		switch cell.Type {
		case notebook.CellCode:
			err = p.codeCell(cell)
		case notebook.CellMarkdown:
			err = p.markdownCell(cell)
		}
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
	}

	p.page.HTML = strings.Join(p.blocks, "\n")
	return p.page, nil
}

// Standalone wraps rendered HTML in a minimal document for previewing.
func Standalone(fragment string) string {
	return "<html><body>\n" + fragment + "\n</body></html>"
}

type pageBuilder struct {
	renderer *Renderer
	figDir   string
	page     *Page
	blocks   []string
	pending  []string
	figures  int
}

func (p *pageBuilder) codeCell(cell notebook.Cell) error {
	code, err := p.renderer.conv.Code(string(cell.Source))
	if err != nil {
		return err
	}
	p.blocks = append(p.blocks, "<!-- code cell -->\n<div class='code-cell'>\n"+code+"</div>")

	for _, out := range cell.Outputs {
		if text, ok := out.DataText(mimeText); ok {
			p.pending = append(p.pending, html.EscapeString(text))
		}
		if out.OutputType == "stream" && out.Name == "stdout" {
			p.pending = append(p.pending, html.EscapeString(string(out.Text)))
		}
		if data, ok := out.DataText(mimePNG); ok {
			p.flushOutputs()
			if err := p.image(data); err != nil {
				return err
			}
		}
		if out.OutputType == "error" {
			trace := ansiEscape.ReplaceAllString(strings.Join(out.Traceback, "\n"), "")
			p.blocks = append(p.blocks,
				"<!-- code cell error -->\n<div class='output-cell error'>\n<pre>"+html.EscapeString(trace)+"</pre>\n</div>")
		}
	}
	p.flushOutputs()
	return nil
}

// flushOutputs emits text outputs gathered since the last image.
func (p *pageBuilder) flushOutputs() {
	if len(p.pending) == 0 {
		return
	}
	p.blocks = append(p.blocks,
		"<!-- code cell output -->\n<div class='output-cell'>\n<div class='output-label'>Out:</div>\n"+
			"<div class='output-code'><pre>"+strings.Join(p.pending, "\n")+"</pre></div>\n</div>")
	p.pending = nil
}

func (p *pageBuilder) image(data string) error {
	encoded := strings.Join(strings.Fields(data), "")
	if p.renderer.opts.InlineImages {
		p.blocks = append(p.blocks,
			"<!-- code cell image -->\n<div class='output-cell'>\n<img src='data:image/png;base64,"+encoded+"'/>\n</div>")
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decoding figure: %w", err)
	}
	p.figures++
	name := fmt.Sprintf("fig_%02d.png", p.figures)
	path := filepath.Join(p.figDir, name)
	if err := os.MkdirAll(p.figDir, fileutil.DirPermissions); err != nil {
		return fmt.Errorf("creating figure directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, raw, fileutil.FilePermissions); err != nil {
		return fmt.Errorf("writing figure: %w", err)
	}
	p.page.Figures = append(p.page.Figures, path)

	src := filepath.ToSlash(filepath.Join(filepath.Base(p.figDir), name))
	p.blocks = append(p.blocks,
		"<!-- code cell image -->\n<div class='output-cell'>\n<img src='"+src+"'/>\n</div>")
	return nil
}

func (p *pageBuilder) markdownCell(cell notebook.Cell) error {
	body, err := p.renderer.conv.Markdown(string(cell.Source))
	if err != nil {
		return err
	}
	p.blocks = append(p.blocks, "<!-- markdown cell -->\n<div class='markdown-cell'>\n"+body+"</div>")
	return nil
}
