package goldmark

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/converse"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type renderer struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

func newRenderer(theme converse.Theme) *renderer {
	return &renderer{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func (r *renderer) render(source []byte, width int) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	var out blocks
	r.renderChildren(doc, source, width, &out)
	return out.String()
}

// blocks joins rendered blocks with one blank line between them.
type blocks struct {
	parts []string
}

func (b *blocks) add(s string) {
	s = strings.TrimRight(s, "\n")
	if s != "" {
		b.parts = append(b.parts, s)
	}
}

func (b *blocks) String() string { return strings.Join(b.parts, "\n\n") }

func (r *renderer) renderChildren(node ast.Node, source []byte, width int, out *blocks) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderBlock(c, source, width, out)
	}
}

func (r *renderer) renderBlock(node ast.Node, source []byte, width int, out *blocks) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		out.add(wrap(r.inline(n, source), width))

	case *ast.Heading:
		out.add(wrap(r.heading.Render(r.inline(n, source)), width))

	case *ast.FencedCodeBlock:
		var b strings.Builder
		if lang := string(n.Language(source)); lang != "" {
			b.WriteString(r.muted.Render(lang) + "\n")
		}
		b.WriteString(r.code(n, source))
		out.add(b.String())

	case *ast.CodeBlock:
		out.add(r.code(n, source))

	case *ast.Blockquote:
		var inner blocks
		r.renderChildren(n, source, width-2, &inner)
		out.add(r.gutter(inner.String(), "┃"))

	case *ast.List:
		var b bytes.Buffer
		r.list(n, source, width, &b, 0)
		out.add(b.String())

	case *ast.ThematicBreak:
		out.add(r.muted.Render(strings.Repeat("─", min(width, 40))))

	case *ast.HTMLBlock:
		var b strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
		out.add(b.String())

	default:
		r.renderChildren(node, source, width, out)
	}
}

// code renders literal lines behind a muted gutter without reflow.
func (r *renderer) code(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.WriteString(strings.TrimRight(string(seg.Value(source)), "\n"))
		b.WriteByte('\n')
	}
	return r.gutter(b.String(), "│")
}

func (r *renderer) gutter(s, bar string) string {
	prefix := r.muted.Render(bar) + " "
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) list(node *ast.List, source []byte, width int, buf *bytes.Buffer, depth int) {
	n := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n)
			n++
		}
		indent := strings.Repeat("  ", depth)

		var content strings.Builder
		flush := func() {
			if content.Len() > 0 {
				writeItem(buf, indent+marker, content.String(), width)
				content.Reset()
				marker = strings.Repeat(" ", len(marker))
			}
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if content.Len() > 0 {
					content.WriteByte(' ')
				}
				content.WriteString(r.inline(in, source))
			case *ast.List:
				flush()
				r.list(in, source, width, buf, depth+1)
			default:
				flush()
				var nested blocks
				r.renderBlock(ic, source, width-len(indent)-2, &nested)
				for _, line := range strings.Split(nested.String(), "\n") {
					buf.WriteString(indent + "  " + line + "\n")
				}
			}
		}
		flush()
	}
}

// writeItem wraps content to fit after prefix and indents continuation
// lines under the first.
func writeItem(buf *bytes.Buffer, prefix, content string, width int) {
	w := max(width-len(prefix), 10)
	lines := strings.Split(wrap(content, w), "\n")
	pad := strings.Repeat(" ", len(prefix))
	for i, line := range lines {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
		} else {
			buf.WriteString(pad + line + "\n")
		}
	}
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func (r *renderer) inline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(c, source, &buf)
	}
	return buf.String()
}

func (r *renderer) renderInline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.inline(n, source)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *ast.CodeSpan:
		buf.WriteString(r.bold.Render(r.inline(n, source)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.inline(n, source)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(source))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.inline(n, source)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.renderInline(c, source, buf)
		}
	}
}
