package ui

import (
	"fmt"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	"compsbot/pdf"
)

const minRenderWidth = 40

// renderAnswer formats a final answer for the terminal. HTML summaries are
// reduced to their text blocks first; anything else is treated as Markdown.
func renderAnswer(content string, width int) string {
	if doc, err := pdf.ParseMarkup(content); err == nil && looksLikeHTML(content) {
		content = blocksToMarkdown(doc.Blocks)
	}
	return renderMarkdown(content, width)
}

func looksLikeHTML(content string) bool {
	s := strings.ToLower(pdf.StripFences(content))
	return strings.HasPrefix(s, "<") && strings.Contains(s, "</")
}

// renderMarkdown renders with go-term-markdown. Autolinking is off so plain
// URLs stay plain and the terminal can detect them.
func renderMarkdown(content string, width int) string {
	if width < minRenderWidth {
		width = minRenderWidth
	}
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)
	return strings.TrimRight(string(rendered), "\n")
}

// blocksToMarkdown rewrites parsed HTML blocks as Markdown.
func blocksToMarkdown(blocks []pdf.Block) string {
	var sb strings.Builder
	headerDone := false
	for i, b := range blocks {
		switch b.Kind {
		case pdf.BlockHeading:
			sb.WriteString(strings.Repeat("#", max(b.Level, 1)) + " " + b.Text + "\n\n")
		case pdf.BlockListItem:
			if b.Level > 0 {
				fmt.Fprintf(&sb, "%d. %s\n", b.Level, b.Text)
			} else {
				sb.WriteString("- " + b.Text + "\n")
			}
			if i+1 == len(blocks) || blocks[i+1].Kind != pdf.BlockListItem {
				sb.WriteString("\n")
			}
		case pdf.BlockTableRow:
			sb.WriteString("| " + strings.Join(escapeCells(b.Cells), " | ") + " |\n")
			if b.Header && !headerDone {
				sb.WriteString("|" + strings.Repeat(" --- |", len(b.Cells)) + "\n")
				headerDone = true
			}
			if i+1 == len(blocks) || blocks[i+1].Kind != pdf.BlockTableRow {
				sb.WriteString("\n")
				headerDone = false
			}
		case pdf.BlockRule:
			sb.WriteString("---\n\n")
		default:
			sb.WriteString(b.Text + "\n\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// truncate shortens s to width terminal cells.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
