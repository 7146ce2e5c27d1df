package ui

import (
	"strings"
	"testing"

	"compsbot/pdf"
)

func TestBlocksToMarkdown(t *testing.T) {
	tests := []struct {
		name   string
		blocks []pdf.Block
		want   string
	}{
		{
			name:   "heading and paragraph",
			blocks: []pdf.Block{{Kind: pdf.BlockHeading, Text: "Comps", Level: 2}, {Kind: pdf.BlockParagraph, Text: "Three homes."}},
			want:   "## Comps\n\nThree homes.\n",
		},
		{
			name: "bullets then paragraph",
			blocks: []pdf.Block{
				{Kind: pdf.BlockListItem, Text: "a"},
				{Kind: pdf.BlockListItem, Text: "b"},
				{Kind: pdf.BlockParagraph, Text: "end"},
			},
			want: "- a\n- b\n\nend\n",
		},
		{
			name:   "numbered list",
			blocks: []pdf.Block{{Kind: pdf.BlockListItem, Text: "first", Level: 1}, {Kind: pdf.BlockListItem, Text: "second", Level: 2}},
			want:   "1. first\n2. second\n",
		},
		{
			name: "table with header",
			blocks: []pdf.Block{
				{Kind: pdf.BlockTableRow, Cells: []string{"Address", "Price"}, Header: true},
				{Kind: pdf.BlockTableRow, Cells: []string{"1 Elm | Apt 2", "$300,000"}},
			},
			want: "| Address | Price |\n| --- | --- |\n| 1 Elm \\| Apt 2 | $300,000 |\n",
		},
		{
			name:   "rule",
			blocks: []pdf.Block{{Kind: pdf.BlockParagraph, Text: "x"}, {Kind: pdf.BlockRule}},
			want:   "x\n\n---\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blocksToMarkdown(tt.blocks); got != tt.want {
				t.Errorf("blocksToMarkdown() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<h1>Comps</h1>", true},
		{"```html\n<p>x</p>\n```", true},
		{"Please provide a full address.", false},
		{"< 3 bedrooms", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := looksLikeHTML(tt.in); got != tt.want {
			t.Errorf("looksLikeHTML(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"line one\nline two", 40, "line one line two"},
		{"abcdefghij", 8, "abcde..."},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestRenderAnswerConvertsHTML(t *testing.T) {
	out := renderAnswer("<h2>Market Summary</h2><ul><li>Median $410,000</li></ul>", 80)
	if strings.Contains(out, "<h2>") || strings.Contains(out, "<li>") {
		t.Errorf("HTML tags leaked into terminal output: %q", out)
	}
	if !strings.Contains(out, "Median $410,000") {
		t.Errorf("list text missing from output: %q", out)
	}
}

func TestRenderAnswerPlainText(t *testing.T) {
	out := renderAnswer("Could you give me the full address?", 100)
	if !strings.Contains(out, "full address") {
		t.Errorf("plain answer lost: %q", out)
	}
}
