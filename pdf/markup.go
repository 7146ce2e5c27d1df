package pdf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// BlockKind identifies how a Block is laid out.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockTableRow
	BlockRule
)

// Block is one laid-out unit of a document.
type Block struct {
	Kind BlockKind
	Text string
	// Level is the heading level (1-6) for headings and the 1-based item
	// number for ordered list items; zero otherwise.
	Level  int
	Cells  []string
	Header bool
}

// Document is parsed markup ready for an engine.
type Document struct {
	HTML   string
	Blocks []Block
}

// ErrNoContent is returned for markup with nothing to render.
var ErrNoContent = errors.New("markup has no renderable content")

// MarkupError reports malformed markup.
type MarkupError struct {
	Tag    string
	Reason string
}

func (e *MarkupError) Error() string {
	if e.Tag == "" {
		return "malformed markup: " + e.Reason
	}
	return fmt.Sprintf("malformed markup: <%s> %s", e.Tag, e.Reason)
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "template": true,
}

var blockElements = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "section": true,
	"article": true, "header": true, "footer": true, "main": true,
	"blockquote": true, "ul": true, "ol": true, "li": true, "table": true,
	"thead": true, "tbody": true, "tfoot": true, "caption": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// StripFences removes a surrounding Markdown code fence (```html ... ```),
// which models often wrap HTML answers in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseMarkup reads HTML strictly: every non-void element must be closed in
// order, and the result must contain at least one non-empty block.
func ParseMarkup(raw string) (Document, error) {
	src := StripFences(raw)
	p := &markupParser{}

	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				if err := p.finish(); err != nil {
					return Document{}, err
				}
				return Document{HTML: src, Blocks: p.blocks}, nil
			}
			return Document{}, &MarkupError{Reason: z.Err().Error()}
		case html.StartTagToken:
			tok := z.Token()
			if err := p.start(tok.Data); err != nil {
				return Document{}, err
			}
		case html.SelfClosingTagToken:
			p.void(z.Token().Data)
		case html.EndTagToken:
			if err := p.end(z.Token().Data); err != nil {
				return Document{}, err
			}
		case html.TextToken:
			p.text(string(z.Text()))
		}
	}
}

type markupParser struct {
	stack     []string
	buf       strings.Builder
	blocks    []Block
	row       []string
	rowHeader bool
	skip      int
	listItems []int
}

func (p *markupParser) start(name string) error {
	if voidElements[name] {
		p.void(name)
		return nil
	}
	if skippedElements[name] {
		p.skip++
	}
	switch {
	case name == "tr":
		p.flush()
		p.row = nil
		p.rowHeader = false
	case name == "td" || name == "th":
		p.buf.Reset()
		if name == "th" {
			p.rowHeader = true
		}
	case name == "ol":
		p.flush()
		p.listItems = append(p.listItems, 0)
	case name == "ul":
		p.flush()
		p.listItems = append(p.listItems, -1)
	case name == "li":
		p.flush()
		if n := len(p.listItems); n > 0 && p.listItems[n-1] >= 0 {
			p.listItems[n-1]++
		}
	case blockElements[name]:
		p.flush()
	}
	p.stack = append(p.stack, name)
	return nil
}

func (p *markupParser) void(name string) {
	switch name {
	case "br":
		p.flush()
	case "hr":
		p.flush()
		p.blocks = append(p.blocks, Block{Kind: BlockRule})
	}
}

func (p *markupParser) end(name string) error {
	if voidElements[name] {
		return nil
	}
	if len(p.stack) == 0 {
		return &MarkupError{Tag: "/" + name, Reason: "closes an element that was never opened"}
	}
	if top := p.stack[len(p.stack)-1]; top != name {
		return &MarkupError{Tag: "/" + name, Reason: fmt.Sprintf("does not match open <%s>", top)}
	}

	switch {
	case name == "td" || name == "th":
		p.row = append(p.row, collapse(p.buf.String()))
		p.buf.Reset()
	case name == "tr":
		if len(p.row) > 0 {
			p.blocks = append(p.blocks, Block{Kind: BlockTableRow, Cells: p.row, Header: p.rowHeader})
		}
		p.row = nil
	case name == "ol" || name == "ul":
		p.flush()
		p.listItems = p.listItems[:len(p.listItems)-1]
	case blockElements[name]:
		p.flush()
	}

	if skippedElements[name] {
		p.skip--
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

func (p *markupParser) text(s string) {
	if p.skip > 0 {
		return
	}
	p.buf.WriteString(s)
	p.buf.WriteByte(' ')
}

// flush emits buffered text as a block typed by the innermost open element.
// Text inside a table cell stays buffered until the cell closes.
func (p *markupParser) flush() {
	if p.inCell() {
		return
	}
	text := collapse(p.buf.String())
	p.buf.Reset()
	if text == "" {
		return
	}

	block := Block{Kind: BlockParagraph, Text: text}
	for i := len(p.stack) - 1; i >= 0; i-- {
		tag := p.stack[i]
		if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
			block.Kind = BlockHeading
			block.Level = int(tag[1] - '0')
			break
		}
		if tag == "li" {
			block.Kind = BlockListItem
			if n := len(p.listItems); n > 0 && p.listItems[n-1] > 0 {
				block.Level = p.listItems[n-1]
			}
			break
		}
	}
	p.blocks = append(p.blocks, block)
}

func (p *markupParser) inCell() bool {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i] == "td" || p.stack[i] == "th" {
			return true
		}
	}
	return false
}

func (p *markupParser) finish() error {
	if n := len(p.stack); n > 0 {
		return &MarkupError{Tag: p.stack[n-1], Reason: "is never closed"}
	}
	p.flush()
	if len(p.blocks) == 0 {
		return ErrNoContent
	}
	return nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
