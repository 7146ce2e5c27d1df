package pdf

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
)

const (
	fpdfLineHeight = 6.0
	fpdfCellPad    = 1.5
)

var headingSizes = [...]float64{0, 20, 16, 14, 12.5, 11.5, 11}

// FPDFEngine lays out parsed blocks with go-pdf/fpdf. It needs no external
// binary and ignores styling in the source HTML.
type FPDFEngine struct{}

func (FPDFEngine) Name() string { return "fpdf" }

func (FPDFEngine) Write(ctx context.Context, doc Document, path string) error {
	f := fpdf.New("P", "mm", "A4", "")
	f.SetMargins(18, 18, 18)
	f.SetAutoPageBreak(true, 18)
	f.SetCreator("compsbot", true)
	f.AddPage()

	w := &fpdfWriter{f: f, tr: f.UnicodeTranslatorFromDescriptor("")}
	for _, b := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.block(b)
	}

	if err := f.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

type fpdfWriter struct {
	f  *fpdf.Fpdf
	tr func(string) string
}

func (w *fpdfWriter) block(b Block) {
	f := w.f
	switch b.Kind {
	case BlockHeading:
		level := min(max(b.Level, 1), 6)
		f.Ln(2)
		f.SetFont("Helvetica", "B", headingSizes[level])
		f.MultiCell(0, headingSizes[level]*0.5, w.tr(b.Text), "", "L", false)
		f.Ln(1)
	case BlockListItem:
		marker := "•"
		if b.Level > 0 {
			marker = strconv.Itoa(b.Level) + "."
		}
		f.SetFont("Helvetica", "", 11)
		left, _, _, _ := f.GetMargins()
		f.SetX(left + 4)
		f.CellFormat(7, fpdfLineHeight, w.tr(marker), "", 0, "L", false, 0, "")
		f.MultiCell(0, fpdfLineHeight, w.tr(b.Text), "", "L", false)
	case BlockTableRow:
		w.tableRow(b)
	case BlockRule:
		left, _, right, _ := f.GetMargins()
		pageW, _ := f.GetPageSize()
		y := f.GetY() + 2
		f.Line(left, y, pageW-right, y)
		f.SetY(y + 2)
	default:
		f.SetFont("Helvetica", "", 11)
		f.MultiCell(0, fpdfLineHeight, w.tr(b.Text), "", "L", false)
		f.Ln(2)
	}
}

// tableRow draws one row of equal-width cells, wrapping each cell's text and
// sizing the row to its tallest cell.
func (w *fpdfWriter) tableRow(b Block) {
	f := w.f
	left, _, right, bottom := f.GetMargins()
	pageW, pageH := f.GetPageSize()
	cellW := (pageW - left - right) / float64(len(b.Cells))

	style := ""
	if b.Header {
		style = "B"
		f.SetFillColor(230, 233, 240)
	}
	f.SetFont("Helvetica", style, 10)

	lines := make([][][]byte, len(b.Cells))
	maxLines := 1
	for i, cell := range b.Cells {
		lines[i] = f.SplitLines([]byte(w.tr(cell)), cellW-2*fpdfCellPad)
		maxLines = max(maxLines, len(lines[i]))
	}
	rowH := float64(maxLines) * fpdfLineHeight

	y := f.GetY()
	if y+rowH > pageH-bottom {
		f.AddPage()
		y = f.GetY()
	}

	rectStyle := "D"
	if b.Header {
		rectStyle = "FD"
	}
	for i := range b.Cells {
		x := left + float64(i)*cellW
		f.Rect(x, y, cellW, rowH, rectStyle)
		for j, line := range lines[i] {
			f.SetXY(x+fpdfCellPad, y+float64(j)*fpdfLineHeight)
			f.CellFormat(cellW-2*fpdfCellPad, fpdfLineHeight, string(line), "", 0, "L", false, 0, "")
		}
	}
	f.SetXY(left, y+rowH)
}
