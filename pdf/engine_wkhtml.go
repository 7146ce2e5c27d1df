package pdf

import (
	"context"
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// WKHTMLEngine renders the source HTML with the wkhtmltopdf binary, keeping
// the document's own styling. The binary must be on PATH or named by the
// WKHTMLTOPDF_PATH environment variable.
type WKHTMLEngine struct{}

func (WKHTMLEngine) Name() string { return "wkhtmltopdf" }

func (WKHTMLEngine) Write(ctx context.Context, doc Document, path string) error {
	gen, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return fmt.Errorf("failed to start wkhtmltopdf: %w", err)
	}
	gen.PageSize.Set(wkhtmltopdf.PageSizeA4)
	gen.Quiet.Set(true)

	gen.AddPage(wkhtmltopdf.NewPageReader(strings.NewReader(doc.HTML)))

	if err := gen.CreateContext(ctx); err != nil {
		return fmt.Errorf("wkhtmltopdf failed: %w", err)
	}
	if err := gen.WriteFile(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
