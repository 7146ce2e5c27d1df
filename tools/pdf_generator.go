package tools

import (
	"context"
	"strings"
)

var pdfGeneratorSpec = Spec{
	Name:             PDFGeneratorName,
	Description:      "Generates a PDF from the input string. Returns a status message.",
	InputDescription: "The HTML document to render.",
	ReturnDirect:     true,
}

func (r *Registry) generatePDF(ctx context.Context, call PDFGeneratorCall, report Reporter) string {
	return r.renderer.Render(ctx, strings.TrimSpace(call.HTML), report)
}
