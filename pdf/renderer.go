// Package pdf renders HTML summaries to a single PDF file.
//
// Markup is read strictly with ParseMarkup before any engine runs, so
// malformed HTML is reported instead of silently producing a broken file.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// SuccessMessage is returned by Render when the file was written.
	SuccessMessage = "PDF generated successfully."
	// ErrorPrefix starts every failure message returned by Render.
	ErrorPrefix = "Error generating PDF: "
	// ProgressMessage is reported before rendering starts.
	ProgressMessage = "Generating PDF"
)

// Engine writes a parsed document to path.
type Engine interface {
	Name() string
	Write(ctx context.Context, doc Document, path string) error
}

// NewEngine returns the engine registered under name. An empty name selects
// fpdf.
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fpdf":
		return FPDFEngine{}, nil
	case "wkhtmltopdf":
		return WKHTMLEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown PDF engine: %s", name)
	}
}

// Renderer owns the output file. Every call replaces it.
type Renderer struct {
	path   string
	engine Engine
}

func NewRenderer(path string, engine Engine) *Renderer {
	if engine == nil {
		engine = FPDFEngine{}
	}
	return &Renderer{path: path, engine: engine}
}

// Path returns the output file path.
func (r *Renderer) Path() string {
	return r.path
}

// Render writes html to the output path and returns a status line. It never
// returns an error value: failures come back as ErrorPrefix + reason, and no
// file is left behind after one.
func (r *Renderer) Render(ctx context.Context, html string, report func(string)) string {
	if report != nil {
		report(ProgressMessage)
	}

	if err := r.render(ctx, html); err != nil {
		log.Error().Err(err).Str("path", r.path).Str("engine", r.engine.Name()).Msg("PDF generation failed")
		return ErrorPrefix + err.Error()
	}
	log.Info().Str("path", r.path).Str("engine", r.engine.Name()).Msg("PDF generated")
	return SuccessMessage
}

func (r *Renderer) render(ctx context.Context, html string) error {
	if err := removeIfExists(r.path); err != nil {
		return fmt.Errorf("failed to remove previous output: %w", err)
	}

	doc, err := ParseMarkup(html)
	if err != nil {
		return err
	}

	if err := r.engine.Write(ctx, doc, r.path); err != nil {
		if rmErr := removeIfExists(r.path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", r.path).Msg("failed to remove partial PDF")
		}
		return err
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
