package tools

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// FetchingMessage is reported when get_comps starts.
const FetchingMessage = "Fetching competitors in the market...\n"

var getCompsSpec = Spec{
	Name: GetCompsName,
	Description: "Utilizes MLS data from Zillow to get competitors in the market. " +
		"Returns an HTML summary of the comparable properties and saves it as a PDF.",
	InputDescription: "The full street address of the subject property, e.g. \"123 Main St, Springfield, IL\".",
	ReturnDirect:     true,
}

// getComps fetches comparables, summarizes them and renders the summary as a
// side effect. The PDF status is logged; the summary is the tool output.
func (r *Registry) getComps(ctx context.Context, call GetCompsCall, report Reporter) string {
	report(FetchingMessage)

	address := strings.TrimSpace(call.Address)
	if address == "" {
		return "Error fetching comparables: an address is required."
	}

	raw, err := r.fetcher.Fetch(ctx, address)
	if err != nil {
		log.Error().Err(err).Str("address", address).Msg("comparables fetch failed")
		return "Error fetching comparables: " + err.Error()
	}

	summary, err := r.summarizer.Summarize(ctx, raw)
	if err != nil {
		log.Error().Err(err).Str("address", address).Msg("comparables summary failed")
		return "Error summarizing comparables: " + err.Error()
	}

	status := r.renderer.Render(ctx, summary, report)
	log.Info().Str("address", address).Str("pdf_status", status).Msg("comparables report generated")

	return summary
}
