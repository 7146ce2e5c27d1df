// Package summary turns a raw comparables payload into an HTML market summary
// with one model call.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"compsbot/model"
)

// Instruction prefixes every payload sent for summarizing.
const Instruction = "You are a real estate expert. You MUST respond in HTML format that looks highly professional. " +
	"Analyze the following data and provide a summary of the competitors in the market.\n\n"

// ErrEmptySummary is returned when the model streams no text.
var ErrEmptySummary = errors.New("model returned an empty summary")

// Summarizer sends comparables data to a chat model without tools.
type Summarizer struct {
	provider model.Provider
}

func New(provider model.Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

// Prompt returns the single human message content for raw.
func Prompt(raw []byte) string {
	return Instruction + string(raw)
}

// Summarize returns the concatenated streamed reply for raw.
func (s *Summarizer) Summarize(ctx context.Context, raw []byte) (string, error) {
	msgs := []model.Message{model.HumanMessage(Prompt(raw))}

	var sb strings.Builder
	err := s.provider.Chat(ctx, msgs, func(chunk string, _ []model.ToolCall) error {
		sb.WriteString(chunk)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize comparables: %w", err)
	}

	out := sb.String()
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptySummary
	}
	log.Debug().Int("payload_bytes", len(raw)).Int("summary_bytes", len(out)).Msg("comparables summarized")
	return out, nil
}
