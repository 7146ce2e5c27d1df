// Package comps talks to the property comparables API.
package comps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrEmptyBody is returned when the API answers 2xx with no payload.
var ErrEmptyBody = errors.New("comparables API returned an empty body")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("comparables API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("comparables API returned status %d: %s", e.StatusCode, e.Body)
}

// Config holds the credentials and endpoint for the comparables API.
type Config struct {
	Host   string
	APIKey string
	// BaseURL overrides "https://<Host>"; used to point at a test server.
	BaseURL string
	Timeout time.Duration
}

// Client fetches raw comparables payloads. It does not interpret them.
type Client struct {
	host    string
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a comparables client. Timeout defaults to 30s.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://" + cfg.Host
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		host:    cfg.Host,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// BuildQuery returns the request path for an address. Spaces become %20 and
// commas are dropped; nothing else is escaped.
//
//	BuildQuery("123 Main St, Springfield") == "/propertyComps?address=123%20Main%20St%20Springfield"
func BuildQuery(address string) string {
	encoded := strings.ReplaceAll(address, ",", "")
	encoded = strings.ReplaceAll(encoded, " ", "%20")
	return "/propertyComps?address=" + encoded
}

// Fetch issues one GET for address and returns the full response body.
func (c *Client) Fetch(ctx context.Context, address string) ([]byte, error) {
	ctx, span := otel.Tracer("compsbot/comps").Start(ctx, "comps.fetch")
	defer span.End()

	query := BuildQuery(address)
	span.SetAttributes(attribute.String("comps.query", query))

	body, err := c.get(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("comps.bytes", len(body)))
	return body, nil
}

func (c *Client) get(ctx context.Context, query string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build comparables request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	log.Debug().Str("query", query).Msg("fetching comparables")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach comparables API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read comparables response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), 200)}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyBody
	}

	log.Debug().Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("comparables fetched")
	return body, nil
}

// truncate keeps at most n bytes of s without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
