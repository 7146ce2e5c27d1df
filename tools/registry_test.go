package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"compsbot/pdf"
)

type fakeFetcher struct {
	body    []byte
	err     error
	address string
}

func (f *fakeFetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	f.address = address
	return f.body, f.err
}

type fakeSummarizer struct {
	out string
	err error
	raw []byte
}

func (f *fakeSummarizer) Summarize(ctx context.Context, raw []byte) (string, error) {
	f.raw = raw
	return f.out, f.err
}

type fakeRenderer struct {
	html  []string
	calls int
}

func (f *fakeRenderer) Render(ctx context.Context, html string, report func(string)) string {
	f.calls++
	f.html = append(f.html, html)
	report(pdf.ProgressMessage)
	return pdf.SuccessMessage
}

func TestParseCall(t *testing.T) {
	tests := []struct {
		name      string
		tool      string
		arguments string
		want      Call
		wantErr   bool
	}{
		{"get_comps input key", GetCompsName, `{"input":"123 Main St"}`, GetCompsCall{Address: "123 Main St"}, false},
		{"pdf input key", PDFGeneratorName, `{"input":"<p>x</p>"}`, PDFGeneratorCall{HTML: "<p>x</p>"}, false},
		{"single other key", GetCompsName, `{"address":"9 Oak Ave"}`, GetCompsCall{Address: "9 Oak Ave"}, false},
		{"json string", GetCompsName, `"9 Oak Ave"`, GetCompsCall{Address: "9 Oak Ave"}, false},
		{"raw text", GetCompsName, `9 Oak Ave, Springfield`, GetCompsCall{Address: "9 Oak Ave, Springfield"}, false},
		{"empty arguments", GetCompsName, "", nil, true},
		{"non-string input", GetCompsName, `{"input":42}`, nil, true},
		{"several keys without input", GetCompsName, `{"a":"x","b":"y"}`, nil, true},
		{"array", GetCompsName, `["x"]`, nil, true},
		{"unknown tool", "get_weather", `{"input":"x"}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCall(tt.tool, tt.arguments)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %#v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCall = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseCallUnknownTool(t *testing.T) {
	_, err := ParseCall("get_weather", `{"input":"x"}`)
	var unknown *UnknownToolError
	if !errors.As(err, &unknown) || unknown.Name != "get_weather" {
		t.Errorf("expected UnknownToolError for get_weather, got %v", err)
	}
}

func TestSpecDescriptions(t *testing.T) {
	r := NewRegistry(&fakeFetcher{}, &fakeSummarizer{}, &fakeRenderer{})

	tests := []struct {
		name   string
		prefix string
	}{
		{GetCompsName, "Utilizes MLS data from Zillow to get competitors in the market."},
		{PDFGeneratorName, "Generates a PDF from the input string."},
	}

	for _, tt := range tests {
		spec, ok := r.Spec(tt.name)
		if !ok {
			t.Fatalf("missing spec %s", tt.name)
		}
		if !strings.HasPrefix(spec.Description, tt.prefix) {
			t.Errorf("%s description = %q, want prefix %q", tt.name, spec.Description, tt.prefix)
		}
		if got := spec.MCPTool().Description; got != spec.Description {
			t.Errorf("%s MCP description = %q", tt.name, got)
		}
	}
}

func TestSpecs(t *testing.T) {
	r := NewRegistry(&fakeFetcher{}, &fakeSummarizer{}, &fakeRenderer{})

	specs := r.Specs()
	if len(specs) != 2 || specs[0].Name != GetCompsName || specs[1].Name != PDFGeneratorName {
		t.Fatalf("unexpected specs: %+v", specs)
	}
	for _, s := range specs {
		if !s.ReturnDirect {
			t.Errorf("%s should be return-direct", s.Name)
		}
	}

	specs[0].Name = "mutated"
	if r.Specs()[0].Name != GetCompsName {
		t.Error("Specs must return a copy")
	}

	tools := r.MCPTools()
	if len(tools) != 2 {
		t.Fatalf("expected 2 MCP tools, got %d", len(tools))
	}
	schema := tools[0].InputSchema
	if _, ok := schema.Properties[InputKey]; !ok {
		t.Errorf("schema missing %q property: %+v", InputKey, schema.Properties)
	}
	if len(schema.Required) != 1 || schema.Required[0] != InputKey {
		t.Errorf("required = %v", schema.Required)
	}
}

func TestExecuteGetComps(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(`{"comps":[1]}`)}
	summarizer := &fakeSummarizer{out: "<h1>Summary</h1>"}
	renderer := &fakeRenderer{}
	r := NewRegistry(fetcher, summarizer, renderer)

	var progress []string
	res := r.Execute(context.Background(), GetCompsCall{Address: " 123 Main St, Springfield "}, func(msg string) {
		progress = append(progress, msg)
	})

	if res.Output != "<h1>Summary</h1>" || res.Tool != GetCompsName || !res.ReturnDirect {
		t.Errorf("unexpected result: %+v", res)
	}
	if fetcher.address != "123 Main St, Springfield" {
		t.Errorf("fetched address = %q", fetcher.address)
	}
	if string(summarizer.raw) != `{"comps":[1]}` {
		t.Errorf("summarizer got %q", summarizer.raw)
	}
	if renderer.calls != 1 || renderer.html[0] != "<h1>Summary</h1>" {
		t.Errorf("renderer calls = %d, html = %v", renderer.calls, renderer.html)
	}
	if len(progress) != 2 || progress[0] != FetchingMessage || progress[1] != pdf.ProgressMessage {
		t.Errorf("progress = %q", progress)
	}
}

func TestExecuteGetCompsFailures(t *testing.T) {
	tests := []struct {
		name       string
		call       GetCompsCall
		fetcher    *fakeFetcher
		summarizer *fakeSummarizer
		wantPrefix string
	}{
		{
			name:       "blank address",
			call:       GetCompsCall{Address: "  "},
			fetcher:    &fakeFetcher{},
			summarizer: &fakeSummarizer{},
			wantPrefix: "Error fetching comparables",
		},
		{
			name:       "fetch error",
			call:       GetCompsCall{Address: "1 Elm St"},
			fetcher:    &fakeFetcher{err: errors.New("connection refused")},
			summarizer: &fakeSummarizer{},
			wantPrefix: "Error fetching comparables: connection refused",
		},
		{
			name:       "summarize error",
			call:       GetCompsCall{Address: "1 Elm St"},
			fetcher:    &fakeFetcher{body: []byte("{}")},
			summarizer: &fakeSummarizer{err: errors.New("rate limited")},
			wantPrefix: "Error summarizing comparables: rate limited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &fakeRenderer{}
			r := NewRegistry(tt.fetcher, tt.summarizer, renderer)

			res := r.Execute(context.Background(), tt.call, nil)
			if !strings.HasPrefix(res.Output, tt.wantPrefix) {
				t.Errorf("output = %q, want prefix %q", res.Output, tt.wantPrefix)
			}
			if renderer.calls != 0 {
				t.Error("nothing should be rendered after a failure")
			}
		})
	}
}

func TestExecutePDFGenerator(t *testing.T) {
	renderer := &fakeRenderer{}
	r := NewRegistry(&fakeFetcher{}, &fakeSummarizer{}, renderer)

	res := r.Execute(context.Background(), PDFGeneratorCall{HTML: "<p>x</p>"}, nil)
	if res.Output != pdf.SuccessMessage || res.Tool != PDFGeneratorName {
		t.Errorf("unexpected result: %+v", res)
	}
	if renderer.calls != 1 {
		t.Errorf("renderer calls = %d", renderer.calls)
	}
}
