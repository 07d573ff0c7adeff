package comparison

import (
	"testing"
	"time"

	"github.com/richinex/arbiter/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArbitrationTemplateExact(t *testing.T) {
	ts := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	snippets := []model.Snippet{
		{ID: "1", Text: "Hello world", ModelLabel: "Model A", Timestamp: ts},
		{ID: "2", Text: "two\nlines", ModelLabel: "Model C", Timestamp: ts.Add(65 * time.Second)},
	}

	want := "# AI Response Arbitration Request\n\n" +
		"## Context\n" +
		"Compare tone.\n\n" +
		"## Quoted Responses\n\n" +
		"### Quote 1 (Model A)\n" +
		"> Hello world\n\n" +
		"*Timestamp: 2025-06-07 08:09:10*\n\n" +
		"### Quote 2 (Model C)\n" +
		"> two\n> lines\n\n" +
		"*Timestamp: 2025-06-07 08:10:15*\n\n" +
		"## Arbitration Request\n" +
		"Please analyze the above quoted responses and provide a comprehensive comparison, highlighting:\n" +
		"1. Key similarities and differences\n" +
		"2. Accuracy and completeness of each response\n" +
		"3. Any factual errors or omissions\n" +
		"4. Overall recommendation\n"

	assert.Equal(t, want, BuildArbitrationTemplate("Compare tone.", snippets, time.UTC))
}

func TestBuildArbitrationTemplatePlaceholder(t *testing.T) {
	snippets := []model.Snippet{{ID: "1", Text: "x", ModelLabel: "Model B"}}
	got := BuildArbitrationTemplate("", snippets, time.UTC)
	assert.Contains(t, got, "## Context\n[Add any additional context here]\n\n")
}

func TestBuildArbitrationTemplateLocation(t *testing.T) {
	ts := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	snippets := []model.Snippet{{ID: "1", Text: "x", ModelLabel: "Model B", Timestamp: ts}}

	got := BuildArbitrationTemplate("", snippets, time.FixedZone("plus3", 3*3600))
	assert.Contains(t, got, "*Timestamp: 2025-06-07 11:09:10*")
}

func TestBuildArbitrationTemplateEmpty(t *testing.T) {
	assert.Equal(t, NoQuotesMessage, BuildArbitrationTemplate("notes are ignored", nil, nil))
}

func TestRenderHTML(t *testing.T) {
	snippets := []model.Snippet{{ID: "1", Text: "quoted", ModelLabel: "Model A"}}
	html, err := RenderHTML(BuildArbitrationTemplate("", snippets, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>AI Response Arbitration Request</h1>")
	assert.Contains(t, html, "<h3>Quote 1 (Model A)</h3>")
	assert.Contains(t, html, "<blockquote>\n<p>quoted</p>\n</blockquote>")
	assert.Contains(t, html, "<ol>\n<li>Key similarities and differences</li>")
}

func TestRenderHTMLSanitizes(t *testing.T) {
	snippets := []model.Snippet{{ID: "1", Text: "see [this](javascript:alert(1)) <img src=x onerror=alert(2)>", ModelLabel: "Model B"}}
	html, err := RenderHTML(BuildArbitrationTemplate("", snippets, time.UTC))
	require.NoError(t, err)

	assert.NotContains(t, html, "javascript:")
	assert.NotContains(t, html, "onerror")
	assert.Contains(t, html, "<h3>Quote 1 (Model B)</h3>")
}
