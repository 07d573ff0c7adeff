package comparison

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/richinex/arbiter/model"
	"github.com/yuin/goldmark"
)

// NoQuotesMessage is the whole template when there are no snippets.
const NoQuotesMessage = "No quotes selected. Select text from AI responses to create quotes."

const contextPlaceholder = "[Add any additional context here]"

const requestSection = `## Arbitration Request
Please analyze the above quoted responses and provide a comprehensive comparison, highlighting:
1. Key similarities and differences
2. Accuracy and completeness of each response
3. Any factual errors or omissions
4. Overall recommendation
`

// BuildArbitrationTemplate formats notes and snippets into the arbitration
// request document. Timestamps are rendered in loc (time.Local when nil).
func BuildArbitrationTemplate(notes string, snippets []model.Snippet, loc *time.Location) string {
	if len(snippets) == 0 {
		return NoQuotesMessage
	}
	if loc == nil {
		loc = time.Local
	}
	if notes == "" {
		notes = contextPlaceholder
	}

	quotes := make([]string, len(snippets))
	for i, sn := range snippets {
		quotes[i] = fmt.Sprintf("### Quote %d (%s)\n> %s\n\n*Timestamp: %s*",
			i+1,
			sn.ModelLabel,
			strings.ReplaceAll(sn.Text, "\n", "\n> "),
			sn.Timestamp.In(loc).Format("2006-01-02 15:04:05"),
		)
	}

	var b strings.Builder
	b.WriteString("# AI Response Arbitration Request\n\n")
	b.WriteString("## Context\n")
	b.WriteString(notes)
	b.WriteString("\n\n## Quoted Responses\n\n")
	b.WriteString(strings.Join(quotes, "\n\n"))
	b.WriteString("\n\n")
	b.WriteString(requestSection)
	return b.String()
}

// htmlPolicy strips anything a quoted response could smuggle into the page.
var htmlPolicy = bluemonday.UGCPolicy()

// RenderHTML converts a markdown document (such as the arbitration template)
// to sanitized HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return htmlPolicy.Sanitize(buf.String()), nil
}
