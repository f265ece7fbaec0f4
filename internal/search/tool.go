package search

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/tools"
)

const (
	ToolName        = "semantic_search"
	ToolDescription = "Use this tool to search for articles related to specific topics or queries."

	// NoMatchesMessage is the tool's answer when the substring filter finds nothing.
	NoMatchesMessage = "No matching articles found."
)

// Tool exposes a Searcher to a tool-calling agent.
type Tool struct {
	searcher *Searcher
}

var _ tools.Tool = (*Tool)(nil)

func NewTool(searcher *Searcher) *Tool {
	return &Tool{searcher: searcher}
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return ToolDescription
}

// Call runs a search for input and renders the results for the agent.
// Models often quote the action input, so surrounding quotes are dropped.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	results, err := t.searcher.Search(ctx, strings.Trim(input, " \t\r\n\"'"))
	if err != nil {
		return "", err
	}
	return FormatResults(results), nil
}

// FormatResults renders results as the bullet list the agent reads.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return NoMatchesMessage
	}

	var b strings.Builder
	b.WriteString("\nSemantic Search Results:\n")
	for _, r := range results {
		b.WriteString("- ")
		b.WriteString(r.Article.PageContent)
		b.WriteString(" (Source: ")
		b.WriteString(r.Article.Source)
		b.WriteString(")\n")
	}
	return b.String()
}
