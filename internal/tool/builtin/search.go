package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"rama/internal/research"
	"rama/internal/tool"
)

// SearchPapersTool searches the built-in paper catalog
type SearchPapersTool struct {
	catalog []research.CatalogEntry
}

func NewSearchPapersTool() *SearchPapersTool {
	return &SearchPapersTool{catalog: research.Catalog()}
}

func (t *SearchPapersTool) Name() string {
	return research.CapSearchPapers
}

func (t *SearchPapersTool) Description() string {
	return "Search for research papers across multiple databases"
}

func (t *SearchPapersTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":       stringProp("Research query or topic"),
			"max_results": intProp("Maximum number of papers to return", research.DefaultMaxResults),
			"sources": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Data sources to search",
				"default":     research.DefaultSources,
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchPapersTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var args research.SearchArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return invalidParams(err), nil
	}
	if blank(args.Query) {
		return invalidParams(errors.New("query is required")), nil
	}
	args = args.WithDefaults(research.DefaultSources, research.DefaultMaxResults)

	var entries []research.CatalogEntry
	for _, e := range t.catalog {
		if slices.Contains(args.Sources, e.Source) {
			entries = append(entries, e)
		}
	}

	papers := []research.Paper{}
	for i, r := range research.RankCatalog(entries, args.Query) {
		if len(papers) == args.MaxResults {
			break
		}
		p := r.Paper
		p.RelevanceScore = max(70, 100-i*5)
		p.Keywords = research.ExtractKeywords(p.Title + " " + p.Abstract)
		papers = append(papers, p)
	}

	return jsonResult(&research.SearchResult{
		Papers:      papers,
		TotalFound:  len(papers),
		Query:       args.Query,
		SourcesUsed: args.Sources,
	})
}
