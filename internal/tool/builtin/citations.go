package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rama/internal/research"
	"rama/internal/tool"
)

type CitationsTool struct{}

func NewCitationsTool() *CitationsTool {
	return &CitationsTool{}
}

func (t *CitationsTool) Name() string {
	return research.CapGenerateIEEECitations
}

func (t *CitationsTool) Description() string {
	return "Generate automated IEEE citations and bibliography"
}

func (t *CitationsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"papers": papersProp("Papers to cite"),
			"format": map[string]any{
				"type":        "string",
				"description": "Citation format",
				"default":     research.DefaultFormat,
			},
		},
		"required": []string{"papers"},
	}
}

func (t *CitationsTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var args struct {
		research.CitationArgs
		Papers *[]research.Paper `json:"papers"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return invalidParams(err), nil
	}
	if args.Papers == nil {
		return invalidParams(errors.New("papers is required")), nil
	}
	cargs := args.CitationArgs
	cargs.Papers = *args.Papers
	cargs = cargs.WithDefaults()
	style := strings.ToUpper(cargs.Format)

	citations := []research.Citation{}
	formats := []research.CitationFormats{}
	entries := make([]string, 0, len(cargs.Papers))
	titles := make([]string, 0, len(cargs.Papers))

	for i, p := range cargs.Papers {
		n := i + 1
		ieee := research.FormatIEEE(n, p)
		citations = append(citations, research.Citation{
			Number:   n,
			PaperID:  p.ID,
			Citation: ieee,
			Style:    style,
		})
		formats = append(formats, research.CitationFormats{
			Number: n,
			IEEE:   ieee,
			BibTeX: FormatBibTeX(p),
			APA:    FormatAPA(p),
			MLA:    FormatMLA(p),
		})
		entries = append(entries, ieee)
		titles = append(titles, p.Title)
	}

	bibliography := ""
	if len(entries) > 0 {
		bibliography = "REFERENCES\n\n" + strings.Join(entries, "\n\n")
	}

	return jsonResult(&research.Citations{
		ID:             research.StableID("citations", strings.Join(titles, "\x00")),
		Style:          style,
		TotalCitations: len(citations),
		Citations:      citations,
		Bibliography:   bibliography,
		Formats:        formats,
		CreatedAt:      research.FixedTimestamp,
	})
}

func citedYear(p research.Paper) int {
	if p.Year == 0 {
		return 2024
	}
	return p.Year
}

func citedTitle(p research.Paper) string {
	if blank(p.Title) {
		return "Unknown Title"
	}
	return p.Title
}

func citedJournal(p research.Paper) string {
	if blank(p.Journal) {
		return "Unknown Journal"
	}
	return p.Journal
}

// shortAuthors lists up to three authors, then "et al."
func shortAuthors(p research.Paper) string {
	if len(p.Authors) == 0 {
		return "Unknown Author"
	}
	s := strings.Join(p.Authors[:min(len(p.Authors), 3)], ", ")
	if len(p.Authors) > 3 {
		s += " et al."
	}
	return s
}

// FormatBibTeX renders an @article entry keyed by the first author's surname and year
func FormatBibTeX(p research.Paper) string {
	year := citedYear(p)
	key := fmt.Sprintf("unknown%d", year)
	if len(p.Authors) > 0 {
		if parts := strings.Fields(p.Authors[0]); len(parts) > 0 {
			key = fmt.Sprintf("%s%d", strings.ToLower(parts[len(parts)-1]), year)
		}
	}

	return fmt.Sprintf("@article{%s,\n  title={%s},\n  author={%s},\n  journal={%s},\n  year={%d}\n}",
		key, citedTitle(p), strings.Join(p.Authors, " and "), citedJournal(p), year)
}

// FormatAPA renders "Authors (Year). Title. Journal."
func FormatAPA(p research.Paper) string {
	return fmt.Sprintf("%s (%d). %s. %s.", shortAuthors(p), citedYear(p), citedTitle(p), citedJournal(p))
}

// FormatMLA renders `Authors. "Title." Journal, Year.`
func FormatMLA(p research.Paper) string {
	return fmt.Sprintf(`%s. "%s." %s, %d.`, shortAuthors(p), citedTitle(p), citedJournal(p), citedYear(p))
}
