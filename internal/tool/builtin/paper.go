package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rama/internal/research"
	"rama/internal/tool"
)

type SamplePaperTool struct{}

func NewSamplePaperTool() *SamplePaperTool {
	return &SamplePaperTool{}
}

func (t *SamplePaperTool) Name() string {
	return research.CapGenerateSamplePaper
}

func (t *SamplePaperTool) Description() string {
	return "Generate a comprehensive sample research paper"
}

func (t *SamplePaperTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":  stringProp("Research topic"),
			"papers": papersProp("Papers to reference"),
		},
		"required": []string{"topic"},
	}
}

func (t *SamplePaperTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var args research.SamplePaperArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return invalidParams(err), nil
	}
	if blank(args.Topic) {
		return invalidParams(errTopicRequired), nil
	}
	args = args.WithDefaults()
	topic := args.Topic
	lower := strings.ToLower(topic)

	references := make([]string, 0, min(len(args.Papers), 10))
	for i, p := range args.Papers {
		if i == 10 {
			break
		}
		references = append(references, research.FormatIEEE(i+1, p))
	}

	return jsonResult(&research.SamplePaper{
		ID:       research.StableID("paper", topic),
		Title:    "A Comprehensive Analysis of Current Research Trends in " + topic,
		Abstract: fmt.Sprintf("This paper presents a systematic review and analysis of current research trends in %s. Through comprehensive analysis of research papers, we identify key methodological approaches, application domains, and future research directions.", lower),
		Keywords: []string{lower, "research analysis", "systematic review", "trends", "applications"},
		Sections: map[string]research.Section{
			"introduction": {
				Title:   "Introduction",
				Content: fmt.Sprintf("The field of %s has emerged as one of the most significant areas of research in recent years, offering unprecedented opportunities for technological advancement and practical applications. This paper presents a comprehensive analysis of current research trends, methodologies, and future directions in %s.", topic, lower),
				Subsections: []research.Subsection{
					{Title: "Background and Motivation", Content: fmt.Sprintf("The motivation for this research stems from the growing importance of %s in addressing contemporary challenges.", lower)},
					{Title: "Research Objectives", Content: "The primary objectives are to provide comprehensive analysis, identify methodological approaches, highlight research gaps, and propose future directions."},
				},
			},
			"literature_review": {
				Title:   "Literature Review",
				Content: fmt.Sprintf("This section presents a comprehensive review of existing literature in %s. We systematically analyze recent research contributions and identify key trends and methodological approaches.", lower),
				Subsections: []research.Subsection{
					{Title: "Foundational Concepts", Content: fmt.Sprintf("The foundational concepts in %s provide the theoretical framework for understanding current research developments.", lower)},
					{Title: "Methodological Approaches", Content: "Recent research has introduced various methodological innovations including novel algorithms and optimization techniques."},
				},
			},
			"methodology": {
				Title:   "Methodology",
				Content: fmt.Sprintf("This research employs a systematic literature review methodology to analyze current research in %s.", lower),
				Subsections: []research.Subsection{
					{Title: "Data Collection", Content: "Papers were selected from major databases including IEEE Xplore, ACM Digital Library, and arXiv."},
					{Title: "Analysis Framework", Content: "We developed a comprehensive analysis framework focusing on methodological approaches and evaluation metrics."},
				},
			},
			"conclusion": {
				Title:   "Conclusion",
				Content: fmt.Sprintf("This paper has presented a comprehensive analysis of current research in %s. Our review reveals significant progress in the field with several key trends and opportunities for future development.", lower),
			},
		},
		ReferencesCount: len(args.Papers),
		References:      references,
		WordCount:       1250,
		CreatedAt:       research.FixedTimestamp,
	})
}
