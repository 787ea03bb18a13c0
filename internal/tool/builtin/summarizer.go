package builtin

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rama/internal/llm"
	"rama/internal/llm/openai"
	"rama/internal/research"
)

// DefaultSummaryModel is used when RAMA_SUMMARY_MODEL is unset
const DefaultSummaryModel = "gpt-4o-mini"

// Summarizer writes a short overview of a topic from its papers
type Summarizer interface {
	Overview(ctx context.Context, topic string, papers []research.Paper) (string, error)
}

// LLMSummarizer asks a chat model for the overview
type LLMSummarizer struct {
	client    llm.Client
	maxTokens int
}

func NewLLMSummarizer(client llm.Client) *LLMSummarizer {
	return &LLMSummarizer{
		client:    client,
		maxTokens: 400,
	}
}

// SummarizerFromEnv builds an OpenAI-backed summarizer from OPENAI_API_KEY,
// OPENAI_API_BASE_URL and RAMA_SUMMARY_MODEL. It returns nil without a key.
func SummarizerFromEnv() Summarizer {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}

	model := os.Getenv("RAMA_SUMMARY_MODEL")
	if model == "" {
		model = DefaultSummaryModel
	}

	return NewLLMSummarizer(openai.NewClient(apiKey, model, os.Getenv("OPENAI_API_BASE_URL")))
}

const summarySystemPrompt = `You write overviews of research topics for a literature review tool.
Answer with one paragraph of plain prose, at most 120 words, without headings or lists.`

func (s *LLMSummarizer) Overview(ctx context.Context, topic string, papers []research.Paper) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	if len(papers) > 0 {
		b.WriteString("Papers:\n")
		for _, p := range papers {
			fmt.Fprintf(&b, "- %s", p.Title)
			if p.Abstract != "" {
				fmt.Fprintf(&b, ": %s", research.Truncate(p.Abstract, 300))
			}
			b.WriteString("\n")
		}
	}

	resp, err := s.client.Chat(ctx, &llm.ChatRequest{
		Messages:    []llm.Message{llm.System(summarySystemPrompt), llm.User(b.String())},
		Temperature: 0.3,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s overview request failed: %w", s.client.Provider(), err)
	}

	overview := strings.TrimSpace(resp.Message.Content)
	if overview == "" {
		return "", fmt.Errorf("%s returned an empty overview", s.client.Model())
	}
	return overview, nil
}
