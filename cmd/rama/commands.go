package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"rama/internal/research"

	"github.com/spf13/cobra"
)

// loadPapers reads a JSON array of papers, or a search result holding one.
// "-" reads standard input; an empty path yields no papers.
func loadPapers(path string) ([]research.Paper, error) {
	if path == "" {
		return nil, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read papers: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var res research.SearchResult
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("failed to parse papers: %w", err)
		}
		return res.Papers, nil
	}

	var papers []research.Paper
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("failed to parse papers: %w", err)
	}
	return papers, nil
}

// negated returns false when a --no-x flag was given, nil otherwise
func negated(cmd *cobra.Command, name string) *bool {
	if off, _ := cmd.Flags().GetBool(name); off {
		return research.Bool(false)
	}
	return nil
}

func searchCmd() *cobra.Command {
	var (
		maxResults int
		sources    []string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for papers",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			return a.print(a.client.SearchPapers(ctx, research.SearchArgs{
				Query:      args[0],
				MaxResults: maxResults,
				Sources:    sources,
			}))
		}),
	}
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum number of papers (default from config)")
	cmd.Flags().StringSliceVar(&sources, "sources", nil, "Sources to search, e.g. arxiv,scholar (default from config)")
	return cmd
}

func workspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace <topic>",
		Short: "Generate a research workspace",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = run(func(ctx context.Context, a *app, args []string) error {
		return a.print(a.client.GenerateWorkspace(ctx, research.WorkspaceArgs{
			Topic:        args[0],
			IncludeTools: negated(cmd, "no-tools"),
			IncludeFiles: negated(cmd, "no-files"),
		}))
	})
	cmd.Flags().Bool("no-tools", false, "Leave out suggested tools")
	cmd.Flags().Bool("no-files", false, "Leave out starter files")
	return cmd
}

func mindmapCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "mindmap <topic>",
		Short: "Create a mind map of a topic",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = run(func(ctx context.Context, a *app, args []string) error {
		return a.print(a.client.CreateMindmap(ctx, research.MindmapArgs{
			Topic:              args[0],
			Depth:              depth,
			IncludeConnections: negated(cmd, "no-connections"),
		}))
	})
	cmd.Flags().IntVar(&depth, "depth", research.DefaultDepth, "Mind map depth")
	cmd.Flags().Bool("no-connections", false, "Leave out connections between nodes")
	return cmd
}

func interactiveMindmapCmd() *cobra.Command {
	var (
		depth      int
		papersPath string
	)
	cmd := &cobra.Command{
		Use:   "interactive-mindmap <topic>",
		Short: "Create an interactive mind map, optionally seeded with papers",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = run(func(ctx context.Context, a *app, args []string) error {
		papers, err := loadPapers(papersPath)
		if err != nil {
			return err
		}
		return a.print(a.client.CreateInteractiveMindmap(ctx, research.InteractiveMindmapArgs{
			Topic:              args[0],
			Depth:              depth,
			IncludeConnections: negated(cmd, "no-connections"),
			IncludeAuthors:     negated(cmd, "no-authors"),
			Papers:             papers,
		}))
	})
	cmd.Flags().IntVar(&depth, "depth", research.DefaultDepth, "Mind map depth")
	cmd.Flags().Bool("no-connections", false, "Leave out connections between nodes")
	cmd.Flags().Bool("no-authors", false, "Leave out author nodes")
	cmd.Flags().StringVar(&papersPath, "papers", "", "JSON file with papers, - for stdin")
	return cmd
}

func summarizeCmd() *cobra.Command {
	var papersPath string
	cmd := &cobra.Command{
		Use:   "summarize <topic>",
		Short: "Summarize papers on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			papers, err := loadPapers(papersPath)
			if err != nil {
				return err
			}
			return a.print(a.client.GenerateComprehensiveSummaries(ctx, research.SummariesArgs{
				Topic:  args[0],
				Papers: papers,
			}))
		}),
	}
	cmd.Flags().StringVar(&papersPath, "papers", "", "JSON file with papers, - for stdin")
	return cmd
}

func citeCmd() *cobra.Command {
	var (
		papersPath string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "cite",
		Short: "Format citations for papers",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			papers, err := loadPapers(papersPath)
			if err != nil {
				return err
			}
			return a.print(a.client.GenerateIEEECitations(ctx, research.CitationArgs{
				Papers: papers,
				Format: format,
			}))
		}),
	}
	cmd.Flags().StringVar(&papersPath, "papers", "", "JSON file with papers, - for stdin")
	cmd.Flags().StringVar(&format, "format", research.DefaultFormat, "Citation format")
	cmd.MarkFlagRequired("papers")
	return cmd
}

func samplePaperCmd() *cobra.Command {
	var papersPath string
	cmd := &cobra.Command{
		Use:   "sample-paper <topic>",
		Short: "Draft a sample paper on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			papers, err := loadPapers(papersPath)
			if err != nil {
				return err
			}
			return a.print(a.client.GenerateSamplePaper(ctx, research.SamplePaperArgs{
				Topic:  args[0],
				Papers: papers,
			}))
		}),
	}
	cmd.Flags().StringVar(&papersPath, "papers", "", "JSON file with papers, - for stdin")
	return cmd
}

func audioCmd() *cobra.Command {
	var voice string
	cmd := &cobra.Command{
		Use:   "audio <text>",
		Short: "Synthesize speech for a text",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			return a.print(a.client.SynthesizeAudio(ctx, research.AudioArgs{
				Text:  args[0],
				Voice: voice,
			}))
		}),
	}
	cmd.Flags().StringVar(&voice, "voice", research.DefaultVoice, "Voice to use")
	return cmd
}
