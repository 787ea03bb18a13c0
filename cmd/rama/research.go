package main

import (
	"context"
	"fmt"

	"rama/internal/research"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// report is the combined output of the research command
type report struct {
	Prompt    string            `json:"prompt"`
	Search    map[string]any    `json:"search"`
	Workspace map[string]any    `json:"workspace,omitempty"`
	Mindmap   map[string]any    `json:"mindmap,omitempty"`
	Summaries map[string]any    `json:"summaries"`
	Sources   map[string]string `json:"sources"`
}

func researchCmd() *cobra.Command {
	var noWorkspace, noMindmap bool
	cmd := &cobra.Command{
		Use:   "research <prompt>",
		Short: "Search, map and summarize a topic in one go",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			return runResearch(ctx, a, args[0], !noWorkspace, !noMindmap)
		}),
	}
	cmd.Flags().BoolVar(&noWorkspace, "no-workspace", false, "Skip workspace generation")
	cmd.Flags().BoolVar(&noMindmap, "no-mindmap", false, "Skip the mind map")
	return cmd
}

func runResearch(ctx context.Context, a *app, prompt string, withWorkspace, withMindmap bool) error {
	var search, workspace, mindmap *research.Result

	// The provider serves one call at a time, these queue behind each other
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		search, err = a.client.SearchPapers(gctx, research.SearchArgs{Query: prompt})
		return err
	})
	if withWorkspace {
		g.Go(func() (err error) {
			workspace, err = a.client.GenerateWorkspace(gctx, research.WorkspaceArgs{Topic: prompt})
			return err
		})
	}
	if withMindmap {
		g.Go(func() (err error) {
			mindmap, err = a.client.CreateMindmap(gctx, research.MindmapArgs{Topic: prompt})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var found research.SearchResult
	if err := search.Decode(&found); err != nil {
		return fmt.Errorf("failed to decode search result: %w", err)
	}

	summaries, err := a.client.GenerateComprehensiveSummaries(ctx, research.SummariesArgs{
		Topic:  prompt,
		Papers: found.Papers,
	})
	if err != nil {
		return err
	}

	out := report{
		Prompt:    prompt,
		Search:    search.Data,
		Summaries: summaries.Data,
		Sources:   map[string]string{},
	}
	for _, r := range []*research.Result{search, workspace, mindmap, summaries} {
		if r == nil {
			continue
		}
		a.out.Banner(r)
		out.Sources[r.Capability] = string(r.Source)
	}
	if workspace != nil {
		out.Workspace = workspace.Data
	}
	if mindmap != nil {
		out.Mindmap = mindmap.Data
	}
	return a.out.JSON(out)
}
