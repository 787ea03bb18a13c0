package main

import (
	"context"
	"encoding/json"
	"errors"

	"rama/internal/cli"
	"rama/internal/mcp"
	"rama/internal/research"
	"rama/internal/tool"
	"rama/internal/tool/builtin"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// diagnosis is the output of the doctor command
type diagnosis struct {
	Command    string            `json:"command"`
	Server     *mcp.ServerInfo   `json:"server,omitempty"`
	Tools      []string          `json:"tools"`
	Missing    []string          `json:"missing"`
	Failing    map[string]string `json:"failing"`
	Resources  []string          `json:"resources"`
	Unreadable map[string]string `json:"unreadable"`
	Supervisor string            `json:"supervisor"`
	Error      string            `json:"error,omitempty"`
}

func newDiagnosis(command string) *diagnosis {
	return &diagnosis{
		Command:    command,
		Tools:      []string{},
		Missing:    []string{},
		Failing:    map[string]string{},
		Resources:  []string{},
		Unreadable: map[string]string{},
	}
}

func (d *diagnosis) healthy() bool {
	return d.Error == "" && len(d.Missing) == 0 && len(d.Failing) == 0 && len(d.Unreadable) == 0
}

var errUnhealthy = errors.New("provider is not healthy")

// doctorPaper is the smallest paper every paper-taking capability accepts
var doctorPaper = map[string]any{"title": "Doctor", "authors": []string{"A. Doctor"}}

// doctorArgs holds the arguments each capability is exercised with
var doctorArgs = map[string]any{
	research.CapSearchPapers:             map[string]any{"query": "rama doctor", "max_results": 1},
	research.CapGenerateWorkspace:        map[string]any{"topic": "rama doctor"},
	research.CapCreateMindmap:            map[string]any{"topic": "rama doctor"},
	research.CapCreateInteractiveMindmap: map[string]any{"topic": "rama doctor"},
	research.CapGenerateSummaries:        map[string]any{"topic": "rama doctor", "papers": []any{doctorPaper}},
	research.CapGenerateIEEECitations:    map[string]any{"papers": []any{doctorPaper}},
	research.CapGenerateSamplePaper:      map[string]any{"topic": "rama doctor", "papers": []any{doctorPaper}},
	research.CapSynthesizeAudio:          map[string]any{"text": "rama doctor"},
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the provider starts and serves every capability and resource",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			return runDoctor(ctx, a)
		}),
	}
}

func runDoctor(ctx context.Context, a *app) error {
	d := newDiagnosis(a.cfg.Provider.Command)

	// SDK client first, then the supervisor's own handshake
	dialCtx, cancel := context.WithTimeout(ctx, a.cfg.Client.StartTimeout.Std())
	defer cancel()

	client, err := mcp.DialProvider(dialCtx, a.cfg)
	if err != nil {
		d.Error = err.Error()
		d.Missing = append(d.Missing, research.Capabilities...)
	} else {
		defer client.Close()
		if err := inspect(ctx, client, a.log, d); err != nil {
			return err
		}
	}

	sup := mcp.NewSupervisorFromConfig(a.cfg, mcp.WithLogger(a.log))
	if err := sup.EnsureReady(ctx); err != nil && d.Error == "" {
		d.Error = err.Error()
	}
	d.Supervisor = sup.State().String()
	sup.Stop()

	if err := a.out.JSON(d); err != nil {
		return err
	}
	if !d.healthy() {
		return errUnhealthy
	}
	a.out.WriteColored("provider healthy\n", cli.ColorGreen)
	return nil
}

// inspect runs every capability and reads every resource the provider should serve
func inspect(ctx context.Context, client *mcp.Client, log *zap.Logger, d *diagnosis) error {
	d.Server = client.ServerInfo()

	registry, err := client.Registry()
	if err != nil {
		return err
	}
	d.Tools = registry.Names()

	exec := tool.NewExecutor(registry, log)
	for _, name := range research.Capabilities {
		if _, err := registry.Get(name); err != nil {
			d.Missing = append(d.Missing, name)
			continue
		}
		if reason := checkTool(ctx, exec, name); reason != "" {
			d.Failing[name] = reason
		}
	}

	checkResources(ctx, client, d)
	return nil
}

// checkTool returns why the capability's answer is unusable, or "" when it is fine
func checkTool(ctx context.Context, exec *tool.Executor, name string) string {
	params, err := json.Marshal(doctorArgs[name])
	if err != nil {
		return err.Error()
	}

	call := exec.Execute(ctx, uuid.NewString(), name, params)
	if !call.Result.Success {
		return call.Result.Error
	}

	payload, ok := call.Result.Data[mcp.DataPayload].(map[string]any)
	if !ok {
		return "output is not a JSON object: " + research.Truncate(call.Result.Output, 200)
	}
	if err := research.CheckShape(name, payload); err != nil {
		return err.Error()
	}
	return ""
}

func checkResources(ctx context.Context, client *mcp.Client, d *diagnosis) {
	listed, err := client.Resources(ctx)
	if err != nil {
		for _, want := range builtin.Resources() {
			d.Unreadable[want.URI] = err.Error()
		}
		return
	}

	seen := make(map[string]bool, len(listed))
	for _, r := range listed {
		seen[r.URI] = true
		d.Resources = append(d.Resources, r.URI)

		text, err := client.ReadResource(ctx, r.URI)
		switch {
		case err != nil:
			d.Unreadable[r.URI] = err.Error()
		case !json.Valid([]byte(text)):
			d.Unreadable[r.URI] = "contents are not JSON"
		}
	}

	for _, want := range builtin.Resources() {
		if !seen[want.URI] {
			d.Unreadable[want.URI] = "not listed"
		}
	}
}
