package builtin

import (
	"context"
	"encoding/json"
	"errors"

	"rama/internal/research"
	"rama/internal/tool"
)

// AudioTool returns a placeholder clip; there is no speech engine behind it
type AudioTool struct{}

func NewAudioTool() *AudioTool {
	return &AudioTool{}
}

func (t *AudioTool) Name() string {
	return research.CapSynthesizeAudio
}

func (t *AudioTool) Description() string {
	return "Synthesize audio from text"
}

func (t *AudioTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": stringProp("Text to synthesize"),
			"voice": map[string]any{
				"type":        "string",
				"description": "Voice to use",
				"default":     research.DefaultVoice,
			},
		},
		"required": []string{"text"},
	}
}

func (t *AudioTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var args research.AudioArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return invalidParams(err), nil
	}
	if args.Text == "" {
		return invalidParams(errors.New("text is required")), nil
	}
	args = args.WithDefaults()

	return jsonResult(&research.Audio{
		AudioURL: research.PlaceholderAudioURL,
		Duration: research.AudioDuration(args.Text),
		Voice:    args.Voice,
		Text:     research.Truncate(args.Text, 100),
	})
}
