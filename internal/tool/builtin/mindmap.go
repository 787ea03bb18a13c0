package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"rama/internal/research"
	"rama/internal/tool"
)

type MindmapTool struct{}

func NewMindmapTool() *MindmapTool {
	return &MindmapTool{}
}

func (t *MindmapTool) Name() string {
	return research.CapCreateMindmap
}

func (t *MindmapTool) Description() string {
	return "Create a mind map for research topics"
}

func (t *MindmapTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":               stringProp("Main research topic"),
			"depth":               intProp("Depth of mind map exploration", research.DefaultDepth),
			"include_connections": boolProp("Include inter-concept connections", true),
		},
		"required": []string{"topic"},
	}
}

func (t *MindmapTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var args research.MindmapArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return invalidParams(err), nil
	}
	if blank(args.Topic) {
		return invalidParams(errTopicRequired), nil
	}
	args = args.WithDefaults()

	return jsonResult(research.BuildMindMap(args.Topic, args.Depth, *args.IncludeConnections))
}

// InteractiveMindmapTool lays out the main research facets of a topic and
// the researchers attached to it
type InteractiveMindmapTool struct{}

func NewInteractiveMindmapTool() *InteractiveMindmapTool {
	return &InteractiveMindmapTool{}
}

func (t *InteractiveMindmapTool) Name() string {
	return research.CapCreateInteractiveMindmap
}

func (t *InteractiveMindmapTool) Description() string {
	return "Create an enhanced interactive mind map with author connections and visual features"
}

func (t *InteractiveMindmapTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":               stringProp("Main research topic"),
			"depth":               intProp("Depth of mind map exploration", research.DefaultDepth),
			"include_connections": boolProp("Include inter-concept connections", true),
			"include_authors":     boolProp("Include author nodes in the map", true),
		},
		"required": []string{"topic"},
	}
}

var facets = []struct {
	label, description, verb string
	x, y, strength           float64
}{
	{"Key Concepts", "Fundamental concepts and principles", "explores", 150, 100, 1.0},
	{"Applications", "Practical applications and use cases", "applies to", 450, 100, 1.0},
	{"Challenges", "Current challenges and limitations", "faces", 150, 300, 0.8},
	{"Future Directions", "Emerging trends and future research", "evolves toward", 450, 300, 0.9},
}

var researchers = []struct {
	name, description, verb string
	x                       float64
}{
	{"Dr. Sarah Chen", "Leading researcher in the field", "researches", 250},
	{"Prof. Michael Rodriguez", "Expert in theoretical foundations", "contributes to", 350},
}

func (t *InteractiveMindmapTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var args research.InteractiveMindmapArgs
	if err := json.Unmarshal(params, &args); err != nil {
		return invalidParams(err), nil
	}
	if blank(args.Topic) {
		return invalidParams(errTopicRequired), nil
	}
	args = args.WithDefaults()

	nodes := []research.InteractiveNode{{
		ID:          "central",
		Label:       args.Topic,
		Type:        "central",
		X:           300,
		Y:           200,
		Description: "Central research topic: " + args.Topic,
	}}
	edges := []research.InteractiveEdge{}

	for i, f := range facets {
		id := fmt.Sprintf("main_%d", i+1)
		nodes = append(nodes, research.InteractiveNode{
			ID: id, Label: f.label, Type: "main", X: f.x, Y: f.y, Description: f.description,
		})
		edges = append(edges, research.InteractiveEdge{
			From: "central", To: id, Type: "main_concept", Label: f.verb, Strength: f.strength,
		})
	}

	if *args.IncludeAuthors {
		for i, r := range researchers {
			id := fmt.Sprintf("author_%d", i+1)
			nodes = append(nodes, research.InteractiveNode{
				ID: id, Label: r.name, Type: "author", X: r.x, Y: 350, Description: r.description,
			})
			edges = append(edges, research.InteractiveEdge{
				From: id, To: "central", Type: "authored", Label: r.verb, Strength: 0.9,
			})
		}
	}

	if !*args.IncludeConnections {
		edges = []research.InteractiveEdge{}
	}

	nodeTypes := research.DefaultNodeTypes()
	nodeTypes["main"] = research.NodeStyle{Color: "#4ECDC4", Size: "medium"}

	return jsonResult(&research.InteractiveMindMap{
		ID:          research.StableID("interactive_mm", args.Topic),
		Title:       "Interactive Mind Map: " + research.TitleCase(args.Topic),
		Topic:       args.Topic,
		Nodes:       nodes,
		Connections: edges,
		NodeTypes:   nodeTypes,
		InteractionFeatures: map[string]bool{
			"zoom":         true,
			"pan":          true,
			"click_expand": true,
			"search":       true,
			"filter":       true,
		},
		CreatedAt: research.FixedTimestamp,
	})
}
