package research

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// ShapeError reports a provider payload that does not look like the capability's result
type ShapeError struct {
	Capability string
	Reason     string
	Err        error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected %s result shape: %s: %v", e.Capability, e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected %s result shape: %s", e.Capability, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Required: required, Properties: props}
}

func arrayOf(items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: items}
}

// Schemas form a tree, so every use gets its own node
func str() *jsonschema.Schema    { return &jsonschema.Schema{Type: "string"} }
func num() *jsonschema.Schema    { return &jsonschema.Schema{Type: "number"} }
func anyObj() *jsonschema.Schema { return &jsonschema.Schema{Type: "object"} }
func strs() *jsonschema.Schema   { return arrayOf(str()) }

// capabilitySchemas lists the fields a caller can rely on. Extra fields are allowed.
var capabilitySchemas = map[string]*jsonschema.Schema{
	CapSearchPapers: object(
		[]string{"papers", "total_found", "query", "sources_used"},
		map[string]*jsonschema.Schema{
			"papers": arrayOf(object([]string{"title"}, map[string]*jsonschema.Schema{
				"title":   str(),
				"authors": strs(),
			})),
			"total_found":  num(),
			"query":        str(),
			"sources_used": strs(),
		}),
	CapGenerateWorkspace: object(
		[]string{"id", "name", "tools", "files"},
		map[string]*jsonschema.Schema{
			"id":    str(),
			"name":  str(),
			"tools": arrayOf(object([]string{"name", "status"}, nil)),
			"files": arrayOf(object([]string{"name", "type"}, nil)),
		}),
	CapCreateMindmap: object(
		[]string{"id", "topic", "nodes", "connections"},
		map[string]*jsonschema.Schema{
			"id":          str(),
			"topic":       str(),
			"nodes":       arrayOf(object([]string{"id", "label"}, map[string]*jsonschema.Schema{"label": str()})),
			"connections": arrayOf(object([]string{"from", "to"}, nil)),
		}),
	CapCreateInteractiveMindmap: object(
		[]string{"id", "topic", "nodes", "connections"},
		map[string]*jsonschema.Schema{
			"id":          str(),
			"topic":       str(),
			"nodes":       arrayOf(object([]string{"id", "label", "type"}, map[string]*jsonschema.Schema{"label": str(), "type": str()})),
			"connections": arrayOf(object([]string{"from", "to"}, nil)),
		}),
	CapGenerateSummaries: object(
		[]string{"topic_overview", "document_summaries", "research_gaps"},
		map[string]*jsonschema.Schema{
			"document_summaries": arrayOf(object([]string{"title", "summary"}, map[string]*jsonschema.Schema{
				"title":   str(),
				"summary": str(),
			})),
			"research_gaps": strs(),
		}),
	CapGenerateIEEECitations: object(
		[]string{"citations", "bibliography"},
		map[string]*jsonschema.Schema{
			"citations": arrayOf(anyObj()),
		}),
	CapGenerateSamplePaper: object(
		[]string{"title", "abstract", "sections"},
		map[string]*jsonschema.Schema{
			"title":    str(),
			"abstract": str(),
			"sections": anyObj(),
		}),
	CapSynthesizeAudio: object(
		[]string{"audio_url", "duration", "voice", "text"},
		map[string]*jsonschema.Schema{
			"audio_url": str(),
			"duration":  num(),
			"voice":     str(),
			"text":      str(),
		}),
}

var (
	resolveOnce sync.Once
	resolved    map[string]*jsonschema.Resolved
	resolveErr  error
)

func resolvedSchemas() (map[string]*jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		resolved = make(map[string]*jsonschema.Resolved, len(capabilitySchemas))
		for name, schema := range capabilitySchemas {
			rs, err := schema.Resolve(nil)
			if err != nil {
				resolveErr = fmt.Errorf("resolve %s schema: %w", name, err)
				return
			}
			resolved[name] = rs
		}
	})
	return resolved, resolveErr
}

// CheckShape validates a decoded payload against the capability's schema
func CheckShape(capability string, payload map[string]any) error {
	schemas, err := resolvedSchemas()
	if err != nil {
		return &ShapeError{Capability: capability, Reason: "schema unavailable", Err: err}
	}

	rs, ok := schemas[capability]
	if !ok {
		return &ShapeError{Capability: capability, Reason: "unknown capability"}
	}

	if err := rs.Validate(payload); err != nil {
		return &ShapeError{Capability: capability, Reason: "schema validation failed", Err: err}
	}
	return nil
}
