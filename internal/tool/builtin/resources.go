package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"rama/internal/tool"
)

// ResourceScheme is the URI scheme of the provider's descriptive resources
const ResourceScheme = "research"

type resourceDoc struct {
	path        string
	name        string
	description string
	body        map[string]any
}

var resourceDocs = []resourceDoc{
	{
		path:        "papers",
		name:        "Research Papers",
		description: "Access to research paper databases",
		body: map[string]any{
			"description":  "Research paper database access",
			"sources":      []string{"ArXiv", "Google Scholar", "PubMed"},
			"capabilities": []string{"search", "filter", "rank"},
		},
	},
	{
		path:        "workspace",
		name:        "Research Workspace",
		description: "Generated research workspace with tools and files",
		body: map[string]any{
			"description": "Research workspace generator",
			"components":  []string{"tools", "files", "collaborators", "timeline"},
			"features":    []string{"auto-organization", "collaboration", "version-control"},
		},
	},
	{
		path:        "mindmap",
		name:        "Research Mindmap",
		description: "Generated mind map for research topics",
		body: map[string]any{
			"description": "Research mind map generator",
			"format":      "interactive nodes and connections",
			"features":    []string{"concept-linking", "hierarchy", "visual-layout"},
		},
	},
}

// Resources describes the paper, workspace and mindmap generators
func Resources() []tool.Resource {
	resources := make([]tool.Resource, 0, len(resourceDocs))
	for _, doc := range resourceDocs {
		uri := ResourceScheme + "://" + doc.path
		resources = append(resources, tool.Resource{
			URI:         uri,
			Name:        doc.name,
			Description: doc.description,
			MIMEType:    "application/json",
			Read: func(ctx context.Context) (string, error) {
				return ReadResource(uri)
			},
		})
	}
	return resources
}

// ReadResource returns the JSON body of a research:// resource
func ReadResource(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid resource URI %q: %w", uri, err)
	}
	if u.Scheme != ResourceScheme {
		return "", fmt.Errorf("unsupported URI scheme: %s", u.Scheme)
	}

	path := u.Host + u.Path
	for _, doc := range resourceDocs {
		if doc.path != path {
			continue
		}
		data, err := json.Marshal(doc.body)
		if err != nil {
			return "", fmt.Errorf("failed to encode resource %s: %w", uri, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown resource path: %s", path)
}
