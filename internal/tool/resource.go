package tool

import "context"

// Resource is read-only content a provider exposes by URI
type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string

	// Read returns the resource body
	Read func(ctx context.Context) (string, error)
}
