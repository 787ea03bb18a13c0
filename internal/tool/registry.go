package tool

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the tools and resources a provider serves
type Registry struct {
	tools     map[string]Tool
	resources map[string]Resource
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
	}
}

func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.tools[name] = tool
	return nil
}

// MustRegister registers every tool and panics on a duplicate name
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool %s not found", name)
	}

	return tool, nil
}

// List returns the registered tools sorted by name
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name() < tools[j].Name()
	})
	return tools
}

// Names returns the sorted tool names
func (r *Registry) Names() []string {
	tools := r.List()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}

// RegisterResource adds a resource; URIs must be unique
func (r *Registry) RegisterResource(res Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Read == nil {
		return fmt.Errorf("resource %s has no reader", res.URI)
	}
	if _, exists := r.resources[res.URI]; exists {
		return fmt.Errorf("resource %s already registered", res.URI)
	}

	r.resources[res.URI] = res
	return nil
}

// Resources returns the registered resources sorted by URI
func (r *Registry) Resources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resources := make([]Resource, 0, len(r.resources))
	for _, res := range r.resources {
		resources = append(resources, res)
	}
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].URI < resources[j].URI
	})
	return resources
}
