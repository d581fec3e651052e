package registry

import (
	"fmt"
	"log/slog"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
)

// ErrUnknownNodeType is returned for types with no catalog definition or no
// registered handler factory.
var ErrUnknownNodeType = fmt.Errorf("unknown node type")

// Definition returns the canonical default config and declared ports for a
// node type. The returned data is a deep copy; callers may mutate it freely
// without corrupting the catalog.
func Definition(nodeType models.NodeType) (models.NodeData, error) {
	def, ok := nodeDefinitions[nodeType]
	if !ok {
		return models.NodeData{}, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}

	w := models.Workflow{Nodes: []models.WorkflowNode{{Data: def}}}

	return w.Clone().Nodes[0].Data, nil
}

// Category returns the palette category claiming the node type, or
// CategoryUnknown when none does.
func Category(nodeType models.NodeType) models.NodeCategory {
	for category, types := range nodeCategories {
		for _, t := range types {
			if t == nodeType {
				return category
			}
		}
	}

	return models.CategoryUnknown
}

// Types returns all catalogued node types.
func Types() []models.NodeType {
	types := make([]models.NodeType, 0, len(nodeDefinitions))
	for t := range nodeDefinitions {
		types = append(types, t)
	}

	return types
}

// Registry maps node types to handler factories. Dispatch is a lookup, not a
// switch: adding a node type means registering a new factory.
type Registry struct {
	logger    *slog.Logger
	factories map[models.NodeType]protocol.HandlerFactory
}

// NewRegistry creates an empty handler registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[models.NodeType]protocol.HandlerFactory),
	}
}

// Register adds a handler factory, replacing any previous factory for the
// same type.
func (r *Registry) Register(factory protocol.HandlerFactory) {
	r.factories[factory.Type()] = factory
}

// CreateHandler builds the handler for a node type.
func (r *Registry) CreateHandler(nodeType models.NodeType) (protocol.Handler, error) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: no handler registered for %s", ErrUnknownNodeType, nodeType)
	}

	return factory.Create()
}

// HasHandler reports whether a handler factory is registered for the type.
func (r *Registry) HasHandler(nodeType models.NodeType) bool {
	_, ok := r.factories[nodeType]

	return ok
}
