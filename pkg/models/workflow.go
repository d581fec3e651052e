package models

import "time"

// Port represents a named connection point on a node.
type Port struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	DataType DataType `json:"dataType"`
	Required bool     `json:"required,omitempty"`
}

// NodeData holds the user-facing configuration of a node instance.
type NodeData struct {
	Label       string         `json:"label"       validate:"required"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config"`
	Inputs      []Port         `json:"inputs"`
	Outputs     []Port         `json:"outputs"`
}

// Position is canvas layout only; it carries no execution semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode is one step in a workflow graph.
type WorkflowNode struct {
	ID       string   `json:"id"   validate:"required"`
	Type     NodeType `json:"type" validate:"required"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Connection is a directed edge between a source node's output port and a
// target node's input port.
type Connection struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"sourceNodeId" validate:"required"`
	TargetNodeID string `json:"targetNodeId" validate:"required"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// Workflow is a directed acyclic graph of automation nodes. It is treated as
// immutable during execution: a run reads the graph it started with.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description"`
	Nodes       []WorkflowNode `json:"nodes"`
	Connections []Connection   `json:"connections"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	IsActive    bool           `json:"isActive"`
	Tags        []string       `json:"tags"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i]
		}
	}

	return nil
}

// IncomingConnections returns all connections targeting the given node.
func (w *Workflow) IncomingConnections(nodeID string) []Connection {
	var in []Connection

	for _, c := range w.Connections {
		if c.TargetNodeID == nodeID {
			in = append(in, c)
		}
	}

	return in
}

// Clone returns a deep copy of the workflow graph.
func (w *Workflow) Clone() *Workflow {
	cloned := *w

	cloned.Nodes = make([]WorkflowNode, len(w.Nodes))
	for i, n := range w.Nodes {
		cn := n
		cn.Data.Config = cloneMap(n.Data.Config)
		cn.Data.Inputs = append([]Port(nil), n.Data.Inputs...)
		cn.Data.Outputs = append([]Port(nil), n.Data.Outputs...)
		cloned.Nodes[i] = cn
	}

	cloned.Connections = append([]Connection(nil), w.Connections...)
	cloned.Tags = append([]string(nil), w.Tags...)

	return &cloned
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))

	for k, v := range m {
		switch typed := v.(type) {
		case map[string]any:
			out[k] = cloneMap(typed)
		case []any:
			out[k] = append([]any(nil), typed...)
		default:
			out[k] = v
		}
	}

	return out
}
