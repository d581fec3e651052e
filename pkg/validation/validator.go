// Package validation checks workflow graphs for structural problems before
// they are saved or executed.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caflow/caflow/pkg/models"
)

// Result is the outcome of validating a workflow. Errors accumulates every
// problem found, not just the first.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate runs the full structural check suite over a workflow.
func Validate(workflow *models.Workflow) Result {
	var errs []string

	if strings.TrimSpace(workflow.Name) == "" {
		errs = append(errs, "Workflow name is required")
	}

	if len(workflow.Nodes) == 0 {
		errs = append(errs, "Workflow must have at least one node")
	}

	nodeIDs := make(map[string]bool, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		if strings.TrimSpace(node.ID) == "" {
			errs = append(errs, "All nodes must have valid IDs")

			continue
		}

		if nodeIDs[node.ID] {
			errs = append(errs, fmt.Sprintf("Duplicate node ID: %s", node.ID))
		}

		nodeIDs[node.ID] = true

		if node.Type == "" {
			errs = append(errs, fmt.Sprintf("Node %s must have a type", node.ID))
		}

		if strings.TrimSpace(node.Data.Label) == "" {
			errs = append(errs, fmt.Sprintf("Node %s must have a label", node.ID))
		}
	}

	for _, conn := range workflow.Connections {
		if !nodeIDs[conn.SourceNodeID] {
			errs = append(errs, fmt.Sprintf("Connection references invalid source node: %s", conn.SourceNodeID))
		}

		if !nodeIDs[conn.TargetNodeID] {
			errs = append(errs, fmt.Sprintf("Connection references invalid target node: %s", conn.TargetNodeID))
		}

		if conn.SourceNodeID == conn.TargetNodeID {
			errs = append(errs, "Node cannot connect to itself")
		}
	}

	if hasCycle(workflow) {
		errs = append(errs, "Workflow contains circular dependencies")
	}

	if unreachable := unreachableNodes(workflow); len(unreachable) > 0 {
		errs = append(errs, fmt.Sprintf("Unreachable nodes found: %s", strings.Join(unreachable, ", ")))
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func adjacency(workflow *models.Workflow) map[string][]string {
	graph := make(map[string][]string, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		graph[node.ID] = nil
	}

	for _, conn := range workflow.Connections {
		graph[conn.SourceNodeID] = append(graph[conn.SourceNodeID], conn.TargetNodeID)
	}

	return graph
}

// hasCycle detects cycles with a DFS carrying an explicit recursion stack.
func hasCycle(workflow *models.Workflow) bool {
	graph := adjacency(workflow)

	visited := make(map[string]bool, len(graph))
	onStack := make(map[string]bool, len(graph))

	var visit func(id string) bool

	visit = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range graph[id] {
			if !visited[next] {
				if visit(next) {
					return true
				}
			} else if onStack[next] {
				return true
			}
		}

		onStack[id] = false

		return false
	}

	for _, node := range workflow.Nodes {
		if !visited[node.ID] && visit(node.ID) {
			return true
		}
	}

	return false
}

// unreachableNodes returns the IDs of nodes no entry point can reach. Entry
// points are nodes without incoming connections, plus trigger nodes, which
// may legitimately carry incoming edges from configuration links.
func unreachableNodes(workflow *models.Workflow) []string {
	graph := adjacency(workflow)

	hasIncoming := make(map[string]bool, len(workflow.Connections))
	for _, conn := range workflow.Connections {
		hasIncoming[conn.TargetNodeID] = true
	}

	reachable := make(map[string]bool, len(graph))

	var visit func(id string)

	visit = func(id string) {
		if reachable[id] {
			return
		}

		reachable[id] = true

		for _, next := range graph[id] {
			visit(next)
		}
	}

	for _, node := range workflow.Nodes {
		if !hasIncoming[node.ID] || node.Type.IsTriggerType() {
			visit(node.ID)
		}
	}

	var unreachable []string

	for _, node := range workflow.Nodes {
		if !reachable[node.ID] {
			unreachable = append(unreachable, node.ID)
		}
	}

	sort.Strings(unreachable)

	return unreachable
}
