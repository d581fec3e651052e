package validation

import (
	"testing"

	"github.com/caflow/caflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		Name: "Valid Workflow",
		Nodes: []models.WorkflowNode{
			{ID: "a", Type: models.NodeTypeClientIntake, Data: models.NodeData{Label: "Intake"}},
			{ID: "b", Type: models.NodeTypeTaxCalculator, Data: models.NodeData{Label: "Tax"}},
		},
		Connections: []models.Connection{
			{ID: "c1", SourceNodeID: "a", TargetNodeID: "b"},
		},
	}
}

func TestValidate_ValidWorkflow(t *testing.T) {
	result := Validate(validWorkflow())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidate_MissingName(t *testing.T) {
	w := validWorkflow()
	w.Name = "   "

	result := Validate(w)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Workflow name is required")
}

func TestValidate_NoNodes(t *testing.T) {
	result := Validate(&models.Workflow{Name: "Empty"})

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Workflow must have at least one node")
}

func TestValidate_DuplicateNodeIDs(t *testing.T) {
	w := validWorkflow()
	w.Nodes = append(w.Nodes, models.WorkflowNode{ID: "a", Type: models.NodeTypeDelay, Data: models.NodeData{Label: "Dup"}})

	result := Validate(w)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Duplicate node ID: a")
}

func TestValidate_MissingTypeAndLabel(t *testing.T) {
	w := &models.Workflow{
		Name:  "Broken",
		Nodes: []models.WorkflowNode{{ID: "x"}},
	}

	result := Validate(w)
	assert.Contains(t, result.Errors, "Node x must have a type")
	assert.Contains(t, result.Errors, "Node x must have a label")
}

func TestValidate_DanglingConnection(t *testing.T) {
	w := validWorkflow()
	w.Connections = append(w.Connections, models.Connection{ID: "c2", SourceNodeID: "a", TargetNodeID: "ghost"})

	result := Validate(w)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Connection references invalid target node: ghost")
}

func TestValidate_SelfLoop(t *testing.T) {
	w := validWorkflow()
	w.Connections = append(w.Connections, models.Connection{ID: "c2", SourceNodeID: "b", TargetNodeID: "b"})

	result := Validate(w)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Node cannot connect to itself")
}

func TestValidate_Cycle(t *testing.T) {
	w := validWorkflow()
	w.Nodes = append(w.Nodes, models.WorkflowNode{ID: "c", Type: models.NodeTypeDelay, Data: models.NodeData{Label: "Delay"}})
	w.Connections = append(w.Connections,
		models.Connection{ID: "c2", SourceNodeID: "b", TargetNodeID: "c"},
		models.Connection{ID: "c3", SourceNodeID: "c", TargetNodeID: "b"},
	)

	result := Validate(w)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Workflow contains circular dependencies")
}

func TestValidate_UnreachableNode(t *testing.T) {
	w := validWorkflow()
	// Two nodes feeding each other with no way in from an entry point.
	w.Nodes = append(w.Nodes,
		models.WorkflowNode{ID: "island1", Type: models.NodeTypeDelay, Data: models.NodeData{Label: "Island 1"}},
		models.WorkflowNode{ID: "island2", Type: models.NodeTypeDelay, Data: models.NodeData{Label: "Island 2"}},
	)
	w.Connections = append(w.Connections,
		models.Connection{ID: "c2", SourceNodeID: "island1", TargetNodeID: "island2"},
		models.Connection{ID: "c3", SourceNodeID: "island2", TargetNodeID: "island1"},
	)

	result := Validate(w)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Workflow contains circular dependencies")
	assert.Contains(t, result.Errors, "Unreachable nodes found: island1, island2")
}

func TestValidate_TriggerNodeIsAlwaysReachable(t *testing.T) {
	w := validWorkflow()
	w.Nodes = append(w.Nodes, models.WorkflowNode{ID: "trig", Type: models.NodeTypeScheduledTrigger, Data: models.NodeData{Label: "Schedule"}})

	result := Validate(w)
	require.True(t, result.IsValid, "errors: %v", result.Errors)
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	w := &models.Workflow{
		Nodes: []models.WorkflowNode{
			{ID: "a", Type: models.NodeTypeClientIntake, Data: models.NodeData{Label: "Intake"}},
			{ID: "a", Type: models.NodeTypeDelay, Data: models.NodeData{Label: "Dup"}},
		},
		Connections: []models.Connection{
			{ID: "c1", SourceNodeID: "ghost", TargetNodeID: "a"},
		},
	}

	result := Validate(w)
	assert.False(t, result.IsValid)
	assert.GreaterOrEqual(t, len(result.Errors), 3)
}
