package document

import (
	"context"
	"errors"
	"testing"

	"github.com/caflow/caflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	fields     map[string]any
	confidence float64
	err        error
}

func (s *stubExtractor) Extract(_ context.Context, doc models.Document) (map[string]any, float64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}

	fields := map[string]any{"filename": doc.Filename}
	for k, v := range s.fields {
		fields[k] = v
	}

	return fields, s.confidence, nil
}

func TestProcessorHandler_ExtractsEachDocument(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyDocuments: []models.Document{
			{ID: "doc-1", Filename: "pan_card.pdf", Type: models.DocumentTypeOther},
			{ID: "doc-2", Filename: "itr.pdf", Type: models.DocumentTypeIncomeTaxReturn},
		},
	})
	node := &models.WorkflowNode{ID: "proc-1", Type: models.NodeTypeDocumentProcessor, Data: models.NodeData{Label: "Process"}}

	handler := &ProcessorHandler{extractor: &stubExtractor{
		fields:     map[string]any{"panNumber": "ABCDE1234F"},
		confidence: 0.92,
	}}

	require.NoError(t, handler.Execute(t.Context(), ectx, node))

	processed, ok := ectx.Data[models.DataKeyProcessedDocuments].([]models.ProcessedDocument)
	require.True(t, ok)
	require.Len(t, processed, 2)

	assert.True(t, processed[0].Processed)
	assert.Equal(t, "pan_card.pdf", processed[0].ExtractedData["filename"])
	assert.Equal(t, 0.92, processed[0].ExtractedData["confidence"])
	assert.False(t, processed[0].ProcessedAt.IsZero())
}

func TestProcessorHandler_EmptyBatch(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{ID: "proc-1", Type: models.NodeTypeDocumentProcessor, Data: models.NodeData{Label: "Process"}}

	require.NoError(t, (&ProcessorHandler{}).Execute(t.Context(), ectx, node))

	processed := ectx.Data[models.DataKeyProcessedDocuments].([]models.ProcessedDocument)
	assert.Empty(t, processed)
}

func TestProcessorHandler_ExtractorFailure(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyDocuments: []models.Document{{ID: "doc-1", Filename: "blurred.jpg"}},
	})
	node := &models.WorkflowNode{ID: "proc-1", Type: models.NodeTypeDocumentProcessor, Data: models.NodeData{Label: "Process"}}

	handler := &ProcessorHandler{extractor: &stubExtractor{err: errors.New("unreadable scan")}}

	err := handler.Execute(t.Context(), ectx, node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blurred.jpg")
}

func TestProcessorHandler_WithoutExtractorEchoesIdentity(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyDocuments: []models.Document{{ID: "doc-1", Filename: "invoice.pdf", Type: models.DocumentTypeInvoice}},
	})
	node := &models.WorkflowNode{ID: "proc-1", Type: models.NodeTypeDocumentProcessor, Data: models.NodeData{Label: "Process"}}

	require.NoError(t, (&ProcessorHandler{}).Execute(t.Context(), ectx, node))

	processed := ectx.Data[models.DataKeyProcessedDocuments].([]models.ProcessedDocument)
	require.Len(t, processed, 1)
	assert.Equal(t, "invoice.pdf", processed[0].ExtractedData["filename"])
}

func TestValidatorHandler_StrictModeFailsOnViolations(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{"name": "Asha"})
	node := &models.WorkflowNode{
		ID:   "validate-1",
		Type: models.NodeTypeDataValidator,
		Data: models.NodeData{Label: "Validate", Config: map[string]any{
			"validationRules": []any{
				map[string]any{"field": "name", "required": true},
				map[string]any{"field": "pan", "required": true},
			},
		}},
	}

	err := (&ValidatorHandler{}).Execute(t.Context(), ectx, node)
	require.Error(t, err)

	violations := ectx.Data["validationErrors"].([]string)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "pan")
}

func TestValidatorHandler_LenientModeRecordsAndContinues(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "validate-1",
		Type: models.NodeTypeDataValidator,
		Data: models.NodeData{Label: "Validate", Config: map[string]any{
			"strictMode": false,
			"validationRules": []any{
				map[string]any{"field": "pan", "required": true},
			},
		}},
	}

	require.NoError(t, (&ValidatorHandler{}).Execute(t.Context(), ectx, node))
	assert.Len(t, ectx.Data["validationErrors"], 1)
}

func TestValidatorHandler_NoRules(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{ID: "validate-1", Type: models.NodeTypeDataValidator, Data: models.NodeData{Label: "Validate"}}

	require.NoError(t, (&ValidatorHandler{}).Execute(t.Context(), ectx, node))
	assert.Empty(t, ectx.Data["validationErrors"])
}
