// Package document provides document processing and data validation node
// handlers.
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
)

// ProcessorHandler runs every document in the context through the extractor
// collaborator and stores the processed results. A missing documents field is
// treated as an empty batch, not an error.
type ProcessorHandler struct {
	extractor protocol.DocumentExtractor
}

func (h *ProcessorHandler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	docs := documentsFrom(ectx.Data)

	processed := make([]models.ProcessedDocument, 0, len(docs))

	for _, doc := range docs {
		fields, confidence, err := h.extract(ctx, doc)
		if err != nil {
			return fmt.Errorf("node %s: extracting %s: %w", node.ID, doc.Filename, err)
		}

		fields["confidence"] = confidence
		processed = append(processed, models.ProcessedDocument{
			Document:      doc,
			Processed:     true,
			ExtractedData: fields,
			ProcessedAt:   time.Now().UTC(),
		})
	}

	ectx.Data[models.DataKeyProcessedDocuments] = processed
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Processed %d documents", len(processed)), nil)

	return nil
}

func (h *ProcessorHandler) extract(ctx context.Context, doc models.Document) (map[string]any, float64, error) {
	if h.extractor != nil {
		return h.extractor.Extract(ctx, doc)
	}

	// No extractor wired: echo the document identity so downstream nodes
	// still see a processed record.
	return map[string]any{
		"filename": doc.Filename,
		"type":     doc.Type,
	}, 0, nil
}

func documentsFrom(data map[string]any) []models.Document {
	switch v := data[models.DataKeyDocuments].(type) {
	case []models.Document:
		return v
	case []any:
		docs := make([]models.Document, 0, len(v))
		for _, item := range v {
			if doc, ok := item.(models.Document); ok {
				docs = append(docs, doc)
			}
		}

		return docs
	default:
		return nil
	}
}

// ValidatorHandler checks configured validation rules against the context
// data. In strict mode any violation fails the node; otherwise violations are
// recorded and execution continues.
type ValidatorHandler struct{}

func (h *ValidatorHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	rules, _ := node.Data.Config["validationRules"].([]any)
	strict := true
	if v, ok := node.Data.Config["strictMode"].(bool); ok {
		strict = v
	}

	var violations []string

	for _, raw := range rules {
		rule, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		field, _ := rule["field"].(string)
		if field == "" {
			continue
		}

		required, _ := rule["required"].(bool)
		if v, present := ectx.Data[field]; required && (!present || v == nil || v == "") {
			violations = append(violations, fmt.Sprintf("field %s is required", field))
		}
	}

	ectx.Data["validationErrors"] = violations

	if len(violations) > 0 {
		ectx.AppendLog(models.LogLevelWarning,
			fmt.Sprintf("Data validation found %d violations", len(violations)),
			map[string]any{"violations": violations})

		if strict {
			return fmt.Errorf("node %s: data validation failed with %d violations", node.ID, len(violations))
		}

		return nil
	}

	ectx.AppendLog(models.LogLevelInfo, "Data validation passed", nil)

	return nil
}

// ProcessorFactory creates document processor handlers bound to a document
// extractor collaborator.
type ProcessorFactory struct {
	extractor protocol.DocumentExtractor
}

func (f *ProcessorFactory) Type() models.NodeType { return models.NodeTypeDocumentProcessor }

func (f *ProcessorFactory) Create() (protocol.Handler, error) {
	return &ProcessorHandler{extractor: f.extractor}, nil
}

// NewProcessorFactory creates a new factory instance.
func NewProcessorFactory(extractor protocol.DocumentExtractor) protocol.HandlerFactory {
	return &ProcessorFactory{extractor: extractor}
}

// ValidatorFactory creates data validator handlers.
type ValidatorFactory struct{}

func (f *ValidatorFactory) Type() models.NodeType { return models.NodeTypeDataValidator }

func (f *ValidatorFactory) Create() (protocol.Handler, error) { return &ValidatorHandler{}, nil }

// NewValidatorFactory creates a new factory instance.
func NewValidatorFactory() protocol.HandlerFactory { return &ValidatorFactory{} }
