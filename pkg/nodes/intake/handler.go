// Package intake provides the client intake node handler.
package intake

import (
	"context"
	"fmt"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
	"github.com/google/uuid"
)

// requiredFields must be present in the context data before a client record
// can be assembled.
var requiredFields = []string{"name", "email", "pan"}

// Handler normalizes raw intake fields from the context data into a
// ClientData record under the "client" key.
type Handler struct{}

func (h *Handler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	for _, field := range requiredFields {
		if v, ok := ectx.Data[field]; !ok || v == nil || v == "" {
			return protocol.NewMissingFieldError(node.ID, field)
		}
	}

	client := models.ClientData{
		ID:            uuid.New().String(),
		Name:          stringField(ectx.Data, "name"),
		Email:         stringField(ectx.Data, "email"),
		Phone:         stringField(ectx.Data, "phone"),
		PAN:           stringField(ectx.Data, "pan"),
		GSTIN:         stringField(ectx.Data, "gstin"),
		Address:       stringField(ectx.Data, "address"),
		BusinessType:  stringFieldDefault(ectx.Data, "businessType", "Individual"),
		FinancialYear: stringFieldDefault(ectx.Data, "financialYear", "2024-25"),
		Documents:     []models.Document{},
	}

	ectx.Data[models.DataKeyClient] = client
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Client intake completed for %s", client.Name), nil)

	return nil
}

func stringField(data map[string]any, key string) string {
	v, _ := data[key].(string)

	return v
}

func stringFieldDefault(data map[string]any, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}

	return fallback
}

// Factory creates intake handlers.
type Factory struct{}

func (f *Factory) Type() models.NodeType { return models.NodeTypeClientIntake }

func (f *Factory) Create() (protocol.Handler, error) { return &Handler{}, nil }

// NewFactory creates a new factory instance.
func NewFactory() protocol.HandlerFactory { return &Factory{} }
