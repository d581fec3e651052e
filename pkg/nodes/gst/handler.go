// Package gst provides the GST processor node handler.
package gst

import (
	"context"
	"fmt"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/nodes/tax"
	"github.com/caflow/caflow/pkg/protocol"
)

const defaultGSTRate = 0.18

// Handler computes GST on turnover from the financialData context field.
// Intra-state supplies split the amount evenly into CGST and SGST; interstate
// supplies carry the full amount as IGST.
type Handler struct{}

func (h *Handler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	fin, ok := tax.FinancialDataFrom(ectx.Data)
	if !ok {
		return fmt.Errorf("%w: node %s requires financialData for GST processing", protocol.ErrMissingInput, node.ID)
	}

	rate := defaultGSTRate
	if v, ok := numeric(node.Data.Config["gstRate"]); ok && v > 0 {
		rate = v
	}

	interstate, _ := node.Data.Config["interstate"].(bool)

	calc := models.GSTCalculation{
		Turnover:     fin.Revenue,
		GSTRate:      rate,
		GSTAmount:    fin.Revenue * rate,
		CalculatedAt: time.Now().UTC(),
	}

	if interstate {
		calc.IGST = calc.GSTAmount
	} else {
		calc.CGST = calc.GSTAmount / 2
		calc.SGST = calc.GSTAmount / 2
	}

	ectx.Data[models.DataKeyGSTCalculation] = calc
	ectx.AppendLog(models.LogLevelInfo,
		fmt.Sprintf("Calculated GST %.2f at rate %.2f on turnover %.2f", calc.GSTAmount, rate, calc.Turnover), nil)

	return nil
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Factory creates GST processor handlers.
type Factory struct{}

func (f *Factory) Type() models.NodeType { return models.NodeTypeGSTProcessor }

func (f *Factory) Create() (protocol.Handler, error) { return &Handler{}, nil }

// NewFactory creates a new factory instance.
func NewFactory() protocol.HandlerFactory { return &Factory{} }
