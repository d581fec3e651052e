// Package tax provides income tax calculation node handlers.
package tax

import (
	"context"
	"fmt"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
)

// Individual income tax slabs (old regime). Each bracket taxes only the
// marginal amount above the previous threshold; a flat 4% health and
// education cess applies on the income tax component.
const (
	slab1Limit = 250000.0
	slab2Limit = 500000.0
	slab3Limit = 1000000.0

	slab2Rate = 0.05
	slab3Rate = 0.20
	slab4Rate = 0.30

	slab2Base = 12500.0  // tax at the 500k boundary
	slab3Base = 112500.0 // tax at the 1,000k boundary

	cessRate = 0.04
)

// CalculateIncomeTax applies the progressive slab table to taxable income.
func CalculateIncomeTax(taxableIncome float64) float64 {
	switch {
	case taxableIncome <= slab1Limit:
		return 0
	case taxableIncome <= slab2Limit:
		return (taxableIncome - slab1Limit) * slab2Rate
	case taxableIncome <= slab3Limit:
		return slab2Base + (taxableIncome-slab2Limit)*slab3Rate
	default:
		return slab3Base + (taxableIncome-slab3Limit)*slab4Rate
	}
}

// Calculate computes the full tax breakdown from financial data.
func Calculate(fin models.FinancialData) models.TaxCalculation {
	taxableIncome := fin.Revenue - fin.Expenses
	incomeTax := CalculateIncomeTax(taxableIncome)
	cess := incomeTax * cessRate

	return models.TaxCalculation{
		TaxableIncome: taxableIncome,
		IncomeTax:     incomeTax,
		Cess:          cess,
		TotalTax:      incomeTax + cess,
		CalculatedAt:  time.Now().UTC(),
	}
}

// CalculatorHandler computes the tax calculation from the financialData
// context field. Missing financial data is fatal to the run.
type CalculatorHandler struct{}

func (h *CalculatorHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	fin, ok := FinancialDataFrom(ectx.Data)
	if !ok {
		return fmt.Errorf("%w: node %s requires financialData for tax calculation", protocol.ErrMissingInput, node.ID)
	}

	calc := Calculate(fin)
	ectx.Data[models.DataKeyTaxCalculation] = calc
	ectx.AppendLog(models.LogLevelInfo,
		fmt.Sprintf("Calculated income tax %.2f on taxable income %.2f", calc.TotalTax, calc.TaxableIncome), nil)

	return nil
}

// ITRHandler shapes an ITR record from the financial data and any prior tax
// calculation. It runs the calculation itself when no tax calculator node
// preceded it.
type ITRHandler struct{}

func (h *ITRHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	fin, ok := FinancialDataFrom(ectx.Data)
	if !ok {
		return fmt.Errorf("%w: node %s requires financialData for ITR processing", protocol.ErrMissingInput, node.ID)
	}

	calc, ok := ectx.Data[models.DataKeyTaxCalculation].(models.TaxCalculation)
	if !ok {
		calc = Calculate(fin)
	}

	returnType, _ := node.Data.Config["returnType"].(string)
	if returnType == "" {
		returnType = "ITR-1"
	}

	assessmentYear, _ := node.Data.Config["assessmentYear"].(string)
	if assessmentYear == "" {
		assessmentYear = "2024-25"
	}

	ectx.Data[models.DataKeyITRData] = map[string]any{
		"returnType":     returnType,
		"assessmentYear": assessmentYear,
		"grossIncome":    fin.Revenue,
		"taxableIncome":  calc.TaxableIncome,
		"totalTax":       calc.TotalTax,
		"preparedAt":     time.Now().UTC(),
	}
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Prepared %s for AY %s", returnType, assessmentYear), nil)

	return nil
}

// FinancialDataFrom pulls the financialData field out of the data bag,
// accepting either the typed record or the raw map shape initial data
// arrives in.
func FinancialDataFrom(data map[string]any) (models.FinancialData, bool) {
	switch v := data[models.DataKeyFinancialData].(type) {
	case models.FinancialData:
		return v, true
	case map[string]any:
		fin := models.FinancialData{}
		fin.Revenue, _ = numeric(v["revenue"])
		fin.Expenses, _ = numeric(v["expenses"])
		fin.ClientID, _ = v["clientId"].(string)
		fin.Period, _ = v["period"].(string)

		return fin, true
	default:
		return models.FinancialData{}, false
	}
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

// CalculatorFactory creates tax calculator handlers.
type CalculatorFactory struct{}

func (f *CalculatorFactory) Type() models.NodeType { return models.NodeTypeTaxCalculator }

func (f *CalculatorFactory) Create() (protocol.Handler, error) { return &CalculatorHandler{}, nil }

// NewCalculatorFactory creates a new factory instance.
func NewCalculatorFactory() protocol.HandlerFactory { return &CalculatorFactory{} }

// ITRFactory creates income tax processor handlers.
type ITRFactory struct{}

func (f *ITRFactory) Type() models.NodeType { return models.NodeTypeIncomeTaxProcessor }

func (f *ITRFactory) Create() (protocol.Handler, error) { return &ITRHandler{}, nil }

// NewITRFactory creates a new factory instance.
func NewITRFactory() protocol.HandlerFactory { return &ITRFactory{} }
