// Package compliance provides compliance, audit and regulatory node handlers.
// Findings produced here are data, never node failures: a client with an
// invalid PAN still gets a completed run carrying the finding.
package compliance

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
)

var (
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
)

// CheckerHandler validates client identifiers and registration status,
// appending findings to the complianceChecks context field.
type CheckerHandler struct{}

func (h *CheckerHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	client := clientFrom(ectx.Data)

	checks := existingChecks(ectx.Data)

	if client.PAN != "" && !panPattern.MatchString(client.PAN) {
		checks = append(checks, models.ComplianceCheck{
			Type:     "PAN_INVALID",
			Severity: models.SeverityError,
			Message:  "Invalid PAN format",
		})
	}

	if client.GSTIN != "" && !gstinPattern.MatchString(client.GSTIN) {
		checks = append(checks, models.ComplianceCheck{
			Type:     "GSTIN_INVALID",
			Severity: models.SeverityError,
			Message:  "Invalid GSTIN format",
		})
	}

	if client.BusinessType == "Company" && client.GSTIN == "" {
		checks = append(checks, models.ComplianceCheck{
			Type:     "GST_REGISTRATION_REQUIRED",
			Severity: models.SeverityWarning,
			Message:  "GST registration may be required for companies",
		})
	}

	ectx.Data[models.DataKeyComplianceChecks] = checks
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Compliance check recorded %d findings", len(checks)), nil)

	return nil
}

// AuditHandler validates audit readiness of the financial data on hand and
// records an audit status report.
type AuditHandler struct{}

func (h *AuditHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	auditType, _ := node.Data.Config["auditType"].(string)
	if auditType == "" {
		auditType = "internal"
	}

	checks := existingChecks(ectx.Data)

	fin, hasFinancials := ectx.Data[models.DataKeyFinancialData]
	if !hasFinancials || fin == nil {
		checks = append(checks, models.ComplianceCheck{
			Type:     "AUDIT_FINANCIALS_MISSING",
			Severity: models.SeverityWarning,
			Message:  "No financial data available for audit validation",
		})
	}

	if docs, ok := ectx.Data[models.DataKeyProcessedDocuments].([]models.ProcessedDocument); !ok || len(docs) == 0 {
		checks = append(checks, models.ComplianceCheck{
			Type:     "AUDIT_DOCUMENTATION_INCOMPLETE",
			Severity: models.SeverityWarning,
			Message:  "No processed documents supporting the audit",
		})
	}

	ectx.Data[models.DataKeyComplianceChecks] = checks
	ectx.Data["auditStatus"] = map[string]any{
		"auditType":   auditType,
		"ready":       hasFinancials,
		"validatedAt": time.Now().UTC(),
	}
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Audit validation completed for %s audit", auditType), nil)

	return nil
}

// RegulatoryHandler checks the configured regulation set against the client
// profile and records action items.
type RegulatoryHandler struct{}

func (h *RegulatoryHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	regulations := regulationsFrom(node.Data.Config)
	client := clientFrom(ectx.Data)

	checks := existingChecks(ectx.Data)

	var actionItems []string

	for _, regulation := range regulations {
		switch regulation {
		case "income_tax":
			if client.PAN == "" {
				checks = append(checks, models.ComplianceCheck{
					Type:     "REG_PAN_MISSING",
					Severity: models.SeverityError,
					Message:  "PAN is required for income tax compliance",
				})
				actionItems = append(actionItems, "Obtain PAN for the client")
			}
		case "gst":
			if client.GSTIN == "" {
				actionItems = append(actionItems, "Verify whether GST registration applies")
			}
		case "company_law":
			if client.BusinessType == "Company" {
				actionItems = append(actionItems, "Confirm annual ROC filings are current")
			}
		}
	}

	ectx.Data[models.DataKeyComplianceChecks] = checks
	ectx.Data["regulatoryActionItems"] = actionItems
	ectx.AppendLog(models.LogLevelInfo,
		fmt.Sprintf("Regulatory check covered %d regulations, %d action items", len(regulations), len(actionItems)), nil)

	return nil
}

func clientFrom(data map[string]any) models.ClientData {
	switch v := data[models.DataKeyClient].(type) {
	case models.ClientData:
		return v
	case map[string]any:
		client := models.ClientData{}
		client.Name, _ = v["name"].(string)
		client.PAN, _ = v["pan"].(string)
		client.GSTIN, _ = v["gstin"].(string)
		client.BusinessType, _ = v["businessType"].(string)
		client.Email, _ = v["email"].(string)
		client.Phone, _ = v["phone"].(string)

		return client
	default:
		return models.ClientData{}
	}
}

func existingChecks(data map[string]any) []models.ComplianceCheck {
	checks, _ := data[models.DataKeyComplianceChecks].([]models.ComplianceCheck)
	if checks == nil {
		checks = []models.ComplianceCheck{}
	}

	return checks
}

func regulationsFrom(config map[string]any) []string {
	raw, ok := config["regulations"].([]any)
	if !ok {
		return []string{"income_tax", "gst", "company_law"}
	}

	regulations := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			regulations = append(regulations, s)
		}
	}

	return regulations
}

// CheckerFactory creates compliance checker handlers.
type CheckerFactory struct{}

func (f *CheckerFactory) Type() models.NodeType { return models.NodeTypeComplianceChecker }

func (f *CheckerFactory) Create() (protocol.Handler, error) { return &CheckerHandler{}, nil }

// NewCheckerFactory creates a new factory instance.
func NewCheckerFactory() protocol.HandlerFactory { return &CheckerFactory{} }

// AuditFactory creates audit validator handlers.
type AuditFactory struct{}

func (f *AuditFactory) Type() models.NodeType { return models.NodeTypeAuditValidator }

func (f *AuditFactory) Create() (protocol.Handler, error) { return &AuditHandler{}, nil }

// NewAuditFactory creates a new factory instance.
func NewAuditFactory() protocol.HandlerFactory { return &AuditFactory{} }

// RegulatoryFactory creates regulatory checker handlers.
type RegulatoryFactory struct{}

func (f *RegulatoryFactory) Type() models.NodeType { return models.NodeTypeRegulatoryChecker }

func (f *RegulatoryFactory) Create() (protocol.Handler, error) { return &RegulatoryHandler{}, nil }

// NewRegulatoryFactory creates a new factory instance.
func NewRegulatoryFactory() protocol.HandlerFactory { return &RegulatoryFactory{} }
