package output

import (
	"strings"
	"testing"

	"github.com/caflow/caflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_TaxSummary(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyClient:         models.ClientData{Name: "Asha Mehta", PAN: "ABCDE1234F"},
		models.DataKeyTaxCalculation: models.TaxCalculation{TaxableIncome: 700000, TotalTax: 54600},
		models.DataKeyGSTCalculation: models.GSTCalculation{GSTAmount: 126000},
	})
	node := &models.WorkflowNode{
		ID:   "report-1",
		Type: models.NodeTypeReportGenerator,
		Data: models.NodeData{Label: "Report", Config: map[string]any{"reportType": "tax_summary"}},
	}

	require.NoError(t, (&ReportHandler{}).Execute(t.Context(), ectx, node))

	report, ok := ectx.Data[models.DataKeyReport].(models.Report)
	require.True(t, ok)
	assert.Equal(t, "Tax Summary Report", report.Type)
	require.NotNil(t, report.Client)
	assert.Equal(t, "Asha Mehta", report.Client.Name)
	require.NotNil(t, report.TaxCalculation)
	assert.InDelta(t, 54600.0, report.TaxCalculation.TotalTax, 0.001)
	require.NotNil(t, report.GSTCalculation)
}

func TestReportHandler_ComplianceReport(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyComplianceChecks: []models.ComplianceCheck{
			{Type: "PAN_INVALID", Severity: models.SeverityError, Message: "Invalid PAN format"},
		},
	})
	node := &models.WorkflowNode{
		ID:   "report-1",
		Type: models.NodeTypeReportGenerator,
		Data: models.NodeData{Label: "Report", Config: map[string]any{"reportType": "compliance_report"}},
	}

	require.NoError(t, (&ReportHandler{}).Execute(t.Context(), ectx, node))

	report := ectx.Data[models.DataKeyReport].(models.Report)
	assert.Equal(t, "Compliance Report", report.Type)
	require.Len(t, report.ComplianceChecks, 1)
	assert.Nil(t, report.Client)
}

func TestReportHandler_UnknownTypeFallsBackToGeneral(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{"revenue": 800000.0})
	node := &models.WorkflowNode{ID: "report-1", Type: models.NodeTypeReportGenerator, Data: models.NodeData{Label: "Report"}}

	require.NoError(t, (&ReportHandler{}).Execute(t.Context(), ectx, node))

	report := ectx.Data[models.DataKeyReport].(models.Report)
	assert.Equal(t, "General Report", report.Type)
	assert.Equal(t, 800000.0, report.Data["revenue"])
}

func TestNotificationHandler_Defaults(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{ID: "notify-1", Type: models.NodeTypeNotificationSender, Data: models.NodeData{Label: "Notify"}}

	require.NoError(t, (&NotificationHandler{}).Execute(t.Context(), ectx, node))

	notification := ectx.Data[models.DataKeyNotification].(map[string]any)
	assert.Equal(t, []string{"email"}, notification["channels"])
	assert.Equal(t, "medium", notification["priority"])
	assert.Equal(t, false, notification["delivered"])
}

func TestNotificationHandler_ConfiguredChannels(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "notify-1",
		Type: models.NodeTypeNotificationSender,
		Data: models.NodeData{Label: "Notify", Config: map[string]any{
			"channels": []any{"email", "sms"},
			"priority": "high",
		}},
	}

	require.NoError(t, (&NotificationHandler{}).Execute(t.Context(), ectx, node))

	notification := ectx.Data[models.DataKeyNotification].(map[string]any)
	assert.Equal(t, []string{"email", "sms"}, notification["channels"])
	assert.Equal(t, "high", notification["priority"])
}

func TestExportHandler_FormatsAndTimestamp(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "export-1",
		Type: models.NodeTypeFileExport,
		Data: models.NodeData{Label: "Export", Config: map[string]any{
			"format":   "pdf",
			"filename": "tax_summary_{{timestamp}}",
		}},
	}

	require.NoError(t, (&ExportHandler{}).Execute(t.Context(), ectx, node))

	file, ok := ectx.Data[models.DataKeyExportedFile].(models.Document)
	require.True(t, ok)
	assert.NotEmpty(t, file.ID)
	assert.True(t, strings.HasPrefix(file.Filename, "tax_summary_"))
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.NotContains(t, file.Filename, "{{timestamp}}")
	assert.Equal(t, "pdf", file.Metadata["format"])
}

func TestExportHandler_DefaultFormatIsExcel(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{ID: "export-1", Type: models.NodeTypeFileExport, Data: models.NodeData{Label: "Export"}}

	require.NoError(t, (&ExportHandler{}).Execute(t.Context(), ectx, node))

	file := ectx.Data[models.DataKeyExportedFile].(models.Document)
	assert.True(t, strings.HasSuffix(file.Filename, ".xlsx"))
}

func TestAuditLogHandler(t *testing.T) {
	ectx := models.NewExecutionContext("wf-1", "exec-1", "user", map[string]any{"revenue": 800000.0})
	node := &models.WorkflowNode{
		ID:   "audit-1",
		Type: models.NodeTypeAuditLog,
		Data: models.NodeData{Label: "Audit Log", Config: map[string]any{
			"action":      "compliance_review",
			"includeData": true,
		}},
	}

	require.NoError(t, (&AuditLogHandler{}).Execute(t.Context(), ectx, node))

	entry := ectx.Data[models.DataKeyAuditLog].(map[string]any)
	assert.Equal(t, "wf-1", entry["workflowId"])
	assert.Equal(t, "exec-1", entry["executionId"])
	assert.Equal(t, "compliance_review", entry["action"])
	assert.NotNil(t, entry["data"])
}

func TestAuditLogHandler_DefaultsAndNoData(t *testing.T) {
	ectx := models.NewExecutionContext("wf-1", "exec-1", "user", nil)
	node := &models.WorkflowNode{ID: "audit-1", Type: models.NodeTypeAuditLog, Data: models.NodeData{Label: "Audit Log"}}

	require.NoError(t, (&AuditLogHandler{}).Execute(t.Context(), ectx, node))

	entry := ectx.Data[models.DataKeyAuditLog].(map[string]any)
	assert.Equal(t, "workflow_execution", entry["action"])
	assert.NotContains(t, entry, "data")
}
