// Package output provides report, notification, export and audit log node
// handlers.
package output

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
	"github.com/google/uuid"
)

// ReportHandler assembles a report from the accumulated context data. The
// report shape follows the configured reportType; unknown types fall back to
// a general dump of the data bag.
type ReportHandler struct{}

func (h *ReportHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	reportType, _ := node.Data.Config["reportType"].(string)

	report := models.Report{GeneratedAt: time.Now().UTC()}

	switch reportType {
	case "tax_summary":
		report.Type = "Tax Summary Report"
		report.Client = clientPtr(ectx.Data)
		report.TaxCalculation = taxPtr(ectx.Data)
		report.GSTCalculation = gstPtr(ectx.Data)
	case "compliance_report":
		report.Type = "Compliance Report"
		report.Client = clientPtr(ectx.Data)
		report.ComplianceChecks, _ = ectx.Data[models.DataKeyComplianceChecks].([]models.ComplianceCheck)
	default:
		report.Type = "General Report"
		report.Data = ectx.Data
	}

	ectx.Data[models.DataKeyReport] = report
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Generated %s", report.Type), nil)

	return nil
}

func clientPtr(data map[string]any) *models.ClientData {
	if client, ok := data[models.DataKeyClient].(models.ClientData); ok {
		return &client
	}

	return nil
}

func taxPtr(data map[string]any) *models.TaxCalculation {
	if calc, ok := data[models.DataKeyTaxCalculation].(models.TaxCalculation); ok {
		return &calc
	}

	return nil
}

func gstPtr(data map[string]any) *models.GSTCalculation {
	if calc, ok := data[models.DataKeyGSTCalculation].(models.GSTCalculation); ok {
		return &calc
	}

	return nil
}

// NotificationHandler records a multi-channel notification request. Actual
// channel delivery is handled by the dedicated email and SMS nodes; this node
// produces the notification record downstream senders and dashboards consume.
type NotificationHandler struct{}

func (h *NotificationHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	channels := channelsFrom(node.Data.Config)
	priority, _ := node.Data.Config["priority"].(string)
	if priority == "" {
		priority = "medium"
	}

	ectx.Data[models.DataKeyNotification] = map[string]any{
		"channels":  channels,
		"priority":  priority,
		"template":  node.Data.Config["template"],
		"queuedAt":  time.Now().UTC(),
		"delivered": false,
	}
	ectx.AppendLog(models.LogLevelInfo,
		fmt.Sprintf("Queued %s priority notification on %d channels", priority, len(channels)), nil)

	return nil
}

func channelsFrom(config map[string]any) []string {
	raw, ok := config["channels"].([]any)
	if !ok {
		return []string{"email"}
	}

	channels := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			channels = append(channels, s)
		}
	}

	return channels
}

// ExportHandler records a file export of the current report or data bag in
// the configured format.
type ExportHandler struct{}

func (h *ExportHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	format, _ := node.Data.Config["format"].(string)
	if format == "" {
		format = "excel"
	}

	filename, _ := node.Data.Config["filename"].(string)
	if filename == "" {
		filename = "export_{{timestamp}}"
	}

	timestamp := time.Now().UTC()
	filename = strings.ReplaceAll(filename, "{{timestamp}}", timestamp.Format("20060102_150405"))
	filename = fmt.Sprintf("%s.%s", filename, extensionFor(format))

	ectx.Data[models.DataKeyExportedFile] = models.Document{
		ID:         uuid.New().String(),
		Filename:   filename,
		Type:       models.DocumentTypeOther,
		UploadDate: timestamp,
		Metadata:   map[string]any{"format": format},
	}
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Exported %s", filename), nil)

	return nil
}

func extensionFor(format string) string {
	switch format {
	case "csv":
		return "csv"
	case "pdf":
		return "pdf"
	case "json":
		return "json"
	default:
		return "xlsx"
	}
}

// AuditLogHandler records an audit trail entry for the run.
type AuditLogHandler struct{}

func (h *AuditLogHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	action, _ := node.Data.Config["action"].(string)
	if action == "" {
		action = "workflow_execution"
	}

	details, _ := node.Data.Config["details"].(string)
	if details == "" {
		details = "Workflow executed"
	}

	entry := map[string]any{
		"workflowId":  ectx.WorkflowID,
		"executionId": ectx.ExecutionID,
		"timestamp":   time.Now().UTC(),
		"action":      action,
		"details":     details,
	}

	if include, _ := node.Data.Config["includeData"].(bool); include {
		entry["data"] = ectx.Data
	}

	ectx.Data[models.DataKeyAuditLog] = entry
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Recorded audit entry %s", action), nil)

	return nil
}

// ReportFactory creates report generator handlers.
type ReportFactory struct{}

func (f *ReportFactory) Type() models.NodeType { return models.NodeTypeReportGenerator }

func (f *ReportFactory) Create() (protocol.Handler, error) { return &ReportHandler{}, nil }

// NewReportFactory creates a new factory instance.
func NewReportFactory() protocol.HandlerFactory { return &ReportFactory{} }

// NotificationFactory creates notification sender handlers.
type NotificationFactory struct{}

func (f *NotificationFactory) Type() models.NodeType { return models.NodeTypeNotificationSender }

func (f *NotificationFactory) Create() (protocol.Handler, error) { return &NotificationHandler{}, nil }

// NewNotificationFactory creates a new factory instance.
func NewNotificationFactory() protocol.HandlerFactory { return &NotificationFactory{} }

// ExportFactory creates file export handlers.
type ExportFactory struct{}

func (f *ExportFactory) Type() models.NodeType { return models.NodeTypeFileExport }

func (f *ExportFactory) Create() (protocol.Handler, error) { return &ExportHandler{}, nil }

// NewExportFactory creates a new factory instance.
func NewExportFactory() protocol.HandlerFactory { return &ExportFactory{} }

// AuditLogFactory creates audit log handlers.
type AuditLogFactory struct{}

func (f *AuditLogFactory) Type() models.NodeType { return models.NodeTypeAuditLog }

func (f *AuditLogFactory) Create() (protocol.Handler, error) { return &AuditLogHandler{}, nil }

// NewAuditLogFactory creates a new factory instance.
func NewAuditLogFactory() protocol.HandlerFactory { return &AuditLogFactory{} }
