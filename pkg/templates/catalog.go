// Package templates holds the built-in workflow template catalog. Templates
// are read-only; instantiating one deep-copies its workflow.
package templates

import (
	"strings"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/registry"
)

// node builds a workflow node from the catalog definition for its type, with
// config overrides applied on top of the defaults.
func node(id string, nodeType models.NodeType, x, y float64, overrides map[string]any) models.WorkflowNode {
	data, err := registry.Definition(nodeType)
	if err != nil {
		panic("templates: " + err.Error())
	}

	for k, v := range overrides {
		data.Config[k] = v
	}

	return models.WorkflowNode{
		ID:       id,
		Type:     nodeType,
		Position: models.Position{X: x, Y: y},
		Data:     data,
	}
}

func connect(id, source, target string) models.Connection {
	return models.Connection{
		ID:           id,
		SourceNodeID: source,
		TargetNodeID: target,
	}
}

var catalog = []models.WorkflowTemplate{
	{
		ID:            "template_itr_filing",
		Name:          "Individual ITR Filing",
		Description:   "Collects client details, computes income tax, prepares the ITR and emails the summary to the client",
		Category:      models.TemplateCategoryTaxFiling,
		Preview:       "Client Intake → Tax Calculator → ITR Processor → Report → Email",
		EstimatedTime: 15,
		Complexity:    models.ComplexityIntermediate,
		Workflow: models.Workflow{
			Name:        "Individual ITR Filing",
			Description: "End to end ITR preparation for an individual client",
			Tags:        []string{"tax", "itr", "filing"},
			Nodes: []models.WorkflowNode{
				node("intake", models.NodeTypeClientIntake, 0, 0, nil),
				node("tax", models.NodeTypeTaxCalculator, 250, 0, nil),
				node("itr", models.NodeTypeIncomeTaxProcessor, 500, 0, map[string]any{
					"returnType": "ITR-1",
				}),
				node("report", models.NodeTypeReportGenerator, 750, 0, map[string]any{
					"reportType": "tax_summary",
				}),
				node("email", models.NodeTypeEmailSender, 1000, 0, map[string]any{
					"subject":  "Your ITR summary",
					"template": "Dear {{name}}, your income tax return has been prepared.",
				}),
			},
			Connections: []models.Connection{
				connect("c1", "intake", "tax"),
				connect("c2", "tax", "itr"),
				connect("c3", "itr", "report"),
				connect("c4", "report", "email"),
			},
		},
	},
	{
		ID:            "template_statutory_audit",
		Name:          "Statutory Audit Preparation",
		Description:   "Ingests supporting documents, validates audit readiness and schedules the audit task",
		Category:      models.TemplateCategoryAuditProcess,
		Preview:       "Document Upload → Document Processor → Audit Validator → Sheets Task → Notify",
		EstimatedTime: 45,
		Complexity:    models.ComplexityAdvanced,
		Workflow: models.Workflow{
			Name:        "Statutory Audit Preparation",
			Description: "Prepares documentation and schedules a statutory audit",
			Tags:        []string{"audit", "statutory"},
			Nodes: []models.WorkflowNode{
				node("upload", models.NodeTypeDocumentUpload, 0, 0, nil),
				node("process", models.NodeTypeDocumentProcessor, 250, 0, nil),
				node("audit", models.NodeTypeAuditValidator, 500, 0, map[string]any{
					"auditType": "statutory",
				}),
				node("sheets", models.NodeTypeGoogleSheetsAction, 750, 0, map[string]any{
					"action":    "create_audit_task",
					"auditType": "Statutory Audit",
				}),
				node("notify", models.NodeTypeNotificationSender, 1000, 0, map[string]any{
					"priority": "high",
				}),
			},
			Connections: []models.Connection{
				connect("c1", "upload", "process"),
				connect("c2", "process", "audit"),
				connect("c3", "audit", "sheets"),
				connect("c4", "sheets", "notify"),
			},
		},
	},
	{
		ID:            "template_client_onboarding",
		Name:          "New Client Onboarding",
		Description:   "Registers a client, runs identifier compliance checks and opens a drafting task",
		Category:      models.TemplateCategoryClientOnboarding,
		Preview:       "Client Intake → Compliance Check → Sheets Task → Welcome Email",
		EstimatedTime: 10,
		Complexity:    models.ComplexityBeginner,
		Workflow: models.Workflow{
			Name:        "New Client Onboarding",
			Description: "Onboards a new client with compliance verification",
			Tags:        []string{"onboarding", "client"},
			Nodes: []models.WorkflowNode{
				node("intake", models.NodeTypeClientIntake, 0, 0, nil),
				node("compliance", models.NodeTypeComplianceChecker, 250, 0, nil),
				node("sheets", models.NodeTypeGoogleSheetsAction, 500, 0, map[string]any{
					"action":   "create_drafting_task",
					"taskType": "Client Onboarding",
				}),
				node("welcome", models.NodeTypeEmailSender, 750, 0, map[string]any{
					"subject":  "Welcome aboard",
					"template": "Dear {{name}}, welcome to our practice.",
				}),
			},
			Connections: []models.Connection{
				connect("c1", "intake", "compliance"),
				connect("c2", "compliance", "sheets"),
				connect("c3", "sheets", "welcome"),
			},
		},
	},
	{
		ID:            "template_quarterly_compliance",
		Name:          "Quarterly Compliance Review",
		Description:   "Runs on a schedule, checks the regulation set and alerts the team on open action items",
		Category:      models.TemplateCategoryComplianceCheck,
		Preview:       "Scheduled Trigger → Regulatory Checker → Audit Log → Notify",
		EstimatedTime: 20,
		Complexity:    models.ComplexityIntermediate,
		Workflow: models.Workflow{
			Name:        "Quarterly Compliance Review",
			Description: "Recurring regulatory compliance sweep",
			Tags:        []string{"compliance", "regulatory", "quarterly"},
			Nodes: []models.WorkflowNode{
				node("schedule", models.NodeTypeScheduledTrigger, 0, 0, map[string]any{
					"schedule": "monthly",
					"time":     "08:00",
				}),
				node("regulatory", models.NodeTypeRegulatoryChecker, 250, 0, nil),
				node("audit_log", models.NodeTypeAuditLog, 500, 0, map[string]any{
					"action":  "compliance_review",
					"details": "Quarterly regulatory sweep",
				}),
				node("notify", models.NodeTypeNotificationSender, 750, 0, map[string]any{
					"priority": "high",
				}),
			},
			Connections: []models.Connection{
				connect("c1", "schedule", "regulatory"),
				connect("c2", "regulatory", "audit_log"),
				connect("c3", "audit_log", "notify"),
			},
		},
	},
	{
		ID:            "template_tax_summary_report",
		Name:          "Monthly Tax Summary Report",
		Description:   "Computes income tax and GST from the client's figures and exports the summary report",
		Category:      models.TemplateCategoryReportGeneration,
		Preview:       "Client Intake → Tax Calculator → GST Processor → Report → Export",
		EstimatedTime: 12,
		Complexity:    models.ComplexityBeginner,
		Workflow: models.Workflow{
			Name:        "Monthly Tax Summary Report",
			Description: "Builds and exports the monthly tax position of a client",
			Tags:        []string{"report", "tax", "gst"},
			Nodes: []models.WorkflowNode{
				node("intake", models.NodeTypeClientIntake, 0, 0, nil),
				node("tax", models.NodeTypeTaxCalculator, 250, 0, nil),
				node("gst", models.NodeTypeGSTProcessor, 500, 0, nil),
				node("report", models.NodeTypeReportGenerator, 750, 0, map[string]any{
					"reportType": "tax_summary",
				}),
				node("export", models.NodeTypeFileExport, 1000, 0, map[string]any{
					"format":   "pdf",
					"filename": "tax_summary_{{timestamp}}",
				}),
			},
			Connections: []models.Connection{
				connect("c1", "intake", "tax"),
				connect("c2", "tax", "gst"),
				connect("c3", "gst", "report"),
				connect("c4", "report", "export"),
			},
		},
	},
	{
		ID:            "template_document_digitization",
		Name:          "Bulk Document Digitization",
		Description:   "Accepts uploaded documents, extracts structured data and exports the validated batch",
		Category:      models.TemplateCategoryDocumentProcessing,
		Preview:       "Document Upload → Document Processor → Data Validator → Export",
		EstimatedTime: 25,
		Complexity:    models.ComplexityBeginner,
		Workflow: models.Workflow{
			Name:        "Bulk Document Digitization",
			Description: "Digitizes a batch of client documents",
			Tags:        []string{"documents", "ocr"},
			Nodes: []models.WorkflowNode{
				node("upload", models.NodeTypeDocumentUpload, 0, 0, nil),
				node("process", models.NodeTypeDocumentProcessor, 250, 0, nil),
				node("validate", models.NodeTypeDataValidator, 500, 0, map[string]any{
					"strictMode": false,
				}),
				node("export", models.NodeTypeFileExport, 750, 0, map[string]any{
					"format": "json",
				}),
			},
			Connections: []models.Connection{
				connect("c1", "upload", "process"),
				connect("c2", "process", "validate"),
				connect("c3", "validate", "export"),
			},
		},
	},
	{
		ID:            "template_deadline_reminders",
		Name:          "Filing Deadline Reminders",
		Description:   "Sends scheduled filing deadline reminders to clients over email and SMS",
		Category:      models.TemplateCategoryNotificationSystem,
		Preview:       "Scheduled Trigger → Notification → Email → SMS",
		EstimatedTime: 5,
		Complexity:    models.ComplexityBeginner,
		Workflow: models.Workflow{
			Name:        "Filing Deadline Reminders",
			Description: "Recurring deadline reminder fan-out",
			Tags:        []string{"reminder", "deadline", "notification"},
			Nodes: []models.WorkflowNode{
				node("schedule", models.NodeTypeScheduledTrigger, 0, 0, map[string]any{
					"schedule": "daily",
					"time":     "09:00",
				}),
				node("notification", models.NodeTypeNotificationSender, 250, 0, map[string]any{
					"channels": []any{"email", "sms"},
				}),
				node("email", models.NodeTypeEmailSender, 500, 0, map[string]any{
					"recipient": "clients@firm.example",
					"subject":   "Filing deadline approaching",
					"template":  "A filing deadline is due soon. Please share pending documents.",
				}),
				node("sms", models.NodeTypeSMSSender, 750, 0, map[string]any{
					"phoneNumber": "+911234567890",
					"template":    "Reminder: filing deadline approaching.",
				}),
			},
			Connections: []models.Connection{
				connect("c1", "schedule", "notification"),
				connect("c2", "notification", "email"),
				connect("c3", "email", "sms"),
			},
		},
	},
}

// All returns every catalog template.
func All() []models.WorkflowTemplate {
	return catalog
}

// ByID returns the template with the given id.
func ByID(id string) (*models.WorkflowTemplate, bool) {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i], true
		}
	}

	return nil, false
}

// ByCategory returns the templates in a category.
func ByCategory(category models.TemplateCategory) []models.WorkflowTemplate {
	var matched []models.WorkflowTemplate

	for _, t := range catalog {
		if t.Category == category {
			matched = append(matched, t)
		}
	}

	return matched
}

// ByComplexity returns the templates at a complexity level.
func ByComplexity(complexity models.TemplateComplexity) []models.WorkflowTemplate {
	var matched []models.WorkflowTemplate

	for _, t := range catalog {
		if t.Complexity == complexity {
			matched = append(matched, t)
		}
	}

	return matched
}

// Search matches templates by name or description, case-insensitively.
func Search(query string) []models.WorkflowTemplate {
	query = strings.ToLower(query)

	var matched []models.WorkflowTemplate

	for _, t := range catalog {
		if strings.Contains(strings.ToLower(t.Name), query) ||
			strings.Contains(strings.ToLower(t.Description), query) {
			matched = append(matched, t)
		}
	}

	return matched
}
