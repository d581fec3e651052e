// Package registry provides the node type catalog and handler factory
// registration for workflow execution.
package registry

import (
	"github.com/caflow/caflow/pkg/models"
)

// nodeDefinitions is the canonical catalog of default config and declared
// ports per node type. Loaded once at process start, never mutated; safe for
// unsynchronized concurrent reads.
var nodeDefinitions = map[models.NodeType]models.NodeData{
	models.NodeTypeClientIntake: {
		Label:       "Client Intake",
		Description: "Collects and validates client information for CA services",
		Config: map[string]any{
			"requiredFields": []any{"name", "email", "pan"},
			"optionalFields": []any{"phone", "gstin", "address", "businessType"},
		},
		Inputs: []models.Port{},
		Outputs: []models.Port{
			{ID: "client_data", Label: "Client Data", DataType: models.DataTypeClientData},
		},
	},

	models.NodeTypeDocumentUpload: {
		Label:       "Document Upload",
		Description: "Handles document uploads and file management",
		Config: map[string]any{
			"allowedTypes": []any{"pdf", "jpg", "png", "xlsx", "csv"},
			"maxSize":      10485760,
			"autoProcess":  true,
		},
		Inputs: []models.Port{},
		Outputs: []models.Port{
			{ID: "documents", Label: "Documents", DataType: models.DataTypeDocument},
		},
	},

	models.NodeTypeEmailTrigger: {
		Label:       "Email Trigger",
		Description: "Triggers workflow when specific emails are received",
		Config: map[string]any{
			"emailFilters": map[string]any{
				"from":     "",
				"subject":  "",
				"keywords": []any{},
			},
			"autoExtractData": true,
		},
		Inputs: []models.Port{},
		Outputs: []models.Port{
			{ID: "email_data", Label: "Email Data", DataType: models.DataTypeEmail},
			{ID: "attachments", Label: "Attachments", DataType: models.DataTypeDocument},
		},
	},

	models.NodeTypeScheduledTrigger: {
		Label:       "Scheduled Trigger",
		Description: "Runs workflow on a schedule (daily, weekly, monthly)",
		Config: map[string]any{
			"schedule":   "daily",
			"time":       "09:00",
			"timezone":   "Asia/Kolkata",
			"customCron": "",
		},
		Inputs: []models.Port{},
		Outputs: []models.Port{
			{ID: "trigger_data", Label: "Trigger Data", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeDocumentProcessor: {
		Label:       "Document Processor",
		Description: "Extracts data from uploaded documents using OCR and AI",
		Config: map[string]any{
			"extractionMode": "auto",
			"outputFormat":   "json",
			"confidence":     0.8,
		},
		Inputs: []models.Port{
			{ID: "documents", Label: "Documents", DataType: models.DataTypeDocument, Required: true},
		},
		Outputs: []models.Port{
			{ID: "extracted_data", Label: "Extracted Data", DataType: models.DataTypeAny},
			{ID: "processed_documents", Label: "Processed Documents", DataType: models.DataTypeDocument},
		},
	},

	models.NodeTypeDataValidator: {
		Label:       "Data Validator",
		Description: "Validates data integrity and format compliance",
		Config: map[string]any{
			"validationRules": []any{},
			"strictMode":      true,
			"autoCorrect":     false,
		},
		Inputs: []models.Port{
			{ID: "data", Label: "Data to Validate", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "validated_data", Label: "Validated Data", DataType: models.DataTypeAny},
			{ID: "validation_errors", Label: "Validation Errors", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeTaxCalculator: {
		Label:       "Tax Calculator",
		Description: "Calculates income tax based on financial data",
		Config: map[string]any{
			"taxYear":    "2024-25",
			"taxType":    "individual",
			"deductions": []any{},
		},
		Inputs: []models.Port{
			{ID: "financial_data", Label: "Financial Data", DataType: models.DataTypeFinancialData, Required: true},
		},
		Outputs: []models.Port{
			{ID: "tax_calculation", Label: "Tax Calculation", DataType: models.DataTypeTaxData},
		},
	},

	models.NodeTypeGSTProcessor: {
		Label:       "GST Processor",
		Description: "Processes GST calculations and return generation",
		Config: map[string]any{
			"gstType":    "GSTR-1",
			"period":     "monthly",
			"gstRate":    0.18,
			"interstate": false,
			"autoSubmit": false,
		},
		Inputs: []models.Port{
			{ID: "financial_data", Label: "Financial Data", DataType: models.DataTypeFinancialData, Required: true},
		},
		Outputs: []models.Port{
			{ID: "gst_calculation", Label: "GST Calculation", DataType: models.DataTypeTaxData},
			{ID: "gst_return", Label: "GST Return", DataType: models.DataTypeDocument},
		},
	},

	models.NodeTypeIncomeTaxProcessor: {
		Label:       "Income Tax Processor",
		Description: "Processes income tax returns and TDS calculations",
		Config: map[string]any{
			"returnType":     "ITR-1",
			"assessmentYear": "2024-25",
			"includeTDS":     true,
		},
		Inputs: []models.Port{
			{ID: "financial_data", Label: "Financial Data", DataType: models.DataTypeFinancialData, Required: true},
			{ID: "tax_calculation", Label: "Tax Calculation", DataType: models.DataTypeTaxData},
		},
		Outputs: []models.Port{
			{ID: "itr_data", Label: "ITR Data", DataType: models.DataTypeTaxData},
			{ID: "itr_document", Label: "ITR Document", DataType: models.DataTypeDocument},
		},
	},

	models.NodeTypeComplianceChecker: {
		Label:       "Compliance Checker",
		Description: "Checks regulatory compliance for tax and business requirements",
		Config: map[string]any{
			"checkTypes": []any{"pan", "gstin", "regulatory", "financial"},
			"severity":   "strict",
			"autoFix":    false,
		},
		Inputs: []models.Port{
			{ID: "client_data", Label: "Client Data", DataType: models.DataTypeClientData, Required: true},
		},
		Outputs: []models.Port{
			{ID: "compliance_report", Label: "Compliance Report", DataType: models.DataTypeReport},
			{ID: "compliance_status", Label: "Compliance Status", DataType: models.DataTypeBoolean},
		},
	},

	models.NodeTypeAuditValidator: {
		Label:       "Audit Validator",
		Description: "Validates audit requirements and documentation",
		Config: map[string]any{
			"auditType":       "internal",
			"validationLevel": "comprehensive",
			"generateReport":  true,
		},
		Inputs: []models.Port{
			{ID: "financial_data", Label: "Financial Data", DataType: models.DataTypeFinancialData, Required: true},
			{ID: "documents", Label: "Supporting Documents", DataType: models.DataTypeDocument},
		},
		Outputs: []models.Port{
			{ID: "audit_report", Label: "Audit Report", DataType: models.DataTypeReport},
			{ID: "audit_status", Label: "Audit Status", DataType: models.DataTypeBoolean},
		},
	},

	models.NodeTypeRegulatoryChecker: {
		Label:       "Regulatory Checker",
		Description: "Checks compliance with latest regulatory changes",
		Config: map[string]any{
			"regulations": []any{"income_tax", "gst", "company_law"},
			"alertLevel":  "medium",
		},
		Inputs: []models.Port{
			{ID: "business_data", Label: "Business Data", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "regulatory_status", Label: "Regulatory Status", DataType: models.DataTypeReport},
			{ID: "action_items", Label: "Action Items", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeGoogleSheetsAction: {
		Label:       "Google Sheets Action",
		Description: "Performs actions on Google Sheets (create, update, read)",
		Config: map[string]any{
			"action":        "create_drafting_task",
			"spreadsheetId": "",
			"sheetName":     "",
			"range":         "A1",
		},
		Inputs: []models.Port{
			{ID: "data", Label: "Data", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "result", Label: "Action Result", DataType: models.DataTypeAny},
			{ID: "updated_data", Label: "Updated Data", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeEmailSender: {
		Label:       "Email Sender",
		Description: "Sends automated emails to clients and stakeholders",
		Config: map[string]any{
			"template":  "default",
			"recipient": "",
			"subject":   "",
		},
		Inputs: []models.Port{
			{ID: "email_data", Label: "Email Data", DataType: models.DataTypeEmail, Required: true},
			{ID: "attachments", Label: "Attachments", DataType: models.DataTypeDocument},
		},
		Outputs: []models.Port{
			{ID: "email_status", Label: "Email Status", DataType: models.DataTypeBoolean},
			{ID: "delivery_info", Label: "Delivery Info", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeSMSSender: {
		Label:       "SMS Sender",
		Description: "Sends SMS notifications for urgent updates",
		Config: map[string]any{
			"provider":     "twilio",
			"template":     "",
			"urgencyLevel": "normal",
		},
		Inputs: []models.Port{
			{ID: "message_data", Label: "Message Data", DataType: models.DataTypeString, Required: true},
			{ID: "phone_number", Label: "Phone Number", DataType: models.DataTypeString, Required: true},
		},
		Outputs: []models.Port{
			{ID: "sms_status", Label: "SMS Status", DataType: models.DataTypeBoolean},
			{ID: "delivery_info", Label: "Delivery Info", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeBankAPIConnector: {
		Label:       "Bank API Connector",
		Description: "Connects to bank APIs for transaction data",
		Config: map[string]any{
			"bankType":  "icici",
			"dataType":  "transactions",
			"dateRange": 30,
		},
		Inputs: []models.Port{
			{ID: "account_info", Label: "Account Info", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "bank_data", Label: "Bank Data", DataType: models.DataTypeFinancialData},
			{ID: "transactions", Label: "Transactions", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeCondition: {
		Label:       "Condition",
		Description: "Evaluates a comparison against the context data",
		Config: map[string]any{
			"field":    "",
			"operator": "greater_than",
			"value":    nil,
		},
		Inputs: []models.Port{
			{ID: "data", Label: "Data to Check", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "true_path", Label: "True Path", DataType: models.DataTypeBoolean},
			{ID: "false_path", Label: "False Path", DataType: models.DataTypeBoolean},
		},
	},

	models.NodeTypeLoop: {
		Label:       "Loop",
		Description: "Iterates a collection field and records each pass; sub-graphs are not re-entered per item",
		Config: map[string]any{
			"iterationField": "items",
			"maxIterations":  100,
		},
		Inputs: []models.Port{
			{ID: "collection", Label: "Collection", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "current_item", Label: "Current Item", DataType: models.DataTypeAny},
			{ID: "loop_index", Label: "Loop Index", DataType: models.DataTypeNumber},
		},
	},

	models.NodeTypeDelay: {
		Label:       "Delay",
		Description: "Adds a time delay in workflow execution",
		Config: map[string]any{
			"duration": 5,
			"unit":     "seconds",
		},
		Inputs: []models.Port{
			{ID: "trigger", Label: "Trigger", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "delayed_output", Label: "Delayed Output", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeDataTransformer: {
		Label:       "Data Transformer",
		Description: "Transforms and manipulates data between workflow steps",
		Config: map[string]any{
			"transformations": []any{
				map[string]any{"sourceField": "", "targetField": "", "operation": "copy"},
			},
		},
		Inputs: []models.Port{
			{ID: "input_data", Label: "Input Data", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "transformed_data", Label: "Transformed Data", DataType: models.DataTypeAny},
		},
	},

	models.NodeTypeReportGenerator: {
		Label:       "Report Generator",
		Description: "Generates formatted reports from workflow data",
		Config: map[string]any{
			"reportType": "tax_summary",
			"format":     "pdf",
			"template":   "standard",
		},
		Inputs: []models.Port{
			{ID: "report_data", Label: "Report Data", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "report", Label: "Generated Report", DataType: models.DataTypeReport},
			{ID: "report_file", Label: "Report File", DataType: models.DataTypeDocument},
		},
	},

	models.NodeTypeNotificationSender: {
		Label:       "Notification Sender",
		Description: "Sends notifications through multiple channels",
		Config: map[string]any{
			"channels": []any{"email", "sms"},
			"priority": "medium",
			"template": "notification",
		},
		Inputs: []models.Port{
			{ID: "notification_data", Label: "Notification Data", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "notification_status", Label: "Notification Status", DataType: models.DataTypeBoolean},
		},
	},

	models.NodeTypeFileExport: {
		Label:       "File Export",
		Description: "Exports data to various file formats",
		Config: map[string]any{
			"format":         "excel",
			"filename":       "export_{{timestamp}}",
			"includeHeaders": true,
		},
		Inputs: []models.Port{
			{ID: "export_data", Label: "Export Data", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "exported_file", Label: "Exported File", DataType: models.DataTypeDocument},
			{ID: "export_status", Label: "Export Status", DataType: models.DataTypeBoolean},
		},
	},

	models.NodeTypeAuditLog: {
		Label:       "Audit Log",
		Description: "Logs workflow actions for compliance and tracking",
		Config: map[string]any{
			"logLevel":    "info",
			"includeData": false,
			"retention":   "1_year",
		},
		Inputs: []models.Port{
			{ID: "log_data", Label: "Log Data", DataType: models.DataTypeAny, Required: true},
		},
		Outputs: []models.Port{
			{ID: "log_entry", Label: "Log Entry", DataType: models.DataTypeAny},
		},
	},
}

// nodeCategories maps palette categories to their node types.
var nodeCategories = map[models.NodeCategory][]models.NodeType{
	models.CategoryTriggers: {
		models.NodeTypeClientIntake,
		models.NodeTypeDocumentUpload,
		models.NodeTypeEmailTrigger,
		models.NodeTypeScheduledTrigger,
	},
	models.CategoryProcessing: {
		models.NodeTypeDocumentProcessor,
		models.NodeTypeDataValidator,
		models.NodeTypeTaxCalculator,
		models.NodeTypeGSTProcessor,
		models.NodeTypeIncomeTaxProcessor,
	},
	models.CategoryCompliance: {
		models.NodeTypeComplianceChecker,
		models.NodeTypeAuditValidator,
		models.NodeTypeRegulatoryChecker,
	},
	models.CategoryIntegrations: {
		models.NodeTypeGoogleSheetsAction,
		models.NodeTypeEmailSender,
		models.NodeTypeSMSSender,
		models.NodeTypeBankAPIConnector,
	},
	models.CategoryLogic: {
		models.NodeTypeCondition,
		models.NodeTypeLoop,
		models.NodeTypeDelay,
		models.NodeTypeDataTransformer,
	},
	models.CategoryOutput: {
		models.NodeTypeReportGenerator,
		models.NodeTypeNotificationSender,
		models.NodeTypeFileExport,
		models.NodeTypeAuditLog,
	},
}
