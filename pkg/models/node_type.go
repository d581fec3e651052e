// Package models defines the core domain models for CA practice workflow automation.
package models

// NodeType identifies one of the built-in automation node kinds. The set is
// closed: adding a kind requires a registry definition and a handler.
type NodeType string

const (
	// Trigger nodes.
	NodeTypeClientIntake     NodeType = "client_intake"
	NodeTypeDocumentUpload   NodeType = "document_upload"
	NodeTypeEmailTrigger     NodeType = "email_trigger"
	NodeTypeScheduledTrigger NodeType = "scheduled_trigger"

	// Processing nodes.
	NodeTypeDocumentProcessor  NodeType = "document_processor"
	NodeTypeDataValidator      NodeType = "data_validator"
	NodeTypeTaxCalculator      NodeType = "tax_calculator"
	NodeTypeGSTProcessor       NodeType = "gst_processor"
	NodeTypeIncomeTaxProcessor NodeType = "income_tax_processor"

	// Compliance nodes.
	NodeTypeComplianceChecker NodeType = "compliance_checker"
	NodeTypeAuditValidator    NodeType = "audit_validator"
	NodeTypeRegulatoryChecker NodeType = "regulatory_checker"

	// Integration nodes.
	NodeTypeGoogleSheetsAction NodeType = "google_sheets_action"
	NodeTypeEmailSender        NodeType = "email_sender"
	NodeTypeSMSSender          NodeType = "sms_sender"
	NodeTypeBankAPIConnector   NodeType = "bank_api_connector"

	// Logic nodes.
	NodeTypeCondition       NodeType = "condition"
	NodeTypeLoop            NodeType = "loop"
	NodeTypeDelay           NodeType = "delay"
	NodeTypeDataTransformer NodeType = "data_transformer"

	// Output nodes.
	NodeTypeReportGenerator    NodeType = "report_generator"
	NodeTypeNotificationSender NodeType = "notification_sender"
	NodeTypeFileExport         NodeType = "file_export"
	NodeTypeAuditLog           NodeType = "audit_log"
)

// NodeCategory groups node types for catalog lookups and palette organization.
type NodeCategory string

const (
	CategoryTriggers     NodeCategory = "TRIGGERS"
	CategoryProcessing   NodeCategory = "PROCESSING"
	CategoryCompliance   NodeCategory = "COMPLIANCE"
	CategoryIntegrations NodeCategory = "INTEGRATIONS"
	CategoryLogic        NodeCategory = "LOGIC"
	CategoryOutput       NodeCategory = "OUTPUT"

	// CategoryUnknown is the sentinel returned when no category claims a type.
	CategoryUnknown NodeCategory = "UNKNOWN"
)

// IsTriggerType reports whether the type can start a workflow without any
// incoming connection.
func (t NodeType) IsTriggerType() bool {
	switch t {
	case NodeTypeClientIntake, NodeTypeDocumentUpload, NodeTypeEmailTrigger, NodeTypeScheduledTrigger:
		return true
	default:
		return false
	}
}

// DataType describes the shape of data flowing through a port. The engine does
// not type-check connections at run time; ports are declarative metadata.
type DataType string

const (
	DataTypeString        DataType = "string"
	DataTypeNumber        DataType = "number"
	DataTypeBoolean       DataType = "boolean"
	DataTypeDate          DataType = "date"
	DataTypeFile          DataType = "file"
	DataTypeClientData    DataType = "client_data"
	DataTypeFinancialData DataType = "financial_data"
	DataTypeTaxData       DataType = "tax_data"
	DataTypeDocument      DataType = "document"
	DataTypeEmail         DataType = "email"
	DataTypeReport        DataType = "report"
	DataTypeAny           DataType = "any"
)
