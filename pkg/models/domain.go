package models

import "time"

// ClientData is the normalized client record produced by the client intake
// node and consumed by compliance and notification nodes.
type ClientData struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	PAN           string     `json:"pan"`
	GSTIN         string     `json:"gstin,omitempty"`
	Address       string     `json:"address"`
	BusinessType  string     `json:"businessType"`
	FinancialYear string     `json:"financialYear"`
	Documents     []Document `json:"documents"`
}

// FinancialData carries the figures tax and GST nodes compute from.
type FinancialData struct {
	ClientID string  `json:"clientId,omitempty"`
	Period   string  `json:"period,omitempty"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit,omitempty"`
}

// DocumentType tags uploaded documents.
type DocumentType string

const (
	DocumentTypeIncomeTaxReturn DocumentType = "income_tax_return"
	DocumentTypeGSTReturn       DocumentType = "gst_return"
	DocumentTypeBankStatement   DocumentType = "bank_statement"
	DocumentTypeInvoice         DocumentType = "invoice"
	DocumentTypeReceipt         DocumentType = "receipt"
	DocumentTypeBalanceSheet    DocumentType = "balance_sheet"
	DocumentTypeProfitLoss      DocumentType = "profit_loss"
	DocumentTypeAuditReport     DocumentType = "audit_report"
	DocumentTypeOther           DocumentType = "other"
)

// Document is a reference to an uploaded file.
type Document struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	Type       DocumentType   `json:"type"`
	UploadDate time.Time      `json:"uploadDate"`
	Size       int64          `json:"size"`
	URL        string         `json:"url"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ProcessedDocument is a document after extraction.
type ProcessedDocument struct {
	Document

	Processed     bool           `json:"processed"`
	ExtractedData map[string]any `json:"extractedData"`
	ProcessedAt   time.Time      `json:"processedAt"`
}

// TaxCalculation is the tax calculator node's output. Amounts are in INR.
type TaxCalculation struct {
	TaxableIncome float64   `json:"taxableIncome"`
	IncomeTax     float64   `json:"incomeTax"`
	Cess          float64   `json:"cess"`
	TotalTax      float64   `json:"totalTax"`
	CalculatedAt  time.Time `json:"calculatedAt"`
}

// GSTCalculation is the GST processor node's output. Intra-state supplies
// split evenly into CGST/SGST; interstate supplies carry the full amount as
// IGST.
type GSTCalculation struct {
	Turnover     float64   `json:"turnover"`
	GSTRate      float64   `json:"gstRate"`
	GSTAmount    float64   `json:"gstAmount"`
	CGST         float64   `json:"cgst"`
	SGST         float64   `json:"sgst"`
	IGST         float64   `json:"igst"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

// CheckSeverity grades compliance findings.
type CheckSeverity string

const (
	SeverityError   CheckSeverity = "error"
	SeverityWarning CheckSeverity = "warning"
)

// ComplianceCheck is one compliance finding. Findings are data, not errors:
// they never abort a run.
type ComplianceCheck struct {
	Type     string        `json:"type"`
	Severity CheckSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// Report is the report generator node's output.
type Report struct {
	Type             string            `json:"type"`
	Client           *ClientData       `json:"client,omitempty"`
	TaxCalculation   *TaxCalculation   `json:"taxCalculation,omitempty"`
	GSTCalculation   *GSTCalculation   `json:"gstCalculation,omitempty"`
	ComplianceChecks []ComplianceCheck `json:"complianceChecks,omitempty"`
	Data             map[string]any    `json:"data,omitempty"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

// DeliveryReceipt records an outbound email/SMS handed to a notification
// collaborator.
type DeliveryReceipt struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	Channel   string    `json:"channel"`
	SentAt    time.Time `json:"sentAt"`
}

// Context data bag keys shared between node handlers. Handlers communicate
// exclusively through these fields.
const (
	DataKeyClient             = "client"
	DataKeyDocuments          = "documents"
	DataKeyProcessedDocuments = "processedDocuments"
	DataKeyFinancialData      = "financialData"
	DataKeyTaxCalculation     = "taxCalculation"
	DataKeyGSTCalculation     = "gstCalculation"
	DataKeyITRData            = "itrData"
	DataKeyComplianceChecks   = "complianceChecks"
	DataKeyReport             = "report"
	DataKeyEmailSent          = "emailSent"
	DataKeySMSSent            = "smsSent"
	DataKeyBankData           = "bankData"
	DataKeyAuditLog           = "auditLog"
	DataKeyExportedFile       = "exportedFile"
	DataKeyNotification       = "notification"
)
