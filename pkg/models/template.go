package models

// TemplateCategory buckets catalog templates by CA practice area.
type TemplateCategory string

const (
	TemplateCategoryTaxFiling          TemplateCategory = "tax_filing"
	TemplateCategoryAuditProcess       TemplateCategory = "audit_process"
	TemplateCategoryClientOnboarding   TemplateCategory = "client_onboarding"
	TemplateCategoryComplianceCheck    TemplateCategory = "compliance_check"
	TemplateCategoryReportGeneration   TemplateCategory = "report_generation"
	TemplateCategoryDocumentProcessing TemplateCategory = "document_processing"
	TemplateCategoryNotificationSystem TemplateCategory = "notification_system"
)

// TemplateComplexity rates how much CA domain knowledge a template assumes.
type TemplateComplexity string

const (
	ComplexityBeginner     TemplateComplexity = "beginner"
	ComplexityIntermediate TemplateComplexity = "intermediate"
	ComplexityAdvanced     TemplateComplexity = "advanced"
)

// WorkflowTemplate is a read-only catalog entry. Using a template deep-copies
// its Workflow field into a fresh, inactive workflow.
type WorkflowTemplate struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Category      TemplateCategory   `json:"category"`
	Workflow      Workflow           `json:"workflow"`
	Preview       string             `json:"preview"`
	EstimatedTime int                `json:"estimatedTime"` // minutes
	Complexity    TemplateComplexity `json:"complexity"`
}
