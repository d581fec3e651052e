package protocol

import (
	"context"
	"time"

	"github.com/caflow/caflow/pkg/models"
)

// SheetsService is the spreadsheet collaborator used by the Google Sheets
// action node. Retry and backoff, if any, live behind this interface; the
// engine treats every call as a single opaque attempt.
type SheetsService interface {
	AddDraftingTask(ctx context.Context, clientName, taskType string, dueDate time.Time, priority, description string) error
	AddAuditingTask(ctx context.Context, clientName, auditType string, startDate time.Time, auditor, notes string) error
	UpdateTaskStatus(ctx context.Context, taskID, status string) error
	Tasks(ctx context.Context) ([]map[string]any, error)
	AutoAssignTask(ctx context.Context, taskID string) (string, error)
	WorkflowAnalytics(ctx context.Context) (map[string]any, error)
}

// EmailService delivers one email and returns a receipt or an error.
type EmailService interface {
	Send(ctx context.Context, recipient, subject, body string) (*models.DeliveryReceipt, error)
}

// SMSService delivers one SMS and returns a receipt or an error.
type SMSService interface {
	Send(ctx context.Context, phoneNumber, message string) (*models.DeliveryReceipt, error)
}

// BankService fetches transaction data from a bank API.
type BankService interface {
	FetchTransactions(ctx context.Context, bank, accountRef string, days int) ([]map[string]any, error)
}

// DocumentExtractor extracts structured fields from a document. Confidence is
// passed through as data; the engine does not gate on a threshold.
type DocumentExtractor interface {
	Extract(ctx context.Context, doc models.Document) (fields map[string]any, confidence float64, err error)
}

// Collaborators bundles the external services node handlers may call. Nil
// fields are tolerated by handlers that can degrade to simulation-free output;
// handlers that cannot will fail the node.
type Collaborators struct {
	Sheets    SheetsService
	Email     EmailService
	SMS       SMSService
	Bank      BankService
	Extractor DocumentExtractor
}
