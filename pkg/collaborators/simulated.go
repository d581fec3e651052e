// Package collaborators provides simulated implementations of the external
// services node handlers depend on. They log and return canned data, which is
// enough for local development and demos without live credentials.
package collaborators

import (
	"context"
	"log/slog"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
)

// NewSimulated bundles simulated collaborators for every external service.
func NewSimulated(logger *slog.Logger) protocol.Collaborators {
	logger = logger.With("module", "collaborators")

	return protocol.Collaborators{
		Sheets:    &simulatedSheets{logger: logger},
		Email:     &simulatedEmail{logger: logger},
		SMS:       &simulatedSMS{logger: logger},
		Bank:      &simulatedBank{logger: logger},
		Extractor: &simulatedExtractor{logger: logger},
	}
}

type simulatedSheets struct {
	logger *slog.Logger
}

func (s *simulatedSheets) AddDraftingTask(ctx context.Context, clientName, taskType string, dueDate time.Time, priority, description string) error {
	s.logger.InfoContext(ctx, "Simulated drafting task",
		"client", clientName, "task_type", taskType, "due", dueDate, "priority", priority)

	return nil
}

func (s *simulatedSheets) AddAuditingTask(ctx context.Context, clientName, auditType string, startDate time.Time, auditor, notes string) error {
	s.logger.InfoContext(ctx, "Simulated auditing task",
		"client", clientName, "audit_type", auditType, "start", startDate, "auditor", auditor)

	return nil
}

func (s *simulatedSheets) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	s.logger.InfoContext(ctx, "Simulated task status update", "task_id", taskID, "status", status)

	return nil
}

func (s *simulatedSheets) Tasks(ctx context.Context) ([]map[string]any, error) {
	return []map[string]any{
		{"id": "task-1", "type": "ITR Drafting", "status": "pending"},
		{"id": "task-2", "type": "GST Return", "status": "in_progress"},
	}, nil
}

func (s *simulatedSheets) AutoAssignTask(ctx context.Context, taskID string) (string, error) {
	s.logger.InfoContext(ctx, "Simulated task auto-assignment", "task_id", taskID)

	return "unassigned-pool", nil
}

func (s *simulatedSheets) WorkflowAnalytics(ctx context.Context) (map[string]any, error) {
	return map[string]any{
		"tasksCreated":   0,
		"tasksCompleted": 0,
		"lastSyncedAt":   time.Now().UTC(),
	}, nil
}

type simulatedEmail struct {
	logger *slog.Logger
}

func (s *simulatedEmail) Send(ctx context.Context, recipient, subject, body string) (*models.DeliveryReceipt, error) {
	s.logger.InfoContext(ctx, "Simulated email", "recipient", recipient, "subject", subject)

	return &models.DeliveryReceipt{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Channel:   "email",
		SentAt:    time.Now().UTC(),
	}, nil
}

type simulatedSMS struct {
	logger *slog.Logger
}

func (s *simulatedSMS) Send(ctx context.Context, phoneNumber, message string) (*models.DeliveryReceipt, error) {
	s.logger.InfoContext(ctx, "Simulated SMS", "phone", phoneNumber)

	return &models.DeliveryReceipt{
		Recipient: phoneNumber,
		Body:      message,
		Channel:   "sms",
		SentAt:    time.Now().UTC(),
	}, nil
}

type simulatedBank struct {
	logger *slog.Logger
}

func (s *simulatedBank) FetchTransactions(ctx context.Context, bank, accountRef string, days int) ([]map[string]any, error) {
	s.logger.InfoContext(ctx, "Simulated bank fetch", "bank", bank, "days", days)

	return []map[string]any{
		{"date": time.Now().UTC().AddDate(0, 0, -1), "amount": 25000.0, "type": "credit", "narration": "CLIENT PAYMENT"},
		{"date": time.Now().UTC().AddDate(0, 0, -3), "amount": 4800.0, "type": "debit", "narration": "OFFICE RENT"},
	}, nil
}

type simulatedExtractor struct {
	logger *slog.Logger
}

func (s *simulatedExtractor) Extract(ctx context.Context, doc models.Document) (map[string]any, float64, error) {
	s.logger.InfoContext(ctx, "Simulated document extraction", "filename", doc.Filename)

	return map[string]any{
		"filename":        doc.Filename,
		"type":            doc.Type,
		"extractedFields": []any{"panNumber", "name", "income"},
	}, 0.95, nil
}
