// Package integration provides node handlers that call external collaborators
// (spreadsheets, email, SMS, bank APIs).
package integration

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
)

var templateField = regexp.MustCompile(`{{(\w+)}}`)

// interpolate substitutes {{field}} placeholders with values from the context
// data. Unknown fields are left verbatim.
func interpolate(template string, data map[string]any) string {
	return templateField.ReplaceAllStringFunc(template, func(match string) string {
		key := templateField.FindStringSubmatch(match)[1]
		if v, ok := data[key]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}

		return match
	})
}

func clientFrom(data map[string]any) (models.ClientData, bool) {
	client, ok := data[models.DataKeyClient].(models.ClientData)

	return client, ok
}

// SheetsHandler dispatches the configured spreadsheet action through the
// sheets collaborator.
type SheetsHandler struct {
	sheets protocol.SheetsService
}

func (h *SheetsHandler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	if h.sheets == nil {
		return fmt.Errorf("node %s: sheets service not configured", node.ID)
	}

	action, _ := node.Data.Config["action"].(string)
	config := node.Data.Config

	switch action {
	case "create_drafting_task":
		client, ok := clientFrom(ectx.Data)
		if !ok {
			ectx.AppendLog(models.LogLevelWarning, "No client data, skipping drafting task", nil)

			return nil
		}

		taskType := stringOr(config, "taskType", "General Task")
		priority := stringOr(config, "priority", "Medium")
		description := stringOr(config, "description", "Auto-generated task")
		dueDate := dateOr(config, "dueDate", time.Now().AddDate(0, 0, 7))

		if err := h.sheets.AddDraftingTask(ctx, client.Name, taskType, dueDate, priority, description); err != nil {
			return fmt.Errorf("node %s: adding drafting task: %w", node.ID, err)
		}

		ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Created drafting task for %s", client.Name), nil)
	case "create_audit_task":
		client, ok := clientFrom(ectx.Data)
		if !ok {
			ectx.AppendLog(models.LogLevelWarning, "No client data, skipping audit task", nil)

			return nil
		}

		auditType := stringOr(config, "auditType", "Internal Audit")
		auditor := stringOr(config, "auditor", "Auto-assigned")
		notes := stringOr(config, "notes", "Auto-generated audit task")
		startDate := dateOr(config, "startDate", time.Now())

		if err := h.sheets.AddAuditingTask(ctx, client.Name, auditType, startDate, auditor, notes); err != nil {
			return fmt.Errorf("node %s: adding audit task: %w", node.ID, err)
		}

		ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Created audit task for %s", client.Name), nil)
	case "update_task_status":
		taskID := stringOr(config, "taskId", "")
		if taskID == "" {
			return protocol.NewMissingFieldError(node.ID, "taskId")
		}

		status := stringOr(config, "status", "completed")
		if err := h.sheets.UpdateTaskStatus(ctx, taskID, status); err != nil {
			return fmt.Errorf("node %s: updating task status: %w", node.ID, err)
		}

		ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Task %s marked %s", taskID, status), nil)
	case "get_tasks":
		tasks, err := h.sheets.Tasks(ctx)
		if err != nil {
			return fmt.Errorf("node %s: fetching tasks: %w", node.ID, err)
		}

		ectx.Data["tasks"] = tasks
		ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Fetched %d tasks", len(tasks)), nil)
	case "auto_assign_task":
		taskID := stringOr(config, "taskId", "")
		if taskID == "" {
			return protocol.NewMissingFieldError(node.ID, "taskId")
		}

		assignee, err := h.sheets.AutoAssignTask(ctx, taskID)
		if err != nil {
			return fmt.Errorf("node %s: auto-assigning task: %w", node.ID, err)
		}

		ectx.Data["taskAssignment"] = map[string]any{"taskId": taskID, "assignee": assignee}
		ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Task %s assigned to %s", taskID, assignee), nil)
	case "update_analytics":
		analytics, err := h.sheets.WorkflowAnalytics(ctx)
		if err != nil {
			return fmt.Errorf("node %s: fetching workflow analytics: %w", node.ID, err)
		}

		ectx.Data["analytics"] = analytics
		ectx.AppendLog(models.LogLevelInfo, "Updated workflow analytics", nil)
	default:
		return fmt.Errorf("node %s: unknown sheets action %q", node.ID, action)
	}

	return nil
}

// EmailHandler sends an email through the email collaborator. The recipient
// falls back to the intake client's address and the body template supports
// {{field}} interpolation over the context data.
type EmailHandler struct {
	email protocol.EmailService
}

func (h *EmailHandler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	if h.email == nil {
		return fmt.Errorf("node %s: email service not configured", node.ID)
	}

	recipient, _ := node.Data.Config["recipient"].(string)
	if recipient == "" {
		if client, ok := clientFrom(ectx.Data); ok {
			recipient = client.Email
		}
	}

	if recipient == "" {
		return protocol.NewMissingFieldError(node.ID, "recipient")
	}

	subject := stringOr(node.Data.Config, "subject", "Automated Notification")
	body := interpolate(stringOr(node.Data.Config, "template", "Default message"), ectx.Data)

	receipt, err := h.email.Send(ctx, recipient, subject, body)
	if err != nil {
		return fmt.Errorf("node %s: sending email: %w", node.ID, err)
	}

	ectx.Data[models.DataKeyEmailSent] = receipt
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Email sent to %s", recipient), nil)

	return nil
}

// SMSHandler sends an SMS through the SMS collaborator.
type SMSHandler struct {
	sms protocol.SMSService
}

func (h *SMSHandler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	if h.sms == nil {
		return fmt.Errorf("node %s: SMS service not configured", node.ID)
	}

	phone, _ := node.Data.Config["phoneNumber"].(string)
	if phone == "" {
		if client, ok := clientFrom(ectx.Data); ok {
			phone = client.Phone
		}
	}

	if phone == "" {
		return protocol.NewMissingFieldError(node.ID, "phoneNumber")
	}

	message := interpolate(stringOr(node.Data.Config, "template", "Notification from your CA"), ectx.Data)

	receipt, err := h.sms.Send(ctx, phone, message)
	if err != nil {
		return fmt.Errorf("node %s: sending SMS: %w", node.ID, err)
	}

	ectx.Data[models.DataKeySMSSent] = receipt
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("SMS sent to %s", phone), nil)

	return nil
}

// BankHandler fetches transaction data through the bank collaborator.
type BankHandler struct {
	bank protocol.BankService
}

func (h *BankHandler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	if h.bank == nil {
		return fmt.Errorf("node %s: bank service not configured", node.ID)
	}

	bankType := stringOr(node.Data.Config, "bankType", "icici")
	accountRef, _ := node.Data.Config["accountRef"].(string)
	days := daysFromRange(stringOr(node.Data.Config, "dateRange", "30_days"))

	transactions, err := h.bank.FetchTransactions(ctx, bankType, accountRef, days)
	if err != nil {
		return fmt.Errorf("node %s: fetching bank transactions: %w", node.ID, err)
	}

	ectx.Data[models.DataKeyBankData] = map[string]any{
		"bank":         bankType,
		"transactions": transactions,
		"fetchedAt":    time.Now().UTC(),
	}
	ectx.AppendLog(models.LogLevelInfo,
		fmt.Sprintf("Fetched %d transactions from %s", len(transactions), bankType), nil)

	return nil
}

func stringOr(config map[string]any, key, fallback string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}

	return fallback
}

func dateOr(config map[string]any, key string, fallback time.Time) time.Time {
	if v, ok := config[key].(string); ok && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}

		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}

	return fallback
}

func daysFromRange(dateRange string) int {
	switch dateRange {
	case "7_days":
		return 7
	case "90_days":
		return 90
	default:
		return 30
	}
}

// SheetsFactory creates Google Sheets action handlers.
type SheetsFactory struct {
	sheets protocol.SheetsService
}

func (f *SheetsFactory) Type() models.NodeType { return models.NodeTypeGoogleSheetsAction }

func (f *SheetsFactory) Create() (protocol.Handler, error) {
	return &SheetsHandler{sheets: f.sheets}, nil
}

// NewSheetsFactory creates a new factory instance.
func NewSheetsFactory(sheets protocol.SheetsService) protocol.HandlerFactory {
	return &SheetsFactory{sheets: sheets}
}

// EmailFactory creates email sender handlers.
type EmailFactory struct {
	email protocol.EmailService
}

func (f *EmailFactory) Type() models.NodeType { return models.NodeTypeEmailSender }

func (f *EmailFactory) Create() (protocol.Handler, error) { return &EmailHandler{email: f.email}, nil }

// NewEmailFactory creates a new factory instance.
func NewEmailFactory(email protocol.EmailService) protocol.HandlerFactory {
	return &EmailFactory{email: email}
}

// SMSFactory creates SMS sender handlers.
type SMSFactory struct {
	sms protocol.SMSService
}

func (f *SMSFactory) Type() models.NodeType { return models.NodeTypeSMSSender }

func (f *SMSFactory) Create() (protocol.Handler, error) { return &SMSHandler{sms: f.sms}, nil }

// NewSMSFactory creates a new factory instance.
func NewSMSFactory(sms protocol.SMSService) protocol.HandlerFactory {
	return &SMSFactory{sms: sms}
}

// BankFactory creates bank API connector handlers.
type BankFactory struct {
	bank protocol.BankService
}

func (f *BankFactory) Type() models.NodeType { return models.NodeTypeBankAPIConnector }

func (f *BankFactory) Create() (protocol.Handler, error) { return &BankHandler{bank: f.bank}, nil }

// NewBankFactory creates a new factory instance.
func NewBankFactory(bank protocol.BankService) protocol.HandlerFactory {
	return &BankFactory{bank: bank}
}
