// Package trigger provides trigger node handlers. When a trigger node runs
// inside a manually started execution it validates its configuration and
// records the trigger payload; it does not wait for the external event.
package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/caflow/caflow/pkg/models"
	"github.com/caflow/caflow/pkg/protocol"
	"github.com/robfig/cron/v3"
)

// DocumentUploadHandler filters the pending documents against the node's
// allowed types and size limit.
type DocumentUploadHandler struct{}

func (h *DocumentUploadHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	allowed := allowedTypes(node.Data.Config)

	maxSize := int64(10 * 1024 * 1024)
	if v, ok := node.Data.Config["maxSize"].(int); ok && v > 0 {
		maxSize = int64(v)
	} else if v, ok := node.Data.Config["maxSize"].(float64); ok && v > 0 {
		maxSize = int64(v)
	}

	docs, _ := ectx.Data[models.DataKeyDocuments].([]models.Document)

	accepted := make([]models.Document, 0, len(docs))
	rejected := 0

	for _, doc := range docs {
		if doc.Size > maxSize || !typeAllowed(doc.Filename, allowed) {
			rejected++

			continue
		}

		accepted = append(accepted, doc)
	}

	ectx.Data[models.DataKeyDocuments] = accepted
	ectx.AppendLog(models.LogLevelInfo,
		fmt.Sprintf("Accepted %d documents, rejected %d", len(accepted), rejected), nil)

	return nil
}

func allowedTypes(config map[string]any) []string {
	raw, ok := config["allowedTypes"].([]any)
	if !ok {
		return []string{"pdf", "jpg", "png", "xlsx", "csv"}
	}

	types := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			types = append(types, s)
		}
	}

	return types
}

func typeAllowed(filename string, allowed []string) bool {
	for _, ext := range allowed {
		if len(filename) > len(ext)+1 && filename[len(filename)-len(ext)-1:] == "."+ext {
			return true
		}
	}

	return false
}

// EmailTriggerHandler records the matched email payload that started the run.
type EmailTriggerHandler struct{}

func (h *EmailTriggerHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	filters, _ := node.Data.Config["emailFilters"].(map[string]any)

	ectx.Data["emailTrigger"] = map[string]any{
		"filters":     filters,
		"triggeredAt": time.Now().UTC(),
	}
	ectx.AppendLog(models.LogLevelInfo, "Email trigger fired", nil)

	return nil
}

// cronSpec maps a preset schedule to a cron expression. The hour and minute
// come from the node's time config.
func cronSpec(schedule, at string) (string, error) {
	hour, minute := 9, 0
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil && at != "" {
		return "", fmt.Errorf("invalid time %q", at)
	}

	switch schedule {
	case "daily":
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	case "weekly":
		return fmt.Sprintf("%d %d * * 1", minute, hour), nil
	case "monthly":
		return fmt.Sprintf("%d %d 1 * *", minute, hour), nil
	default:
		return "", fmt.Errorf("unknown schedule %q", schedule)
	}
}

// ScheduledTriggerHandler validates the node's schedule and records when the
// next occurrence would fire.
type ScheduledTriggerHandler struct{}

func (h *ScheduledTriggerHandler) Execute(_ context.Context, ectx *models.ExecutionContext, node *models.WorkflowNode) error {
	schedule, _ := node.Data.Config["schedule"].(string)
	if schedule == "" {
		schedule = "daily"
	}

	spec := ""
	if schedule == "custom" {
		spec, _ = node.Data.Config["customCron"].(string)
	} else {
		at, _ := node.Data.Config["time"].(string)

		var err error

		spec, err = cronSpec(schedule, at)
		if err != nil {
			return fmt.Errorf("node %s: %w", node.ID, err)
		}
	}

	parsed, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("node %s: invalid cron expression %q: %w", node.ID, spec, err)
	}

	now := time.Now().UTC()
	ectx.Data["scheduledTrigger"] = map[string]any{
		"schedule":    schedule,
		"cron":        spec,
		"nextRun":     parsed.Next(now),
		"triggeredAt": now,
	}
	ectx.AppendLog(models.LogLevelInfo, fmt.Sprintf("Schedule %s validated, cron %q", schedule, spec), nil)

	return nil
}

// DocumentUploadFactory creates document upload trigger handlers.
type DocumentUploadFactory struct{}

func (f *DocumentUploadFactory) Type() models.NodeType { return models.NodeTypeDocumentUpload }

func (f *DocumentUploadFactory) Create() (protocol.Handler, error) {
	return &DocumentUploadHandler{}, nil
}

// NewDocumentUploadFactory creates a new factory instance.
func NewDocumentUploadFactory() protocol.HandlerFactory { return &DocumentUploadFactory{} }

// EmailTriggerFactory creates email trigger handlers.
type EmailTriggerFactory struct{}

func (f *EmailTriggerFactory) Type() models.NodeType { return models.NodeTypeEmailTrigger }

func (f *EmailTriggerFactory) Create() (protocol.Handler, error) { return &EmailTriggerHandler{}, nil }

// NewEmailTriggerFactory creates a new factory instance.
func NewEmailTriggerFactory() protocol.HandlerFactory { return &EmailTriggerFactory{} }

// ScheduledTriggerFactory creates scheduled trigger handlers.
type ScheduledTriggerFactory struct{}

func (f *ScheduledTriggerFactory) Type() models.NodeType { return models.NodeTypeScheduledTrigger }

func (f *ScheduledTriggerFactory) Create() (protocol.Handler, error) {
	return &ScheduledTriggerHandler{}, nil
}

// NewScheduledTriggerFactory creates a new factory instance.
func NewScheduledTriggerFactory() protocol.HandlerFactory { return &ScheduledTriggerFactory{} }
