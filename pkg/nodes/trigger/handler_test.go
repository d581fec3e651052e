package trigger

import (
	"testing"

	"github.com/caflow/caflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentUploadHandler_FiltersByTypeAndSize(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyDocuments: []models.Document{
			{ID: "doc-1", Filename: "returns.pdf", Size: 1024},
			{ID: "doc-2", Filename: "malware.exe", Size: 1024},
			{ID: "doc-3", Filename: "huge.pdf", Size: 50 * 1024 * 1024},
		},
	})
	node := &models.WorkflowNode{ID: "upload-1", Type: models.NodeTypeDocumentUpload, Data: models.NodeData{Label: "Upload"}}

	require.NoError(t, (&DocumentUploadHandler{}).Execute(t.Context(), ectx, node))

	accepted := ectx.Data[models.DataKeyDocuments].([]models.Document)
	require.Len(t, accepted, 1)
	assert.Equal(t, "returns.pdf", accepted[0].Filename)
}

func TestDocumentUploadHandler_CustomAllowedTypes(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyDocuments: []models.Document{
			{ID: "doc-1", Filename: "ledger.xml", Size: 1024},
			{ID: "doc-2", Filename: "scan.pdf", Size: 1024},
		},
	})
	node := &models.WorkflowNode{
		ID:   "upload-1",
		Type: models.NodeTypeDocumentUpload,
		Data: models.NodeData{Label: "Upload", Config: map[string]any{
			"allowedTypes": []any{"xml"},
		}},
	}

	require.NoError(t, (&DocumentUploadHandler{}).Execute(t.Context(), ectx, node))

	accepted := ectx.Data[models.DataKeyDocuments].([]models.Document)
	require.Len(t, accepted, 1)
	assert.Equal(t, "ledger.xml", accepted[0].Filename)
}

func TestEmailTriggerHandler_RecordsPayload(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "email-trigger-1",
		Type: models.NodeTypeEmailTrigger,
		Data: models.NodeData{Label: "Email Trigger", Config: map[string]any{
			"emailFilters": map[string]any{"from": "clients@firm.example"},
		}},
	}

	require.NoError(t, (&EmailTriggerHandler{}).Execute(t.Context(), ectx, node))

	payload := ectx.Data["emailTrigger"].(map[string]any)
	filters := payload["filters"].(map[string]any)
	assert.Equal(t, "clients@firm.example", filters["from"])
}

func TestCronSpec(t *testing.T) {
	tests := []struct {
		schedule string
		at       string
		want     string
	}{
		{"daily", "09:00", "0 9 * * *"},
		{"daily", "", "0 9 * * *"},
		{"daily", "18:30", "30 18 * * *"},
		{"weekly", "08:00", "0 8 * * 1"},
		{"monthly", "10:15", "15 10 1 * *"},
	}

	for _, tt := range tests {
		spec, err := cronSpec(tt.schedule, tt.at)
		require.NoError(t, err)
		assert.Equal(t, tt.want, spec, "%s at %q", tt.schedule, tt.at)
	}

	_, err := cronSpec("hourly", "")
	assert.Error(t, err)

	_, err = cronSpec("daily", "not-a-time")
	assert.Error(t, err)
}

func TestScheduledTriggerHandler_ValidatesAndRecordsNextRun(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "schedule-1",
		Type: models.NodeTypeScheduledTrigger,
		Data: models.NodeData{Label: "Schedule", Config: map[string]any{
			"schedule": "monthly",
			"time":     "08:00",
		}},
	}

	require.NoError(t, (&ScheduledTriggerHandler{}).Execute(t.Context(), ectx, node))

	payload := ectx.Data["scheduledTrigger"].(map[string]any)
	assert.Equal(t, "monthly", payload["schedule"])
	assert.Equal(t, "0 8 1 * *", payload["cron"])
	assert.NotNil(t, payload["nextRun"])
}

func TestScheduledTriggerHandler_CustomCron(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "schedule-1",
		Type: models.NodeTypeScheduledTrigger,
		Data: models.NodeData{Label: "Schedule", Config: map[string]any{
			"schedule":   "custom",
			"customCron": "*/15 * * * *",
		}},
	}

	require.NoError(t, (&ScheduledTriggerHandler{}).Execute(t.Context(), ectx, node))

	payload := ectx.Data["scheduledTrigger"].(map[string]any)
	assert.Equal(t, "*/15 * * * *", payload["cron"])
}

func TestScheduledTriggerHandler_InvalidCustomCron(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{
		ID:   "schedule-1",
		Type: models.NodeTypeScheduledTrigger,
		Data: models.NodeData{Label: "Schedule", Config: map[string]any{
			"schedule":   "custom",
			"customCron": "every tuesday",
		}},
	}

	assert.Error(t, (&ScheduledTriggerHandler{}).Execute(t.Context(), ectx, node))
}
