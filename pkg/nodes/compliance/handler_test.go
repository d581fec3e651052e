package compliance

import (
	"testing"

	"github.com/caflow/caflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runChecker(t *testing.T, client models.ClientData) []models.ComplianceCheck {
	t.Helper()

	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyClient: client,
	})
	node := &models.WorkflowNode{ID: "check-1", Type: models.NodeTypeComplianceChecker, Data: models.NodeData{Label: "Check"}}

	require.NoError(t, (&CheckerHandler{}).Execute(t.Context(), ectx, node))

	checks, ok := ectx.Data[models.DataKeyComplianceChecks].([]models.ComplianceCheck)
	require.True(t, ok)

	return checks
}

func TestCheckerHandler_ValidIdentifiers(t *testing.T) {
	checks := runChecker(t, models.ClientData{
		PAN:   "ABCDE1234F",
		GSTIN: "27ABCDE1234F1Z5",
	})

	assert.Empty(t, checks)
}

func TestCheckerHandler_InvalidPAN(t *testing.T) {
	checks := runChecker(t, models.ClientData{PAN: "INVALID"})

	require.Len(t, checks, 1)
	assert.Equal(t, "PAN_INVALID", checks[0].Type)
	assert.Equal(t, models.SeverityError, checks[0].Severity)
}

func TestCheckerHandler_InvalidGSTIN(t *testing.T) {
	checks := runChecker(t, models.ClientData{PAN: "ABCDE1234F", GSTIN: "bad-gstin"})

	require.Len(t, checks, 1)
	assert.Equal(t, "GSTIN_INVALID", checks[0].Type)
}

func TestCheckerHandler_CompanyWithoutGSTIN(t *testing.T) {
	checks := runChecker(t, models.ClientData{PAN: "ABCDE1234F", BusinessType: "Company"})

	require.Len(t, checks, 1)
	assert.Equal(t, "GST_REGISTRATION_REQUIRED", checks[0].Type)
	assert.Equal(t, models.SeverityWarning, checks[0].Severity)
}

func TestCheckerHandler_NeverFailsTheRun(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", nil)
	node := &models.WorkflowNode{ID: "check-1", Type: models.NodeTypeComplianceChecker, Data: models.NodeData{Label: "Check"}}

	assert.NoError(t, (&CheckerHandler{}).Execute(t.Context(), ectx, node))
}

func TestRegulatoryHandler_PANRequiredForIncomeTax(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyClient: models.ClientData{BusinessType: "Company"},
	})
	node := &models.WorkflowNode{
		ID:   "reg-1",
		Type: models.NodeTypeRegulatoryChecker,
		Data: models.NodeData{Label: "Regulatory", Config: map[string]any{}},
	}

	require.NoError(t, (&RegulatoryHandler{}).Execute(t.Context(), ectx, node))

	checks := ectx.Data[models.DataKeyComplianceChecks].([]models.ComplianceCheck)
	require.Len(t, checks, 1)
	assert.Equal(t, "REG_PAN_MISSING", checks[0].Type)

	items := ectx.Data["regulatoryActionItems"].([]string)
	assert.Len(t, items, 3)
}

func TestAuditHandler_RecordsStatus(t *testing.T) {
	ectx := models.NewExecutionContext("wf", "exec", "user", map[string]any{
		models.DataKeyFinancialData: models.FinancialData{Revenue: 100000},
	})
	node := &models.WorkflowNode{
		ID:   "audit-1",
		Type: models.NodeTypeAuditValidator,
		Data: models.NodeData{Label: "Audit", Config: map[string]any{"auditType": "statutory"}},
	}

	require.NoError(t, (&AuditHandler{}).Execute(t.Context(), ectx, node))

	status := ectx.Data["auditStatus"].(map[string]any)
	assert.Equal(t, "statutory", status["auditType"])
	assert.Equal(t, true, status["ready"])

	// No processed documents on hand, so the audit flags the gap.
	checks := ectx.Data[models.DataKeyComplianceChecks].([]models.ComplianceCheck)
	require.Len(t, checks, 1)
	assert.Equal(t, "AUDIT_DOCUMENTATION_INCOMPLETE", checks[0].Type)
}
