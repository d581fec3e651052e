package registry

import (
	"github.com/caflow/caflow/pkg/nodes/compliance"
	"github.com/caflow/caflow/pkg/nodes/document"
	"github.com/caflow/caflow/pkg/nodes/gst"
	"github.com/caflow/caflow/pkg/nodes/intake"
	"github.com/caflow/caflow/pkg/nodes/integration"
	"github.com/caflow/caflow/pkg/nodes/logic"
	"github.com/caflow/caflow/pkg/nodes/output"
	"github.com/caflow/caflow/pkg/nodes/tax"
	"github.com/caflow/caflow/pkg/nodes/trigger"
	"github.com/caflow/caflow/pkg/protocol"
)

// RegisterDefaults wires every built-in node handler factory into the
// registry. Handlers that call external services receive their collaborator
// from the bundle; nil collaborators make those nodes fail at execution time,
// not at registration.
func RegisterDefaults(r *Registry, collab protocol.Collaborators) {
	factories := []protocol.HandlerFactory{
		trigger.NewDocumentUploadFactory(),
		trigger.NewEmailTriggerFactory(),
		trigger.NewScheduledTriggerFactory(),

		intake.NewFactory(),
		document.NewProcessorFactory(collab.Extractor),
		document.NewValidatorFactory(),
		tax.NewCalculatorFactory(),
		tax.NewITRFactory(),
		gst.NewFactory(),

		compliance.NewCheckerFactory(),
		compliance.NewAuditFactory(),
		compliance.NewRegulatoryFactory(),

		integration.NewSheetsFactory(collab.Sheets),
		integration.NewEmailFactory(collab.Email),
		integration.NewSMSFactory(collab.SMS),
		integration.NewBankFactory(collab.Bank),

		logic.NewConditionFactory(),
		logic.NewLoopFactory(),
		logic.NewDelayFactory(),
		logic.NewTransformerFactory(),

		output.NewReportFactory(),
		output.NewNotificationFactory(),
		output.NewExportFactory(),
		output.NewAuditLogFactory(),
	}

	for _, factory := range factories {
		r.Register(factory)
	}
}
