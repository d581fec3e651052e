package registry

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/caflow/caflow/pkg/collaborators"
	"github.com/caflow/caflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition_ReturnsDeepCopy(t *testing.T) {
	first, err := Definition(models.NodeTypeGSTProcessor)
	require.NoError(t, err)

	first.Config["gstRate"] = 0.28
	first.Label = "Mutated"

	second, err := Definition(models.NodeTypeGSTProcessor)
	require.NoError(t, err)

	assert.NotEqual(t, "Mutated", second.Label)
	assert.NotEqual(t, 0.28, second.Config["gstRate"])
}

func TestDefinition_UnknownType(t *testing.T) {
	_, err := Definition(models.NodeType("bogus"))
	assert.True(t, errors.Is(err, ErrUnknownNodeType))
}

func TestCategory(t *testing.T) {
	assert.Equal(t, models.CategoryTriggers, Category(models.NodeTypeScheduledTrigger))
	assert.Equal(t, models.CategoryProcessing, Category(models.NodeTypeTaxCalculator))
	assert.Equal(t, models.CategoryCompliance, Category(models.NodeTypeAuditValidator))
	assert.Equal(t, models.CategoryIntegrations, Category(models.NodeTypeEmailSender))
	assert.Equal(t, models.CategoryLogic, Category(models.NodeTypeCondition))
	assert.Equal(t, models.CategoryOutput, Category(models.NodeTypeReportGenerator))
	assert.Equal(t, models.CategoryUnknown, Category(models.NodeType("bogus")))
}

func TestTypes_MatchesDefinitionCatalog(t *testing.T) {
	types := Types()
	assert.Len(t, types, 24)

	for _, nodeType := range types {
		_, err := Definition(nodeType)
		assert.NoError(t, err)
	}
}

func TestRegisterDefaults_CoversEveryCataloguedType(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := NewRegistry(logger)
	RegisterDefaults(reg, collaborators.NewSimulated(logger))

	for _, nodeType := range Types() {
		assert.True(t, reg.HasHandler(nodeType), "no handler for %s", nodeType)

		handler, err := reg.CreateHandler(nodeType)
		require.NoError(t, err)
		assert.NotNil(t, handler)
	}
}

func TestCreateHandler_UnknownType(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := NewRegistry(logger)

	_, err := reg.CreateHandler(models.NodeTypeTaxCalculator)
	assert.True(t, errors.Is(err, ErrUnknownNodeType))
}
