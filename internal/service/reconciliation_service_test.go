package service

import (
	"testing"

	"contable/internal/fiscal"
	"contable/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDeclaredFigures(t *testing.T) {
	isrRow := &model.SatDeclaration{
		DeclaredIncomeCents:   5000000,
		DeclaredExpensesCents: 1500000,
		DeclaredISRCents:      320000,
	}
	ivaRow := &model.SatDeclaration{
		DeclaredIncomeCents:   5100000,
		DeclaredExpensesCents: 1600000,
		DeclaredIVACents:      -45000,
	}

	t.Run("both rows present, income taken from iva row", func(t *testing.T) {
		fig := declaredFigures(isrRow, ivaRow)
		assert.Equal(t, "51000.00", fig.Income.StringFixed(2))
		assert.Equal(t, "16000.00", fig.Expenses.StringFixed(2))
		assert.Equal(t, "3200.00", fig.ISR.StringFixed(2))
		assert.Equal(t, "-450.00", fig.IVA.StringFixed(2))
	})

	t.Run("only isr row leaves iva at zero", func(t *testing.T) {
		fig := declaredFigures(isrRow, nil)
		assert.Equal(t, "50000.00", fig.Income.StringFixed(2))
		assert.Equal(t, "3200.00", fig.ISR.StringFixed(2))
		assert.True(t, fig.IVA.IsZero())
	})
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, severityRank(fiscal.SeverityCritical), severityRank(fiscal.SeverityWarning))
	assert.Greater(t, severityRank(fiscal.SeverityWarning), severityRank(fiscal.SeverityMinor))
	assert.Greater(t, severityRank(fiscal.SeverityMinor), severityRank(""))
}
