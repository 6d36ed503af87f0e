package recurring

import (
	"testing"

	"drgroup/cmd/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary(last string) *GroupSummary {
	return &GroupSummary{
		GroupID:       "recurring_1_abc",
		Concept:       "Arriendo",
		Periodicity:   entity.PeriodicityMonthly,
		CompanyID:     "company-1",
		CompanyName:   "Acme",
		Beneficiary:   "Inmobiliaria Central",
		Amount:        decimal.NewFromInt(1000000),
		PaymentMethod: entity.PaymentMethodTransfer,
		LastDueDate:   date(last),
	}
}

func TestGenerateExtension_ContinuesAfterLastDate(t *testing.T) {
	engine := NewEngine(nil, fixedClock("2025-03-10"))

	seq, err := engine.GenerateExtension(summary("2025-09-30"), 12, 2025)
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-10-30", "2025-11-30", "2025-12-30"}, dueDates(seq))
	assert.Equal(t, "Arriendo", seq[0].Concept)
	assert.Equal(t, "Arriendo - noviembre 2025", seq[1].Concept)
	for _, c := range seq {
		assert.Equal(t, entity.StatusPending, c.Status)
		assert.Equal(t, "Extensión automática para 2025", c.Observations)
		assert.Equal(t, "Acme", c.CompanyName)
		assert.True(t, c.IsRecurring)
	}
}

func TestGenerateExtension_DefaultsToNextYear(t *testing.T) {
	engine := NewEngine(nil, fixedClock("2025-11-20"))

	seq, err := engine.GenerateExtension(summary("2025-12-05"), 0, 0)
	require.NoError(t, err)

	require.Len(t, seq, 12)
	assert.Equal(t, date("2026-01-05"), seq[0].DueDate)
	assert.Equal(t, date("2026-12-05"), seq[11].DueDate)
	assert.Equal(t, "Extensión automática para 2026", seq[0].Observations)
}

func TestGenerateExtension_FallsBackToTransfer(t *testing.T) {
	engine := NewEngine(nil, fixedClock("2025-01-01"))
	g := summary("2025-01-15")
	g.PaymentMethod = ""

	seq, err := engine.GenerateExtension(g, 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentMethodTransfer, seq[0].PaymentMethod)
}

func TestGenerateExtension_Errors(t *testing.T) {
	engine := NewEngine(nil, fixedClock("2025-01-01"))

	_, err := engine.GenerateExtension(nil, 12, 2025)
	assert.ErrorIs(t, err, ErrInvalidInput)

	unique := summary("2025-01-01")
	unique.Periodicity = entity.PeriodicityUnique
	_, err = engine.GenerateExtension(unique, 12, 2025)
	assert.ErrorIs(t, err, ErrInvalidPeriodicity)

	orphan := summary("2025-01-01")
	orphan.CompanyName = ""
	_, err = engine.GenerateExtension(orphan, 12, 2025)
	assert.ErrorIs(t, err, ErrInvalidInput)

	late := summary("2025-12-15")
	_, err = engine.GenerateExtension(late, 12, 2025)
	assert.ErrorIs(t, err, ErrEmptyGeneration)
}

func TestAdjustAmount(t *testing.T) {
	base := decimal.NewFromInt(1000000)

	assert.True(t, base.Equal(AdjustAmount(base, decimal.Zero)))
	assert.True(t, decimal.NewFromInt(1050000).Equal(AdjustAmount(base, decimal.NewFromInt(5))))
	assert.True(t, decimal.NewFromInt(900000).Equal(AdjustAmount(base, decimal.NewFromInt(-10))))
	assert.True(t, decimal.RequireFromString("1035000").Equal(AdjustAmount(base, decimal.RequireFromString("3.5"))))
}
