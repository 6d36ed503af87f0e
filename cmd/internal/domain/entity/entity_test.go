package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodicity(t *testing.T) {
	step, ok := PeriodicityFourMonthly.MonthStep()
	assert.True(t, ok)
	assert.Equal(t, 4, step)

	_, ok = PeriodicityUnique.MonthStep()
	assert.False(t, ok)
	assert.True(t, PeriodicityUnique.Valid())
	assert.False(t, Periodicity("weekly").Valid())
	assert.Equal(t, "Periodicidad desconocida", Periodicity("weekly").Description())
	assert.Len(t, Periodicities, 7)
}

func TestCommitment_EffectiveStatus(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	c := &Commitment{Status: StatusPending}

	c.SetDueDate(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, StatusOverdue, c.EffectiveStatus(today))

	c.SetDueDate(today)
	assert.Equal(t, StatusPending, c.EffectiveStatus(today), "due today is not overdue yet")

	c.SetDueDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Status = StatusPaid
	assert.Equal(t, StatusPaid, c.EffectiveStatus(today))
}

func TestCommitment_SeriesHelpers(t *testing.T) {
	parent := "origin"
	c := &Commitment{
		Concept:            "Arriendo",
		CompanyName:        "  ",
		Amount:             decimal.NewFromInt(10),
		IsRecurring:        true,
		RecurringGroup:     "g1",
		ParentCommitmentID: &parent,
		InstanceNumber:     2,
		TotalInstances:     12,
	}
	assert.False(t, c.HasCompanyName())
	assert.False(t, c.IsSeriesOrigin())

	clone := c.Clone()
	*clone.ParentCommitmentID = "changed"
	assert.Equal(t, "origin", *c.ParentCommitmentID, "clone does not share the parent pointer")

	c.ClearSeries()
	assert.False(t, c.IsRecurring)
	assert.True(t, c.RecurringGroup.IsZero())
	assert.Nil(t, c.ParentCommitmentID)
	assert.Zero(t, c.InstanceNumber)
}

func TestConnection_IsStale(t *testing.T) {
	now := int64(1_000_000)
	assert.False(t, (&Connection{LastHeartbeatAt: now - HeartbeatPeriodMillis}).IsStale(now))
	assert.True(t, (&Connection{LastHeartbeatAt: now - HeartbeatPeriodMillis - HeartbeatToleranceMillis - 1}).IsStale(now))
}
