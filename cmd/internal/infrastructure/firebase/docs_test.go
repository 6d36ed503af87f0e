package firebase

import (
	"errors"
	"testing"
	"time"

	"drgroup/cmd/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCommitmentDoc_KeepsCentsAndSeriesLink(t *testing.T) {
	parent := "origin-1"
	c := &entity.Commitment{
		Concept:            "Arriendo - febrero 2025",
		CompanyName:        "DR Group",
		Amount:             decimal.RequireFromString("1234567.89"),
		Periodicity:        entity.PeriodicityMonthly,
		IsRecurring:        true,
		RecurringGroup:     "recurring_1_abc",
		ParentCommitmentID: &parent,
	}
	c.SetDueDate(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	back := toCommitmentDoc(c).toEntity("doc-2")
	assert.Equal(t, "doc-2", back.ID)
	assert.True(t, back.Amount.Equal(c.Amount), "got %s", back.Amount)
	assert.Equal(t, c.RecurringGroup, back.RecurringGroup)
	assert.Equal(t, parent, *back.ParentCommitmentID)
	assert.True(t, back.DueDate.Equal(c.DueDate))
	assert.Equal(t, 2, back.Month)
}

func TestPaymentDoc_RoundsAmount(t *testing.T) {
	d := &paymentDoc{Amount: 99.999, Concept: "Papelería"}
	got := d.toEntity("p-1").Amount
	assert.True(t, got.Equal(decimal.NewFromInt(100)), "got %s", got)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(status.Error(codes.NotFound, "missing")))
	assert.False(t, isNotFound(status.Error(codes.Unavailable, "down")))
	assert.False(t, isNotFound(errors.New("plain")))
}
