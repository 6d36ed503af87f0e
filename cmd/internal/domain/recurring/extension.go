package recurring

import (
	"fmt"

	"drgroup/cmd/internal/domain/entity"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GenerateExtension computes the next batch of a group, starting one step
// after its last known due date and bounded by December 31 of targetYear.
// A non-positive targetYear means next year. Nothing is persisted.
func (e *Engine) GenerateExtension(g *GroupSummary, extensionCount int, targetYear int) ([]*entity.Commitment, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: group summary is required", ErrInvalidInput)
	}

	step, ok := g.Periodicity.MonthStep()
	if !ok {
		return nil, fmt.Errorf("%w: group %s has periodicity %q", ErrInvalidPeriodicity, g.GroupID, g.Periodicity)
	}
	if g.LastDueDate.IsZero() {
		return nil, fmt.Errorf("%w: group %s has no last due date", ErrInvalidDate, g.GroupID)
	}
	if targetYear <= 0 {
		targetYear = e.now().Year() + 1
	}
	if extensionCount <= 0 {
		extensionCount = DefaultInstanceCount
	}

	method := g.PaymentMethod
	if method == "" {
		method = entity.PaymentMethodTransfer
	}

	tpl := &entity.Commitment{
		Concept:       g.Concept,
		CompanyID:     g.CompanyID,
		CompanyName:   g.CompanyName,
		Beneficiary:   g.Beneficiary,
		Amount:        g.Amount,
		Periodicity:   g.Periodicity,
		Status:        entity.StatusPending,
		PaymentMethod: method,
		Observations:  fmt.Sprintf("Extensión automática para %d", targetYear),
	}
	tpl.SetDueDate(AddMonths(DateOf(g.LastDueDate), step))

	return e.Generate(tpl, extensionCount, false, EndOfYear(targetYear))
}

// AdjustAmount applies a percentage delta: amount * (1 + pct/100).
func AdjustAmount(amount, pct decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return amount
	}
	return amount.Mul(decimal.NewFromInt(1).Add(pct.Div(hundred)))
}
