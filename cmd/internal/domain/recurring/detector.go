package recurring

import (
	"time"

	"drgroup/cmd/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// ForceExtension as lookahead flags every group regardless of its dates.
const ForceExtension = -1

// GroupSummary describes one recurring group as seen in a set of
// commitments. Representative fields come from the latest due member.
type GroupSummary struct {
	GroupID       entity.SeriesID
	Concept       string
	Periodicity   entity.Periodicity
	CompanyID     string
	CompanyName   string
	Beneficiary   string
	Amount        decimal.Decimal
	PaymentMethod entity.PaymentMethod
	LastDueDate   time.Time
	Members       []*entity.Commitment
}

func (g *GroupSummary) Count() int {
	return len(g.Members)
}

type ExtensionReport struct {
	Total          int
	NeedsExtension int
	Groups         []*GroupSummary
}

// CheckForExtension groups recurring commitments by series and reports the
// ones whose last due date falls before today plus lookaheadMonths. A
// negative lookahead flags every group. It performs no I/O.
func (e *Engine) CheckForExtension(commitments []*entity.Commitment, lookaheadMonths int) *ExtensionReport {
	groups := GroupSeries(commitments)
	threshold := AddMonths(e.Today(), lookaheadMonths)

	report := &ExtensionReport{
		Total:  len(groups),
		Groups: make([]*GroupSummary, 0),
	}
	for _, g := range groups {
		if lookaheadMonths < 0 || g.LastDueDate.Before(threshold) {
			report.Groups = append(report.Groups, g)
		}
	}
	report.NeedsExtension = len(report.Groups)
	return report
}

// GroupSeries partitions recurring commitments by group, preserving the
// order in which groups first appear.
func GroupSeries(commitments []*entity.Commitment) []*GroupSummary {
	index := make(map[entity.SeriesID]*GroupSummary)
	ordered := make([]*GroupSummary, 0)

	for _, c := range commitments {
		if c == nil || !c.IsRecurring || c.RecurringGroup.IsZero() {
			continue
		}

		g, ok := index[c.RecurringGroup]
		if !ok {
			g = &GroupSummary{GroupID: c.RecurringGroup}
			index[c.RecurringGroup] = g
			ordered = append(ordered, g)
		}

		g.Members = append(g.Members, c)
		due := DateOf(c.DueDate)
		if len(g.Members) == 1 || !due.Before(g.LastDueDate) {
			g.represent(c, due)
		}
	}
	return ordered
}

func (g *GroupSummary) represent(c *entity.Commitment, due time.Time) {
	g.LastDueDate = due
	g.Concept = BaseConcept(c.Concept)
	g.Periodicity = c.Periodicity
	g.CompanyID = c.CompanyID
	g.CompanyName = c.CompanyName
	g.Beneficiary = c.Beneficiary
	g.Amount = c.Amount
	g.PaymentMethod = c.PaymentMethod
}
