package policy

import (
	"fmt"
	"strings"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/utils/apierror"
)

type Rule string

const (
	RuleMissingCompanyName Rule = "missing_company_name"
	RuleUnknownCompany     Rule = "unknown_company"
	RuleMissingOrigin      Rule = "missing_origin"
	RuleMultipleOrigins    Rule = "multiple_origins"
	RuleBrokenParent       Rule = "broken_parent"
	RuleForeignParent      Rule = "foreign_parent"
	RulePaidWithoutPayment Rule = "paid_without_payment"
)

type Issue struct {
	Rule         Rule
	CommitmentID string
	GroupID      entity.SeriesID
	Detail       string
}

type IntegrityReport struct {
	Checked int
	Issues  []*Issue
}

func (r *IntegrityReport) Healthy() bool {
	return len(r.Issues) == 0
}

func (r *IntegrityReport) Counts() map[Rule]int {
	counts := make(map[Rule]int)
	for _, issue := range r.Issues {
		counts[issue.Rule]++
	}
	return counts
}

func (r *IntegrityReport) add(rule Rule, c *entity.Commitment, group entity.SeriesID, detail string, args ...any) {
	issue := &Issue{Rule: rule, GroupID: group, Detail: fmt.Sprintf(detail, args...)}
	if c != nil {
		issue.CommitmentID = c.ID
	}
	r.Issues = append(r.Issues, issue)
}

// IntegrityPolicy holds the structural rules of the commitment ledger. It
// returns apierror.ErrorResponse directly for write checks and a report for
// audits. Nothing here repairs data.
type IntegrityPolicy struct{}

func NewIntegrityPolicy() *IntegrityPolicy {
	return &IntegrityPolicy{}
}

// CanPersist rejects records that would become orphans in company reports.
func (p *IntegrityPolicy) CanPersist(c *entity.Commitment) apierror.ErrorResponse {
	if c == nil || !c.HasCompanyName() {
		return apierror.OrphanRiskError
	}
	return nil
}

// AuditInput is everything an audit reads. PaidCommitmentIDs lists the
// commitments referenced by at least one payment.
type AuditInput struct {
	Commitments       []*entity.Commitment
	Companies         []*entity.Company
	PaidCommitmentIDs map[string]bool
}

func (p *IntegrityPolicy) Audit(in *AuditInput) *IntegrityReport {
	report := &IntegrityReport{
		Checked: len(in.Commitments),
		Issues:  make([]*Issue, 0),
	}

	companies := make(map[string]bool, len(in.Companies))
	for _, company := range in.Companies {
		companies[company.ID] = true
	}

	byID := make(map[string]*entity.Commitment, len(in.Commitments))
	for _, c := range in.Commitments {
		byID[c.ID] = c
	}

	origins := make(map[entity.SeriesID]int)
	groups := make([]entity.SeriesID, 0)

	for _, c := range in.Commitments {
		if strings.TrimSpace(c.CompanyName) == "" {
			report.add(RuleMissingCompanyName, c, c.RecurringGroup, "commitment %q has no company name", c.Concept)
		}
		if c.CompanyID != "" && !companies[c.CompanyID] {
			report.add(RuleUnknownCompany, c, c.RecurringGroup, "company %s does not exist", c.CompanyID)
		}
		if c.Status == entity.StatusPaid && in.PaidCommitmentIDs != nil && !in.PaidCommitmentIDs[c.ID] {
			report.add(RulePaidWithoutPayment, c, c.RecurringGroup, "commitment is marked paid but has no payment")
		}

		if !c.IsRecurring || c.RecurringGroup.IsZero() {
			continue
		}

		if _, seen := origins[c.RecurringGroup]; !seen {
			origins[c.RecurringGroup] = 0
			groups = append(groups, c.RecurringGroup)
		}

		if c.ParentCommitmentID == nil {
			origins[c.RecurringGroup]++
			continue
		}

		parent, ok := byID[*c.ParentCommitmentID]
		switch {
		case !ok:
			report.add(RuleBrokenParent, c, c.RecurringGroup, "parent %s no longer exists", *c.ParentCommitmentID)
		case parent.RecurringGroup != c.RecurringGroup:
			report.add(RuleForeignParent, c, c.RecurringGroup, "parent %s belongs to group %q", parent.ID, parent.RecurringGroup)
		}
	}

	for _, group := range groups {
		switch n := origins[group]; {
		case n == 0:
			report.add(RuleMissingOrigin, nil, group, "group has no origin record")
		case n > 1:
			report.add(RuleMultipleOrigins, nil, group, "group has %d origin records", n)
		}
	}
	return report
}
