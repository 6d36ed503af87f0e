package policy

import (
	"testing"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string {
	return &s
}

func member(id string, group entity.SeriesID, parent *string) *entity.Commitment {
	return &entity.Commitment{
		ID:                 id,
		Concept:            "Arriendo",
		CompanyID:          "co-1",
		CompanyName:        "DR Group",
		Status:             entity.StatusPending,
		IsRecurring:        true,
		RecurringGroup:     group,
		ParentCommitmentID: parent,
	}
}

func TestCanPersist(t *testing.T) {
	p := NewIntegrityPolicy()

	assert.Nil(t, p.CanPersist(&entity.Commitment{CompanyName: "DR Group"}))
	assert.Equal(t, apierror.OrphanRiskError, p.CanPersist(&entity.Commitment{CompanyName: "   "}))
	assert.Equal(t, apierror.OrphanRiskError, p.CanPersist(nil))
}

func TestAudit_HealthyLedger(t *testing.T) {
	report := NewIntegrityPolicy().Audit(&AuditInput{
		Commitments: []*entity.Commitment{
			member("a", "g1", nil),
			member("b", "g1", ptr("a")),
			{ID: "c", CompanyID: "co-1", CompanyName: "DR Group", Status: entity.StatusPaid},
		},
		Companies:         []*entity.Company{{ID: "co-1"}},
		PaidCommitmentIDs: map[string]bool{"c": true},
	})

	assert.True(t, report.Healthy())
	assert.Equal(t, 3, report.Checked)
}

func TestAudit_ReportsEveryRule(t *testing.T) {
	orphan := member("o", "", nil)
	orphan.IsRecurring = false
	orphan.CompanyName = ""

	stranger := member("s", "", nil)
	stranger.IsRecurring = false
	stranger.CompanyID = "co-gone"

	paid := member("p", "", nil)
	paid.IsRecurring = false
	paid.Status = entity.StatusPaid

	report := NewIntegrityPolicy().Audit(&AuditInput{
		Commitments: []*entity.Commitment{
			orphan,
			stranger,
			paid,
			// g2 has no origin and one child points outside it
			member("x1", "g2", ptr("y1")),
			// g3 has two origins
			member("y1", "g3", nil),
			member("y2", "g3", nil),
			// g4 child points at a deleted record
			member("z1", "g4", nil),
			member("z2", "g4", ptr("deleted")),
		},
		Companies:         []*entity.Company{{ID: "co-1"}},
		PaidCommitmentIDs: map[string]bool{},
	})

	require.False(t, report.Healthy())
	counts := report.Counts()
	assert.Equal(t, 1, counts[RuleMissingCompanyName])
	assert.Equal(t, 1, counts[RuleUnknownCompany])
	assert.Equal(t, 1, counts[RulePaidWithoutPayment])
	assert.Equal(t, 1, counts[RuleMissingOrigin])
	assert.Equal(t, 1, counts[RuleMultipleOrigins])
	assert.Equal(t, 1, counts[RuleForeignParent])
	assert.Equal(t, 1, counts[RuleBrokenParent])

	for _, issue := range report.Issues {
		if issue.Rule == RuleBrokenParent {
			assert.Equal(t, "z2", issue.CommitmentID)
			assert.Equal(t, entity.SeriesID("g4"), issue.GroupID)
		}
	}
}

func TestAudit_SkipsPaymentRuleWithoutPaymentData(t *testing.T) {
	paid := member("p", "", nil)
	paid.IsRecurring = false
	paid.Status = entity.StatusPaid

	report := NewIntegrityPolicy().Audit(&AuditInput{
		Commitments: []*entity.Commitment{paid},
		Companies:   []*entity.Company{{ID: "co-1"}},
	})
	assert.True(t, report.Healthy())
}
