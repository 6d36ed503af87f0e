package service

import (
	"time"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/utils"
)

func toCommitmentResponse(c *entity.Commitment, today time.Time) *contract.CommitmentResponse {
	resp := &contract.CommitmentResponse{
		ID:                     c.ID,
		Concept:                c.Concept,
		CompanyID:              c.CompanyID,
		CompanyName:            c.CompanyName,
		Beneficiary:            c.Beneficiary,
		Amount:                 c.Amount,
		DueDate:                utils.FormatDate(c.DueDate),
		Periodicity:            string(c.Periodicity),
		PeriodicityDescription: c.Periodicity.Description(),
		Status:                 string(c.EffectiveStatus(today)),
		PaymentMethod:          string(c.PaymentMethod),
		Observations:           c.Observations,
		IsRecurring:            c.IsRecurring,
		RecurringGroup:         c.RecurringGroup.String(),
		ParentCommitmentID:     c.ParentCommitmentID,
		InstanceNumber:         c.InstanceNumber,
		TotalInstances:         c.TotalInstances,
		Month:                  c.Month,
		Year:                   c.Year,
		CreatedBy:              c.CreatedBy,
		UpdatedBy:              c.UpdatedBy,
	}
	if c.CreatedAt > 0 {
		resp.CreatedAt = utils.FormatEpoch(c.CreatedAt)
	}
	if c.UpdatedAt > 0 {
		resp.UpdatedAt = utils.FormatEpoch(c.UpdatedAt)
	}
	return resp
}

func toCommitmentResponses(commitments []*entity.Commitment, today time.Time) []*contract.CommitmentResponse {
	resp := make([]*contract.CommitmentResponse, len(commitments))
	for i, c := range commitments {
		resp[i] = toCommitmentResponse(c, today)
	}
	return resp
}

func toGroupSummaryResponse(g *recurring.GroupSummary) *contract.GroupSummaryResponse {
	return &contract.GroupSummaryResponse{
		GroupID:       g.GroupID.String(),
		Concept:       g.Concept,
		Periodicity:   string(g.Periodicity),
		CompanyID:     g.CompanyID,
		CompanyName:   g.CompanyName,
		Beneficiary:   g.Beneficiary,
		Amount:        g.Amount,
		PaymentMethod: string(g.PaymentMethod),
		LastDueDate:   utils.FormatDate(g.LastDueDate),
		Count:         g.Count(),
	}
}

func toCompanyResponse(c *entity.Company) *contract.CompanyResponse {
	return &contract.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		NIT:       c.NIT,
		Active:    c.Active,
		CreatedAt: utils.FormatEpoch(c.CreatedAt),
		UpdatedAt: utils.FormatEpoch(c.UpdatedAt),
	}
}

func toPaymentResponse(p *entity.Payment) *contract.PaymentResponse {
	return &contract.PaymentResponse{
		ID:            p.ID,
		CommitmentID:  p.CommitmentID,
		CompanyID:     p.CompanyID,
		Concept:       p.Concept,
		Amount:        p.Amount,
		PaidAt:        utils.FormatDate(p.PaidAt),
		PaymentMethod: string(p.PaymentMethod),
		Reference:     p.Reference,
		HasReceipt:    p.HasReceipt(),
		ReceiptSize:   p.ReceiptSize,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     utils.FormatEpoch(p.CreatedAt),
	}
}
