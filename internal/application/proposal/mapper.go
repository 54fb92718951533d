package proposal

import (
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

func toProposalResponse(p *entity.InvestmentProposal, invoice *entity.Invoice) *dto.ProposalResponse {
	out := &dto.ProposalResponse{
		ID:               p.ID,
		InvestorID:       p.InvestorID,
		InvoiceID:        p.InvoiceID,
		ParentProposalID: p.ParentProposalID,
		OperationType:    string(p.OperationType),
		Status:           string(p.Status),
		StatusLabel:      entity.StatusDisplayName(p.Status),
		Message:          p.Message,
		ResponseMessage:  p.ResponseMessage,
		ApprovalNotes:    p.ApprovalNotes,
		RejectionReason:  p.RejectionReason,
		RespondedBy:      p.RespondedBy,
		SentAt:           p.SentAt,
		ApprovedAt:       p.ApprovedAt,
		RejectedAt:       p.RejectedAt,
		RespondedAt:      p.RespondedAt,
		ExpiresAt:        p.ExpiresAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if f := p.Factoring; f != nil {
		out.AdvancePercentage = f.AdvancePercentage
		out.FactoringCommission = f.FactoringCommission
	}
	if c := p.Confirming; c != nil {
		out.PaymentTerms = c.PaymentTerms
		out.ConfirmingCommission = c.ConfirmingCommission
		out.EarlyPaymentDiscount = c.EarlyPaymentDiscount
	}
	if invoice != nil {
		ret := p.ExpectedReturn(invoice.Amount)
		out.ExpectedReturn = &ret
	}
	return out
}
