package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProposalRepository = (*ProposalRepo)(nil)

// ProposalRepo implementación de ProposalRepository (usable con pool o tx).
type ProposalRepo struct {
	q Querier
}

// NewProposalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProposalRepository(q Querier) *ProposalRepo {
	return &ProposalRepo{q: q}
}

const proposalColumns = `
	id, investor_id, invoice_id, parent_proposal_id, operation_type, status,
	advance_percentage, factoring_commission, payment_terms, confirming_commission, early_payment_discount,
	message, response_message, approval_notes, rejection_reason, responded_by,
	sent_at, approved_at, rejected_at, responded_at, expires_at, created_at, updated_at`

// Create persiste una propuesta nueva.
func (r *ProposalRepo) Create(ctx context.Context, p *entity.InvestmentProposal) error {
	adv, fcomm, terms, ccomm, disc := termColumns(p)
	query := `
		INSERT INTO investment_proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.InvestorID, p.InvoiceID, p.ParentProposalID, string(p.OperationType), string(p.Status),
		adv, fcomm, terms, ccomm, disc,
		nullIfEmpty(p.Message), nullIfEmpty(p.ResponseMessage), nullIfEmpty(p.ApprovalNotes),
		nullIfEmpty(p.RejectionReason), nullIfEmpty(p.RespondedBy),
		p.SentAt, p.ApprovedAt, p.RejectedAt, p.RespondedAt, p.ExpiresAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("proposal %s: %w", p.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// GetByID obtiene una propuesta por ID.
func (r *ProposalRepo) GetByID(ctx context.Context, id string) (*entity.InvestmentProposal, error) {
	p, err := scanProposal(r.q.QueryRow(ctx, `SELECT `+proposalColumns+` FROM investment_proposals WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	return p, nil
}

// List aplica los filtros presentes; más recientes primero.
func (r *ProposalRepo) List(ctx context.Context, f repository.ProposalFilter) ([]*entity.InvestmentProposal, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.InvestorID != "" {
		where = append(where, "investor_id = "+arg(f.InvestorID))
	}
	if f.InvoiceID != "" {
		where = append(where, "invoice_id = "+arg(f.InvoiceID))
	}
	if f.CompanyID != "" {
		where = append(where, "invoice_id IN (SELECT id FROM invoices WHERE company_id = "+arg(f.CompanyID)+")")
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status = ANY("+arg(statusStrings(f.Statuses))+")")
	}

	query := `SELECT ` + proposalColumns + ` FROM investment_proposals`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)
	}
	return r.query(ctx, query, args...)
}

// UpdateTransition escribe el resultado de una transición si el estado actual está en expected.
func (r *ProposalRepo) UpdateTransition(ctx context.Context, p *entity.InvestmentProposal, expected []entity.ProposalStatus) (bool, error) {
	query := `
		UPDATE investment_proposals
		SET status           = $2,
		    approval_notes   = $3,
		    rejection_reason = $4,
		    responded_by     = $5,
		    sent_at          = $6,
		    approved_at      = $7,
		    rejected_at      = $8,
		    responded_at     = $9,
		    updated_at       = $10
		WHERE id = $1 AND status = ANY($11)`
	tag, err := r.q.Exec(ctx, query,
		p.ID, string(p.Status),
		nullIfEmpty(p.ApprovalNotes), nullIfEmpty(p.RejectionReason), nullIfEmpty(p.RespondedBy),
		p.SentAt, p.ApprovedAt, p.RejectedAt, p.RespondedAt, p.UpdatedAt,
		statusStrings(expected),
	)
	if err != nil {
		return false, fmt.Errorf("update proposal: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Chain sube hasta la propuesta raíz y devuelve toda su descendencia, por nivel.
func (r *ProposalRepo) Chain(ctx context.Context, id string) ([]*entity.InvestmentProposal, error) {
	query := `
		WITH RECURSIVE up AS (
			SELECT id, parent_proposal_id FROM investment_proposals WHERE id = $1
			UNION ALL
			SELECT p.id, p.parent_proposal_id
			FROM investment_proposals p JOIN up ON p.id = up.parent_proposal_id
		),
		down AS (
			SELECT p.id, 0 AS depth
			FROM investment_proposals p
			WHERE p.id = (SELECT id FROM up WHERE parent_proposal_id IS NULL)
			UNION ALL
			SELECT c.id, down.depth + 1
			FROM investment_proposals c JOIN down ON c.parent_proposal_id = down.id
		)
		SELECT ` + prefixed("ip", proposalColumns) + `
		FROM down JOIN investment_proposals ip ON ip.id = down.id
		ORDER BY down.depth, ip.created_at`
	return r.query(ctx, query, id)
}

// ListExpirable propuestas que esperan respuesta con el plazo vencido.
func (r *ProposalRepo) ListExpirable(ctx context.Context, now time.Time) ([]*entity.InvestmentProposal, error) {
	query := `SELECT ` + proposalColumns + `
		FROM investment_proposals
		WHERE status = ANY($1) AND expires_at IS NOT NULL AND expires_at <= $2
		ORDER BY expires_at`
	return r.query(ctx, query, statusStrings(entity.EditableStatuses), now)
}

func (r *ProposalRepo) query(ctx context.Context, query string, args ...any) ([]*entity.InvestmentProposal, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var list []*entity.InvestmentProposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// termColumns aplana los grupos de condiciones a sus columnas (nil si el grupo no aplica).
func termColumns(p *entity.InvestmentProposal) (adv, fcomm *decimal.Decimal, terms *string, ccomm, disc *decimal.Decimal) {
	if f := p.Factoring; f != nil {
		adv, fcomm = f.AdvancePercentage, f.FactoringCommission
	}
	if c := p.Confirming; c != nil {
		terms, ccomm, disc = c.PaymentTerms, c.ConfirmingCommission, c.EarlyPaymentDiscount
	}
	return
}

func scanProposal(row rowScanner) (*entity.InvestmentProposal, error) {
	var (
		p                                             entity.InvestmentProposal
		opType, status                                string
		adv, fcomm, ccomm, disc                       *decimal.Decimal
		terms                                         *string
		message, response, notes, reason, respondedBy *string
	)
	if err := row.Scan(
		&p.ID, &p.InvestorID, &p.InvoiceID, &p.ParentProposalID, &opType, &status,
		&adv, &fcomm, &terms, &ccomm, &disc,
		&message, &response, &notes, &reason, &respondedBy,
		&p.SentAt, &p.ApprovedAt, &p.RejectedAt, &p.RespondedAt, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if p.OperationType, err = entity.ParseOperationType(opType); err != nil {
		return nil, err
	}
	if p.Status, err = entity.ParseProposalStatus(status); err != nil {
		return nil, err
	}
	switch p.OperationType {
	case entity.OperationFactoring:
		p.Factoring = &entity.FactoringTerms{AdvancePercentage: adv, FactoringCommission: fcomm}
	case entity.OperationConfirming:
		p.Confirming = &entity.ConfirmingOffer{PaymentTerms: terms, ConfirmingCommission: ccomm, EarlyPaymentDiscount: disc}
	}
	p.Message = derefStr(message)
	p.ResponseMessage = derefStr(response)
	p.ApprovalNotes = derefStr(notes)
	p.RejectionReason = derefStr(reason)
	p.RespondedBy = derefStr(respondedBy)
	return &p, nil
}

// prefixed antepone el alias de tabla a cada columna de una lista separada por comas.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}
