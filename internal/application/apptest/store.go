// Package apptest implementaciones en memoria de los puertos de persistencia y salida,
// para las pruebas de los casos de uso.
package apptest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

// Store base de datos en memoria. Guarda copias: mutar lo que devuelve no altera el estado.
// Las transacciones toman una instantánea y la restauran si el callback falla.
type Store struct {
	mu          sync.Mutex
	invoices    map[string]entity.Invoice
	companies   map[string]entity.Company
	users       map[string]entity.User
	proposals   map[string]entity.InvestmentProposal
	investments map[string]entity.Investment
	payments    map[string]entity.Payment
	seq         map[string]int // orden de inserción

	// FailPaymentCreate si no es nil se invoca antes de insertar cada pago; su error aborta la inserción.
	FailPaymentCreate func(p *entity.Payment) error
	// FailPaymentUpdate si no es nil se invoca en MarkExecuted/MarkFailed; su error aborta la escritura.
	FailPaymentUpdate func(id string) error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		invoices:    map[string]entity.Invoice{},
		companies:   map[string]entity.Company{},
		users:       map[string]entity.User{},
		proposals:   map[string]entity.InvestmentProposal{},
		investments: map[string]entity.Investment{},
		payments:    map[string]entity.Payment{},
		seq:         map[string]int{},
	}
}

// ErrInjected error usado por los tests para simular fallos de la base.
var ErrInjected = errors.New("fallo inyectado")

// ── Semillas ────────────────────────────────────────────────────────────────

func (s *Store) PutInvoice(i *entity.Invoice) { s.mu.Lock(); s.invoices[i.ID] = *i; s.mu.Unlock() }
func (s *Store) PutCompany(c *entity.Company) { s.mu.Lock(); s.companies[c.ID] = *c; s.mu.Unlock() }
func (s *Store) PutUser(u *entity.User)       { s.mu.Lock(); s.users[u.ID] = *u; s.mu.Unlock() }
func (s *Store) PutInvestment(i *entity.Investment) {
	s.mu.Lock()
	s.investments[i.ID] = *i
	s.mu.Unlock()
}

func (s *Store) PutProposal(p *entity.InvestmentProposal) {
	s.mu.Lock()
	s.proposals[p.ID] = *p
	s.touch(p.ID)
	s.mu.Unlock()
}

func (s *Store) PutPayment(p *entity.Payment) {
	s.mu.Lock()
	s.payments[p.ID] = *p
	s.touch(p.ID)
	s.mu.Unlock()
}

// ── Lecturas directas para asserts ──────────────────────────────────────────

func (s *Store) Invoice(id string) (entity.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.invoices[id]
	return v, ok
}

func (s *Store) Proposal(id string) (entity.InvestmentProposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.proposals[id]
	return v, ok
}

func (s *Store) Investment(id string) (entity.Investment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.investments[id]
	return v, ok
}

func (s *Store) Payment(id string) (entity.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.payments[id]
	return v, ok
}

// CountProposals, CountInvestments y CountPayments cantidad de filas.
func (s *Store) CountProposals() int   { s.mu.Lock(); defer s.mu.Unlock(); return len(s.proposals) }
func (s *Store) CountInvestments() int { s.mu.Lock(); defer s.mu.Unlock(); return len(s.investments) }
func (s *Store) CountPayments() int    { s.mu.Lock(); defer s.mu.Unlock(); return len(s.payments) }

func (s *Store) touch(id string) {
	if _, ok := s.seq[id]; !ok {
		s.seq[id] = len(s.seq) + 1
	}
}

// ── Repositorios ────────────────────────────────────────────────────────────

func (s *Store) Invoices() *InvoiceRepo       { return &InvoiceRepo{s} }
func (s *Store) Companies() *CompanyRepo      { return &CompanyRepo{s} }
func (s *Store) Users() *UserRepo             { return &UserRepo{s} }
func (s *Store) Proposals() *ProposalRepo     { return &ProposalRepo{s} }
func (s *Store) Investments() *InvestmentRepo { return &InvestmentRepo{s} }
func (s *Store) Payments() *PaymentRepo       { return &PaymentRepo{s} }

// ── Transacciones ───────────────────────────────────────────────────────────

type snapshot struct {
	invoices    map[string]entity.Invoice
	proposals   map[string]entity.InvestmentProposal
	investments map[string]entity.Investment
	payments    map[string]entity.Payment
	seq         map[string]int
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		invoices:    cloneMap(s.invoices),
		proposals:   cloneMap(s.proposals),
		investments: cloneMap(s.investments),
		payments:    cloneMap(s.payments),
		seq:         cloneMap(s.seq),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = snap.invoices
	s.proposals = snap.proposals
	s.investments = snap.investments
	s.payments = snap.payments
	s.seq = snap.seq
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RunProposals ejecuta fn con rollback si devuelve error.
func (s *Store) RunProposals(ctx context.Context, fn func(proposalRepo repository.ProposalRepository) error) error {
	snap := s.snapshot()
	if err := fn(s.Proposals()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunFunding ejecuta fn con rollback si devuelve error.
func (s *Store) RunFunding(ctx context.Context, fn func(
	investmentRepo repository.InvestmentRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	snap := s.snapshot()
	if err := fn(s.Investments(), s.Invoices(), s.Payments()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ── Invoice ─────────────────────────────────────────────────────────────────

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas en memoria.
type InvoiceRepo struct{ s *Store }

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *InvoiceRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, v := range r.s.invoices {
		if v.CompanyID == companyID {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (r *InvoiceRepo) UpdateStatus(_ context.Context, id string, from, to entity.InvoiceStatus, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.invoices[id]
	if !ok || v.Status != from {
		return false, nil
	}
	v.Status = to
	v.UpdatedAt = at
	r.s.invoices[id] = v
	return true, nil
}

// ── Company / User ──────────────────────────────────────────────────────────

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ s *Store }

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.users {
		if v.Email == email {
			return &v, nil
		}
	}
	return nil, nil
}

// ── Proposal ────────────────────────────────────────────────────────────────

var _ repository.ProposalRepository = (*ProposalRepo)(nil)

// ProposalRepo propuestas en memoria.
type ProposalRepo struct{ s *Store }

func (r *ProposalRepo) Create(_ context.Context, p *entity.InvestmentProposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.proposals[p.ID]; ok {
		return errors.New("propuesta duplicada")
	}
	r.s.proposals[p.ID] = *p
	r.s.touch(p.ID)
	return nil
}

func (r *ProposalRepo) GetByID(_ context.Context, id string) (*entity.InvestmentProposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.proposals[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *ProposalRepo) List(_ context.Context, f repository.ProposalFilter) ([]*entity.InvestmentProposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InvestmentProposal
	for _, v := range r.s.proposals {
		if f.InvestorID != "" && v.InvestorID != f.InvestorID {
			continue
		}
		if f.InvoiceID != "" && v.InvoiceID != f.InvoiceID {
			continue
		}
		if f.CompanyID != "" && r.s.invoices[v.InvoiceID].CompanyID != f.CompanyID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, v.Status) {
			continue
		}
		v := v
		out = append(out, &v)
	}
	r.sortBySeq(out)
	return page(out, f.Limit, f.Offset), nil
}

func (r *ProposalRepo) UpdateTransition(_ context.Context, p *entity.InvestmentProposal, expected []entity.ProposalStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.proposals[p.ID]
	if !ok || !containsStatus(expected, cur.Status) {
		return false, nil
	}
	r.s.proposals[p.ID] = *p
	return true, nil
}

func (r *ProposalRepo) Chain(_ context.Context, id string) ([]*entity.InvestmentProposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.proposals[id]
	if !ok {
		return nil, nil
	}
	for cur.ParentProposalID != nil {
		parent, ok := r.s.proposals[*cur.ParentProposalID]
		if !ok {
			break
		}
		cur = parent
	}
	chain := []*entity.InvestmentProposal{}
	queue := []entity.InvestmentProposal{cur}
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		h := head
		chain = append(chain, &h)
		var children []*entity.InvestmentProposal
		for _, v := range r.s.proposals {
			if v.ParentProposalID != nil && *v.ParentProposalID == head.ID {
				v := v
				children = append(children, &v)
			}
		}
		r.sortBySeq(children)
		for _, c := range children {
			queue = append(queue, *c)
		}
	}
	return chain, nil
}

func (r *ProposalRepo) ListExpirable(_ context.Context, now time.Time) ([]*entity.InvestmentProposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InvestmentProposal
	for _, v := range r.s.proposals {
		if v.CanBeEdited() && v.IsExpiredAt(now) {
			v := v
			out = append(out, &v)
		}
	}
	r.sortBySeq(out)
	return out, nil
}

func (r *ProposalRepo) sortBySeq(list []*entity.InvestmentProposal) {
	sort.SliceStable(list, func(i, j int) bool { return r.s.seq[list[i].ID] < r.s.seq[list[j].ID] })
}

func containsStatus(list []entity.ProposalStatus, st entity.ProposalStatus) bool {
	for _, v := range list {
		if v == st {
			return true
		}
	}
	return false
}

// ── Investment ──────────────────────────────────────────────────────────────

var _ repository.InvestmentRepository = (*InvestmentRepo)(nil)

// InvestmentRepo inversiones en memoria.
type InvestmentRepo struct{ s *Store }

func (r *InvestmentRepo) Create(_ context.Context, inv *entity.Investment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.investments[inv.ID] = *inv
	return nil
}

func (r *InvestmentRepo) GetByID(_ context.Context, id string) (*entity.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.investments[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *InvestmentRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*entity.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Investment
	for _, v := range r.s.investments {
		if v.UserID == userID {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvestmentDate.Before(out[j].InvestmentDate) })
	return page(out, limit, offset), nil
}

func (r *InvestmentRepo) UpdateStatus(_ context.Context, inv *entity.Investment, from entity.InvestmentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.investments[inv.ID]
	if !ok || cur.Status != from {
		return false, nil
	}
	r.s.investments[inv.ID] = *inv
	return true, nil
}

// ── Payment ─────────────────────────────────────────────────────────────────

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo pagos en memoria.
type PaymentRepo struct{ s *Store }

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	if r.s.FailPaymentCreate != nil {
		if err := r.s.FailPaymentCreate(p); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments[p.ID] = *p
	r.s.touch(p.ID)
	return nil
}

func (r *PaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *PaymentRepo) ListByInvestment(_ context.Context, investmentID string) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Payment
	for _, v := range r.s.payments {
		if v.InvestmentID == investmentID {
			v := v
			out = append(out, &v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return r.s.seq[out[i].ID] < r.s.seq[out[j].ID] })
	return out, nil
}

func (r *PaymentRepo) ListDue(_ context.Context, now time.Time) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Payment
	for _, v := range r.s.payments {
		if v.IsDue(now) {
			v := v
			out = append(out, &v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return r.s.seq[out[i].ID] < r.s.seq[out[j].ID]
	})
	return out, nil
}

func (r *PaymentRepo) Claim(_ context.Context, id string, now time.Time, lease time.Duration) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.payments[id]
	if !ok || !v.Claim(now, lease) {
		return false, nil
	}
	r.s.payments[id] = v
	return true, nil
}

func (r *PaymentRepo) MarkExecuted(_ context.Context, id, reference string, at time.Time) (bool, error) {
	if err := r.failUpdate(id); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.payments[id]
	if !ok || !v.MarkExecuted(reference, at) {
		return false, nil
	}
	r.s.payments[id] = v
	return true, nil
}

func (r *PaymentRepo) MarkFailed(_ context.Context, id, reason string, at time.Time) (bool, error) {
	if err := r.failUpdate(id); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.payments[id]
	if !ok || !v.MarkFailed(reason, at) {
		return false, nil
	}
	r.s.payments[id] = v
	return true, nil
}

func (r *PaymentRepo) failUpdate(id string) error {
	if r.s.FailPaymentUpdate == nil {
		return nil
	}
	return r.s.FailPaymentUpdate(id)
}

func page[T any](list []T, limit, offset int) []T {
	if offset > len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
