package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/funding"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/application/proposal"
)

// AdminHandler operaciones de back office (rol admin).
type AdminHandler struct {
	proposals  *proposal.UseCase
	funding    *funding.UseCase
	derivation *payments.DerivationUseCase
	sweep      *payments.SweepUseCase
	now        func() time.Time
}

// NewAdminHandler construye el handler.
func NewAdminHandler(p *proposal.UseCase, f *funding.UseCase, d *payments.DerivationUseCase, s *payments.SweepUseCase, now func() time.Time) *AdminHandler {
	if now == nil {
		now = time.Now
	}
	return &AdminHandler{proposals: p, funding: f, derivation: d, sweep: s, now: now}
}

// DerivePayments godoc
// @Summary      Derivar pagos de una inversión de confirming
// @Description  Crea el pago al proveedor (hoy) y el cobro a la empresa (al vencimiento) en una transacción.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la inversión"
// @Success      201  {array}   dto.PaymentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/admin/investments/{id}/derive-payments [post]
func (h *AdminHandler) DerivePayments(c *fiber.Ctx) error {
	out, err := h.derivation.Derive(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CompleteInvestment godoc
// @Summary      Cerrar inversión pagada
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                         true  "ID de la inversión"
// @Param        body  body      dto.CompleteInvestmentRequest  true  "Rendimiento real"
// @Success      200   {object}  dto.InvestmentResponse
// @Failure      409   {object}  dto.TransitionErrorResponse
// @Router       /api/admin/investments/{id}/complete [post]
func (h *AdminHandler) CompleteInvestment(c *fiber.Ctx) error {
	var in dto.CompleteInvestmentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.funding.Complete(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DefaultInvestment godoc
// @Summary      Marcar inversión en mora
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la inversión"
// @Success      200  {object}  dto.InvestmentResponse
// @Failure      409  {object}  dto.TransitionErrorResponse
// @Router       /api/admin/investments/{id}/default [post]
func (h *AdminHandler) DefaultInvestment(c *fiber.Ctx) error {
	out, err := h.funding.Default(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SweepPayments godoc
// @Summary      Ejecutar pagos vencidos
// @Description  Transfiere cada pago pendiente con fecha alcanzada. Un fallo no detiene el barrido.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SweepResponse
// @Failure      423  {object}  dto.ErrorResponse
// @Router       /api/admin/payments/sweep [post]
func (h *AdminHandler) SweepPayments(c *fiber.Ctx) error {
	out, err := h.sweep.ExecuteDue(c.Context(), h.now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExpireDueProposals godoc
// @Summary      Expirar propuestas vencidas
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExpireDueResponse
// @Router       /api/admin/proposals/expire [post]
func (h *AdminHandler) ExpireDueProposals(c *fiber.Ctx) error {
	ids, err := h.proposals.ExpireDue(c.Context(), h.now())
	if err != nil {
		return writeError(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(dto.ExpireDueResponse{Expired: ids})
}

// ExpireProposal godoc
// @Summary      Expirar una propuesta
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la propuesta"
// @Success      200  {object}  dto.ProposalResponse
// @Failure      409  {object}  dto.TransitionErrorResponse
// @Router       /api/admin/proposals/{id}/expire [post]
func (h *AdminHandler) ExpireProposal(c *fiber.Ctx) error {
	out, err := h.proposals.Expire(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
