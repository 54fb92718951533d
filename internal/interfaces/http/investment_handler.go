package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/factoring-api/internal/application/funding"
	"github.com/jhoicas/factoring-api/internal/application/payments"
)

// InvestmentHandler financiación de propuestas y consulta de inversiones.
type InvestmentHandler struct {
	funding  *funding.UseCase
	payments *payments.QueryUseCase
}

// NewInvestmentHandler construye el handler.
func NewInvestmentHandler(f *funding.UseCase, p *payments.QueryUseCase) *InvestmentHandler {
	return &InvestmentHandler{funding: f, payments: p}
}

// Fund godoc
// @Summary      Financiar propuesta aprobada
// @Description  Crea la inversión, marca la factura como financiada y, en confirming con anticipo,
//
//	deriva el pago al proveedor y el cobro a la empresa. Todo o nada.
//
// @Tags         investments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la propuesta"
// @Success      201  {object}  dto.InvestmentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.TransitionErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/proposals/{id}/fund [post]
func (h *InvestmentHandler) Fund(c *fiber.Ctx) error {
	out, err := h.funding.FundProposal(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Mis inversiones
// @Tags         investments
// @Security     Bearer
// @Produce      json
// @Param        limit   query     int  false  "Máximo 100"
// @Param        offset  query     int  false  "Desplazamiento"
// @Success      200     {array}   dto.InvestmentResponse
// @Router       /api/investments [get]
func (h *InvestmentHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	if err := validate.Struct(page); err != nil {
		return writeError(c, invalidQuery(err))
	}
	out, err := h.funding.ListMine(c.Context(), GetActor(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de una inversión
// @Tags         investments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la inversión"
// @Success      200  {object}  dto.InvestmentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/investments/{id} [get]
func (h *InvestmentHandler) Get(c *fiber.Ctx) error {
	out, err := h.funding.Get(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Payments godoc
// @Summary      Pagos derivados de una inversión
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la inversión"
// @Success      200  {array}   dto.PaymentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/investments/{id}/payments [get]
func (h *InvestmentHandler) Payments(c *fiber.Ctx) error {
	out, err := h.payments.ListByInvestment(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
