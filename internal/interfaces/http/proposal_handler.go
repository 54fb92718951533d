package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/proposal"
)

// ProposalHandler endpoints del flujo de propuestas de inversión.
type ProposalHandler struct {
	uc *proposal.UseCase
}

// NewProposalHandler construye el handler.
func NewProposalHandler(uc *proposal.UseCase) *ProposalHandler {
	return &ProposalHandler{uc: uc}
}

// Create godoc
// @Summary      Crear propuesta de inversión
// @Description  El inversionista propone condiciones sobre una factura aprobada o pendiente.
//
//	Solo se aceptan los campos del tipo de operación de la factura. Queda en draft.
//
// @Tags         proposals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateProposalRequest  true  "Condiciones"
// @Success      201   {object}  dto.ProposalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/proposals [post]
func (h *ProposalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProposalRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar propuestas
// @Description  El inversionista ve las suyas; la empresa, las de sus facturas; el administrador, todas.
// @Tags         proposals
// @Security     Bearer
// @Produce      json
// @Param        status  query     string  false  "Estados separados por coma"
// @Param        limit   query     int     false  "Máximo 100"
// @Param        offset  query     int     false  "Desplazamiento"
// @Success      200     {object}  dto.ProposalListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/proposals [get]
func (h *ProposalHandler) List(c *fiber.Ctx) error {
	in := listFromQuery(c)
	if err := validate.Struct(in.PageRequest); err != nil {
		return writeError(c, invalidQuery(err))
	}
	out, err := h.uc.List(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListByInvoice godoc
// @Summary      Propuestas de una factura
// @Tags         proposals
// @Security     Bearer
// @Produce      json
// @Param        id      path      string  true   "ID de la factura"
// @Param        status  query     string  false  "Estados separados por coma"
// @Success      200     {object}  dto.ProposalListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/proposals [get]
func (h *ProposalHandler) ListByInvoice(c *fiber.Ctx) error {
	in := listFromQuery(c)
	if err := validate.Struct(in.PageRequest); err != nil {
		return writeError(c, invalidQuery(err))
	}
	out, err := h.uc.ListByInvoice(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de una propuesta
// @Tags         proposals
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la propuesta"
// @Success      200  {object}  dto.ProposalResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/proposals/{id} [get]
func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Cadena de contraofertas
// @Description  Devuelve la negociación completa desde la propuesta original.
// @Tags         proposals
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de cualquier propuesta de la cadena"
// @Success      200  {array}   dto.ProposalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/proposals/{id}/history [get]
func (h *ProposalHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Send godoc
// @Summary      Enviar propuesta
// @Description  draft → sent. Solo el inversionista dueño.
// @Tags         proposals
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la propuesta"
// @Success      200  {object}  dto.ProposalResponse
// @Failure      409  {object}  dto.TransitionErrorResponse
// @Router       /api/proposals/{id}/send [post]
func (h *ProposalHandler) Send(c *fiber.Ctx) error {
	out, err := h.uc.Send(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar propuesta
// @Description  sent/pending → approved. Responde la contraparte de quien propuso los términos.
// @Tags         proposals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true   "ID de la propuesta"
// @Param        body  body      dto.ApproveProposalRequest  false  "Notas"
// @Success      200   {object}  dto.ProposalResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.TransitionErrorResponse
// @Router       /api/proposals/{id}/approve [post]
func (h *ProposalHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveProposalRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Approve(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar propuesta
// @Tags         proposals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true   "ID de la propuesta"
// @Param        body  body      dto.RejectProposalRequest  false  "Motivo"
// @Success      200   {object}  dto.ProposalResponse
// @Failure      409   {object}  dto.TransitionErrorResponse
// @Router       /api/proposals/{id}/reject [post]
func (h *ProposalHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectProposalRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Reject(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CounterOffer godoc
// @Summary      Contraofertar
// @Description  Crea una propuesta hija en pending con los términos enviados; la original queda counter_offered.
// @Tags         proposals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "ID de la propuesta"
// @Param        body  body      dto.CounterOfferRequest  true  "Términos nuevos"
// @Success      201   {object}  dto.CounterOfferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.TransitionErrorResponse
// @Router       /api/proposals/{id}/counter-offer [post]
func (h *ProposalHandler) CounterOffer(c *fiber.Ctx) error {
	var in dto.CounterOfferRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CounterOffer(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
