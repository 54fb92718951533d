package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/factoring-api/internal/application/payments"
)

// PaymentHandler consulta de pagos y descarga de comprobantes.
type PaymentHandler struct {
	uc *payments.QueryUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payments.QueryUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Get godoc
// @Summary      Detalle de un pago
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del pago"
// @Success      200  {object}  dto.PaymentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payments/{id} [get]
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Voucher godoc
// @Summary      Comprobante PDF de un pago ejecutado
// @Tags         payments
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID del pago"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/payments/{id}/voucher [get]
func (h *PaymentHandler) Voucher(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.Voucher(c.Context(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="comprobante-%s.pdf"`, id))
	return c.Send(pdf)
}
