package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/domain"
)

var validate = validator.New()

// bindJSON parsea el cuerpo (si lo hay) y aplica las etiquetas validate del DTO.
func bindJSON(c *fiber.Ctx, out any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return fmt.Errorf("%w: cuerpo de la petición inválido", domain.ErrInvalidInput)
		}
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(err))
	}
	return nil
}

// describe resume los errores de validación como "campo:regla".
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+":"+fe.Tag())
	}
	return strings.Join(parts, ", ")
}

// listFromQuery lee limit/offset y status (lista separada por comas o repetida).
func listFromQuery(c *fiber.Ctx) dto.ProposalListRequest {
	in := dto.ProposalListRequest{
		PageRequest: dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")},
	}
	for _, raw := range c.Context().QueryArgs().PeekMulti("status") {
		for _, s := range strings.Split(string(raw), ",") {
			if s = strings.TrimSpace(s); s != "" {
				in.Status = append(in.Status, s)
			}
		}
	}
	return in
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
}

func invalidQuery(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(err))
}
