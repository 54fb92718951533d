// Package parties resuelve los usuarios que intervienen en una operación
// (empresa dueña de la factura, inversionista).
package parties

import (
	"context"
	"fmt"

	"github.com/jhoicas/factoring-api/internal/domain"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
	"github.com/jhoicas/factoring-api/internal/domain/repository"
)

// Resolver recorre factura → empresa → usuario.
type Resolver struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
}

// NewResolver construye el resolver.
func NewResolver(companies repository.CompanyRepository, users repository.UserRepository) *Resolver {
	return &Resolver{companies: companies, users: users}
}

// CompanyOwner devuelve el usuario dueño de la empresa de la factura.
// Empresa inexistente ⇒ domain.ErrNotFound; empresa sin usuario ⇒ domain.ErrCompanyUserMissing.
func (r *Resolver) CompanyOwner(ctx context.Context, invoice *entity.Invoice) (*entity.User, error) {
	company, err := r.companies.GetByID(ctx, invoice.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("obtener empresa %s: %w", invoice.CompanyID, err)
	}
	if company == nil {
		return nil, fmt.Errorf("empresa %s: %w", invoice.CompanyID, domain.ErrNotFound)
	}
	if company.UserID == "" {
		return nil, fmt.Errorf("empresa %s: %w", company.ID, domain.ErrCompanyUserMissing)
	}
	user, err := r.users.GetByID(ctx, company.UserID)
	if err != nil {
		return nil, fmt.Errorf("obtener usuario %s: %w", company.UserID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("empresa %s, usuario %s: %w", company.ID, company.UserID, domain.ErrCompanyUserMissing)
	}
	return user, nil
}

// User devuelve el usuario o domain.ErrUserNotFound.
func (r *Resolver) User(ctx context.Context, id string) (*entity.User, error) {
	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener usuario %s: %w", id, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
