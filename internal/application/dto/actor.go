package dto

import "github.com/jhoicas/factoring-api/internal/domain/entity"

// Actor identidad del usuario autenticado (claims del JWT).
type Actor struct {
	UserID    string
	CompanyID string // solo rol company
	Role      entity.Role
}

// IsAdmin informa si el actor es administrador.
func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// OwnsCompany informa si el actor es usuario de la empresa indicada.
func (a Actor) OwnsCompany(companyID string) bool {
	return a.Role == entity.RoleCompany && a.CompanyID != "" && a.CompanyID == companyID
}
