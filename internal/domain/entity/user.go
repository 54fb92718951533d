package entity

import (
	"fmt"
	"time"
)

// Role rol del usuario dentro de la plataforma.
type Role string

const (
	RoleInvestor Role = "investor" // financia facturas
	RoleCompany  Role = "company"  // dueña de las facturas
	RoleAdmin    Role = "admin"
)

// ParseRole valida el rol recibido en el token o persistido.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleInvestor, RoleCompany, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("rol desconocido: %q", s)
}

// User representa un usuario del sistema. Los inversionistas no pertenecen a una Company.
type User struct {
	ID        string
	CompanyID string // vacío para inversionistas
	Email     string
	Name      string
	Role      Role
	Status    string // active, inactive, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}
