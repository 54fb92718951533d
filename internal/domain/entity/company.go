package entity

import "time"

// Company empresa que emite facturas o tiene obligaciones con proveedores.
type Company struct {
	ID        string
	Name      string
	TaxID     string // NIF/NIT de la empresa
	UserID    string // usuario dueño de la empresa; vacío si aún no se vinculó
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
