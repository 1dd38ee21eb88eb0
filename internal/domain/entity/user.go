package entity

import "time"

// Roles de empleados del operador.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador" // mostrador: envíos y pagos
	RoleContable = "contable" // libro mayor y reportes
)

// User un empleado con acceso a la aplicación.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string // active | disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
