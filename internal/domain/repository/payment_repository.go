package repository

import "github.com/acexpress/courier-api/internal/domain/entity"

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	GetByID(id string) (*entity.Payment, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Payment, error)
}
