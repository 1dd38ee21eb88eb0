package freight

import (
	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/domain/entity"
)

// SyncRates sincroniza los campos de tarifa de info según su RateBasis y el
// peso cobrable, y recalcula GrandTotal. Servicio de dominio puro: nunca
// retorna error, trabaja sobre una copia.
//
//   - per_kg y peso > 0: total_rate = rate_per_kg × peso
//   - total  y peso > 0: rate_per_kg = total_rate / peso (tarifa plana)
//   - peso = 0: no hay sincronización; el campo capturado se conserva tal cual
//     (cotización plana sin peso todavía).
func SyncRates(info entity.BillingInfo, chargeableWeight decimal.Decimal) entity.BillingInfo {
	info.ChargeableWeight = chargeableWeight
	if chargeableWeight.GreaterThan(decimal.Zero) {
		switch info.RateBasis {
		case entity.RateBasisPerKg:
			info.TotalRate = info.RatePerKg.Mul(chargeableWeight)
		case entity.RateBasisTotal:
			info.RatePerKg = info.TotalRate.Div(chargeableWeight)
		}
	}
	info.GrandTotal = GrandTotal(info)
	return info
}

// GrandTotal suma tarifa total más recargos: E-Form, zona remota y cajas.
func GrandTotal(info entity.BillingInfo) decimal.Decimal {
	return info.TotalRate.
		Add(info.EFormFee).
		Add(info.RemoteAreaFee).
		Add(info.BoxCharges)
}

// AmountDue calcula el monto que queda a cargo de la cuenta corriente del
// cliente. Con CASH es el remanente no cubierto (acotado en cero); con
// CREDIT es el total. El monto cero significa que no se postea débito.
func AmountDue(info entity.BillingInfo) decimal.Decimal {
	if info.PaymentMethod == entity.BillingMethodCash {
		due := info.GrandTotal.Sub(info.CashReceived)
		if due.LessThan(decimal.Zero) {
			return decimal.Zero
		}
		return due
	}
	return info.GrandTotal
}
