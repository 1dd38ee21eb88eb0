package freight

import (
	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/domain/entity"
)

// Divisor volumétrico estándar de carga aérea: cm³ por kg facturable.
var volumetricDivisor = decimal.NewFromInt(5000)

// VolumetricWeight calcula el peso volumétrico de una caja:
// ceil(largo × ancho × alto / 5000), dimensiones en cm.
// Cualquier dimensión cero, negativa o faltante produce 0 para esa caja;
// decidir si eso es un error de captura corresponde al caller.
func VolumetricWeight(length, width, height decimal.Decimal) decimal.Decimal {
	if length.LessThanOrEqual(decimal.Zero) ||
		width.LessThanOrEqual(decimal.Zero) ||
		height.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return length.Mul(width).Mul(height).Div(volumetricDivisor).Ceil()
}

// ChargeableWeight calcula el peso cobrable del envío:
// max(Σ peso real, Σ peso volumétrico). Convención aérea: se cobra el mayor
// de los dos, nunca la suma ni el promedio.
func ChargeableWeight(boxes []entity.ShipmentBox) decimal.Decimal {
	actual := decimal.Zero
	volumetric := decimal.Zero
	for _, box := range boxes {
		actual = actual.Add(box.ActualWeight)
		volumetric = volumetric.Add(VolumetricWeight(box.Length, box.Width, box.Height))
	}
	if volumetric.GreaterThan(actual) {
		return volumetric
	}
	return actual
}
