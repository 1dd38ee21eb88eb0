// Package customs genera el manifiesto XML de mercancía declarada que se
// entrega a la aerolínea / agente de aduana por cada envío confirmado.
package customs

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/acexpress/courier-api/internal/domain"
	"github.com/acexpress/courier-api/internal/domain/entity"
)

const (
	manifestVersion = "1.0"
	operatorCode    = "ACEX"
)

// ManifestBuilder construye el XML del manifiesto aduanero.
type ManifestBuilder struct{}

// NewManifestBuilder crea el servicio.
func NewManifestBuilder() *ManifestBuilder {
	return &ManifestBuilder{}
}

// Build genera el manifiesto del envío. Solo envíos confirmados tienen
// manifiesto: el valor declarado de un borrador todavía puede cambiar.
func (b *ManifestBuilder) Build(shipment *entity.Shipment, customer *entity.Customer) ([]byte, error) {
	if shipment == nil || customer == nil {
		return nil, fmt.Errorf("customs: faltan envío o cliente")
	}
	if shipment.Status != entity.ShipmentStatusConfirmed {
		return nil, domain.ErrConflict
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("CargoManifest")
	root.CreateAttr("version", manifestVersion)
	root.CreateAttr("operator", operatorCode)
	root.CreateAttr("generatedAt", time.Now().UTC().Format(time.RFC3339))

	sh := root.CreateElement("Shipment")
	sh.CreateElement("RefNumber").SetText(shipment.RefNumber)
	if shipment.AirwayBillNo != "" {
		sh.CreateElement("AirwayBill").SetText(shipment.AirwayBillNo)
	}
	sh.CreateElement("Pieces").SetText(fmt.Sprintf("%d", len(shipment.Boxes)))
	sh.CreateElement("ChargeableWeight").SetText(shipment.Billing.ChargeableWeight.StringFixed(2))
	sh.CreateElement("GrossWeight").SetText(grossWeight(shipment.Boxes).StringFixed(2))

	shipper := root.CreateElement("Shipper")
	shipper.CreateElement("Name").SetText(customer.Name)
	if customer.TaxID != "" {
		shipper.CreateElement("TaxID").SetText(customer.TaxID)
	}
	addOptional(shipper, "City", customer.City)
	addOptional(shipper, "Country", customer.Country)

	consignee := root.CreateElement("Consignee")
	consignee.CreateElement("Name").SetText(shipment.ConsigneeName)
	addOptional(consignee, "Address", shipment.ConsigneeAddress)
	addOptional(consignee, "Country", shipment.ConsigneeCountry)

	goods := root.CreateElement("DeclaredGoods")
	declaredTotal := decimal.Zero
	for _, it := range shipment.Items {
		item := goods.CreateElement("Item")
		if it.HSCode != "" {
			item.CreateAttr("hsCode", it.HSCode)
		}
		item.CreateElement("Description").SetText(it.Description)
		item.CreateElement("Pieces").SetText(it.Pieces.StringFixed(0))
		item.CreateElement("UnitValue").SetText(it.UnitValue.StringFixed(2))
		item.CreateElement("TotalValue").SetText(it.Total().StringFixed(2))
		declaredTotal = declaredTotal.Add(it.Total())
	}
	goods.CreateAttr("totalDeclaredValue", declaredTotal.StringFixed(2))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("customs: serializar manifiesto: %w", err)
	}
	return out, nil
}

// grossWeight peso bruto real del envío (el manifiesto no usa volumétrico).
func grossWeight(boxes []entity.ShipmentBox) decimal.Decimal {
	total := decimal.Zero
	for _, b := range boxes {
		total = total.Add(b.ActualWeight)
	}
	return total
}

func addOptional(parent *etree.Element, tag, value string) {
	if value != "" {
		parent.CreateElement(tag).SetText(value)
	}
}
