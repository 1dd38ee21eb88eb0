// Package pdf implementa la representación gráfica de las facturas de envío
// (valor declarado y flete) con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Operador + guía  │  N° Factura + Tipo + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: remitente facturable + contacto                   │
//	│  DESTINATARIO: consignatario + país                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: cajas (flete) o ítems declarados (valor declarado)  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: tarifa / recargos / TOTAL                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/acexpress/courier-api/internal/application/billing"
	"github.com/acexpress/courier-api/internal/domain/entity"
	"github.com/acexpress/courier-api/internal/domain/freight"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 178, Green: 34, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const operatorName = "ACE Express Courier"

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.ShipmentInvoice,
	shipment *entity.Shipment,
	customer *entity.Customer,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura de envío "+invoice.InvoiceNumber, true).
		WithAuthor(operatorName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, shipment))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(customer))
	m.AddRows(consigneeRow(shipment))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if invoice.InvoiceType == entity.InvoiceTypeDeclaredValue {
		m.AddRows(itemsHeaderRow())
		for _, r := range itemRows(shipment.Items) {
			m.AddRows(r)
		}
	} else {
		m.AddRows(boxesHeaderRow())
		for _, r := range boxRows(shipment.Boxes) {
			m.AddRows(r)
		}
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(chargesRow(shipment))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(invoice))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: operador + guía (izq) y número, tipo y fecha de la factura (der).
func headerRow(invoice *entity.ShipmentInvoice, shipment *entity.Shipment) core.Row {
	title := "FACTURA DE FLETE"
	if invoice.InvoiceType == entity.InvoiceTypeDeclaredValue {
		title = "FACTURA DE VALOR DECLARADO"
	}
	guia := "Guía: " + shipment.RefNumber
	if shipment.AirwayBillNo != "" {
		guia += "   |   AWB: " + shipment.AirwayBillNo
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(operatorName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(guia, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+invoice.IssuedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: remitente facturable.
func customerRow(customer *entity.Customer) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(customer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("NIT/CC: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(customer.TaxID, "—"),
				nonEmpty(customer.Email, "—"),
				nonEmpty(customer.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// consigneeRow: destinatario del envío.
func consigneeRow(shipment *entity.Shipment) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DESTINATARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   %s   |   %s",
				shipment.ConsigneeName,
				nonEmpty(shipment.ConsigneeAddress, "—"),
				nonEmpty(shipment.ConsigneeCountry, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func boxesHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Caja", 1, align.Center),
		h("Dimensiones (cm)", 4, align.Left),
		h("Peso real", 2, align.Right),
		h("Peso volumétrico", 3, align.Right),
		h("Cobrable", 2, align.Right),
	)
}

// boxRows: una fila por caja con su volumétrico derivado.
func boxRows(boxes []entity.ShipmentBox) []core.Row {
	result := make([]core.Row, 0, len(boxes))
	for i, b := range boxes {
		vol := freight.VolumetricWeight(b.Length, b.Width, b.Height)
		charge := vol
		if b.ActualWeight.GreaterThan(vol) {
			charge = b.ActualWeight
		}
		dims := fmt.Sprintf("%s × %s × %s",
			b.Length.StringFixed(0), b.Width.StringFixed(0), b.Height.StringFixed(0))
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", i+1),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(dims,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(b.ActualWeight.StringFixed(2)+" kg",
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(vol.StringFixed(2)+" kg",
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(charge.StringFixed(2)+" kg",
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// chargesRow: desglose tarifa + recargos del flete.
func chargesRow(shipment *entity.Shipment) core.Row {
	b := shipment.Billing
	label := func(s string) core.Component {
		return text.New(s, props.Text{Size: 8, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 8, Align: align.Right, Right: 1})
	}
	return row.New(24).Add(
		col.New(4),
		col.New(5).Add(
			label(fmt.Sprintf("Flete (%s kg × %s):", b.ChargeableWeight.StringFixed(2), b.RatePerKg.StringFixed(2))),
			label("E-Form:"),
			label("Zona remota:"),
			label("Cargo por cajas:"),
		),
		col.New(3).Add(
			value(b.TotalRate.StringFixed(2)),
			value(b.EFormFee.StringFixed(2)),
			value(b.RemoteAreaFee.StringFixed(2)),
			value(b.BoxCharges.StringFixed(2)),
		),
	)
}

func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Piezas", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Partida (HS)", 2, align.Center),
		h("Valor unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// itemRows: una fila por línea de valor declarado.
func itemRows(items []entity.ProductInvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(it.Pieces.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(it.HSCode, "—"),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(it.UnitValue.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(it.Total().StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalRow: total de la factura.
func totalRow(invoice *entity.ShipmentInvoice) core.Row {
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(invoice.Total.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
