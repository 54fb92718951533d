// Package pdf genera el comprobante de un pago ejecutado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: COMPROBANTE DE PAGO │  Referencia + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PAGADOR / BENEFICIARIO                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DETALLE: Factura | Operación | Monto original | Ajuste      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL PAGADO                                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con la referencia + leyenda                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/domain/entity"
)

var _ payments.VoucherGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa payments.VoucherGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Los montos se formatean en es-CO.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.MustParse("es-CO"))}
}

// PaymentVoucher genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) PaymentVoucher(p *entity.Payment, invoice *entity.Invoice) ([]byte, error) {
	if p == nil || invoice == nil {
		return nil, fmt.Errorf("pdf: pago o factura nulos")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de pago "+p.ID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.detailRow(p, invoice))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(p))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(p)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(p *entity.Payment) core.Row {
	fecha := "—"
	if p.ExecutedDate != nil {
		fecha = p.ExecutedDate.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("COMPROBANTE DE PAGO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(typeLabel(p.Type), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REFERENCIA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(p.TransferReference, "—"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Ejecutado: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// partiesRow: el proveedor externo no tiene usuario; se muestra con nombre y NIT de la metadata.
func partiesRow(p *entity.Payment) core.Row {
	payee := "Usuario " + derefStr(p.PayeeID)
	if p.PayeeID == nil {
		payee = fmt.Sprintf("%s (NIT %s)",
			nonEmpty(p.Metadata.SupplierName, entity.SupplierPlaceholder),
			nonEmpty(p.Metadata.SupplierTaxID, "—"))
	}
	return row.New(16).Add(
		col.New(6).Add(
			text.New("PAGADOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New("Usuario "+p.PayerID, props.Text{Size: 9, Top: 7}),
		),
		col.New(6).Add(
			text.New("BENEFICIARIO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(payee, props.Text{Size: 9, Top: 7}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Factura", 3, align.Left),
		h("Operación", 2, align.Center),
		h("Monto original", 3, align.Right),
		h("Ajuste", 4, align.Right),
	)
}

func (g *MarotoPDFGenerator) detailRow(p *entity.Payment, invoice *entity.Invoice) core.Row {
	adjust := "—"
	switch {
	case p.Metadata.DiscountApplied != nil:
		adjust = fmt.Sprintf("Descuento %s%%: -%s", percent(p.DiscountPercentage), g.money(*p.Metadata.DiscountApplied))
	case p.Metadata.CommissionApplied != nil:
		adjust = fmt.Sprintf("Comisión %s%%: +%s", percent(p.CommissionPercentage), g.money(*p.Metadata.CommissionApplied))
	}
	return row.New(7).Add(
		col.New(3).Add(text.New(nonEmpty(invoice.Number, invoice.ID), props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(string(invoice.OperationType), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(3).Add(text.New(g.money(p.OriginalAmount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(4).Add(text.New(adjust, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func (g *MarotoPDFGenerator) totalRow(p *entity.Payment) core.Row {
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL PAGADO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(g.money(p.Amount), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func footerRows(p *entity.Payment) []core.Row {
	rows := []core.Row{}
	if p.TransferReference != "" {
		rows = append(rows, row.New(40).Add(
			col.New(4).Add(code.NewQr(p.TransferReference, props.Rect{Percent: 90, Center: true})),
			col.New(8).Add(
				text.New("Pago "+p.ID, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
				text.New("Inversión "+p.InvestmentID, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
			),
		))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("Este comprobante certifica la transferencia registrada por la plataforma. "+
			"Conserve este documento como soporte de la operación.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func typeLabel(t entity.PaymentType) string {
	switch t {
	case entity.PaymentTypeToSupplier:
		return "Pago anticipado al proveedor"
	case entity.PaymentTypeChargeToCompany:
		return "Cobro a la empresa al vencimiento"
	default:
		return string(t)
	}
}

// money formatea con separador de miles y dos decimales según el locale del printer.
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return "$" + g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

func percent(d *decimal.Decimal) string {
	if d == nil {
		return "0"
	}
	return d.String()
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
