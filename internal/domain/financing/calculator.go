// Package financing agrupa la aritmética de factoring y confirming (servicio de dominio puro).
// Todos los porcentajes se expresan en base 100 (5 = 5 %).
package financing

import "github.com/shopspring/decimal"

// CurrencyScale número de decimales con que se persisten los montos.
const CurrencyScale = 2

var hundred = decimal.NewFromInt(100)

// Round redondea un monto a la escala de moneda.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyScale)
}

// Percent devuelve pct % de amount, sin redondear.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// FactoringReturn rendimiento esperado de un factoring:
// (Monto × Anticipo/100) × Comisión/100.
func FactoringReturn(invoiceAmount, advancePct, commissionPct decimal.Decimal) decimal.Decimal {
	return Round(Percent(Percent(invoiceAmount, advancePct), commissionPct))
}

// ConfirmingReturn rendimiento esperado de un confirming: Monto × Comisión/100.
func ConfirmingReturn(invoiceAmount, commissionPct decimal.Decimal) decimal.Decimal {
	return Round(Percent(invoiceAmount, commissionPct))
}

// AdvancedAmount parte de la factura que anticipa el inversionista en un factoring.
func AdvancedAmount(invoiceAmount, advancePct decimal.Decimal) decimal.Decimal {
	return Round(Percent(invoiceAmount, advancePct))
}

// DiscountedAmount monto con descuento por pronto pago: Monto × (1 − Descuento/100).
func DiscountedAmount(invoiceAmount, discountPct decimal.Decimal) decimal.Decimal {
	return Round(invoiceAmount.Sub(Percent(invoiceAmount, discountPct)))
}

// ChargedAmount monto con comisión de confirming: Monto × (1 + Comisión/100).
func ChargedAmount(invoiceAmount, commissionPct decimal.Decimal) decimal.Decimal {
	return Round(invoiceAmount.Add(Percent(invoiceAmount, commissionPct)))
}

// ReturnRate rentabilidad porcentual de expected sobre invested (4 decimales).
// Devuelve cero si invested no es positivo.
func ReturnRate(expected, invested decimal.Decimal) decimal.Decimal {
	if !invested.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return expected.Mul(hundred).Div(invested).Round(4)
}

// OrZero desreferencia un porcentaje opcional; nil equivale a cero.
func OrZero(pct *decimal.Decimal) decimal.Decimal {
	if pct == nil {
		return decimal.Zero
	}
	return *pct
}
