package usecase

import "github.com/shopspring/decimal"

// Pricing は税と送料の計算ルール。
type Pricing struct {
	TaxRate     decimal.Decimal
	ShippingFee decimal.Decimal
	//この金額以上は送料無料（0なら常に送料あり）
	FreeShippingOver decimal.Decimal
}

type Quote struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// 小計から税・送料・合計を出す。total = subtotal + tax + shipping。
func (p Pricing) Quote(subtotal decimal.Decimal) Quote {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(p.TaxRate).Round(2)

	shipping := p.ShippingFee.Round(2)
	if p.FreeShippingOver.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingOver) {
		shipping = decimal.Zero
	}

	return Quote{
		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: shipping,
		Total:       subtotal.Add(tax).Add(shipping),
	}
}
