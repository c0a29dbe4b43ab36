package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPricing_Quote(t *testing.T) {
	tests := []struct {
		name     string
		pricing  usecase.Pricing
		subtotal string
		tax      string
		shipping string
		total    string
	}{
		{"tax and shipping", testPricing(), "25", "3.5", "30", "58.5"},
		{"tax rounds half away", testPricing(), "10.05", "1.41", "30", "41.46"},
		{"free shipping at threshold", testPricing(), "500", "70", "0", "570"},
		{"zero threshold never frees", usecase.Pricing{TaxRate: d("0"), ShippingFee: d("15")}, "1000", "0", "15", "1015"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.pricing.Quote(d(tt.subtotal))
			assert.True(t, d(tt.tax).Equal(q.Tax), "tax %s", q.Tax)
			assert.True(t, d(tt.shipping).Equal(q.ShippingFee), "shipping %s", q.ShippingFee)
			assert.True(t, d(tt.total).Equal(q.Total), "total %s", q.Total)
			assert.True(t, q.Total.Equal(q.Subtotal.Add(q.Tax).Add(q.ShippingFee)))
		})
	}
}
