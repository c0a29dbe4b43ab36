package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

type OrderItemOutput struct {
	MedicineID int64           `json:"medicineId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int64           `json:"quantity"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
}

type OrderOutput struct {
	ID              int64                 `json:"id"`
	OrderNumber     string                `json:"orderNumber"`
	UserID          int64                 `json:"userId"`
	Status          model.OrderStatus     `json:"status"`
	StatusLabel     string                `json:"statusLabel"`
	StatusCategory  model.StatusCategory  `json:"statusCategory"`
	StatusBadge     string                `json:"statusBadge"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	Tax             decimal.Decimal       `json:"tax"`
	ShippingFee     decimal.Decimal       `json:"shippingFee"`
	Total           decimal.Decimal       `json:"total"`
	PaymentMethod   string                `json:"paymentMethod,omitempty"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	Prescription    *model.Prescription   `json:"prescription,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Items           []OrderItemOutput     `json:"items"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			MedicineID: it.MedicineID,
			Name:       it.MedicineNameSnapshot,
			UnitPrice:  it.UnitPriceSnapshot,
			Quantity:   it.Quantity,
			LineTotal:  it.LineTotal(),
		})
	}

	out := OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status,
		StatusLabel:     o.Status.Label(),
		StatusCategory:  o.Status.Category(),
		StatusBadge:     o.Status.Badge(),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingFee:     o.ShippingFee,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShipTo,
		Notes:           o.StatusNote,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           outItems,
	}
	if o.HasPrescription() {
		rx := o.Prescription
		out.Prescription = &rx
	}
	return out
}
