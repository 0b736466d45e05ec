package services

import (
	"time"

	"github.com/multifood/comanda-api/models"
	"github.com/shopspring/decimal"
)

// Totals is the order-level money breakdown derived from a tab's lines.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ServiceFee  decimal.Decimal `json:"service_fee"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// PriceLine computes the unit price of a customized product line: the
// promotion-discounted base plus the extra price of every selected option.
func PriceLine(product *models.Product, selections []models.SelectedModifier, promo *models.Promotion) decimal.Decimal {
	price := DiscountedPrice(product.Price, promo)
	for _, sel := range selections {
		price = price.Add(sel.Price)
	}
	return price
}

// ComboLinePrice is the combo's flat price. Constituents and modifiers never
// influence it.
func ComboLinePrice(combo *models.Combo) decimal.Decimal {
	return combo.Price
}

// PriceOrder derives the order-level totals from already-priced lines.
// The service fee applies only when enabled and the channel is dine-in or
// beach; the delivery fee applies only to delivery orders. Fees and total
// are rounded to two decimal places.
func PriceOrder(items []models.OrderItem, channel string, settings *models.Settings) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.PriceAtOrder.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	serviceFee := decimal.Zero
	if settings.ServiceFeeEnabled && (channel == models.ChannelDineIn || channel == models.ChannelBeach) {
		serviceFee = subtotal.Mul(settings.ServiceFeePercent).Div(decimal.NewFromInt(100)).Round(2)
	}

	deliveryFee := decimal.Zero
	if channel == models.ChannelDelivery {
		deliveryFee = settings.DeliveryFee.Round(2)
	}

	return Totals{
		Subtotal:    subtotal,
		ServiceFee:  serviceFee,
		DeliveryFee: deliveryFee,
		Total:       subtotal.Add(serviceFee).Add(deliveryFee).Round(2),
	}
}

// SnapshotSelections resolves chosen option ids into SelectedModifier
// snapshots, copying names and prices so later catalog edits cannot change
// the historical line. Unknown option ids are skipped; cardinality is the
// validator's concern.
func SnapshotSelections(product *models.Product, selections map[uint][]uint) []models.SelectedModifier {
	var snapshots []models.SelectedModifier
	for i := range product.ModifierGroups {
		group := &product.ModifierGroups[i]
		for _, optionID := range selections[group.ID] {
			for j := range group.Options {
				opt := &group.Options[j]
				if opt.ID == optionID {
					snapshots = append(snapshots, models.SelectedModifier{
						GroupID:    group.ID,
						GroupName:  group.Name,
						OptionID:   opt.ID,
						OptionName: opt.Name,
						Price:      opt.ExtraPrice,
					})
					break
				}
			}
		}
	}
	return snapshots
}

// QuoteLine validates a customization and prices it in one step, the query
// used by presentation layers to show a price before commitment.
func QuoteLine(product *models.Product, promotions []models.Promotion, selections map[uint][]uint, now time.Time) (decimal.Decimal, []models.SelectedModifier, error) {
	if err := ValidateSelections(product, selections); err != nil {
		return decimal.Zero, nil, err
	}
	promo := ActivePromotionFor(promotions, product, now)
	snapshots := SnapshotSelections(product, selections)
	return PriceLine(product, snapshots, promo), snapshots, nil
}
