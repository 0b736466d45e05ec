package services

import (
	"testing"
	"time"

	"github.com/multifood/comanda-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	assert.True(t, want.Equal(actual), "expected %s, got %s", want, actual)
}

func feeSettings() *models.Settings {
	return &models.Settings{
		ServiceFeePercent:     decimal.NewFromInt(10),
		ServiceFeeEnabled:     true,
		DeliveryFee:           decimal.NewFromInt(7),
		EnabledChannels:       []string{models.ChannelDineIn, models.ChannelBeach, models.ChannelDelivery, models.ChannelTakeaway},
		EnabledPaymentMethods: []string{models.PaymentCash, models.PaymentPix, models.PaymentCard},
	}
}

func TestPriceLine(t *testing.T) {
	product := &models.Product{
		ID:       1,
		Name:     "Fries",
		Price:    decimal.NewFromInt(35),
		Category: models.CategoryAppetizers,
	}
	selections := []models.SelectedModifier{
		{GroupName: "Extras", OptionName: "Cheddar", Price: decimal.NewFromInt(8)},
		{GroupName: "Extras", OptionName: "Bacon", Price: decimal.NewFromInt(6)},
	}

	assertDecimalEqual(t, "49", PriceLine(product, selections, nil))

	promo := &models.Promotion{PromoType: models.PromoPercentage, DiscountValue: decimal.NewFromInt(20)}
	// 35 * 0.8 = 28, plus 14 in extras
	assertDecimalEqual(t, "42", PriceLine(product, selections, promo))
}

func TestComboLinePrice(t *testing.T) {
	combo := &models.Combo{Name: "Family Combo", Price: decimal.RequireFromString("89.90")}
	assertDecimalEqual(t, "89.90", ComboLinePrice(combo))
}

func TestPriceOrder_DineInServiceFee(t *testing.T) {
	items := []models.OrderItem{
		{PriceAtOrder: decimal.NewFromInt(50), Quantity: 1},
	}

	totals := PriceOrder(items, models.ChannelDineIn, feeSettings())
	assertDecimalEqual(t, "50.00", totals.Subtotal)
	assertDecimalEqual(t, "5.00", totals.ServiceFee)
	assertDecimalEqual(t, "0", totals.DeliveryFee)
	assertDecimalEqual(t, "55.00", totals.Total)
}

func TestPriceOrder_Delivery(t *testing.T) {
	items := []models.OrderItem{
		{PriceAtOrder: decimal.NewFromInt(50), Quantity: 1},
	}

	// service fee never applies to delivery even when enabled
	totals := PriceOrder(items, models.ChannelDelivery, feeSettings())
	assertDecimalEqual(t, "50.00", totals.Subtotal)
	assertDecimalEqual(t, "0", totals.ServiceFee)
	assertDecimalEqual(t, "7.00", totals.DeliveryFee)
	assertDecimalEqual(t, "57.00", totals.Total)
}

func TestPriceOrder_FeeRules(t *testing.T) {
	items := []models.OrderItem{{PriceAtOrder: decimal.NewFromInt(100), Quantity: 2}}

	tests := []struct {
		name       string
		channel    string
		feeEnabled bool
		serviceFee string
		total      string
	}{
		{"beach gets service fee", models.ChannelBeach, true, "20.00", "220.00"},
		{"takeaway never gets service fee", models.ChannelTakeaway, true, "0", "200.00"},
		{"dine-in with fee disabled", models.ChannelDineIn, false, "0", "200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := feeSettings()
			settings.ServiceFeeEnabled = tt.feeEnabled
			totals := PriceOrder(items, tt.channel, settings)
			assertDecimalEqual(t, tt.serviceFee, totals.ServiceFee)
			assertDecimalEqual(t, tt.total, totals.Total)
			assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.ServiceFee).Add(totals.DeliveryFee)),
				"total must equal subtotal + fees")
		})
	}
}

func TestPriceOrder_NoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style sums must stay exact in decimal arithmetic
	items := []models.OrderItem{
		{PriceAtOrder: decimal.RequireFromString("0.10"), Quantity: 1},
		{PriceAtOrder: decimal.RequireFromString("0.20"), Quantity: 1},
	}
	totals := PriceOrder(items, models.ChannelTakeaway, feeSettings())
	assertDecimalEqual(t, "0.30", totals.Subtotal)
	assertDecimalEqual(t, "0.30", totals.Total)
}

func TestSnapshotSelections(t *testing.T) {
	product := pizzaProduct()
	selections := map[uint][]uint{
		10: {102, 103},
		11: {111},
	}

	snapshots := SnapshotSelections(product, selections)
	assert.Len(t, snapshots, 3)
	assert.Equal(t, "Flavors", snapshots[0].GroupName)
	assert.Equal(t, "Portuguesa", snapshots[0].OptionName)
	assertDecimalEqual(t, "5", snapshots[0].Price)
	assert.Equal(t, "Catupiry", snapshots[2].OptionName)
}

func TestQuoteLine(t *testing.T) {
	product := pizzaProduct()
	now := time.Date(2025, 3, 25, 12, 0, 0, 0, time.UTC)
	promotions := []models.Promotion{
		{
			IsActive: true, TargetType: models.PromotionTargetCategory,
			TargetID: models.CategoryPizzas, ScheduleType: models.ScheduleMonthly,
			ScheduleValue: "25", PromoType: models.PromoFixed, DiscountValue: decimal.NewFromInt(10),
		},
	}

	// base 65 - 10 promo + 5 (Portuguesa) + 12 (Catupiry crust)
	price, snapshots, err := QuoteLine(product, promotions, map[uint][]uint{10: {102}, 11: {111}}, now)
	assert.NoError(t, err)
	assertDecimalEqual(t, "72", price)
	assert.Len(t, snapshots, 2)

	// same quote a day earlier: promotion inactive
	price, _, err = QuoteLine(product, promotions, map[uint][]uint{10: {102}, 11: {111}}, now.AddDate(0, 0, -1))
	assert.NoError(t, err)
	assertDecimalEqual(t, "82", price)

	// unmet minimum is rejected before pricing
	_, _, err = QuoteLine(product, promotions, map[uint][]uint{}, now)
	var selErr *SelectionError
	assert.ErrorAs(t, err, &selErr)
	assert.Equal(t, ErrBelowMinimum, selErr.Code)
}
