package services

import (
	"testing"
	"time"

	"github.com/multifood/comanda-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testProduct() *models.Product {
	return &models.Product{
		ID:       42,
		Name:     "Caipirinha",
		Price:    decimal.NewFromInt(22),
		Category: models.CategoryDrinks,
	}
}

func TestActivePromotionFor_Schedules(t *testing.T) {
	product := testProduct()

	// 2025-03-25 is a Tuesday (weekday 2)
	the25th := time.Date(2025, 3, 25, 12, 0, 0, 0, time.UTC)
	the24th := time.Date(2025, 3, 24, 12, 0, 0, 0, time.UTC)
	the26th := time.Date(2025, 3, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		promo   models.Promotion
		now     time.Time
		matches bool
	}{
		{
			name:    "always matches unconditionally",
			promo:   models.Promotion{ScheduleType: models.ScheduleAlways},
			now:     the24th,
			matches: true,
		},
		{
			name:    "daily matches its weekday",
			promo:   models.Promotion{ScheduleType: models.ScheduleDaily, ScheduleValue: "2"},
			now:     the25th, // Tuesday
			matches: true,
		},
		{
			name:    "daily misses other weekdays",
			promo:   models.Promotion{ScheduleType: models.ScheduleDaily, ScheduleValue: "2"},
			now:     the24th, // Monday
			matches: false,
		},
		{
			name:    "monthly matches the 25th",
			promo:   models.Promotion{ScheduleType: models.ScheduleMonthly, ScheduleValue: "25"},
			now:     the25th,
			matches: true,
		},
		{
			name:    "monthly inactive on the 24th",
			promo:   models.Promotion{ScheduleType: models.ScheduleMonthly, ScheduleValue: "25"},
			now:     the24th,
			matches: false,
		},
		{
			name:    "monthly inactive on the 26th",
			promo:   models.Promotion{ScheduleType: models.ScheduleMonthly, ScheduleValue: "25"},
			now:     the26th,
			matches: false,
		},
		{
			name:    "yearly matches month and day",
			promo:   models.Promotion{ScheduleType: models.ScheduleYearly, ScheduleValue: "03-25"},
			now:     the25th,
			matches: true,
		},
		{
			name:    "yearly misses other dates",
			promo:   models.Promotion{ScheduleType: models.ScheduleYearly, ScheduleValue: "03-25"},
			now:     the26th,
			matches: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := tt.promo
			promo.IsActive = true
			promo.TargetType = models.PromotionTargetProduct
			promo.TargetID = "42"

			result := ActivePromotionFor([]models.Promotion{promo}, product, tt.now)
			if tt.matches {
				assert.NotNil(t, result)
			} else {
				assert.Nil(t, result)
			}
		})
	}
}

func TestActivePromotionFor_TargetMatching(t *testing.T) {
	product := testProduct()
	now := time.Date(2025, 3, 25, 12, 0, 0, 0, time.UTC)

	inactive := models.Promotion{
		IsActive: false, TargetType: models.PromotionTargetProduct, TargetID: "42",
		ScheduleType: models.ScheduleAlways,
	}
	otherProduct := models.Promotion{
		IsActive: true, TargetType: models.PromotionTargetProduct, TargetID: "99",
		ScheduleType: models.ScheduleAlways,
	}
	otherCategory := models.Promotion{
		IsActive: true, TargetType: models.PromotionTargetCategory, TargetID: models.CategoryPizzas,
		ScheduleType: models.ScheduleAlways,
	}

	assert.Nil(t, ActivePromotionFor([]models.Promotion{inactive, otherProduct, otherCategory}, product, now))

	category := models.Promotion{
		ID: 7, IsActive: true, TargetType: models.PromotionTargetCategory,
		TargetID: models.CategoryDrinks, ScheduleType: models.ScheduleAlways,
	}
	result := ActivePromotionFor([]models.Promotion{inactive, otherProduct, category}, product, now)
	assert.NotNil(t, result)
	assert.Equal(t, uint(7), result.ID)
}

func TestActivePromotionFor_ProductBeatsCategory(t *testing.T) {
	product := testProduct()
	now := time.Date(2025, 3, 25, 12, 0, 0, 0, time.UTC)

	category := models.Promotion{
		ID: 1, IsActive: true, TargetType: models.PromotionTargetCategory,
		TargetID: models.CategoryDrinks, ScheduleType: models.ScheduleAlways,
	}
	productPromo := models.Promotion{
		ID: 2, IsActive: true, TargetType: models.PromotionTargetProduct,
		TargetID: "42", ScheduleType: models.ScheduleAlways,
	}

	// the product-specific promotion wins even when listed after the
	// category-wide one
	result := ActivePromotionFor([]models.Promotion{category, productPromo}, product, now)
	assert.NotNil(t, result)
	assert.Equal(t, uint(2), result.ID)
}

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    decimal.Decimal
		promo    *models.Promotion
		expected decimal.Decimal
	}{
		{
			name:     "nil promotion leaves price unchanged",
			price:    decimal.NewFromInt(20),
			promo:    nil,
			expected: decimal.NewFromInt(20),
		},
		{
			name:  "percentage discount",
			price: decimal.NewFromInt(20),
			promo: &models.Promotion{
				PromoType: models.PromoPercentage, DiscountValue: decimal.NewFromInt(25),
			},
			expected: decimal.NewFromInt(15),
		},
		{
			name:  "percentage over 100 clamps at zero",
			price: decimal.NewFromInt(20),
			promo: &models.Promotion{
				PromoType: models.PromoPercentage, DiscountValue: decimal.NewFromInt(150),
			},
			expected: decimal.Zero,
		},
		{
			name:  "fixed discount",
			price: decimal.NewFromInt(20),
			promo: &models.Promotion{
				PromoType: models.PromoFixed, DiscountValue: decimal.NewFromInt(5),
			},
			expected: decimal.NewFromInt(15),
		},
		{
			name:  "fixed discount floors at zero",
			price: decimal.NewFromInt(20),
			promo: &models.Promotion{
				PromoType: models.PromoFixed, DiscountValue: decimal.NewFromInt(30),
			},
			expected: decimal.Zero,
		},
		{
			name:  "badge_only never changes the price",
			price: decimal.NewFromInt(20),
			promo: &models.Promotion{
				PromoType: models.PromoBadgeOnly, DiscountValue: decimal.NewFromInt(50),
			},
			expected: decimal.NewFromInt(20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DiscountedPrice(tt.price, tt.promo)
			assert.True(t, tt.expected.Equal(result), "expected %s, got %s", tt.expected, result)
		})
	}
}

func TestValidatePromotion(t *testing.T) {
	tests := []struct {
		name    string
		promo   models.Promotion
		wantErr bool
	}{
		{
			name: "valid product promotion",
			promo: models.Promotion{
				TargetType: models.PromotionTargetProduct, TargetID: "7",
				ScheduleType: models.ScheduleDaily, ScheduleValue: "0",
				PromoType: models.PromoPercentage, DiscountValue: decimal.NewFromInt(10),
			},
		},
		{
			name: "valid category promotion",
			promo: models.Promotion{
				TargetType: models.PromotionTargetCategory, TargetID: models.CategoryAcai,
				ScheduleType: models.ScheduleYearly, ScheduleValue: "12-25",
				PromoType: models.PromoBadgeOnly,
			},
		},
		{
			name: "bad category tag",
			promo: models.Promotion{
				TargetType: models.PromotionTargetCategory, TargetID: "sushi",
				ScheduleType: models.ScheduleAlways, PromoType: models.PromoBadgeOnly,
			},
			wantErr: true,
		},
		{
			name: "weekday out of range",
			promo: models.Promotion{
				TargetType: models.PromotionTargetProduct, TargetID: "7",
				ScheduleType: models.ScheduleDaily, ScheduleValue: "7",
				PromoType: models.PromoBadgeOnly,
			},
			wantErr: true,
		},
		{
			name: "day of month out of range",
			promo: models.Promotion{
				TargetType: models.PromotionTargetProduct, TargetID: "7",
				ScheduleType: models.ScheduleMonthly, ScheduleValue: "32",
				PromoType: models.PromoBadgeOnly,
			},
			wantErr: true,
		},
		{
			name: "malformed yearly value",
			promo: models.Promotion{
				TargetType: models.PromotionTargetProduct, TargetID: "7",
				ScheduleType: models.ScheduleYearly, ScheduleValue: "25/12",
				PromoType: models.PromoBadgeOnly,
			},
			wantErr: true,
		},
		{
			name: "negative discount",
			promo: models.Promotion{
				TargetType: models.PromotionTargetProduct, TargetID: "7",
				ScheduleType: models.ScheduleAlways,
				PromoType:    models.PromoFixed, DiscountValue: decimal.NewFromInt(-5),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePromotion(&tt.promo)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
