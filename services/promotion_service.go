package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/multifood/comanda-api/models"
	"github.com/shopspring/decimal"
)

// ActivePromotionFor returns the single promotion applying to the product at
// the given instant, or nil when none matches. Product-targeted promotions
// take precedence over category-wide ones; within the same class the first
// catalog match wins.
func ActivePromotionFor(promotions []models.Promotion, product *models.Product, now time.Time) *models.Promotion {
	productTarget := strconv.FormatUint(uint64(product.ID), 10)

	for i := range promotions {
		promo := &promotions[i]
		if promo.IsActive && promo.TargetType == models.PromotionTargetProduct &&
			promo.TargetID == productTarget && scheduleMatches(promo, now) {
			return promo
		}
	}
	for i := range promotions {
		promo := &promotions[i]
		if promo.IsActive && promo.TargetType == models.PromotionTargetCategory &&
			promo.TargetID == product.Category && scheduleMatches(promo, now) {
			return promo
		}
	}
	return nil
}

// scheduleMatches reports whether the promotion's recurring schedule covers
// the given instant.
func scheduleMatches(promo *models.Promotion, now time.Time) bool {
	switch promo.ScheduleType {
	case models.ScheduleAlways:
		return true
	case models.ScheduleDaily:
		// weekday index 0-6, 0=Sunday
		return promo.ScheduleValue == strconv.Itoa(int(now.Weekday()))
	case models.ScheduleMonthly:
		return promo.ScheduleValue == strconv.Itoa(now.Day())
	case models.ScheduleYearly:
		return promo.ScheduleValue == now.Format("01-02")
	default:
		return false
	}
}

// DiscountedPrice applies a promotion to a base price. Percentage discounts
// are clamped at zero, fixed discounts floor at zero, and badge_only
// promotions leave the price unchanged. A nil promotion is a no-op.
func DiscountedPrice(price decimal.Decimal, promo *models.Promotion) decimal.Decimal {
	if promo == nil {
		return price
	}
	switch promo.PromoType {
	case models.PromoPercentage:
		factor := decimal.NewFromInt(1).Sub(promo.DiscountValue.Div(decimal.NewFromInt(100)))
		discounted := price.Mul(factor)
		if discounted.IsNegative() {
			return decimal.Zero
		}
		return discounted.Round(2)
	case models.PromoFixed:
		discounted := price.Sub(promo.DiscountValue)
		if discounted.IsNegative() {
			return decimal.Zero
		}
		return discounted
	default:
		// badge_only or unknown kinds never change the price
		return price
	}
}

// ValidatePromotion checks a promotion's target and schedule configuration
// before it is persisted.
func ValidatePromotion(promo *models.Promotion) error {
	switch promo.TargetType {
	case models.PromotionTargetProduct:
		if _, err := strconv.ParseUint(promo.TargetID, 10, 64); err != nil {
			return fmt.Errorf("target_id must be a product id for product-targeted promotions")
		}
	case models.PromotionTargetCategory:
		if !models.IsValidCategory(promo.TargetID) {
			return fmt.Errorf("target_id %q is not a valid category", promo.TargetID)
		}
	default:
		return fmt.Errorf("target_type must be %q or %q", models.PromotionTargetProduct, models.PromotionTargetCategory)
	}

	switch promo.ScheduleType {
	case models.ScheduleAlways:
	case models.ScheduleDaily:
		day, err := strconv.Atoi(promo.ScheduleValue)
		if err != nil || day < 0 || day > 6 {
			return fmt.Errorf("daily schedule_value must be a weekday index 0-6")
		}
	case models.ScheduleMonthly:
		day, err := strconv.Atoi(promo.ScheduleValue)
		if err != nil || day < 1 || day > 31 {
			return fmt.Errorf("monthly schedule_value must be a day of month 1-31")
		}
	case models.ScheduleYearly:
		if _, err := time.Parse("01-02", promo.ScheduleValue); err != nil {
			return fmt.Errorf("yearly schedule_value must be in MM-DD format")
		}
	default:
		return fmt.Errorf("schedule_type must be one of always, daily, monthly, yearly")
	}

	switch promo.PromoType {
	case models.PromoBadgeOnly:
	case models.PromoPercentage, models.PromoFixed:
		if promo.DiscountValue.IsNegative() {
			return fmt.Errorf("discount_value must not be negative")
		}
	default:
		return fmt.Errorf("promo_type must be one of percentage, fixed, badge_only")
	}
	return nil
}
