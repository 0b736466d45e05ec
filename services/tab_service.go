package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/multifood/comanda-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// State error codes for tab operations.
const (
	ErrTabNotFound             = "TAB_NOT_FOUND"
	ErrTabNotOpen              = "TAB_NOT_OPEN"
	ErrTabHasPayments          = "TAB_HAS_PAYMENTS"
	ErrInvalidPaymentAmount    = "INVALID_PAYMENT_AMOUNT"
	ErrPaymentMethodDisabled   = "PAYMENT_METHOD_DISABLED"
	ErrChannelDisabled         = "CHANNEL_DISABLED"
	ErrInvalidIdentifier       = "INVALID_IDENTIFIER"
	ErrInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrItemNotFound            = "ITEM_NOT_FOUND"
	ErrInvalidLine             = "INVALID_LINE"
)

// settlementEpsilon absorbs rounding differences when reconciling payments
// against a total: a tab settles once amountPaid >= total - 0.01.
var settlementEpsilon = decimal.New(1, -2)

// StateError reports a rejected tab operation. The operation has no partial
// effect; the caller may retry with corrected input.
type StateError struct {
	Code    string
	TabID   uint
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("tab %d: %s", e.TabID, e.Message)
}

// OpenTabInput carries everything needed to open a new tab.
type OpenTabInput struct {
	Channel      string
	CustomerName string
	WaiterName   *string
	TentNumber   *string
	Delivery     *models.DeliveryInfo
	PeopleCount  int
	Observation  string
}

// LineInput describes one requested line: a product with its modifier
// selections, or a combo. Exactly one of ProductID/ComboID must be set.
type LineInput struct {
	ProductID  *uint
	ComboID    *uint
	Quantity   int
	Note       string
	Selections map[uint][]uint // group id -> chosen option ids
}

// TabService owns the tab lifecycle and the payment ledger. Mutations on the
// same tab are serialized through a per-tab mutex and applied as a whole
// snapshot inside a transaction, so concurrent waiter/cashier calls cannot
// lose an item addition or a payment.
type TabService struct {
	db    *gorm.DB
	locks sync.Map // tab id -> *sync.Mutex
}

// NewTabService creates a tab service on top of the given database.
func NewTabService(db *gorm.DB) *TabService {
	return &TabService{db: db}
}

func (s *TabService) lockTab(tabID uint) func() {
	v, _ := s.locks.LoadOrStore(tabID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// OpenTab creates a tab in the open state with zero totals and an empty
// payment ledger. The identifier variant must match the channel: a tent or
// table token for dine-in/beach, structured delivery info for delivery.
func (s *TabService) OpenTab(companyID uint, input OpenTabInput) (*models.Tab, error) {
	settings, err := s.loadSettings(companyID)
	if err != nil {
		return nil, err
	}
	if !settings.ChannelEnabled(input.Channel) {
		return nil, &StateError{Code: ErrChannelDisabled, Message: fmt.Sprintf("channel %q is not enabled", input.Channel)}
	}
	if err := validateIdentifier(input); err != nil {
		return nil, err
	}

	peopleCount := input.PeopleCount
	if peopleCount < 1 {
		peopleCount = 1
	}

	tab := models.Tab{
		CompanyID:    companyID,
		Channel:      input.Channel,
		CustomerName: input.CustomerName,
		WaiterName:   input.WaiterName,
		PeopleCount:  peopleCount,
		Observation:  input.Observation,
		Status:       models.TabOpen,
		Subtotal:     decimal.Zero,
		ServiceFee:   decimal.Zero,
		DeliveryFee:  decimal.Zero,
		Total:        decimal.Zero,
		AmountPaid:   decimal.Zero,
	}
	switch input.Channel {
	case models.ChannelDineIn, models.ChannelBeach:
		tab.TentNumber = input.TentNumber
	case models.ChannelDelivery:
		tab.Delivery = input.Delivery
	}

	if err := s.db.Create(&tab).Error; err != nil {
		return nil, fmt.Errorf("failed to create tab: %w", err)
	}
	return &tab, nil
}

func validateIdentifier(input OpenTabInput) error {
	switch input.Channel {
	case models.ChannelDineIn, models.ChannelBeach:
		if input.TentNumber == nil || *input.TentNumber == "" {
			return &StateError{Code: ErrInvalidIdentifier, Message: "dine-in and beach tabs require a table/tent number"}
		}
		if input.Delivery != nil {
			return &StateError{Code: ErrInvalidIdentifier, Message: "delivery info is only valid for delivery tabs"}
		}
	case models.ChannelDelivery:
		if input.Delivery == nil || input.Delivery.Address == "" || input.Delivery.Phone == "" {
			return &StateError{Code: ErrInvalidIdentifier, Message: "delivery tabs require an address and phone"}
		}
		if input.TentNumber != nil {
			return &StateError{Code: ErrInvalidIdentifier, Message: "table/tent number is only valid for dine-in and beach tabs"}
		}
	case models.ChannelTakeaway:
		if input.TentNumber != nil || input.Delivery != nil {
			return &StateError{Code: ErrInvalidIdentifier, Message: "takeaway tabs carry no identifier"}
		}
	default:
		return &StateError{Code: ErrChannelDisabled, Message: fmt.Sprintf("unknown channel %q", input.Channel)}
	}
	return nil
}

// AddItems validates, prices and appends line items to an open tab, then
// recomputes the tab's totals. Promotions are evaluated at the given instant.
// The whole batch is applied atomically; one invalid line rejects the call.
func (s *TabService) AddItems(companyID, tabID uint, lines []LineInput, now time.Time) (*models.Tab, error) {
	if len(lines) == 0 {
		return nil, &StateError{Code: ErrInvalidLine, TabID: tabID, Message: "no lines to add"}
	}
	unlock := s.lockTab(tabID)
	defer unlock()

	settings, err := s.loadSettings(companyID)
	if err != nil {
		return nil, err
	}

	var promotions []models.Promotion
	if err := s.db.Where("company_id = ? AND is_active = ?", companyID, true).
		Order("id").Find(&promotions).Error; err != nil {
		return nil, fmt.Errorf("failed to load promotions: %w", err)
	}

	var updated *models.Tab
	err = s.db.Transaction(func(tx *gorm.DB) error {
		tab, err := loadTab(tx, companyID, tabID)
		if err != nil {
			return err
		}
		if !tab.IsOpen() {
			return &StateError{Code: ErrTabNotOpen, TabID: tabID, Message: "items can only be added to an open tab"}
		}

		for _, line := range lines {
			item, err := s.buildLine(tx, companyID, promotions, line, now)
			if err != nil {
				return err
			}
			item.TabID = tab.ID
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			tab.Items = append(tab.Items, *item)
		}

		totals := PriceOrder(tab.Items, tab.Channel, settings)
		tab.Subtotal = totals.Subtotal
		tab.ServiceFee = totals.ServiceFee
		tab.DeliveryFee = totals.DeliveryFee
		tab.Total = totals.Total

		if err := tx.Model(&models.Tab{}).Where("id = ?", tab.ID).Updates(map[string]interface{}{
			"subtotal":     tab.Subtotal,
			"service_fee":  tab.ServiceFee,
			"delivery_fee": tab.DeliveryFee,
			"total":        tab.Total,
		}).Error; err != nil {
			return fmt.Errorf("failed to update tab totals: %w", err)
		}
		updated = tab
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// buildLine validates and prices one requested line into an OrderItem.
func (s *TabService) buildLine(tx *gorm.DB, companyID uint, promotions []models.Promotion, line LineInput, now time.Time) (*models.OrderItem, error) {
	if line.Quantity < 1 {
		return nil, &StateError{Code: ErrInvalidLine, Message: "quantity must be at least 1"}
	}
	if (line.ProductID == nil) == (line.ComboID == nil) {
		return nil, &StateError{Code: ErrInvalidLine, Message: "a line must reference exactly one product or combo"}
	}

	if line.ComboID != nil {
		var combo models.Combo
		if err := tx.Where("company_id = ?", companyID).First(&combo, *line.ComboID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &StateError{Code: ErrInvalidLine, Message: fmt.Sprintf("combo %d not found", *line.ComboID)}
			}
			return nil, fmt.Errorf("failed to load combo: %w", err)
		}
		return &models.OrderItem{
			ComboID:      line.ComboID,
			Name:         combo.Name,
			Quantity:     line.Quantity,
			Note:         line.Note,
			Status:       models.ItemStatusNew,
			IsCombo:      true,
			PriceAtOrder: ComboLinePrice(&combo),
		}, nil
	}

	var product models.Product
	if err := tx.Preload("ModifierGroups", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, id")
	}).Preload("ModifierGroups.Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, id")
	}).Where("company_id = ?", companyID).First(&product, *line.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &StateError{Code: ErrInvalidLine, Message: fmt.Sprintf("product %d not found", *line.ProductID)}
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	price, snapshots, err := QuoteLine(&product, promotions, line.Selections, now)
	if err != nil {
		return nil, err
	}
	return &models.OrderItem{
		ProductID:    line.ProductID,
		Name:         product.Name,
		Quantity:     line.Quantity,
		Note:         line.Note,
		Status:       models.ItemStatusNew,
		PriceAtOrder: price,
		Modifiers:    snapshots,
	}, nil
}

// AddPayment appends an entry to the tab's payment ledger. The amount must be
// positive and the method enabled for the company. When the accumulated
// amount reaches the total minus the settlement epsilon the tab closes;
// overpayment is accepted and recorded as-is.
func (s *TabService) AddPayment(companyID, tabID uint, amount decimal.Decimal, method string) (*models.Tab, error) {
	unlock := s.lockTab(tabID)
	defer unlock()

	if !amount.IsPositive() {
		return nil, &StateError{Code: ErrInvalidPaymentAmount, TabID: tabID, Message: "payment amount must be greater than zero"}
	}
	settings, err := s.loadSettings(companyID)
	if err != nil {
		return nil, err
	}
	if !settings.PaymentMethodEnabled(method) {
		return nil, &StateError{Code: ErrPaymentMethodDisabled, TabID: tabID, Message: fmt.Sprintf("payment method %q is not enabled", method)}
	}

	var updated *models.Tab
	err = s.db.Transaction(func(tx *gorm.DB) error {
		tab, err := loadTab(tx, companyID, tabID)
		if err != nil {
			return err
		}
		if !tab.IsOpen() {
			return &StateError{Code: ErrTabNotOpen, TabID: tabID, Message: "payments can only be added to an open tab"}
		}

		entry := models.PaymentLog{
			TabID:     tab.ID,
			Reference: uuid.NewString(),
			Amount:    amount,
			Method:    method,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		tab.PaymentLogs = append(tab.PaymentLogs, entry)
		tab.AmountPaid = tab.AmountPaid.Add(amount)

		updates := map[string]interface{}{"amount_paid": tab.AmountPaid}
		if tab.AmountPaid.GreaterThanOrEqual(tab.Total.Sub(settlementEpsilon)) {
			now := time.Now()
			tab.Status = models.TabClosed
			tab.ClosedAt = &now
			updates["status"] = tab.Status
			updates["closed_at"] = tab.ClosedAt
		}
		if err := tx.Model(&models.Tab{}).Where("id = ?", tab.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update tab: %w", err)
		}
		updated = tab
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateItemStatus advances an item's kitchen status by exactly one step
// along the fixed sequence new -> preparing -> ready -> in_transit ->
// completed. The kitchen workflow is independent of billing, so items on
// closed tabs may still advance; cancelled tabs may not.
func (s *TabService) UpdateItemStatus(companyID, tabID, itemID uint, newStatus string) (*models.Tab, error) {
	unlock := s.lockTab(tabID)
	defer unlock()

	var updated *models.Tab
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tab, err := loadTab(tx, companyID, tabID)
		if err != nil {
			return err
		}
		if tab.Status == models.TabCancelled {
			return &StateError{Code: ErrTabNotOpen, TabID: tabID, Message: "items on a cancelled tab cannot change status"}
		}

		var item *models.OrderItem
		for i := range tab.Items {
			if tab.Items[i].ID == itemID {
				item = &tab.Items[i]
				break
			}
		}
		if item == nil {
			return &StateError{Code: ErrItemNotFound, TabID: tabID, Message: fmt.Sprintf("item %d not found on tab", itemID)}
		}

		if nextItemStatus(item.Status) != newStatus {
			return &StateError{
				Code:    ErrInvalidStatusTransition,
				TabID:   tabID,
				Message: fmt.Sprintf("cannot move item from %q to %q", item.Status, newStatus),
			}
		}
		item.Status = newStatus
		if err := tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).
			Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("failed to update item status: %w", err)
		}
		updated = tab
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// nextItemStatus returns the only status an item may advance to, or "" when
// the item is already at the end of the sequence.
func nextItemStatus(current string) string {
	for i, status := range models.ItemStatusSequence {
		if status == current && i+1 < len(models.ItemStatusSequence) {
			return models.ItemStatusSequence[i+1]
		}
	}
	return ""
}

// CancelTab moves an open, unpaid tab to the cancelled terminal state. Tabs
// with recorded payments cannot be cancelled; the ledger is append-only and
// no refund semantics exist.
func (s *TabService) CancelTab(companyID, tabID uint) (*models.Tab, error) {
	unlock := s.lockTab(tabID)
	defer unlock()

	var updated *models.Tab
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tab, err := loadTab(tx, companyID, tabID)
		if err != nil {
			return err
		}
		if !tab.IsOpen() {
			return &StateError{Code: ErrTabNotOpen, TabID: tabID, Message: "only open tabs can be cancelled"}
		}
		if len(tab.PaymentLogs) > 0 {
			return &StateError{Code: ErrTabHasPayments, TabID: tabID, Message: "tabs with payments cannot be cancelled"}
		}
		now := time.Now()
		tab.Status = models.TabCancelled
		tab.ClosedAt = &now
		if err := tx.Model(&models.Tab{}).Where("id = ?", tab.ID).Updates(map[string]interface{}{
			"status":    tab.Status,
			"closed_at": tab.ClosedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to cancel tab: %w", err)
		}
		updated = tab
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetTab loads a single tab with its items, modifiers and payment ledger.
func (s *TabService) GetTab(companyID, tabID uint) (*models.Tab, error) {
	return loadTab(s.db, companyID, tabID)
}

// loadTab fetches a company's tab with all associations, mapping a missing
// row to a TAB_NOT_FOUND state error.
func loadTab(tx *gorm.DB, companyID, tabID uint) (*models.Tab, error) {
	var tab models.Tab
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Preload("Items.Modifiers").Preload("PaymentLogs", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Where("company_id = ?", companyID).First(&tab, tabID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &StateError{Code: ErrTabNotFound, TabID: tabID, Message: "tab not found"}
		}
		return nil, fmt.Errorf("failed to load tab: %w", err)
	}
	return &tab, nil
}

// loadSettings fetches the company's settings row, falling back to defaults
// when the company has never saved one.
func (s *TabService) loadSettings(companyID uint) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.Where("company_id = ?", companyID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := models.DefaultSettings(companyID)
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}
