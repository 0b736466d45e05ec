package services

import (
	"fmt"

	"github.com/multifood/comanda-api/models"
)

// Configuration error codes for modifier groups.
const (
	ErrEmptyGroup          = "EMPTY_GROUP"
	ErrInsufficientOptions = "INSUFFICIENT_OPTIONS"
	ErrInvertedBounds      = "INVERTED_BOUNDS"
)

// Selection error codes for chosen options within a group.
const (
	ErrBelowMinimum = "BELOW_MINIMUM"
	ErrAboveMaximum = "ABOVE_MAXIMUM"
)

// ConfigError reports an invalid modifier group configuration. It blocks
// catalog save and the engine refuses to price products carrying one.
type ConfigError struct {
	Code      string
	GroupID   uint
	GroupName string
	Message   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("group %q: %s", e.GroupName, e.Message)
}

// SelectionError reports a selection that violates a group's cardinality.
type SelectionError struct {
	Code      string
	GroupID   uint
	GroupName string
	Min       int
	Max       int
	Chosen    int
}

func (e *SelectionError) Error() string {
	if e.Code == ErrBelowMinimum {
		return fmt.Sprintf("group %q requires at least %d selection(s), got %d", e.GroupName, e.Min, e.Chosen)
	}
	return fmt.Sprintf("group %q allows at most %d selection(s), got %d", e.GroupName, e.Max, e.Chosen)
}

// ValidateGroup checks a modifier group's configuration invariants:
// it must have options, at least Min of them, and Min <= Max.
func ValidateGroup(group *models.ModifierGroup) error {
	if len(group.Options) == 0 {
		return &ConfigError{
			Code:      ErrEmptyGroup,
			GroupID:   group.ID,
			GroupName: group.Name,
			Message:   "modifier group has no options",
		}
	}
	if group.Min > group.Max {
		return &ConfigError{
			Code:      ErrInvertedBounds,
			GroupID:   group.ID,
			GroupName: group.Name,
			Message:   fmt.Sprintf("min (%d) is greater than max (%d)", group.Min, group.Max),
		}
	}
	if len(group.Options) < group.Min {
		return &ConfigError{
			Code:      ErrInsufficientOptions,
			GroupID:   group.ID,
			GroupName: group.Name,
			Message:   fmt.Sprintf("group requires %d selection(s) but only has %d option(s)", group.Min, len(group.Options)),
		}
	}
	if group.Min < 0 {
		return &ConfigError{
			Code:      ErrInvertedBounds,
			GroupID:   group.ID,
			GroupName: group.Name,
			Message:   fmt.Sprintf("min (%d) must not be negative", group.Min),
		}
	}
	return nil
}

// ValidateProduct validates every modifier group on a product. The first
// failing group's error is returned.
func ValidateProduct(product *models.Product) error {
	for i := range product.ModifierGroups {
		if err := ValidateGroup(&product.ModifierGroups[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSelection checks the chosen option ids of one group against its
// cardinality bounds. Both the sequential wizard and the batch form submit
// call this with identical semantics.
func ValidateSelection(group *models.ModifierGroup, chosenOptionIDs []uint) error {
	count := len(chosenOptionIDs)
	if count < group.Min {
		return &SelectionError{
			Code:      ErrBelowMinimum,
			GroupID:   group.ID,
			GroupName: group.Name,
			Min:       group.Min,
			Max:       group.Max,
			Chosen:    count,
		}
	}
	if count > group.Max {
		return &SelectionError{
			Code:      ErrAboveMaximum,
			GroupID:   group.ID,
			GroupName: group.Name,
			Min:       group.Min,
			Max:       group.Max,
			Chosen:    count,
		}
	}
	return nil
}

// ToggleOption adds or removes an option from the current selection for a
// group. Choosing an already-selected option deselects it. When the group is
// single-choice (max == 1) a new choice replaces the previous one
// (radio-button semantics); otherwise choices beyond max are rejected
// (checkbox-with-cap semantics).
func ToggleOption(current []uint, group *models.ModifierGroup, optionID uint) ([]uint, error) {
	for i, id := range current {
		if id == optionID {
			return append(current[:i:i], current[i+1:]...), nil
		}
	}
	if group.Max == 1 {
		return []uint{optionID}, nil
	}
	if len(current) >= group.Max {
		return current, &SelectionError{
			Code:      ErrAboveMaximum,
			GroupID:   group.ID,
			GroupName: group.Name,
			Min:       group.Min,
			Max:       group.Max,
			Chosen:    len(current) + 1,
		}
	}
	return append(current[:len(current):len(current)], optionID), nil
}

// ModifierWizard walks a product's modifier groups one step at a time, the
// flow used for composite build-your-own products (pizzas, açaí, lunchboxes).
// Each step must satisfy its group's minimum before the wizard advances.
type ModifierWizard struct {
	groups     []models.ModifierGroup
	step       int
	selections map[uint][]uint // group id -> chosen option ids
}

// NewModifierWizard builds a wizard over the product's groups. The product
// configuration must already be valid.
func NewModifierWizard(product *models.Product) (*ModifierWizard, error) {
	if err := ValidateProduct(product); err != nil {
		return nil, err
	}
	return &ModifierWizard{
		groups:     product.ModifierGroups,
		selections: make(map[uint][]uint),
	}, nil
}

// Current returns the group presented at the current step, or nil once the
// wizard has finished.
func (w *ModifierWizard) Current() *models.ModifierGroup {
	if w.step >= len(w.groups) {
		return nil
	}
	return &w.groups[w.step]
}

// Toggle selects or deselects an option in the current step's group.
func (w *ModifierWizard) Toggle(optionID uint) error {
	group := w.Current()
	if group == nil {
		return fmt.Errorf("wizard already finished")
	}
	next, err := ToggleOption(w.selections[group.ID], group, optionID)
	if err != nil {
		return err
	}
	w.selections[group.ID] = next
	return nil
}

// Advance validates the current step and moves to the next one.
func (w *ModifierWizard) Advance() error {
	group := w.Current()
	if group == nil {
		return fmt.Errorf("wizard already finished")
	}
	if err := ValidateSelection(group, w.selections[group.ID]); err != nil {
		return err
	}
	w.step++
	return nil
}

// Done reports whether every step has been validated and passed.
func (w *ModifierWizard) Done() bool {
	return w.step >= len(w.groups)
}

// Selections returns the accumulated choices per group id.
func (w *ModifierWizard) Selections() map[uint][]uint {
	return w.selections
}

// ValidateSelections is the batch (simultaneous form) counterpart of the
// wizard: it validates every group of the product against the submitted
// choices in one pass. Groups absent from selections count as zero choices.
func ValidateSelections(product *models.Product, selections map[uint][]uint) error {
	if err := ValidateProduct(product); err != nil {
		return err
	}
	for i := range product.ModifierGroups {
		group := &product.ModifierGroups[i]
		if err := ValidateSelection(group, selections[group.ID]); err != nil {
			return err
		}
	}
	return nil
}
