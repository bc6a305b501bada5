// Package pricing computes item and modifier cost. All functions are pure
// and work in integer minor currency units; formatting to a display string
// never feeds back into stored values.
package pricing

import (
	"fmt"

	"github.com/justasSav/eeps/internal/domain"
)

// ResolveUnitPrice returns the product base price plus the deltas of every
// selected modifier option. Absent group selections contribute nothing, and
// option names that do not match any option in their group contribute zero.
func ResolveUnitPrice(product domain.Product, selections domain.Selections) int64 {
	price := product.BasePrice
	for _, group := range product.ModifierGroups {
		sel, ok := selections[group.Name]
		if !ok {
			continue
		}
		for _, name := range sel.Names() {
			price += optionDelta(group, name)
		}
	}
	return price
}

// LineTotal is the resolved unit price multiplied by quantity.
func LineTotal(unitPrice int64, quantity int) int64 {
	return unitPrice * int64(quantity)
}

// ValidateSelections checks every modifier group's min/max constraints
// against the provided selections. It returns a ValidationError naming the
// first violating group.
func ValidateSelections(product domain.Product, selections domain.Selections) error {
	for _, group := range product.ModifierGroups {
		sel := selections[group.Name]
		count := len(sel.Names())
		if count < group.MinRequired {
			return domain.NewValidationError(group.Name, fmt.Sprintf("requires at least %d selection(s)", group.MinRequired))
		}
		if group.MaxAllowed > 0 && count > group.MaxAllowed {
			return domain.NewValidationError(group.Name, fmt.Sprintf("allows at most %d selection(s)", group.MaxAllowed))
		}
		if group.MaxAllowed == 1 && sel.Multi() && len(sel.Options) > 1 {
			return domain.NewValidationError(group.Name, "is single-select")
		}
	}
	return nil
}

// FormatPrice renders cents as a display string, e.g. 700 -> "€7.00".
// Presentation only.
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s€%d.%02d", sign, cents/100, cents%100)
}

func optionDelta(group domain.ModifierGroup, name string) int64 {
	for _, opt := range group.Options {
		if opt.Name == name {
			return opt.PriceMod
		}
	}
	return 0
}
