// Package pricing sums a base price and selected option surcharges.
//
// Figures computed here are what the configurator displays. Amounts that are
// charged are recomputed server side from stored snapshots, never taken from a
// client.
package pricing

import (
	"dealership/internal/domain"
	"github.com/shopspring/decimal"
)

// Selection holds the chosen option per kind. Interior colors are the only
// multi-select kind; every other kind holds at most one item.
type Selection struct {
	ExteriorColor  *domain.OptionItem  `json:"exteriorColor,omitempty"`
	InteriorColors []domain.OptionItem `json:"interiorColors,omitempty"`
	Wheel          *domain.OptionItem  `json:"wheel,omitempty"`
	Seat           *domain.OptionItem  `json:"seat,omitempty"`
	Package        *domain.OptionItem  `json:"package,omitempty"`
}

// Items returns the selected options in configurator order.
func (s Selection) Items() []domain.OptionItem {
	items := make([]domain.OptionItem, 0, 4+len(s.InteriorColors))
	for _, kind := range domain.OptionKinds {
		items = append(items, s.OfKind(kind)...)
	}
	return items
}

// OfKind returns the items selected for one kind.
func (s Selection) OfKind(kind domain.OptionKind) []domain.OptionItem {
	var single *domain.OptionItem
	switch kind {
	case domain.KindInteriorColor:
		return append([]domain.OptionItem(nil), s.InteriorColors...)
	case domain.KindExteriorColor:
		single = s.ExteriorColor
	case domain.KindWheel:
		single = s.Wheel
	case domain.KindSeat:
		single = s.Seat
	case domain.KindPackage:
		single = s.Package
	}
	if single == nil {
		return nil
	}
	return []domain.OptionItem{*single}
}

// Clone returns a deep copy that shares nothing with s.
func (s Selection) Clone() Selection {
	out := Selection{
		ExteriorColor: cloneItem(s.ExteriorColor),
		Wheel:         cloneItem(s.Wheel),
		Seat:          cloneItem(s.Seat),
		Package:       cloneItem(s.Package),
	}
	if len(s.InteriorColors) > 0 {
		out.InteriorColors = make([]domain.OptionItem, len(s.InteriorColors))
		for i, item := range s.InteriorColors {
			out.InteriorColors[i] = copyItem(item)
		}
	}
	return out
}

// Total returns base plus the surcharge of every item.
func Total(base decimal.Decimal, items ...domain.OptionItem) decimal.Decimal {
	total := base
	for _, item := range items {
		total = total.Add(item.Surcharge)
	}
	return total
}

// ConfigurationPrice prices a variant with a selection. Kinds without a
// selection contribute nothing.
func ConfigurationPrice(variant domain.VehicleVariant, sel Selection) decimal.Decimal {
	return Total(variant.BasePrice, sel.Items()...)
}

// KindSubtotal is the surcharge sum of one option kind.
type KindSubtotal struct {
	Kind      domain.OptionKind `json:"kind"`
	Labels    []string          `json:"labels"`
	Surcharge decimal.Decimal   `json:"surcharge"`
}

// Breakdown itemizes a configuration price for the summary step.
type Breakdown struct {
	BasePrice decimal.Decimal `json:"basePrice"`
	Kinds     []KindSubtotal  `json:"kinds"`
	Options   decimal.Decimal `json:"options"`
	Total     decimal.Decimal `json:"total"`
}

// Itemize builds a Breakdown listing every kind, selected or not.
func Itemize(base decimal.Decimal, sel Selection) Breakdown {
	b := Breakdown{BasePrice: base, Options: decimal.Zero}
	for _, kind := range domain.OptionKinds {
		items := sel.OfKind(kind)
		sub := KindSubtotal{Kind: kind, Labels: []string{}, Surcharge: decimal.Zero}
		for _, item := range items {
			sub.Labels = append(sub.Labels, item.Label)
			sub.Surcharge = sub.Surcharge.Add(item.Surcharge)
		}
		b.Options = b.Options.Add(sub.Surcharge)
		b.Kinds = append(b.Kinds, sub)
	}
	b.Total = base.Add(b.Options)
	return b
}

func cloneItem(item *domain.OptionItem) *domain.OptionItem {
	if item == nil {
		return nil
	}
	c := copyItem(*item)
	return &c
}

func copyItem(item domain.OptionItem) domain.OptionItem {
	if item.Contents != nil {
		item.Contents = append([]string(nil), item.Contents...)
	}
	return item
}
