package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionKind tags the variant of an OptionItem.
type OptionKind string

const (
	KindExteriorColor OptionKind = "exterior_color"
	KindInteriorColor OptionKind = "interior_color"
	KindWheel         OptionKind = "wheel"
	KindSeat          OptionKind = "seat"
	KindPackage       OptionKind = "package"
)

// OptionKinds lists every kind in configurator order.
var OptionKinds = []OptionKind{
	KindExteriorColor,
	KindInteriorColor,
	KindWheel,
	KindSeat,
	KindPackage,
}

// ParseOptionKind accepts the canonical kind names, case-insensitive.
func ParseOptionKind(s string) (OptionKind, error) {
	k := OptionKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown option kind %q", ErrInvalidInput, s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k OptionKind) Valid() bool {
	switch k {
	case KindExteriorColor, KindInteriorColor, KindWheel, KindSeat, KindPackage:
		return true
	}
	return false
}

// MultiSelect reports whether several options of this kind may be chosen at once.
func (k OptionKind) MultiSelect() bool {
	return k == KindInteriorColor
}

// OptionItem is one selectable configurator option. Kind decides which of the
// variant-specific fields are meaningful.
type OptionItem struct {
	ID          string          `json:"id"`
	Kind        OptionKind      `json:"kind"`
	Label       string          `json:"label"`
	Surcharge   decimal.Decimal `json:"surcharge"`
	Description string          `json:"description,omitempty"`
	Photo       string          `json:"photo,omitempty"`

	// exterior_color, interior_color
	HexCode string `json:"hexCode,omitempty"`
	// interior_color, seat
	Material string `json:"material,omitempty"`
	// wheel
	DiameterInch int `json:"diameterInch,omitempty"`
	// package
	Contents []string `json:"contents,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the common fields and the fields required by the item's kind.
func (o OptionItem) Validate() error {
	if !o.Kind.Valid() {
		return fmt.Errorf("%w: unknown option kind %q", ErrInvalidInput, o.Kind)
	}
	if strings.TrimSpace(o.Label) == "" {
		return fmt.Errorf("%w: label required", ErrInvalidInput)
	}
	if o.Surcharge.IsNegative() {
		return fmt.Errorf("%w: surcharge must not be negative", ErrInvalidInput)
	}
	switch o.Kind {
	case KindWheel:
		if o.DiameterInch <= 0 {
			return fmt.Errorf("%w: wheel diameter required", ErrInvalidInput)
		}
	case KindExteriorColor, KindInteriorColor, KindSeat, KindPackage:
	}
	return nil
}
