// Package cart implements the session cart as a value type with pure update
// functions. Every function returns a new Cart and leaves its input untouched.
package cart

import (
	"errors"
	"fmt"
	"strings"

	"dealership/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line kinds.
const (
	LineVehicle   = "vehicle"
	LineAccessory = "accessory"
)

var (
	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNotAdjustable is returned when changing the quantity of a vehicle line.
	ErrNotAdjustable = errors.New("only accessory quantities can be changed")
	// ErrLineNotFound is returned by SetQuantity and Decrement for an unknown
	// line id.
	ErrLineNotFound = errors.New("cart line not found")
)

// Line is one priced cart entry. Vehicle lines always have quantity 1 and
// carry the frozen configuration they were created from.
type Line struct {
	ID            string                        `json:"id"`
	Kind          string                        `json:"kind"`
	RefID         string                        `json:"refId"`
	Name          string                        `json:"name"`
	UnitPrice     decimal.Decimal               `json:"unitPrice"`
	Quantity      int                           `json:"quantity"`
	Configuration *domain.ConfigurationSnapshot `json:"configuration,omitempty"`
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines; insertion order is display order.
type Cart struct {
	Lines []Line `json:"lines"`
}

// AddVehicle appends a vehicle line priced from the snapshot.
func AddVehicle(c Cart, snap domain.ConfigurationSnapshot) Cart {
	frozen := snap
	frozen.Options = append([]domain.OptionItem(nil), snap.Options...)
	return appendLine(c, Line{
		ID:            uuid.NewString(),
		Kind:          LineVehicle,
		RefID:         snap.Variant.ID,
		Name:          vehicleName(snap.Variant),
		UnitPrice:     snap.Price,
		Quantity:      1,
		Configuration: &frozen,
	})
}

// AddAccessory adds qty units of an accessory. An existing line for the same
// accessory is merged into rather than duplicated; its unit price stays the one
// captured when the line was created.
func AddAccessory(c Cart, acc domain.Accessory, qty int) (Cart, error) {
	if qty < 1 {
		return c, ErrInvalidQuantity
	}
	out := clone(c)
	for i, line := range out.Lines {
		if line.Kind == LineAccessory && line.RefID == acc.ID {
			out.Lines[i].Quantity += qty
			return out, nil
		}
	}
	out.Lines = append(out.Lines, Line{
		ID:        uuid.NewString(),
		Kind:      LineAccessory,
		RefID:     acc.ID,
		Name:      acc.Name,
		UnitPrice: acc.Price,
		Quantity:  qty,
	})
	return out, nil
}

// Remove drops the line with id. Unknown ids leave the cart unchanged.
func Remove(c Cart, lineID string) Cart {
	out := Cart{}
	for _, line := range c.Lines {
		if line.ID != lineID {
			out.Lines = append(out.Lines, line)
		}
	}
	return out
}

// SetQuantity changes the quantity of an accessory line.
func SetQuantity(c Cart, lineID string, qty int) (Cart, error) {
	if qty < 1 {
		return c, ErrInvalidQuantity
	}
	out := clone(c)
	for i, line := range out.Lines {
		if line.ID != lineID {
			continue
		}
		if line.Kind != LineAccessory {
			return c, ErrNotAdjustable
		}
		out.Lines[i].Quantity = qty
		return out, nil
	}
	return c, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
}

// Decrement takes qty units off an accessory line and drops the line once no
// units are left. It undoes one AddAccessory of the same quantity, including
// one that merged into an existing line; Remove always drops every unit.
func Decrement(c Cart, lineID string, qty int) (Cart, error) {
	if qty < 1 {
		return c, ErrInvalidQuantity
	}
	out := clone(c)
	for i, line := range out.Lines {
		if line.ID != lineID {
			continue
		}
		if line.Kind != LineAccessory {
			return c, ErrNotAdjustable
		}
		if line.Quantity <= qty {
			return Remove(c, lineID), nil
		}
		out.Lines[i].Quantity -= qty
		return out, nil
	}
	return c, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
}

// Clear empties the cart.
func Clear(Cart) Cart {
	return Cart{}
}

// Total sums unit price times quantity over every line.
func Total(c Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount is the number of units in the cart.
func ItemCount(c Cart) int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// Find returns the line with id.
func Find(c Cart, lineID string) (Line, bool) {
	for _, line := range c.Lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return Line{}, false
}

func appendLine(c Cart, line Line) Cart {
	out := clone(c)
	out.Lines = append(out.Lines, line)
	return out
}

func clone(c Cart) Cart {
	if len(c.Lines) == 0 {
		return Cart{}
	}
	return Cart{Lines: append([]Line(nil), c.Lines...)}
}

func vehicleName(v domain.VehicleVariant) string {
	name := strings.TrimSpace(v.Name)
	if name == "" {
		name = strings.TrimSpace(v.Model)
	}
	if name == "" {
		name = v.ID
	}
	return name
}
