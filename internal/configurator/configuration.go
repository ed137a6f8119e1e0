// Package configurator holds the in-progress option selection for one vehicle
// variant and walks the user through the option steps.
package configurator

import (
	"errors"
	"fmt"
	"time"

	"dealership/internal/domain"
	"dealership/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownStep is returned by JumpTo for a step outside Steps.
	ErrUnknownStep = errors.New("unknown configurator step")
	// ErrUnknownKind is returned when an option carries an unknown kind.
	ErrUnknownKind = errors.New("unknown option kind")
)

// Step is one screen of the configurator wizard.
type Step string

const (
	StepExteriorColor Step = "exterior_color"
	StepInteriorColor Step = "interior_color"
	StepWheels        Step = "wheels"
	StepSeats         Step = "seats"
	StepPackages      Step = "packages"
	StepSummary       Step = "summary"
)

// Steps is the linear wizard order.
var Steps = []Step{
	StepExteriorColor,
	StepInteriorColor,
	StepWheels,
	StepSeats,
	StepPackages,
	StepSummary,
}

// ParseStep validates a step name.
func ParseStep(s string) (Step, error) {
	step := Step(s)
	if stepIndex(step) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
	return step, nil
}

// StepFor returns the wizard step where options of kind are chosen.
func StepFor(kind domain.OptionKind) (Step, error) {
	switch kind {
	case domain.KindExteriorColor:
		return StepExteriorColor, nil
	case domain.KindInteriorColor:
		return StepInteriorColor, nil
	case domain.KindWheel:
		return StepWheels, nil
	case domain.KindSeat:
		return StepSeats, nil
	case domain.KindPackage:
		return StepPackages, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Configuration is a variant plus the options currently selected for it.
// The price is derived from the selection on every call.
type Configuration struct {
	ID        string                `json:"id"`
	Variant   domain.VehicleVariant `json:"variant"`
	Selection pricing.Selection     `json:"selection"`
	Step      Step                  `json:"step"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// New starts a configuration on the first step with nothing selected.
func New(variant domain.VehicleVariant) *Configuration {
	now := time.Now().UTC()
	return &Configuration{
		ID:        uuid.NewString(),
		Variant:   variant,
		Step:      StepExteriorColor,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Next advances one step; it stays on the summary once there.
func (c *Configuration) Next() Step {
	if i := stepIndex(c.Step); i >= 0 && i < len(Steps)-1 {
		c.Step = Steps[i+1]
		c.touch()
	}
	return c.Step
}

// Previous goes back one step; it stays on the first step.
func (c *Configuration) Previous() Step {
	if i := stepIndex(c.Step); i > 0 {
		c.Step = Steps[i-1]
		c.touch()
	}
	return c.Step
}

// JumpTo moves to any step. No step requires an earlier one to be completed.
func (c *Configuration) JumpTo(step Step) error {
	if stepIndex(step) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	c.Step = step
	c.touch()
	return nil
}

// Select picks an option. Single-select kinds replace the previous pick;
// interior colors are added once per id.
func (c *Configuration) Select(item domain.OptionItem) error {
	sel := &c.Selection
	switch item.Kind {
	case domain.KindExteriorColor:
		sel.ExteriorColor = &item
	case domain.KindInteriorColor:
		for i, existing := range sel.InteriorColors {
			if existing.ID == item.ID {
				sel.InteriorColors[i] = item
				c.touch()
				return nil
			}
		}
		sel.InteriorColors = append(sel.InteriorColors, item)
	case domain.KindWheel:
		sel.Wheel = &item
	case domain.KindSeat:
		sel.Seat = &item
	case domain.KindPackage:
		sel.Package = &item
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, item.Kind)
	}
	c.touch()
	return nil
}

// Deselect removes the option with id, whatever its kind. It reports whether
// anything was removed.
func (c *Configuration) Deselect(id string) bool {
	sel := &c.Selection
	removed := false
	for _, slot := range []**domain.OptionItem{&sel.ExteriorColor, &sel.Wheel, &sel.Seat, &sel.Package} {
		if *slot != nil && (*slot).ID == id {
			*slot = nil
			removed = true
		}
	}
	kept := sel.InteriorColors[:0]
	for _, item := range sel.InteriorColors {
		if item.ID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		kept = nil
	}
	sel.InteriorColors = kept
	if removed {
		c.touch()
	}
	return removed
}

// ClearKind drops every selection of kind.
func (c *Configuration) ClearKind(kind domain.OptionKind) error {
	sel := &c.Selection
	switch kind {
	case domain.KindExteriorColor:
		sel.ExteriorColor = nil
	case domain.KindInteriorColor:
		sel.InteriorColors = nil
	case domain.KindWheel:
		sel.Wheel = nil
	case domain.KindSeat:
		sel.Seat = nil
	case domain.KindPackage:
		sel.Package = nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	c.touch()
	return nil
}

// Price is the variant base price plus all selected surcharges.
func (c *Configuration) Price() decimal.Decimal {
	return pricing.ConfigurationPrice(c.Variant, c.Selection)
}

// Breakdown itemizes Price for the summary step.
func (c *Configuration) Breakdown() pricing.Breakdown {
	return pricing.Itemize(c.Variant.BasePrice, c.Selection)
}

// Snapshot freezes the configuration. The result shares no memory with c.
func (c *Configuration) Snapshot() domain.ConfigurationSnapshot {
	sel := c.Selection.Clone()
	variant := c.Variant
	variant.Photos = append([]string(nil), c.Variant.Photos...)
	return domain.ConfigurationSnapshot{
		ConfigurationID: c.ID,
		Variant:         variant,
		Options:         sel.Items(),
		Price:           pricing.ConfigurationPrice(variant, sel),
		TakenAt:         time.Now().UTC(),
	}
}

// Clone deep-copies the configuration.
func (c *Configuration) Clone() *Configuration {
	out := *c
	out.Selection = c.Selection.Clone()
	out.Variant.Photos = append([]string(nil), c.Variant.Photos...)
	return &out
}

func (c *Configuration) touch() {
	c.UpdatedAt = time.Now().UTC()
}

func stepIndex(step Step) int {
	for i, s := range Steps {
		if s == step {
			return i
		}
	}
	return -1
}
