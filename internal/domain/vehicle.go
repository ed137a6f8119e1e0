package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Vehicle conditions.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Performance is the data sheet block shown on a variant page.
type Performance struct {
	PowerHP          int             `json:"powerHp"`
	TorqueNm         int             `json:"torqueNm"`
	Acceleration0100 decimal.Decimal `json:"acceleration0100"`
	TopSpeedKmh      int             `json:"topSpeedKmh"`
	ConsumptionL100  decimal.Decimal `json:"consumptionL100"`
}

// VehicleVariant is a trim/body style of a model with its base price.
type VehicleVariant struct {
	ID          string          `json:"id"`
	Model       string          `json:"model"`
	Name        string          `json:"name"`
	BodyType    string          `json:"bodyType"`
	Condition   string          `json:"condition"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Performance Performance     `json:"performance"`
	Photos      []string        `json:"photos,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// VariantFilter narrows catalog listings. Zero values do not filter.
type VariantFilter struct {
	Model     string
	Condition string
	BodyType  string
	MaxPrice  *decimal.Decimal
}

// Accessory is a catalog item sold by quantity.
type Accessory struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Photo       string          `json:"photo,omitempty"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Validate checks the fields a variant must carry before it is stored.
func (v VehicleVariant) Validate() error {
	if strings.TrimSpace(v.Model) == "" || strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: model and name required", ErrInvalidInput)
	}
	switch v.Condition {
	case ConditionNew, ConditionUsed:
	default:
		return fmt.Errorf("%w: condition must be %q or %q", ErrInvalidInput, ConditionNew, ConditionUsed)
	}
	if v.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base price must not be negative", ErrInvalidInput)
	}
	p := v.Performance
	if p.PowerHP < 0 || p.TorqueNm < 0 || p.TopSpeedKmh < 0 || p.Acceleration0100.IsNegative() || p.ConsumptionL100.IsNegative() {
		return fmt.Errorf("%w: performance figures must not be negative", ErrInvalidInput)
	}
	return nil
}

// Validate checks the fields an accessory must carry before it is stored.
func (a Accessory) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if a.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if a.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	return nil
}
