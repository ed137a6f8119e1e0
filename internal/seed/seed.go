// Package seed loads a demo catalog through the REST API.
package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"dealership/internal/client"
	"dealership/internal/domain"
	"github.com/shopspring/decimal"
)

// API is the part of the REST client the seeder needs. Create calls need an
// admin token on the client.
type API interface {
	ListVariants(ctx context.Context, q client.VariantQuery) ([]domain.VehicleVariant, error)
	ListOptions(ctx context.Context, kind domain.OptionKind) ([]domain.OptionItem, error)
	ListAccessories(ctx context.Context) ([]domain.Accessory, error)
	CreateVariant(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error)
	CreateOption(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error)
	CreateAccessory(ctx context.Context, a domain.Accessory) (*domain.Accessory, error)
}

// Dataset is a catalog to load.
type Dataset struct {
	Variants    []domain.VehicleVariant
	Options     []domain.OptionItem
	Accessories []domain.Accessory
}

// Result counts created and skipped records.
type Result struct {
	Created int
	Skipped int
}

// Apply creates every record of data that the API does not list yet. Records
// are matched by model and name for variants, kind and label for options, and
// name for accessories, so running it twice creates nothing new.
func Apply(ctx context.Context, api API, data Dataset, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	var res Result

	variants, err := api.ListVariants(ctx, client.VariantQuery{})
	if err != nil {
		return res, fmt.Errorf("list variants: %w", err)
	}
	haveVariant := make(map[string]bool, len(variants))
	for _, v := range variants {
		haveVariant[key(v.Model, v.Name)] = true
	}
	for _, v := range data.Variants {
		if haveVariant[key(v.Model, v.Name)] {
			res.Skipped++
			continue
		}
		created, err := api.CreateVariant(ctx, v)
		if err != nil {
			return res, fmt.Errorf("create variant %q: %w", v.Name, err)
		}
		logger.Printf("seed: variant id=%s name=%q", created.ID, created.Name)
		res.Created++
	}

	options, err := api.ListOptions(ctx, "")
	if err != nil {
		return res, fmt.Errorf("list options: %w", err)
	}
	haveOption := make(map[string]bool, len(options))
	for _, o := range options {
		haveOption[key(string(o.Kind), o.Label)] = true
	}
	for _, o := range data.Options {
		if haveOption[key(string(o.Kind), o.Label)] {
			res.Skipped++
			continue
		}
		created, err := api.CreateOption(ctx, o)
		if err != nil {
			return res, fmt.Errorf("create option %q: %w", o.Label, err)
		}
		logger.Printf("seed: option id=%s kind=%s label=%q", created.ID, created.Kind, created.Label)
		res.Created++
	}

	accessories, err := api.ListAccessories(ctx)
	if err != nil {
		return res, fmt.Errorf("list accessories: %w", err)
	}
	haveAccessory := make(map[string]bool, len(accessories))
	for _, a := range accessories {
		haveAccessory[key(a.Name)] = true
	}
	for _, a := range data.Accessories {
		if haveAccessory[key(a.Name)] {
			res.Skipped++
			continue
		}
		created, err := api.CreateAccessory(ctx, a)
		if err != nil {
			return res, fmt.Errorf("create accessory %q: %w", a.Name, err)
		}
		logger.Printf("seed: accessory id=%s name=%q", created.ID, created.Name)
		res.Created++
	}

	return res, nil
}

func key(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "\x00"))
}

func eur(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// Default is the demo catalog.
func Default() Dataset {
	return Dataset{
		Variants: []domain.VehicleVariant{
			{
				Model:     "911",
				Name:      "911 Carrera S",
				BodyType:  "coupe",
				Condition: domain.ConditionNew,
				BasePrice: eur(158500),
				Performance: domain.Performance{
					PowerHP:          480,
					TorqueNm:         530,
					Acceleration0100: decimal.RequireFromString("3.5"),
					TopSpeedKmh:      308,
					ConsumptionL100:  decimal.RequireFromString("10.5"),
				},
				Photos: []string{"https://images.dealership.local/911-carrera-s/front.jpg"},
			},
			{
				Model:     "911",
				Name:      "911 Targa 4",
				BodyType:  "targa",
				Condition: domain.ConditionNew,
				BasePrice: eur(147900),
				Performance: domain.Performance{
					PowerHP:          394,
					TorqueNm:         450,
					Acceleration0100: decimal.RequireFromString("4.4"),
					TopSpeedKmh:      289,
					ConsumptionL100:  decimal.RequireFromString("11.1"),
				},
			},
			{
				Model:     "Taycan",
				Name:      "Taycan 4S",
				BodyType:  "sedan",
				Condition: domain.ConditionNew,
				BasePrice: eur(119700),
				Performance: domain.Performance{
					PowerHP:          598,
					TorqueNm:         710,
					Acceleration0100: decimal.RequireFromString("3.7"),
					TopSpeedKmh:      250,
				},
			},
			{
				Model:     "Macan",
				Name:      "Macan S 2021",
				BodyType:  "suv",
				Condition: domain.ConditionUsed,
				BasePrice: eur(54900),
				Performance: domain.Performance{
					PowerHP:          380,
					TorqueNm:         520,
					Acceleration0100: decimal.RequireFromString("4.8"),
					TopSpeedKmh:      259,
					ConsumptionL100:  decimal.RequireFromString("10.4"),
				},
			},
		},
		Options: []domain.OptionItem{
			{Kind: domain.KindExteriorColor, Label: "Jet Black Metallic", Surcharge: eur(0), HexCode: "#0B0B0B"},
			{Kind: domain.KindExteriorColor, Label: "Guards Red", Surcharge: eur(2000), HexCode: "#C8102E"},
			{Kind: domain.KindExteriorColor, Label: "Shark Blue", Surcharge: eur(3400), HexCode: "#1F6FD1"},
			{Kind: domain.KindInteriorColor, Label: "Black", Surcharge: eur(0), HexCode: "#111111", Material: "leather"},
			{Kind: domain.KindInteriorColor, Label: "Bordeaux Red", Surcharge: eur(1500), HexCode: "#5A1A22", Material: "leather"},
			{Kind: domain.KindInteriorColor, Label: "Crayon stitching", Surcharge: eur(900), HexCode: "#C7C2B6", Material: "thread"},
			{Kind: domain.KindWheel, Label: "Carrera S 20/21", Surcharge: eur(0), DiameterInch: 21},
			{Kind: domain.KindWheel, Label: "RS Spyder Design", Surcharge: eur(1800), DiameterInch: 21},
			{Kind: domain.KindSeat, Label: "Sports seats Plus", Surcharge: eur(0), Material: "leather"},
			{Kind: domain.KindSeat, Label: "Adaptive sports seats Plus 18-way", Surcharge: eur(3300), Material: "leather"},
			{Kind: domain.KindPackage, Label: "Sport Chrono", Surcharge: eur(2900), Contents: []string{"stopwatch", "mode switch", "launch control"}},
			{Kind: domain.KindPackage, Label: "Lightweight", Surcharge: eur(6900), Contents: []string{"carbon roof", "lightweight glass", "bucket seats"}},
		},
		Accessories: []domain.Accessory{
			{Name: "All-weather floor mats", Category: "interior", Price: eur(35), Stock: 40},
			{Name: "Roof transport system", Category: "exterior", Price: eur(450), Stock: 8},
			{Name: "Indoor car cover", Category: "care", Price: eur(390), Stock: 15},
			{Name: "Charging cable 11 kW", Category: "charging", Price: eur(520), Stock: 10},
		},
	}
}
