// Package catalog serves and maintains vehicle variants, configurator options
// and accessories.
package catalog

import (
	"context"
	"io"
	"log"
	"strings"

	"dealership/internal/domain"
	accessoryrepo "dealership/internal/repository/accessory"
	optionrepo "dealership/internal/repository/option"
	variantrepo "dealership/internal/repository/variant"
)

type Service struct {
	variants    variantrepo.Repository
	options     optionrepo.Repository
	accessories accessoryrepo.Repository
	logger      *log.Logger
}

func New(variants variantrepo.Repository, options optionrepo.Repository, accessories accessoryrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{variants: variants, options: options, accessories: accessories, logger: logger}
}

func (s *Service) ListVariants(ctx context.Context, filter domain.VariantFilter) ([]domain.VehicleVariant, error) {
	filter.Model = strings.TrimSpace(filter.Model)
	filter.BodyType = strings.TrimSpace(filter.BodyType)
	filter.Condition = strings.ToLower(strings.TrimSpace(filter.Condition))
	return s.variants.List(ctx, filter)
}

func (s *Service) GetVariant(ctx context.Context, id string) (*domain.VehicleVariant, error) {
	return s.variants.GetByID(ctx, id)
}

func (s *Service) CreateVariant(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error) {
	v = normalizeVariant(v)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	created, err := s.variants.Create(ctx, v)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("catalog: variant created id=%s name=%s", created.ID, created.Name)
	return created, nil
}

func (s *Service) UpdateVariant(ctx context.Context, id string, v domain.VehicleVariant) (*domain.VehicleVariant, error) {
	v = normalizeVariant(v)
	v.ID = id
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return s.variants.Update(ctx, v)
}

func (s *Service) DeleteVariant(ctx context.Context, id string) error {
	if err := s.variants.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("catalog: variant deleted id=%s", id)
	return nil
}

// ListOptions returns the options of one kind, or all options when kind is empty.
func (s *Service) ListOptions(ctx context.Context, kind string) ([]domain.OptionItem, error) {
	var k domain.OptionKind
	if strings.TrimSpace(kind) != "" {
		parsed, err := domain.ParseOptionKind(kind)
		if err != nil {
			return nil, err
		}
		k = parsed
	}
	return s.options.List(ctx, k)
}

func (s *Service) GetOption(ctx context.Context, id string) (*domain.OptionItem, error) {
	return s.options.GetByID(ctx, id)
}

func (s *Service) CreateOption(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error) {
	o = normalizeOption(o)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	created, err := s.options.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("catalog: option created id=%s kind=%s", created.ID, created.Kind)
	return created, nil
}

func (s *Service) UpdateOption(ctx context.Context, id string, o domain.OptionItem) (*domain.OptionItem, error) {
	o = normalizeOption(o)
	o.ID = id
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return s.options.Update(ctx, o)
}

func (s *Service) DeleteOption(ctx context.Context, id string) error {
	return s.options.Delete(ctx, id)
}

func (s *Service) ListAccessories(ctx context.Context, category string) ([]domain.Accessory, error) {
	return s.accessories.List(ctx, strings.TrimSpace(category))
}

func (s *Service) GetAccessory(ctx context.Context, id string) (*domain.Accessory, error) {
	return s.accessories.GetByID(ctx, id)
}

func (s *Service) CreateAccessory(ctx context.Context, a domain.Accessory) (*domain.Accessory, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	created, err := s.accessories.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("catalog: accessory created id=%s name=%s", created.ID, created.Name)
	return created, nil
}

func (s *Service) UpdateAccessory(ctx context.Context, id string, a domain.Accessory) (*domain.Accessory, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.ID = id
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return s.accessories.Update(ctx, a)
}

func (s *Service) DeleteAccessory(ctx context.Context, id string) error {
	return s.accessories.Delete(ctx, id)
}

func normalizeVariant(v domain.VehicleVariant) domain.VehicleVariant {
	v.Model = strings.TrimSpace(v.Model)
	v.Name = strings.TrimSpace(v.Name)
	v.BodyType = strings.ToLower(strings.TrimSpace(v.BodyType))
	v.Condition = strings.ToLower(strings.TrimSpace(v.Condition))
	if v.Condition == "" {
		v.Condition = domain.ConditionNew
	}
	return v
}

func normalizeOption(o domain.OptionItem) domain.OptionItem {
	o.Kind = domain.OptionKind(strings.ToLower(strings.TrimSpace(string(o.Kind))))
	o.Label = strings.TrimSpace(o.Label)
	if o.Kind != domain.KindPackage {
		o.Contents = nil
	}
	if o.Kind != domain.KindWheel {
		o.DiameterInch = 0
	}
	return o
}
