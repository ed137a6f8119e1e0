package seed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dealership/internal/client"
	"dealership/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAPI struct {
	variants    []domain.VehicleVariant
	options     []domain.OptionItem
	accessories []domain.Accessory
	createErr   error
}

func (m *memoryAPI) ListVariants(context.Context, client.VariantQuery) ([]domain.VehicleVariant, error) {
	return m.variants, nil
}

func (m *memoryAPI) ListOptions(context.Context, domain.OptionKind) ([]domain.OptionItem, error) {
	return m.options, nil
}

func (m *memoryAPI) ListAccessories(context.Context) ([]domain.Accessory, error) {
	return m.accessories, nil
}

func (m *memoryAPI) CreateVariant(_ context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	v.ID = fmt.Sprintf("v%d", len(m.variants)+1)
	m.variants = append(m.variants, v)
	return &v, nil
}

func (m *memoryAPI) CreateOption(_ context.Context, o domain.OptionItem) (*domain.OptionItem, error) {
	o.ID = fmt.Sprintf("o%d", len(m.options)+1)
	m.options = append(m.options, o)
	return &o, nil
}

func (m *memoryAPI) CreateAccessory(_ context.Context, a domain.Accessory) (*domain.Accessory, error) {
	a.ID = fmt.Sprintf("a%d", len(m.accessories)+1)
	m.accessories = append(m.accessories, a)
	return &a, nil
}

func TestDefault_IsValid(t *testing.T) {
	data := Default()
	for _, v := range data.Variants {
		require.NoError(t, v.Validate(), v.Name)
	}
	for _, o := range data.Options {
		require.NoError(t, o.Validate(), o.Label)
	}
	for _, a := range data.Accessories {
		require.NoError(t, a.Validate(), a.Name)
	}
	kinds := map[domain.OptionKind]bool{}
	for _, o := range data.Options {
		kinds[o.Kind] = true
	}
	assert.Len(t, kinds, len(domain.OptionKinds))
}

func TestApply_IsIdempotent(t *testing.T) {
	api := &memoryAPI{}
	data := Default()
	total := len(data.Variants) + len(data.Options) + len(data.Accessories)

	res, err := Apply(context.Background(), api, data, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: total}, res)

	res, err = Apply(context.Background(), api, data, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: total}, res)
	assert.Len(t, api.variants, len(data.Variants))
}

func TestApply_MatchesCaseInsensitively(t *testing.T) {
	api := &memoryAPI{accessories: []domain.Accessory{{ID: "x", Name: "ALL-WEATHER FLOOR MATS"}}}
	data := Dataset{Accessories: Default().Accessories[:1]}

	res, err := Apply(context.Background(), api, data, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Created)
}

func TestApply_StopsOnCreateError(t *testing.T) {
	api := &memoryAPI{createErr: client.ErrUnauthorized}
	_, err := Apply(context.Background(), api, Default(), nil)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
}
