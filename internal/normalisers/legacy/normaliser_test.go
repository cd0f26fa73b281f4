package legacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

func TestNormaliser_Shape(t *testing.T) {
	assert.Equal(t, domain.ShapeLegacy, New().Shape())
}

func TestNormaliser_RejectsFlat(t *testing.T) {
	_, err := New().Normalise(context.Background(), domain.ProductRecord{"uuid": "p1"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestNormaliser_UnwrapsEntries(t *testing.T) {
	record := domain.ProductRecord{
		"uuid": "p1",
		"values": map[string]any{
			"size": []any{
				map[string]any{"data": float64(42)},
				map[string]any{"data": nil},
				map[string]any{"scope": "ecommerce"},
				map[string]any{"data": float64(43)},
			},
		},
	}

	p, err := New().Normalise(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, []string{"42", "43"}, p.Attribute("size"))
}

func TestNormaliser_KeepsValuesOutsideEntries(t *testing.T) {
	record := domain.ProductRecord{
		"uuid": "p1",
		"values": map[string]any{
			"color":    "black",
			"material": map[string]any{"data": "mesh", "locale": "en_US"},
			"size":     []any{"42", map[string]any{"data": "43"}},
			"weight":   nil,
		},
	}

	p, err := New().Normalise(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, []string{"black"}, p.Attribute("color"))
	assert.Equal(t, []string{"mesh"}, p.Attribute("material"))
	assert.Equal(t, []string{"42", "43"}, p.Attribute("size"))
	assert.Nil(t, p.Attribute("weight"))
}

func TestNormaliser_KeepsTopLevelAttributes(t *testing.T) {
	record := domain.ProductRecord{
		"uuid":    "p1",
		"enabled": true,
		"values":  map[string]any{"color": []any{map[string]any{"data": "black"}}},
	}

	p, err := New().Normalise(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, []domain.Attribute{
		{Name: "color", Values: []string{"black"}},
		{Name: "enabled", Values: []string{"true"}},
	}, p.Attributes)
}

func TestNormaliser_NoIdentity(t *testing.T) {
	record := domain.ProductRecord{
		"values": map[string]any{"color": []any{map[string]any{"data": "black"}}},
	}

	_, err := New().Normalise(context.Background(), record)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
