package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/drukuje3d/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func keychainTiers() []domain.PricingTier {
	return []domain.PricingTier{
		{MinQuantity: 10, Price: d("4.50")},
		{MinQuantity: 50, Price: d("4.00")},
	}
}

func TestUnitPrice_Tiers(t *testing.T) {
	cases := []struct {
		qty  int
		want string
	}{
		{1, "5.00"},
		{9, "5.00"},
		{10, "4.50"},
		{49, "4.50"},
		{50, "4.00"},
		{1000, "4.00"},
	}
	for _, tc := range cases {
		got, err := UnitPrice(d("5.00"), keychainTiers(), tc.qty)
		require.NoError(t, err)
		assert.True(t, got.Equal(d(tc.want)), "qty %d: got %s want %s", tc.qty, got, tc.want)
	}
}

func TestUnitPrice_UnsortedInputIsNotMutated(t *testing.T) {
	tiers := []domain.PricingTier{
		{MinQuantity: 50, Price: d("4.00")},
		{MinQuantity: 10, Price: d("4.50")},
	}
	got, err := UnitPrice(d("5.00"), tiers, 20)
	require.NoError(t, err)
	assert.True(t, got.Equal(d("4.50")))
	assert.Equal(t, 50, tiers[0].MinQuantity)
}

func TestUnitPrice_EmptyTiers(t *testing.T) {
	got, err := UnitPrice(d("8.00"), nil, 500)
	require.NoError(t, err)
	assert.True(t, got.Equal(d("8.00")))
}

func TestUnitPrice_InvalidQuantity(t *testing.T) {
	_, err := UnitPrice(d("5.00"), keychainTiers(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = UnitPrice(d("5.00"), nil, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestValidateTiers(t *testing.T) {
	warnings, err := ValidateTiers(d("5.00"), keychainTiers())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	_, err = ValidateTiers(d("5.00"), []domain.PricingTier{
		{MinQuantity: 10, Price: d("4.50")},
		{MinQuantity: 10, Price: d("4.00")},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateTier)

	_, err = ValidateTiers(d("5.00"), []domain.PricingTier{{MinQuantity: 0, Price: d("4.50")}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	warnings, err = ValidateTiers(d("5.00"), []domain.PricingTier{
		{MinQuantity: 10, Price: d("6.00")},
		{MinQuantity: 50, Price: d("7.00")},
	})
	require.NoError(t, err)
	assert.Len(t, warnings, 3)
}
