package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phenrril/drukuje3d/internal/domain"
)

func TestShippingCost_Threshold(t *testing.T) {
	s := DefaultShipping
	assert.True(t, s.Cost(d("199.99")).Equal(d("10.99")))
	assert.True(t, s.Cost(d("200.00")).Equal(d("0")))
	assert.True(t, s.Cost(d("200.01")).Equal(d("0")))
	assert.True(t, s.Cost(d("0")).Equal(d("10.99")))
}

func TestFromSettings(t *testing.T) {
	assert.Equal(t, DefaultShipping, FromSettings(nil))

	s := FromSettings(&domain.Settings{ID: uuid.New(), ShippingCost: d("15.00"), FreeShippingThreshold: d("300.00")})
	assert.True(t, s.Cost(d("299.99")).Equal(d("15.00")))
	assert.True(t, s.Cost(d("300.00")).IsZero())
}

func TestQuoteItems(t *testing.T) {
	items := []domain.OrderItem{
		{Quantity: 2, Price: d("12.50")},
		{Quantity: 4, Price: d("5.00")},
	}
	q := DefaultShipping.QuoteItems(items)
	assert.True(t, q.Subtotal.Equal(d("45.00")))
	assert.True(t, q.ShippingCost.Equal(d("10.99")))
	assert.True(t, q.Total.Equal(d("55.99")))
}
