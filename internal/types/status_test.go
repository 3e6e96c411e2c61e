package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSubscriptionStatus(t *testing.T) {
	t.Run("lowercases and trims", func(t *testing.T) {
		assert.Equal(t, SubscriptionStatusActive, NormalizeSubscriptionStatus(" Active ", ""))
		assert.Equal(t, SubscriptionStatusPastDue, NormalizeSubscriptionStatus("PAST_DUE", ""))
	})

	t.Run("promotes incomplete when the latest invoice settled", func(t *testing.T) {
		for _, invoiceStatus := range []string{"paid", "void", "uncollectible", "PAID"} {
			assert.Equal(t, SubscriptionStatusActive, NormalizeSubscriptionStatus("incomplete", invoiceStatus))
		}
	})

	t.Run("keeps incomplete while the invoice is unsettled", func(t *testing.T) {
		assert.Equal(t, SubscriptionStatusIncomplete, NormalizeSubscriptionStatus("incomplete", "open"))
		assert.Equal(t, SubscriptionStatusIncomplete, NormalizeSubscriptionStatus("incomplete", ""))
	})

	t.Run("passes unknown statuses through", func(t *testing.T) {
		assert.Equal(t, SubscriptionStatus("hibernating"), NormalizeSubscriptionStatus("hibernating", "paid"))
	})
}
