package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBag(t *testing.T) {
	t.Run("nil bag yields an empty record", func(t *testing.T) {
		m := FromBag(nil)

		assert.Empty(t, m.PlanSlug)
		assert.Empty(t, m.CustomerID)
		assert.Empty(t, m.Extra)
	})

	t.Run("reads canonical keys", func(t *testing.T) {
		m := FromBag(map[string]interface{}{
			"plan_slug":           "pro",
			"subscription_tier":   "Pro",
			"subscription_status": "active",
			"billing_cycle":       "annual",
			"stripe_customer_id":  "cus_1",
			"current_period_end":  "2026-10-01T00:00:00Z",
		})

		assert.Equal(t, "pro", m.PlanSlug)
		assert.Equal(t, "Pro", m.Tier)
		assert.Equal(t, "active", m.Status)
		assert.Equal(t, "annual", m.BillingCycle)
		assert.Equal(t, "cus_1", m.CustomerID)
		require.NotNil(t, m.CurrentPeriodEnd)
		assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *m.CurrentPeriodEnd)
	})

	t.Run("camelCase aliases resolve and are consumed", func(t *testing.T) {
		m := FromBag(map[string]interface{}{
			"planSlug":             "lite",
			"stripeCustomerId":     "cus_2",
			"subscriptionStatus":   "past_due",
			"stripeSubscriptionId": "sub_2",
		})

		assert.Equal(t, "lite", m.PlanSlug)
		assert.Equal(t, "cus_2", m.CustomerID)
		assert.Equal(t, "past_due", m.Status)
		assert.Equal(t, "sub_2", m.SubscriptionID)
		// Aliases are owned keys: they do not leak into Extra.
		assert.Empty(t, m.Extra)

		bag := m.Bag()
		assert.Equal(t, "lite", bag["plan_slug"])
		assert.Equal(t, "cus_2", bag["stripe_customer_id"])
		assert.NotContains(t, bag, "planSlug")
		assert.NotContains(t, bag, "stripeCustomerId")
	})

	t.Run("canonical key wins over its alias", func(t *testing.T) {
		m := FromBag(map[string]interface{}{
			"plan_slug": "pro",
			"planSlug":  "lite",
		})
		assert.Equal(t, "pro", m.PlanSlug)
	})

	t.Run("unowned keys land in Extra", func(t *testing.T) {
		m := FromBag(map[string]interface{}{
			"plan_slug":        "pro",
			"marketing_opt_in": true,
			"display_name":     "Ada",
		})

		assert.Equal(t, map[string]interface{}{"marketing_opt_in": true, "display_name": "Ada"}, m.Extra)
	})

	t.Run("cancel flag accepts bools and strings", func(t *testing.T) {
		assert.True(t, FromBag(map[string]interface{}{"subscription_cancel_at_period_end": true}).CancelAtPeriodEnd)
		assert.True(t, FromBag(map[string]interface{}{"subscription_cancel_at_period_end": "true"}).CancelAtPeriodEnd)
		assert.False(t, FromBag(map[string]interface{}{"subscription_cancel_at_period_end": "nope"}).CancelAtPeriodEnd)
	})

	t.Run("times accept unix numbers from json decoding", func(t *testing.T) {
		m := FromBag(map[string]interface{}{"plan_started_at": float64(1788998400)})
		require.NotNil(t, m.PlanStartedAt)
		assert.Equal(t, time.Unix(1788998400, 0).UTC(), *m.PlanStartedAt)
	})
}

func TestBag(t *testing.T) {
	t.Run("omits empty optional keys so cleared fields clear", func(t *testing.T) {
		m := FromBag(map[string]interface{}{
			"subscription_pending_plan_slug": "pro",
			"stripe_subscription_id":         "sub_1",
		})
		m.PendingPlanSlug = ""
		m.SubscriptionID = ""

		bag := m.Bag()

		assert.NotContains(t, bag, "subscription_pending_plan_slug")
		assert.NotContains(t, bag, "stripe_subscription_id")
	})

	t.Run("always writes plan tier status cycle and cancel flag", func(t *testing.T) {
		bag := (&BillingMetadata{PlanSlug: "free", Tier: "Free", Status: "active", BillingCycle: "monthly"}).Bag()

		assert.Equal(t, "free", bag["plan_slug"])
		assert.Equal(t, "Free", bag["subscription_tier"])
		assert.Equal(t, "active", bag["subscription_status"])
		assert.Equal(t, "monthly", bag["billing_cycle"])
		assert.Equal(t, false, bag["subscription_cancel_at_period_end"])
	})

	t.Run("round trip is stable", func(t *testing.T) {
		original := map[string]interface{}{
			"plan_slug":           "pro",
			"subscription_tier":   "Pro",
			"subscription_status": "active",
			"billing_cycle":       "annual",
			"stripe_customer_id":  "cus_9",
			"current_period_end":  "2026-10-01T00:00:00Z",
			"marketing_opt_in":    true,
		}

		once := FromBag(original).Bag()
		twice := FromBag(once).Bag()

		assert.Equal(t, once, twice)
	})
}
