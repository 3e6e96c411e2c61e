package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/domain/catalog"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/types"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	cfg := &config.Configuration{
		Billing: config.BillingConfig{
			Prices: []config.PriceBinding{
				{PriceID: "price_lite_m", PlanSlug: types.PlanSlugLite, BillingCycle: types.BillingCycleMonthly},
				{PriceID: "price_pro_m", PlanSlug: types.PlanSlugPro, BillingCycle: types.BillingCycleMonthly},
				{PriceID: "price_pro_a", PlanSlug: types.PlanSlugPro, BillingCycle: types.BillingCycleAnnual},
			},
		},
	}
	cat, err := catalog.New(cfg, logger.GetLogger())
	require.NoError(t, err)
	return NewExtractor(cat, logger.GetLogger())
}

func subscriptionWithPrice(priceID string) *stripe.Subscription {
	return &stripe.Subscription{
		ID:       "sub_123",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_123"},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					Price:            &stripe.Price{ID: priceID},
					CurrentPeriodEnd: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).Unix(),
				},
			},
		},
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Unix(),
	}
}

func TestExtractor_Snapshot(t *testing.T) {
	extractor := newTestExtractor(t)

	t.Run("nil subscription yields the free snapshot", func(t *testing.T) {
		snapshot := extractor.Snapshot(nil)

		assert.Equal(t, types.PlanSlugFree, snapshot.PlanSlug)
		assert.Equal(t, types.BillingCycleMonthly, snapshot.BillingCycle)
		assert.Equal(t, types.SubscriptionStatusActive, snapshot.Status)
		assert.Empty(t, snapshot.SubscriptionID)
		assert.Nil(t, snapshot.PendingChange)
	})

	t.Run("resolves plan and cycle from the catalog", func(t *testing.T) {
		snapshot := extractor.Snapshot(subscriptionWithPrice("price_pro_a"))

		assert.Equal(t, types.PlanSlugPro, snapshot.PlanSlug)
		assert.Equal(t, types.BillingCycleAnnual, snapshot.BillingCycle)
		assert.Equal(t, "Pro", snapshot.Tier)
		assert.Equal(t, "sub_123", snapshot.SubscriptionID)
		assert.Equal(t, "cus_123", snapshot.CustomerID)
		require.NotNil(t, snapshot.CurrentPeriodEnd)
		assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *snapshot.CurrentPeriodEnd)
		require.NotNil(t, snapshot.PlanStartedAt)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *snapshot.PlanStartedAt)
	})

	t.Run("subscription metadata outranks the catalog", func(t *testing.T) {
		sub := subscriptionWithPrice("price_pro_m")
		sub.Metadata = map[string]string{"plan_slug": "api", "billing_cycle": "annual"}

		snapshot := extractor.Snapshot(sub)

		assert.Equal(t, types.PlanSlugAPI, snapshot.PlanSlug)
		assert.Equal(t, types.BillingCycleAnnual, snapshot.BillingCycle)
	})

	t.Run("camelCase metadata spellings are accepted", func(t *testing.T) {
		sub := subscriptionWithPrice("price_pro_m")
		sub.Metadata = map[string]string{"planSlug": "lite", "billingCycle": "annual"}

		snapshot := extractor.Snapshot(sub)

		assert.Equal(t, types.PlanSlugLite, snapshot.PlanSlug)
		assert.Equal(t, types.BillingCycleAnnual, snapshot.BillingCycle)
	})

	t.Run("falls back to price metadata for uncataloged prices", func(t *testing.T) {
		sub := subscriptionWithPrice("price_legacy")
		sub.Items.Data[0].Price.Metadata = map[string]string{"plan_slug": "lite", "billing_cycle": "monthly"}

		snapshot := extractor.Snapshot(sub)

		assert.Equal(t, types.PlanSlugLite, snapshot.PlanSlug)
		assert.Equal(t, types.BillingCycleMonthly, snapshot.BillingCycle)
	})

	t.Run("derives cycle from recurring interval when nothing names it", func(t *testing.T) {
		sub := subscriptionWithPrice("price_legacy")
		sub.Metadata = map[string]string{"plan_slug": "pro"}
		sub.Items.Data[0].Price.Recurring = &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalYear}

		snapshot := extractor.Snapshot(sub)

		assert.Equal(t, types.PlanSlugPro, snapshot.PlanSlug)
		assert.Equal(t, types.BillingCycleAnnual, snapshot.BillingCycle)
	})

	t.Run("unresolvable subscription defaults to free monthly", func(t *testing.T) {
		sub := subscriptionWithPrice("price_legacy")

		snapshot := extractor.Snapshot(sub)

		assert.Equal(t, types.PlanSlugFree, snapshot.PlanSlug)
		assert.Equal(t, types.BillingCycleMonthly, snapshot.BillingCycle)
	})

	t.Run("unknown plan slug passes through with its own tier", func(t *testing.T) {
		sub := subscriptionWithPrice("price_pro_m")
		sub.Metadata = map[string]string{"plan_slug": "platinum"}

		snapshot := extractor.Snapshot(sub)

		assert.Equal(t, types.PlanSlug("platinum"), snapshot.PlanSlug)
		assert.Equal(t, "platinum", snapshot.Tier)
	})

	t.Run("incomplete promotes to active when latest invoice settled", func(t *testing.T) {
		sub := subscriptionWithPrice("price_pro_m")
		sub.Status = stripe.SubscriptionStatusIncomplete
		sub.LatestInvoice = &stripe.Invoice{Status: stripe.InvoiceStatusPaid}

		snapshot := extractor.Snapshot(sub)

		assert.Equal(t, types.SubscriptionStatusActive, snapshot.Status)
	})

	t.Run("incomplete stays incomplete while invoice is open", func(t *testing.T) {
		sub := subscriptionWithPrice("price_pro_m")
		sub.Status = stripe.SubscriptionStatusIncomplete
		sub.LatestInvoice = &stripe.Invoice{Status: stripe.InvoiceStatusOpen}

		snapshot := extractor.Snapshot(sub)

		assert.Equal(t, types.SubscriptionStatusIncomplete, snapshot.Status)
	})

	t.Run("carries cancel at period end", func(t *testing.T) {
		sub := subscriptionWithPrice("price_pro_m")
		sub.CancelAtPeriodEnd = true

		snapshot := extractor.Snapshot(sub)

		assert.True(t, snapshot.CancelAtPeriodEnd)
	})
}

func TestExtractor_PendingFromMetadata(t *testing.T) {
	extractor := newTestExtractor(t)

	t.Run("explicit pending metadata produces a pending change", func(t *testing.T) {
		sub := subscriptionWithPrice("price_pro_m")
		sub.Metadata = map[string]string{
			"pending_plan_slug":      "lite",
			"pending_billing_cycle":  "monthly",
			"pending_effective_date": "2026-10-01T00:00:00Z",
		}

		snapshot := extractor.Snapshot(sub)

		require.NotNil(t, snapshot.PendingChange)
		assert.Equal(t, types.PlanSlugLite, snapshot.PendingChange.PlanSlug)
		assert.Equal(t, types.BillingCycleMonthly, snapshot.PendingChange.BillingCycle)
		assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), snapshot.PendingChange.EffectiveAt)
	})

	t.Run("unix seconds effective date is accepted", func(t *testing.T) {
		sub := subscriptionWithPrice("price_pro_m")
		sub.Metadata = map[string]string{
			"pendingPlanSlug":      "lite",
			"pendingEffectiveDate": "1794787200",
		}

		snapshot := extractor.Snapshot(sub)

		require.NotNil(t, snapshot.PendingChange)
		assert.Equal(t, types.PlanSlugLite, snapshot.PendingChange.PlanSlug)
		assert.Equal(t, time.Unix(1794787200, 0).UTC(), snapshot.PendingChange.EffectiveAt)
	})

	t.Run("no pending metadata means no pending change", func(t *testing.T) {
		snapshot := extractor.Snapshot(subscriptionWithPrice("price_pro_m"))
		assert.Nil(t, snapshot.PendingChange)
	})
}
