package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalforge/signalforge/internal/config"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/types"
)

func newTestConfig(bindings ...config.PriceBinding) *config.Configuration {
	return &config.Configuration{
		Billing: config.BillingConfig{Prices: bindings},
	}
}

func TestCatalog_Lookups(t *testing.T) {
	bindings := []config.PriceBinding{
		{PriceID: "price_lite_m", PlanSlug: types.PlanSlugLite, BillingCycle: types.BillingCycleMonthly},
		{PriceID: "price_lite_a", PlanSlug: types.PlanSlugLite, BillingCycle: types.BillingCycleAnnual},
		{PriceID: "price_pro_m", PlanSlug: types.PlanSlugPro, BillingCycle: types.BillingCycleMonthly},
	}

	cat, err := New(newTestConfig(bindings...), logger.GetLogger())
	require.NoError(t, err)

	t.Run("round trips every registered binding", func(t *testing.T) {
		for _, binding := range bindings {
			entry, ok := cat.LookupByPriceID(binding.PriceID)
			require.True(t, ok)
			assert.Equal(t, binding.PlanSlug, entry.PlanSlug)
			assert.Equal(t, binding.BillingCycle, entry.BillingCycle)

			priceID, ok := cat.LookupByPlan(binding.PlanSlug, binding.BillingCycle)
			require.True(t, ok)
			assert.Equal(t, binding.PriceID, priceID)
		}
	})

	t.Run("unknown price id misses", func(t *testing.T) {
		_, ok := cat.LookupByPriceID("price_unknown")
		assert.False(t, ok)
	})

	t.Run("unregistered plan cycle misses", func(t *testing.T) {
		_, ok := cat.LookupByPlan(types.PlanSlugPro, types.BillingCycleAnnual)
		assert.False(t, ok)
	})
}

func TestCatalog_Construction(t *testing.T) {
	t.Run("skips bindings without a price id", func(t *testing.T) {
		cat, err := New(newTestConfig(
			config.PriceBinding{PlanSlug: types.PlanSlugPro, BillingCycle: types.BillingCycleMonthly},
			config.PriceBinding{PriceID: "price_lite_m", PlanSlug: types.PlanSlugLite, BillingCycle: types.BillingCycleMonthly},
		), logger.GetLogger())
		require.NoError(t, err)

		assert.Len(t, cat.Entries(), 1)
		_, ok := cat.LookupByPlan(types.PlanSlugPro, types.BillingCycleMonthly)
		assert.False(t, ok)
	})

	t.Run("identical duplicate registration is idempotent", func(t *testing.T) {
		binding := config.PriceBinding{PriceID: "price_pro_m", PlanSlug: types.PlanSlugPro, BillingCycle: types.BillingCycleMonthly}
		cat, err := New(newTestConfig(binding, binding), logger.GetLogger())
		require.NoError(t, err)
		assert.Len(t, cat.Entries(), 1)
	})

	t.Run("conflicting price binding is a configuration error", func(t *testing.T) {
		_, err := New(newTestConfig(
			config.PriceBinding{PriceID: "price_x", PlanSlug: types.PlanSlugLite, BillingCycle: types.BillingCycleMonthly},
			config.PriceBinding{PriceID: "price_x", PlanSlug: types.PlanSlugPro, BillingCycle: types.BillingCycleMonthly},
		), logger.GetLogger())
		require.Error(t, err)
		assert.True(t, ierr.IsConfiguration(err))
	})

	t.Run("plan bound to two price ids is a configuration error", func(t *testing.T) {
		_, err := New(newTestConfig(
			config.PriceBinding{PriceID: "price_a", PlanSlug: types.PlanSlugPro, BillingCycle: types.BillingCycleAnnual},
			config.PriceBinding{PriceID: "price_b", PlanSlug: types.PlanSlugPro, BillingCycle: types.BillingCycleAnnual},
		), logger.GetLogger())
		require.Error(t, err)
		assert.True(t, ierr.IsConfiguration(err))
	})

	t.Run("invalid plan slug is rejected", func(t *testing.T) {
		_, err := New(newTestConfig(
			config.PriceBinding{PriceID: "price_y", PlanSlug: "platinum", BillingCycle: types.BillingCycleMonthly},
		), logger.GetLogger())
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})
}
