package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/signalforge/signalforge/internal/types"
)

func phaseWithPrice(priceID string, start time.Time) *stripe.SubscriptionSchedulePhase {
	return &stripe.SubscriptionSchedulePhase{
		StartDate: start.Unix(),
		Items: []*stripe.SubscriptionSchedulePhaseItem{
			{Price: &stripe.Price{ID: priceID}},
		},
	}
}

func TestExtractor_PendingFromSchedule(t *testing.T) {
	extractor := newTestExtractor(t)
	periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	// Current plan for all cases: lite monthly with the period ending at
	// periodEnd.
	baseSubscription := func() *stripe.Subscription {
		sub := subscriptionWithPrice("price_lite_m")
		sub.Items.Data[0].CurrentPeriodEnd = periodEnd.Unix()
		return sub
	}

	t.Run("no schedule means no pending change", func(t *testing.T) {
		snapshot := extractor.Snapshot(baseSubscription())
		assert.Nil(t, snapshot.PendingChange)
	})

	t.Run("earliest future phase wins", func(t *testing.T) {
		sub := baseSubscription()
		sub.Schedule = &stripe.SubscriptionSchedule{
			ID: "sub_sched_1",
			Phases: []*stripe.SubscriptionSchedulePhase{
				phaseWithPrice("price_lite_m", periodEnd.AddDate(0, 0, -10)),
				phaseWithPrice("price_pro_a", periodEnd.AddDate(0, 0, 60)),
				phaseWithPrice("price_pro_m", periodEnd.AddDate(0, 0, 30)),
			},
		}

		snapshot := extractor.Snapshot(sub)

		require.NotNil(t, snapshot.PendingChange)
		assert.Equal(t, types.PlanSlugPro, snapshot.PendingChange.PlanSlug)
		assert.Equal(t, types.BillingCycleMonthly, snapshot.PendingChange.BillingCycle)
		assert.Equal(t, periodEnd.AddDate(0, 0, 30), snapshot.PendingChange.EffectiveAt)
		assert.Equal(t, "sub_sched_1", snapshot.PendingChange.ScheduleID)
	})

	t.Run("phase starting exactly at period end qualifies", func(t *testing.T) {
		sub := baseSubscription()
		sub.Schedule = &stripe.SubscriptionSchedule{
			ID:     "sub_sched_2",
			Phases: []*stripe.SubscriptionSchedulePhase{phaseWithPrice("price_pro_m", periodEnd)},
		}

		snapshot := extractor.Snapshot(sub)

		require.NotNil(t, snapshot.PendingChange)
		assert.Equal(t, periodEnd, snapshot.PendingChange.EffectiveAt)
	})

	t.Run("fallback last phase with a past start clamps to period end", func(t *testing.T) {
		sub := baseSubscription()
		sub.Schedule = &stripe.SubscriptionSchedule{
			ID: "sub_sched_3",
			Phases: []*stripe.SubscriptionSchedulePhase{
				phaseWithPrice("price_lite_m", periodEnd.AddDate(0, -2, 0)),
				phaseWithPrice("price_pro_m", periodEnd.AddDate(0, -1, 0)),
			},
		}

		snapshot := extractor.Snapshot(sub)

		require.NotNil(t, snapshot.PendingChange)
		assert.Equal(t, types.PlanSlugPro, snapshot.PendingChange.PlanSlug)
		assert.Equal(t, periodEnd, snapshot.PendingChange.EffectiveAt)
	})

	t.Run("phase matching the current plan is not pending", func(t *testing.T) {
		sub := baseSubscription()
		sub.Schedule = &stripe.SubscriptionSchedule{
			ID:     "sub_sched_4",
			Phases: []*stripe.SubscriptionSchedulePhase{phaseWithPrice("price_lite_m", periodEnd.AddDate(0, 1, 0))},
		}

		snapshot := extractor.Snapshot(sub)

		assert.Nil(t, snapshot.PendingChange)
	})

	t.Run("phase metadata outranks the phase price", func(t *testing.T) {
		sub := baseSubscription()
		phase := phaseWithPrice("price_pro_m", periodEnd.AddDate(0, 1, 0))
		phase.Metadata = map[string]string{"plan_slug": "api", "billing_cycle": "annual"}
		sub.Schedule = &stripe.SubscriptionSchedule{ID: "sub_sched_5", Phases: []*stripe.SubscriptionSchedulePhase{phase}}

		snapshot := extractor.Snapshot(sub)

		require.NotNil(t, snapshot.PendingChange)
		assert.Equal(t, types.PlanSlugAPI, snapshot.PendingChange.PlanSlug)
		assert.Equal(t, types.BillingCycleAnnual, snapshot.PendingChange.BillingCycle)
	})

	t.Run("unresolvable phase yields no pending change", func(t *testing.T) {
		sub := baseSubscription()
		sub.Schedule = &stripe.SubscriptionSchedule{
			ID:     "sub_sched_6",
			Phases: []*stripe.SubscriptionSchedulePhase{phaseWithPrice("price_unmapped", periodEnd.AddDate(0, 1, 0))},
		}

		snapshot := extractor.Snapshot(sub)

		assert.Nil(t, snapshot.PendingChange)
	})

	t.Run("schedule outranks pending metadata", func(t *testing.T) {
		sub := baseSubscription()
		sub.Metadata = map[string]string{"pending_plan_slug": "api"}
		sub.Schedule = &stripe.SubscriptionSchedule{
			ID:     "sub_sched_7",
			Phases: []*stripe.SubscriptionSchedulePhase{phaseWithPrice("price_pro_m", periodEnd.AddDate(0, 1, 0))},
		}

		snapshot := extractor.Snapshot(sub)

		require.NotNil(t, snapshot.PendingChange)
		assert.Equal(t, types.PlanSlugPro, snapshot.PendingChange.PlanSlug)
		assert.Equal(t, "sub_sched_7", snapshot.PendingChange.ScheduleID)
	})
}
