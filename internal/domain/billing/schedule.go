package billing

import (
	"time"

	"github.com/stripe/stripe-go/v82"
)

// pendingFromSchedule selects the next applicable phase of a subscription
// schedule and extracts a pending-change descriptor from it.
//
// Phases starting at or after the current period end are candidates; the
// earliest of them wins. When no phase qualifies (the schedule is running
// out) the last phase stands in. Either way the phase only counts as a
// pending change when its resolved plan or cycle differs from the current
// one.
func (e *Extractor) pendingFromSchedule(schedule *stripe.SubscriptionSchedule, currentPeriodEnd *time.Time, current planResolution) *PendingChange {
	if schedule == nil || len(schedule.Phases) == 0 {
		return nil
	}

	var marker int64
	if currentPeriodEnd != nil {
		marker = currentPeriodEnd.Unix()
	}

	var selected *stripe.SubscriptionSchedulePhase
	for _, phase := range schedule.Phases {
		if phase == nil || phase.StartDate < marker {
			continue
		}
		if selected == nil || phase.StartDate < selected.StartDate {
			selected = phase
		}
	}
	if selected == nil {
		selected = schedule.Phases[len(schedule.Phases)-1]
	}
	if selected == nil {
		return nil
	}

	resolved := resolvePlan(resolutionScope{
		metadata: selected.Metadata,
		price:    phasePrice(selected),
		catalog:  e.catalog,
	})
	if resolved.plan == "" {
		return nil
	}
	if resolved.cycle == "" {
		resolved.cycle = current.cycle
	}
	if resolved.plan == current.plan && resolved.cycle == current.cycle {
		return nil
	}

	effectiveAt := time.Unix(selected.StartDate, 0).UTC()
	// The fallback phase may have started already; a pending change never
	// takes effect before the current period rolls over.
	if currentPeriodEnd != nil && effectiveAt.Before(*currentPeriodEnd) {
		effectiveAt = currentPeriodEnd.UTC()
	}

	return &PendingChange{
		PlanSlug:     resolved.plan,
		BillingCycle: resolved.cycle,
		EffectiveAt:  effectiveAt,
		ScheduleID:   schedule.ID,
	}
}

func phasePrice(phase *stripe.SubscriptionSchedulePhase) *stripe.Price {
	if len(phase.Items) == 0 || phase.Items[0] == nil {
		return nil
	}
	return phase.Items[0].Price
}
