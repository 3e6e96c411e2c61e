package billing

import (
	"time"

	"github.com/signalforge/signalforge/internal/types"
)

// PendingChange describes a scheduled future plan or cycle switch that is
// not yet in effect.
type PendingChange struct {
	PlanSlug     types.PlanSlug
	BillingCycle types.BillingCycle
	EffectiveAt  time.Time
	ScheduleID   string
}

// SubscriptionSnapshot is the normalized, point-in-time view of a
// subscription's billing state. It is always derived fresh from the
// provider's current truth, never from local deltas.
type SubscriptionSnapshot struct {
	PlanSlug          types.PlanSlug
	BillingCycle      types.BillingCycle
	Tier              string
	Status            types.SubscriptionStatus
	CurrentPeriodEnd  *time.Time
	PlanStartedAt     *time.Time
	CancelAtPeriodEnd bool
	PendingChange     *PendingChange
	SubscriptionID    string
	CustomerID        string
}

// FreeSnapshot is the snapshot for a user with no subscription.
func FreeSnapshot(customerID string) SubscriptionSnapshot {
	return SubscriptionSnapshot{
		PlanSlug:     types.PlanSlugFree,
		BillingCycle: types.BillingCycleMonthly,
		Tier:         types.PlanSlugFree.Tier(),
		Status:       types.SubscriptionStatusActive,
		CustomerID:   customerID,
	}
}
