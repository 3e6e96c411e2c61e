package user

import (
	"strconv"
	"time"

	"github.com/samber/lo"
)

// Canonical metadata keys this subsystem owns on the identity store. Writes
// always use these; reads additionally accept the legacy camelCase aliases.
const (
	KeyPlanSlug             = "plan_slug"
	KeyTier                 = "subscription_tier"
	KeyStatus               = "subscription_status"
	KeyBillingCycle         = "billing_cycle"
	KeyCurrentPeriodEnd     = "current_period_end"
	KeyPlanStartedAt        = "plan_started_at"
	KeyCustomerID           = "stripe_customer_id"
	KeySubscriptionID       = "stripe_subscription_id"
	KeyCancelAtPeriodEnd    = "subscription_cancel_at_period_end"
	KeyPendingPlanSlug      = "subscription_pending_plan_slug"
	KeyPendingBillingCycle  = "subscription_pending_billing_cycle"
	KeyPendingEffectiveDate = "subscription_pending_effective_date"
	KeyPendingScheduleID    = "subscription_pending_schedule_id"
)

// aliasesByKey maps each canonical key to the legacy spellings that may
// still exist in stored bags. Alias resolution happens once, at the store
// boundary, in FromBag.
var aliasesByKey = map[string][]string{
	KeyPlanSlug:             {"planSlug"},
	KeyTier:                 {"subscriptionTier", "tier"},
	KeyStatus:               {"subscriptionStatus"},
	KeyBillingCycle:         {"billingCycle"},
	KeyCurrentPeriodEnd:     {"currentPeriodEnd"},
	KeyPlanStartedAt:        {"planStartedAt"},
	KeyCustomerID:           {"stripeCustomerId"},
	KeySubscriptionID:       {"stripeSubscriptionId"},
	KeyCancelAtPeriodEnd:    {"subscriptionCancelAtPeriodEnd", "cancel_at_period_end"},
	KeyPendingPlanSlug:      {"subscriptionPendingPlanSlug"},
	KeyPendingBillingCycle:  {"subscriptionPendingBillingCycle"},
	KeyPendingEffectiveDate: {"subscriptionPendingEffectiveDate"},
	KeyPendingScheduleID:    {"subscriptionPendingScheduleId"},
}

// BillingMetadata is the typed view of the identity-store metadata bag.
// Owned fields are explicit; every key this subsystem does not own is
// preserved verbatim in Extra and survives reconciliation untouched.
type BillingMetadata struct {
	PlanSlug             string
	Tier                 string
	Status               string
	BillingCycle         string
	CurrentPeriodEnd     *time.Time
	PlanStartedAt        *time.Time
	CustomerID           string
	SubscriptionID       string
	CancelAtPeriodEnd    bool
	PendingPlanSlug      string
	PendingBillingCycle  string
	PendingEffectiveDate *time.Time
	PendingScheduleID    string

	Extra map[string]interface{}
}

// FromBag parses a loosely typed metadata bag into the typed record.
// Owned keys are read under any known spelling and removed from Extra, so a
// later Bag() writes them back canonically.
func FromBag(bag map[string]interface{}) *BillingMetadata {
	m := &BillingMetadata{Extra: make(map[string]interface{}, len(bag))}
	if bag == nil {
		return m
	}

	owned := make(map[string]bool)
	take := func(key string) (interface{}, bool) {
		owned[key] = true
		for _, alias := range aliasesByKey[key] {
			owned[alias] = true
		}
		for _, k := range append([]string{key}, aliasesByKey[key]...) {
			if v, ok := bag[k]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}

	m.PlanSlug = stringValue(take(KeyPlanSlug))
	m.Tier = stringValue(take(KeyTier))
	m.Status = stringValue(take(KeyStatus))
	m.BillingCycle = stringValue(take(KeyBillingCycle))
	m.CurrentPeriodEnd = timeValue(take(KeyCurrentPeriodEnd))
	m.PlanStartedAt = timeValue(take(KeyPlanStartedAt))
	m.CustomerID = stringValue(take(KeyCustomerID))
	m.SubscriptionID = stringValue(take(KeySubscriptionID))
	m.CancelAtPeriodEnd = boolValue(take(KeyCancelAtPeriodEnd))
	m.PendingPlanSlug = stringValue(take(KeyPendingPlanSlug))
	m.PendingBillingCycle = stringValue(take(KeyPendingBillingCycle))
	m.PendingEffectiveDate = timeValue(take(KeyPendingEffectiveDate))
	m.PendingScheduleID = stringValue(take(KeyPendingScheduleID))

	for k, v := range bag {
		if !owned[k] {
			m.Extra[k] = v
		}
	}
	return m
}

// Bag serializes the record back into a metadata bag with canonical keys.
// Unowned keys come back verbatim. The plan, tier, status, cycle and cancel
// keys are always written, even when empty: every user has a subscription
// state. The remaining owned keys are omitted when empty so cleared fields
// actually clear.
func (m *BillingMetadata) Bag() map[string]interface{} {
	bag := make(map[string]interface{}, len(m.Extra)+13)
	for k, v := range m.Extra {
		bag[k] = v
	}

	bag[KeyPlanSlug] = m.PlanSlug
	bag[KeyTier] = m.Tier
	bag[KeyStatus] = m.Status
	bag[KeyBillingCycle] = m.BillingCycle
	bag[KeyCancelAtPeriodEnd] = m.CancelAtPeriodEnd

	setString := func(key, value string) {
		if value != "" {
			bag[key] = value
		}
	}
	setTime := func(key string, value *time.Time) {
		if value != nil {
			bag[key] = value.UTC().Format(time.RFC3339)
		}
	}

	setTime(KeyCurrentPeriodEnd, m.CurrentPeriodEnd)
	setTime(KeyPlanStartedAt, m.PlanStartedAt)
	setString(KeyCustomerID, m.CustomerID)
	setString(KeySubscriptionID, m.SubscriptionID)
	setString(KeyPendingPlanSlug, m.PendingPlanSlug)
	setString(KeyPendingBillingCycle, m.PendingBillingCycle)
	setTime(KeyPendingEffectiveDate, m.PendingEffectiveDate)
	setString(KeyPendingScheduleID, m.PendingScheduleID)

	return bag
}

func stringValue(v interface{}, ok bool) string {
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func boolValue(v interface{}, ok bool) bool {
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}

// timeValue accepts RFC3339 strings and unix-second numbers; JSON decoding
// turns numbers into float64.
func timeValue(v interface{}, ok bool) *time.Time {
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return lo.ToPtr(parsed.UTC())
		}
		if sec, err := strconv.ParseInt(t, 10, 64); err == nil {
			return lo.ToPtr(time.Unix(sec, 0).UTC())
		}
	case float64:
		return lo.ToPtr(time.Unix(int64(t), 0).UTC())
	case int64:
		return lo.ToPtr(time.Unix(t, 0).UTC())
	}
	return nil
}
