package types

import (
	"strings"

	"github.com/samber/lo"
)

// SubscriptionStatus is the provider's subscription status, normalized to
// lowercase. The set is open: the provider may introduce statuses this
// build does not know about, and they pass through unchanged.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// settledInvoiceStatuses are the latest-invoice statuses that promote an
// incomplete subscription to active: the initial payment either went
// through or was written off, so the subscription is effectively live.
var settledInvoiceStatuses = []string{"paid", "void", "uncollectible"}

// NormalizeSubscriptionStatus lowercases the provider status and applies
// the one special rule: incomplete is promoted to active when the latest
// invoice has settled.
func NormalizeSubscriptionStatus(raw string, latestInvoiceStatus string) SubscriptionStatus {
	status := SubscriptionStatus(strings.ToLower(strings.TrimSpace(raw)))
	if status == SubscriptionStatusIncomplete &&
		lo.Contains(settledInvoiceStatuses, strings.ToLower(latestInvoiceStatus)) {
		return SubscriptionStatusActive
	}
	return status
}
