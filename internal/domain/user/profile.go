package user

import (
	"context"
	"time"
)

// IdentityUser is the authenticated principal as the identity store knows
// it, with its loosely typed metadata bag.
type IdentityUser struct {
	ID            string
	Email         string
	EmailVerified bool
	LastSignInAt  *time.Time
	CreatedAt     time.Time
	Metadata      map[string]interface{}
}

// IdentityStore is the authoritative store of principal metadata.
type IdentityStore interface {
	GetUserByID(ctx context.Context, userID string) (*IdentityUser, error)
	// UpdateUserMetadata replaces the user's metadata bag. Callers pass a
	// fully merged bag, never a delta.
	UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error
}

// Profile is the relational mirror row, keyed by internal user id. It is a
// read-optimized projection of the identity metadata; rebuilt on every
// successful sync and never physically deleted.
type Profile struct {
	UserID               string
	Email                string
	EmailVerified        bool
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
	NotifySignalAlerts   bool
	NotifyProductNews    bool
	LastLoginAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ProfileRepository is the relational mirror store.
type ProfileRepository interface {
	// Upsert writes the profile row with update-on-conflict semantics keyed
	// by user id.
	Upsert(ctx context.Context, profile *Profile) error
}

// Notification preference keys stored in the metadata bag by the dashboard.
// The mirror carries them as columns; this subsystem never writes them.
const (
	keyNotifySignalAlerts = "notify_signal_alerts"
	keyNotifyProductNews  = "notify_product_news"
)

// ProfileFromIdentity projects an identity user plus its merged metadata
// bag onto a mirror row.
func ProfileFromIdentity(u *IdentityUser, bag map[string]interface{}) *Profile {
	m := FromBag(bag)
	now := time.Now().UTC()

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return &Profile{
		UserID:               u.ID,
		Email:                u.Email,
		EmailVerified:        u.EmailVerified,
		PlanSlug:             m.PlanSlug,
		Tier:                 m.Tier,
		Status:               m.Status,
		BillingCycle:         m.BillingCycle,
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		PlanStartedAt:        m.PlanStartedAt,
		CustomerID:           m.CustomerID,
		SubscriptionID:       m.SubscriptionID,
		CancelAtPeriodEnd:    m.CancelAtPeriodEnd,
		PendingPlanSlug:      m.PendingPlanSlug,
		PendingBillingCycle:  m.PendingBillingCycle,
		PendingEffectiveDate: m.PendingEffectiveDate,
		PendingScheduleID:    m.PendingScheduleID,
		NotifySignalAlerts:   boolFromBag(m.Extra, keyNotifySignalAlerts, true),
		NotifyProductNews:    boolFromBag(m.Extra, keyNotifyProductNews, false),
		LastLoginAt:          u.LastSignInAt,
		CreatedAt:            createdAt,
		UpdatedAt:            now,
	}
}

func boolFromBag(bag map[string]interface{}, key string, fallback bool) bool {
	v, ok := bag[key]
	if !ok {
		return fallback
	}
	b, ok := v.(bool)
	if !ok {
		return fallback
	}
	return b
}
