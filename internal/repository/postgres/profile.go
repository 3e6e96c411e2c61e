package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/signalforge/signalforge/internal/domain/user"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
)

type profileRepository struct {
	db  *sql.DB
	log *logger.Logger
}

// NewProfileRepository builds the relational mirror repository.
func NewProfileRepository(db *sql.DB, log *logger.Logger) user.ProfileRepository {
	return &profileRepository{db: db, log: log}
}

const upsertProfileSQL = `
INSERT INTO user_profiles (
	user_id, email, email_verified,
	plan_slug, subscription_tier, subscription_status, billing_cycle,
	current_period_end, plan_started_at,
	stripe_customer_id, stripe_subscription_id,
	subscription_cancel_at_period_end,
	subscription_pending_plan_slug, subscription_pending_billing_cycle,
	subscription_pending_effective_date, subscription_pending_schedule_id,
	notify_signal_alerts, notify_product_news,
	last_login_at, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
)
ON CONFLICT (user_id) DO UPDATE SET
	email                               = EXCLUDED.email,
	email_verified                      = EXCLUDED.email_verified,
	plan_slug                           = EXCLUDED.plan_slug,
	subscription_tier                   = EXCLUDED.subscription_tier,
	subscription_status                 = EXCLUDED.subscription_status,
	billing_cycle                       = EXCLUDED.billing_cycle,
	current_period_end                  = EXCLUDED.current_period_end,
	plan_started_at                     = EXCLUDED.plan_started_at,
	stripe_customer_id                  = EXCLUDED.stripe_customer_id,
	stripe_subscription_id              = EXCLUDED.stripe_subscription_id,
	subscription_cancel_at_period_end   = EXCLUDED.subscription_cancel_at_period_end,
	subscription_pending_plan_slug      = EXCLUDED.subscription_pending_plan_slug,
	subscription_pending_billing_cycle  = EXCLUDED.subscription_pending_billing_cycle,
	subscription_pending_effective_date = EXCLUDED.subscription_pending_effective_date,
	subscription_pending_schedule_id    = EXCLUDED.subscription_pending_schedule_id,
	notify_signal_alerts                = EXCLUDED.notify_signal_alerts,
	notify_product_news                 = EXCLUDED.notify_product_news,
	last_login_at                       = EXCLUDED.last_login_at,
	updated_at                          = EXCLUDED.updated_at`

// Upsert writes the mirror row. Last write wins on the whole column set;
// rows are always derived from the provider's current truth so repeated
// application converges.
func (r *profileRepository) Upsert(ctx context.Context, profile *user.Profile) error {
	if profile == nil || profile.UserID == "" {
		return ierr.NewError("profile user id is required").
			Mark(ierr.ErrValidation)
	}

	_, err := r.db.ExecContext(ctx, upsertProfileSQL,
		profile.UserID,
		profile.Email,
		profile.EmailVerified,
		nullString(profile.PlanSlug),
		nullString(profile.Tier),
		nullString(profile.Status),
		nullString(profile.BillingCycle),
		nullTime(profile.CurrentPeriodEnd),
		nullTime(profile.PlanStartedAt),
		nullString(profile.CustomerID),
		nullString(profile.SubscriptionID),
		profile.CancelAtPeriodEnd,
		nullString(profile.PendingPlanSlug),
		nullString(profile.PendingBillingCycle),
		nullTime(profile.PendingEffectiveDate),
		nullString(profile.PendingScheduleID),
		profile.NotifySignalAlerts,
		profile.NotifyProductNews,
		nullTime(profile.LastLoginAt),
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert user profile").
			WithReportableDetails(map[string]any{"user_id": profile.UserID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
