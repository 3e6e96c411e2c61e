package service

import (
	"context"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"

	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/domain/billing"
	"github.com/signalforge/signalforge/internal/domain/user"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/sentry"
	"github.com/signalforge/signalforge/internal/types"
)

// ReconciliationService converts provider subscription state into the
// normalized internal snapshot and persists it across the identity store
// and the relational mirror.
type ReconciliationService interface {
	// SyncUser re-derives the user's subscription state from the provider
	// (the on-demand "sync now" path). Provisions a billing customer on
	// first contact.
	SyncUser(ctx context.Context, userID string) (map[string]interface{}, error)
	// SyncCustomer reconciles a subscription delivered for a provider
	// customer (the webhook path). The internal user is resolved from the
	// subscription's or customer's user id tag.
	SyncCustomer(ctx context.Context, customerID string, sub *stripe.Subscription) (map[string]interface{}, error)
	// SyncSubscriptionByID re-retrieves a subscription with full
	// expansions and reconciles it. Webhook payloads arrive without the
	// nested objects the extractor needs, so handlers use this instead of
	// trusting the embedded object.
	SyncSubscriptionByID(ctx context.Context, subscriptionID string) (map[string]interface{}, error)
	// PortalURL returns a billing-portal redirect for the user, thin
	// pass-through to the provider. An empty returnURL falls back to the
	// configured one.
	PortalURL(ctx context.Context, userID string, returnURL string) (string, error)
}

type reconciliationService struct {
	cfg       *config.Configuration
	extractor *billing.Extractor
	provider  billing.ProviderClient
	identity  user.IdentityStore
	profiles  user.ProfileRepository
	customers CustomerService
	log       *logger.Logger
}

func NewReconciliationService(
	cfg *config.Configuration,
	extractor *billing.Extractor,
	provider billing.ProviderClient,
	identity user.IdentityStore,
	profiles user.ProfileRepository,
	customers CustomerService,
	log *logger.Logger,
) ReconciliationService {
	return &reconciliationService{
		cfg:       cfg,
		extractor: extractor,
		provider:  provider,
		identity:  identity,
		profiles:  profiles,
		customers: customers,
		log:       log,
	}
}

func (s *reconciliationService) SyncUser(ctx context.Context, userID string) (map[string]interface{}, error) {
	u, err := s.identity.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.customers.ResolveCustomerID(ctx, u, true)
	if err != nil {
		return nil, err
	}

	subs, err := s.provider.ListSubscriptions(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return s.reconcile(ctx, u, pickCurrentSubscription(subs), customerID)
}

func (s *reconciliationService) SyncCustomer(ctx context.Context, customerID string, sub *stripe.Subscription) (map[string]interface{}, error) {
	userID := s.resolveUserID(ctx, customerID, sub)
	if userID == "" {
		return nil, ierr.NewError("no internal user mapped to billing customer").
			WithHint("The customer record is missing its user id tag").
			WithReportableDetails(map[string]any{"customer_id": customerID}).
			Mark(ierr.ErrNotFound)
	}

	u, err := s.identity.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.reconcile(ctx, u, sub, customerID)
}

func (s *reconciliationService) SyncSubscriptionByID(ctx context.Context, subscriptionID string) (map[string]interface{}, error) {
	sub, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	var customerID string
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	return s.SyncCustomer(ctx, customerID, sub)
}

func (s *reconciliationService) PortalURL(ctx context.Context, userID string, returnURL string) (string, error) {
	u, err := s.identity.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	customerID, err := s.customers.ResolveCustomerID(ctx, u, true)
	if err != nil {
		return "", err
	}

	if returnURL == "" {
		returnURL = s.cfg.Billing.PortalReturnURL
	}
	return s.provider.CreatePortalSession(ctx, customerID, returnURL)
}

// reconcile is the core path: extract a fresh snapshot, merge it into the
// identity metadata, then write both stores. The identity-store write is
// authoritative and fatal on failure; the relational mirror is best-effort
// and rebuilt on the next successful sync.
func (s *reconciliationService) reconcile(ctx context.Context, u *user.IdentityUser, sub *stripe.Subscription, customerID string) (map[string]interface{}, error) {
	syncID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECONCILIATION)
	log := s.log.With("sync_id", syncID, "user_id", u.ID)

	snapshot := s.extractor.Snapshot(sub)
	if snapshot.CustomerID == "" {
		snapshot.CustomerID = customerID
	}
	if snapshot.CustomerID == "" {
		// First provisioning: no subscription and no known customer yet.
		resolved, err := s.customers.ResolveCustomerID(ctx, u, false)
		if err != nil {
			return nil, err
		}
		snapshot.CustomerID = resolved
	}

	merged := user.Reconcile(snapshot, u.Metadata)

	if err := s.identity.UpdateUserMetadata(ctx, u.ID, merged); err != nil {
		log.Errorw("identity store write failed, aborting reconciliation", "error", err)
		sentry.CaptureException(err)
		return nil, err
	}

	// Mirror write happens strictly after the authoritative write so the
	// mirror can never get ahead of the identity store.
	profile := user.ProfileFromIdentity(u, merged)
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		log.Warnw("profile mirror upsert failed, identity store remains source of truth",
			"error", err)
	}

	log.Infow("subscription reconciled",
		"plan_slug", snapshot.PlanSlug,
		"status", snapshot.Status,
		"billing_cycle", snapshot.BillingCycle,
		"subscription_id", snapshot.SubscriptionID,
		"pending_change", snapshot.PendingChange != nil)

	return merged, nil
}

// resolveUserID finds the internal user for a webhook delivery: the
// subscription metadata tag first, then the customer record's tag.
func (s *reconciliationService) resolveUserID(ctx context.Context, customerID string, sub *stripe.Subscription) string {
	if sub != nil {
		if id := types.Metadata(sub.Metadata).Get(billing.MetadataKeyUserID); id != "" {
			return id
		}
	}

	cust, err := s.provider.GetCustomer(ctx, customerID)
	if err != nil {
		s.log.Warnw("failed to fetch billing customer while resolving user",
			"customer_id", customerID, "error", err)
		return ""
	}
	return cust.UserID()
}

// statusRank orders subscription statuses by how much they represent the
// customer's live plan.
var statusRank = map[stripe.SubscriptionStatus]int{
	stripe.SubscriptionStatusActive:   0,
	stripe.SubscriptionStatusTrialing: 1,
	stripe.SubscriptionStatusPastDue:  2,
	stripe.SubscriptionStatusUnpaid:   3,
}

// pickCurrentSubscription chooses the subscription that best represents the
// user's current plan from a most-recent-first list. No subscription means
// the free plan.
func pickCurrentSubscription(subs []*stripe.Subscription) *stripe.Subscription {
	if len(subs) == 0 {
		return nil
	}

	ranked := lo.Filter(subs, func(sub *stripe.Subscription, _ int) bool {
		_, ok := statusRank[sub.Status]
		return ok
	})
	if len(ranked) == 0 {
		return subs[0]
	}

	return lo.MinBy(ranked, func(a, b *stripe.Subscription) bool {
		return statusRank[a.Status] < statusRank[b.Status]
	})
}
