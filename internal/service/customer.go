package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/signalforge/signalforge/internal/domain/billing"
	"github.com/signalforge/signalforge/internal/domain/user"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
)

// CustomerService idempotently finds or creates the billing customer for an
// internal user.
type CustomerService interface {
	// ResolveCustomerID returns a valid provider customer id for the user,
	// creating the customer if necessary. With persist set, the resolved id
	// is written back to the identity metadata bag.
	ResolveCustomerID(ctx context.Context, u *user.IdentityUser, persist bool) (string, error)
}

type customerService struct {
	provider billing.ProviderClient
	identity user.IdentityStore
	idCache  *cache.Cache
	log      *logger.Logger
}

func NewCustomerService(
	provider billing.ProviderClient,
	identity user.IdentityStore,
	log *logger.Logger,
) CustomerService {
	return &customerService{
		provider: provider,
		identity: identity,
		// Duplicate webhook bursts hit the resolver repeatedly; a short
		// cache skips repeated provider searches. Correctness never
		// depends on it.
		idCache: cache.New(10*time.Minute, 30*time.Minute),
		log:     log,
	}
}

func (s *customerService) ResolveCustomerID(ctx context.Context, u *user.IdentityUser, persist bool) (string, error) {
	if u == nil || u.ID == "" {
		return "", ierr.NewError("user is required").
			Mark(ierr.ErrValidation)
	}

	meta := user.FromBag(u.Metadata)

	// 1. The metadata bag already knows the customer.
	if meta.CustomerID != "" {
		if persist {
			// Re-persisting canonicalizes legacy key spellings.
			s.persistCustomerID(ctx, u, meta, meta.CustomerID)
		}
		return meta.CustomerID, nil
	}

	if id, ok := s.idCache.Get(u.ID); ok {
		return id.(string), nil
	}

	// 2. Search by the internal user id tag.
	cust, err := s.provider.SearchCustomerByUserID(ctx, u.ID)
	if err != nil {
		return "", err
	}

	// 3. Fall back to an exact email match; backfill the missing tag on a
	// hit so the next lookup is idempotent.
	if cust == nil {
		cust, err = s.provider.FindCustomerByEmail(ctx, u.Email)
		if err != nil {
			return "", err
		}
		if cust != nil && cust.UserID() == "" {
			if err := s.provider.TagCustomer(ctx, cust.ID, u.ID); err != nil {
				s.log.Warnw("failed to backfill user id tag on billing customer",
					"customer_id", cust.ID, "user_id", u.ID, "error", err)
			}
		}
	}

	// 4. Nothing found: create, tagged for future lookups. Creation
	// failure is fatal to this call; no customer id is invented locally.
	if cust == nil {
		cust, err = s.provider.CreateCustomer(ctx, u.Email, u.ID)
		if err != nil {
			return "", err
		}
	}

	s.idCache.Set(u.ID, cust.ID, cache.DefaultExpiration)
	if persist {
		s.persistCustomerID(ctx, u, meta, cust.ID)
	}
	return cust.ID, nil
}

// persistCustomerID writes the resolved customer id into the identity
// metadata bag. The reconciliation that usually follows writes the full
// merged bag anyway, so a failure here is only a warning.
func (s *customerService) persistCustomerID(ctx context.Context, u *user.IdentityUser, meta *user.BillingMetadata, customerID string) {
	meta.CustomerID = customerID
	if err := s.identity.UpdateUserMetadata(ctx, u.ID, meta.Bag()); err != nil {
		s.log.Warnw("failed to persist billing customer id to identity store",
			"user_id", u.ID, "customer_id", customerID, "error", err)
	}
}
