package billing

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	"github.com/signalforge/signalforge/internal/types"
)

// MetadataKeyUserID is the metadata tag attached to provider customers so
// the internal user can be found again idempotently.
const MetadataKeyUserID = "supabase_user_id"

// Customer is the minimal view of a provider customer record.
type Customer struct {
	ID       string
	Email    string
	Metadata types.Metadata
}

// UserID returns the internal user id tag, if the customer carries one.
func (c *Customer) UserID() string {
	if c == nil {
		return ""
	}
	return c.Metadata.Get(MetadataKeyUserID)
}

// ProviderClient is the payment provider consumed as a black box.
// Subscriptions come back as raw provider objects with latest invoice,
// line-item prices and schedule phases populated.
type ProviderClient interface {
	// GetSubscription retrieves a subscription with the expansions the
	// snapshot extractor needs.
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	// ListSubscriptions returns the customer's subscriptions, most recent
	// first. An empty result means the user is on the free plan.
	ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error)

	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	CreateCustomer(ctx context.Context, email string, userID string) (*Customer, error)
	// SearchCustomerByUserID finds a customer by the internal user id tag.
	// Returns nil without error when no customer matches.
	SearchCustomerByUserID(ctx context.Context, userID string) (*Customer, error)
	// FindCustomerByEmail finds a customer by exact email match. Returns
	// nil without error when no customer matches.
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	// TagCustomer backfills the internal user id tag on an existing
	// customer record.
	TagCustomer(ctx context.Context, customerID string, userID string) error

	// CreatePortalSession is a thin pass-through to the provider's billing
	// portal; it returns the redirect URL.
	CreatePortalSession(ctx context.Context, customerID string, returnURL string) (string, error)
}
