package testutil

import (
	"context"
	"sync"

	"github.com/stripe/stripe-go/v82"

	"github.com/signalforge/signalforge/internal/domain/billing"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/types"
)

// FakeProviderClient implements billing.ProviderClient for tests. Seed it
// with customers and subscriptions; script failures via the Err fields.
type FakeProviderClient struct {
	mu            sync.Mutex
	customers     map[string]*billing.Customer
	subscriptions map[string]*stripe.Subscription
	nextID        int

	CreateErr error
	SearchErr error
	ListErr   error

	CreatedCustomers []string
	TaggedCustomers  []string
	PortalSessions   []string
}

func NewFakeProviderClient() *FakeProviderClient {
	return &FakeProviderClient{
		customers:     make(map[string]*billing.Customer),
		subscriptions: make(map[string]*stripe.Subscription),
	}
}

// AddCustomer seeds a provider customer.
func (f *FakeProviderClient) AddCustomer(c *billing.Customer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers[c.ID] = c
}

// AddSubscription seeds a subscription retrievable by id.
func (f *FakeProviderClient) AddSubscription(sub *stripe.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscriptions[sub.ID] = sub
}

func (f *FakeProviderClient) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewErrorf("subscription %s not found", subscriptionID).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (f *FakeProviderClient) ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var subs []*stripe.Subscription
	for _, sub := range f.subscriptions {
		if sub.Customer != nil && sub.Customer.ID == customerID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (f *FakeProviderClient) GetCustomer(ctx context.Context, customerID string) (*billing.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[customerID]
	if !ok {
		return nil, ierr.NewErrorf("customer %s not found", customerID).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

func (f *FakeProviderClient) CreateCustomer(ctx context.Context, email string, userID string) (*billing.Customer, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := &billing.Customer{
		ID:    types.GenerateUUIDWithPrefix("cus"),
		Email: email,
		Metadata: types.Metadata{
			billing.MetadataKeyUserID: userID,
		},
	}
	f.customers[c.ID] = c
	f.CreatedCustomers = append(f.CreatedCustomers, c.ID)
	return c, nil
}

func (f *FakeProviderClient) SearchCustomerByUserID(ctx context.Context, userID string) (*billing.Customer, error) {
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.UserID() == userID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *FakeProviderClient) FindCustomerByEmail(ctx context.Context, email string) (*billing.Customer, error) {
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (f *FakeProviderClient) TagCustomer(ctx context.Context, customerID string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[customerID]
	if !ok {
		return ierr.NewErrorf("customer %s not found", customerID).
			Mark(ierr.ErrNotFound)
	}
	if c.Metadata == nil {
		c.Metadata = types.Metadata{}
	}
	c.Metadata[billing.MetadataKeyUserID] = userID
	f.TaggedCustomers = append(f.TaggedCustomers, customerID)
	return nil
}

func (f *FakeProviderClient) CreatePortalSession(ctx context.Context, customerID string, returnURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PortalSessions = append(f.PortalSessions, customerID)
	return "https://billing.example.com/session/" + customerID, nil
}
