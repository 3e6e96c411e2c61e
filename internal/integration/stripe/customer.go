package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"github.com/signalforge/signalforge/internal/domain/billing"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/types"
)

func customerFromStripe(c *stripe.Customer) *billing.Customer {
	if c == nil || c.Deleted {
		return nil
	}
	return &billing.Customer{
		ID:       c.ID,
		Email:    c.Email,
		Metadata: types.Metadata(c.Metadata),
	}
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (*billing.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := c.sc.Customers.Get(customerID, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to retrieve billing customer").
			WithReportableDetails(map[string]any{"customer_id": customerID}).
			Mark(ierr.ErrIntegration)
	}
	return customerFromStripe(cust), nil
}

func (c *Client) CreateCustomer(ctx context.Context, email string, userID string) (*billing.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata(billing.MetadataKeyUserID, userID)

	cust, err := c.sc.Customers.New(params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create billing customer").
			WithReportableDetails(map[string]any{"user_id": userID}).
			Mark(ierr.ErrIntegration)
	}

	c.log.Infow("created billing customer", "customer_id", cust.ID, "user_id", userID)
	return customerFromStripe(cust), nil
}

func (c *Client) SearchCustomerByUserID(ctx context.Context, userID string) (*billing.Customer, error) {
	params := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf("metadata['%s']:'%s'", billing.MetadataKeyUserID, userID),
			Limit:   stripe.Int64(1),
			Context: ctx,
		},
	}

	iter := c.sc.Customers.Search(params)
	for iter.Next() {
		return customerFromStripe(iter.Customer()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to search billing customers").
			Mark(ierr.ErrIntegration)
	}
	return nil, nil
}

func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*billing.Customer, error) {
	if email == "" {
		return nil, nil
	}

	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(10)

	iter := c.sc.Customers.List(params)
	for iter.Next() {
		// Exact match only; the list endpoint is case-insensitive but we
		// take it as delivered.
		if cust := customerFromStripe(iter.Customer()); cust != nil && cust.Email == email {
			return cust, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list billing customers").
			Mark(ierr.ErrIntegration)
	}
	return nil, nil
}

func (c *Client) TagCustomer(ctx context.Context, customerID string, userID string) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	params.AddMetadata(billing.MetadataKeyUserID, userID)

	if _, err := c.sc.Customers.Update(customerID, params); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to tag billing customer").
			WithReportableDetails(map[string]any{"customer_id": customerID}).
			Mark(ierr.ErrIntegration)
	}

	c.log.Infow("backfilled user id tag on billing customer",
		"customer_id", customerID, "user_id", userID)
	return nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID string, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := c.sc.BillingPortalSessions.New(params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create billing portal session").
			WithReportableDetails(map[string]any{"customer_id": customerID}).
			Mark(ierr.ErrIntegration)
	}
	return session.URL, nil
}
