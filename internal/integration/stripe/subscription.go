package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	ierr "github.com/signalforge/signalforge/internal/errors"
)

// subscriptionExpansions are the nested objects the snapshot extractor
// reads: the settled-invoice promotion rule needs latest_invoice, the phase
// resolver needs the schedule with phase prices.
var subscriptionExpansions = []string{
	"latest_invoice",
	"schedule",
	"schedule.phases.items.price",
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	for _, expand := range subscriptionExpansions {
		params.AddExpand(expand)
	}

	sub, err := c.sc.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to retrieve subscription").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrIntegration)
	}
	return sub, nil
}

func (c *Client) ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(10)
	// The list endpoint caps expansion depth; phase prices stay as bare ids
	// here, which the catalog lookup is fine with.
	params.AddExpand("data.latest_invoice")
	params.AddExpand("data.schedule")

	var subs []*stripe.Subscription
	iter := c.sc.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	if err := iter.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			WithReportableDetails(map[string]any{"customer_id": customerID}).
			Mark(ierr.ErrIntegration)
	}
	return subs, nil
}
