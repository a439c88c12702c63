package groundtruth

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
)

// StripeDirectory lists tenants straight from the platform's Stripe connected
// accounts, for deployments where no local risk-state table drives the
// aggregation pass. Listing is the only Stripe call made here; payment flows
// live elsewhere.
type StripeDirectory struct {
	pageSize int64
	logger   zerolog.Logger
}

// NewStripeDirectory configures the Stripe client from STRIPE_API_KEY when
// apiKey is empty.
func NewStripeDirectory(apiKey string) *StripeDirectory {
	if apiKey == "" {
		apiKey = os.Getenv("STRIPE_API_KEY")
	}
	stripe.Key = apiKey

	return &StripeDirectory{
		pageSize: 100,
		logger:   log.With().Str("component", "stripe_directory").Logger(),
	}
}

// ListTenants returns the IDs of all connected accounts.
func (d *StripeDirectory) ListTenants(ctx context.Context) ([]string, error) {
	params := &stripe.AccountListParams{}
	params.Limit = stripe.Int64(d.pageSize)
	params.Context = ctx

	var tenants []string
	iter := account.List(params)
	for iter.Next() {
		tenants = append(tenants, iter.Account().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	d.logger.Debug().Int("count", len(tenants)).Msg("Listed connected accounts")
	return tenants, nil
}
