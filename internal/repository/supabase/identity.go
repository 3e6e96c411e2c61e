package supabase

import (
	"context"

	supa "github.com/nedpals/supabase-go"

	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/domain/user"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
)

type identityStore struct {
	client *supa.Client
	log    *logger.Logger
}

// NewIdentityStore builds the Supabase-backed identity store using the
// admin (service role) API.
func NewIdentityStore(cfg *config.Configuration, log *logger.Logger) (user.IdentityStore, error) {
	client := supa.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	if client == nil {
		return nil, ierr.NewError("failed to create supabase client").
			WithHint("Check the Supabase base URL and service key").
			Mark(ierr.ErrConfiguration)
	}
	return &identityStore{client: client, log: log}, nil
}

func (s *identityStore) GetUserByID(ctx context.Context, userID string) (*user.IdentityUser, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			Mark(ierr.ErrValidation)
	}

	au, err := s.client.Admin.GetUser(ctx, userID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch user from identity store").
			WithReportableDetails(map[string]any{"user_id": userID}).
			Mark(ierr.ErrNotFound)
	}

	return identityUserFromAdmin(au), nil
}

// identityUserFromAdmin maps the admin API user onto the domain model.
// The pointer timestamps are nil for users who never confirmed their email
// or never signed in.
func identityUserFromAdmin(au *supa.AdminUser) *user.IdentityUser {
	return &user.IdentityUser{
		ID:            au.ID,
		Email:         au.Email,
		EmailVerified: au.EmailConfirmedAt != nil,
		LastSignInAt:  au.LastSignInAt,
		CreatedAt:     au.CreatedAt,
		Metadata:      au.UserMetaData,
	}
}

func (s *identityStore) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	if userID == "" {
		return ierr.NewError("user id is required").
			Mark(ierr.ErrValidation)
	}

	_, err := s.client.Admin.UpdateUser(ctx, userID, supa.AdminUserParams{
		UserMetadata: metadata,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update user metadata in identity store").
			WithReportableDetails(map[string]any{"user_id": userID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
