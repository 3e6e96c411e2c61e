package supabase

import (
	"testing"
	"time"

	supa "github.com/nedpals/supabase-go"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityUserFromAdmin(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("maps a confirmed user with a sign-in history", func(t *testing.T) {
		lastSignIn := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
		au := &supa.AdminUser{
			ID:               "user_1",
			Email:            "ada@example.com",
			EmailConfirmedAt: lo.ToPtr(createdAt.Add(time.Hour)),
			LastSignInAt:     &lastSignIn,
			CreatedAt:        createdAt,
			UserMetaData: supa.JSONMap{
				"plan_slug":        "pro",
				"marketing_opt_in": true,
			},
		}

		u := identityUserFromAdmin(au)

		assert.Equal(t, "user_1", u.ID)
		assert.Equal(t, "ada@example.com", u.Email)
		assert.True(t, u.EmailVerified)
		require.NotNil(t, u.LastSignInAt)
		assert.Equal(t, lastSignIn, *u.LastSignInAt)
		assert.Equal(t, createdAt, u.CreatedAt)
		assert.Equal(t, "pro", u.Metadata["plan_slug"])
		assert.Equal(t, true, u.Metadata["marketing_opt_in"])
	})

	t.Run("unconfirmed user who never signed in", func(t *testing.T) {
		u := identityUserFromAdmin(&supa.AdminUser{
			ID:        "user_2",
			Email:     "new@example.com",
			CreatedAt: createdAt,
		})

		assert.False(t, u.EmailVerified)
		assert.Nil(t, u.LastSignInAt)
		assert.Empty(t, u.Metadata)
	})

	t.Run("empty metadata bag stays nil-safe", func(t *testing.T) {
		u := identityUserFromAdmin(&supa.AdminUser{ID: "user_3"})

		assert.Nil(t, u.Metadata)
		// Reads through the bag parser tolerate the nil map.
		assert.Empty(t, u.Metadata["plan_slug"])
	})
}
