package repository

import (
	"context"
	"testing"
	"time"

	"ondot-chat/internal/domain/user"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Profiles(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repos, _ := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")

	profiles, err := repos.Users.GetProfiles(ctx, []uuid.UUID{alice, bob, uuid.New()})

	req.NoError(err)
	req.Len(profiles, 2)
	req.Equal("alice", profiles[alice].DisplayName)

	err = repos.Users.CreateProfile(ctx, user.Profile{ID: alice, DisplayName: "dup"}, time.Now())
	req.ErrorIs(err, ondot_errors.ErrAlreadyExists)
}

func TestUserRepository_Sessions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repos, _ := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	now := time.Now()

	s := user.UserSession{ID: uuid.New(), UserID: alice, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	req.NoError(repos.Users.CreateSession(ctx, &s))

	got, err := repos.Users.GetSessionByID(ctx, s.ID)
	req.NoError(err)
	req.True(got.Valid(time.Now()))

	req.NoError(repos.Users.RevokeSession(ctx, s.ID))
	got, err = repos.Users.GetSessionByID(ctx, s.ID)
	req.NoError(err)
	req.False(got.Valid(time.Now()))

	_, err = repos.Users.GetSessionByID(ctx, uuid.New())
	req.ErrorIs(err, ondot_errors.ErrNotFound)
}

func TestDeviceRepository(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repos, _ := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")

	req.NoError(repos.Devices.AddPushToken(ctx, &user.PushToken{UserID: alice, Platform: "ios", Token: "ExponentPushToken[a]", CreatedAt: time.Now()}))
	req.NoError(repos.Devices.AddPushToken(ctx, &user.PushToken{UserID: alice, Platform: "android", Token: "ExponentPushToken[b]", CreatedAt: time.Now()}))

	tokens, err := repos.Devices.GetActivePushTokens(ctx, alice)
	req.NoError(err)
	req.Len(tokens, 2)

	// the same device signs in as bob
	req.NoError(repos.Devices.AddPushToken(ctx, &user.PushToken{UserID: bob, Platform: "android", Token: "ExponentPushToken[b]", CreatedAt: time.Now()}))
	req.NoError(repos.Devices.DeactivatePushToken(ctx, "ExponentPushToken[a]"))

	tokens, err = repos.Devices.GetActivePushTokens(ctx, alice)
	req.NoError(err)
	req.Empty(tokens)
	tokens, err = repos.Devices.GetActivePushTokens(ctx, bob)
	req.NoError(err)
	req.Len(tokens, 1)
}
