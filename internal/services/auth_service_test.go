package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ondot-chat/internal/domain/user"
	"ondot-chat/internal/repository"
	"ondot-chat/internal/services"
	"ondot-chat/mocks"
	"ondot-chat/pkg/database/dbtest"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newSession(t *testing.T, repos repository.Repositories, userID uuid.UUID, ttl time.Duration) user.UserSession {
	t.Helper()
	s := user.UserSession{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
	require.NoError(t, repos.Users.CreateSession(context.Background(), &s))
	return s
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repos := repository.New(db)
	auth := services.NewAuthService(repos.Users, nil, testConfig(), zap.NewNop())
	userID := createUser(t, repos, "alice")

	t.Run("should accept a valid token bound to a live session", func(t *testing.T) {
		req := require.New(t)
		session := newSession(t, repos, userID, time.Hour)
		token, err := auth.IssueAccessToken(userID, session.ID)
		req.NoError(err)

		id, err := auth.Authenticate(ctx, token)

		req.NoError(err)
		req.Equal(userID, id.UserID)
		req.Equal(session.ID, id.SessionID)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		req := require.New(t)
		session := newSession(t, repos, userID, time.Hour)
		claims := services.AccessClaims{
			UserID:    userID.String(),
			SessionID: session.ID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		req.NoError(err)

		_, err = auth.Authenticate(ctx, token)

		req.ErrorIs(err, ondot_errors.ErrUnauthorized)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		req := require.New(t)
		session := newSession(t, repos, userID, time.Hour)
		other := testConfig()
		other.JWTSecret = "someone-else"
		token, err := services.NewAuthService(repos.Users, nil, other, zap.NewNop()).IssueAccessToken(userID, session.ID)
		req.NoError(err)

		_, err = auth.Authenticate(ctx, token)

		req.ErrorIs(err, ondot_errors.ErrUnauthorized)
	})

	t.Run("should reject a revoked session", func(t *testing.T) {
		req := require.New(t)
		session := newSession(t, repos, userID, time.Hour)
		token, err := auth.IssueAccessToken(userID, session.ID)
		req.NoError(err)
		req.NoError(auth.RevokeSession(ctx, session.ID))

		_, err = auth.Authenticate(ctx, token)

		req.ErrorIs(err, ondot_errors.ErrUnauthorized)
	})

	t.Run("should reject a session that expired before the token", func(t *testing.T) {
		req := require.New(t)
		session := newSession(t, repos, userID, -time.Minute)
		token, err := auth.IssueAccessToken(userID, session.ID)
		req.NoError(err)

		_, err = auth.Authenticate(ctx, token)

		req.ErrorIs(err, ondot_errors.ErrUnauthorized)
	})

	t.Run("should reject an unknown session or a session of another user", func(t *testing.T) {
		req := require.New(t)
		token, err := auth.IssueAccessToken(userID, uuid.New())
		req.NoError(err)
		_, err = auth.Authenticate(ctx, token)
		req.ErrorIs(err, ondot_errors.ErrUnauthorized)

		session := newSession(t, repos, userID, time.Hour)
		token, err = auth.IssueAccessToken(uuid.New(), session.ID)
		req.NoError(err)
		_, err = auth.Authenticate(ctx, token)
		req.ErrorIs(err, ondot_errors.ErrUnauthorized)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := auth.Authenticate(ctx, "not-a-jwt")
		require.ErrorIs(t, err, ondot_errors.ErrUnauthorized)

		_, err = auth.Authenticate(ctx, "")
		require.ErrorIs(t, err, ondot_errors.ErrUnauthorized)
	})
}

func TestAuthService_SessionCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := dbtest.Open(t)
	repos := repository.New(db)
	cache := mocks.NewMockSessionCache(ctrl)
	auth := services.NewAuthService(repos.Users, cache, testConfig(), zap.NewNop())
	userID := createUser(t, repos, "alice")

	t.Run("should trust a cached session without reading the store", func(t *testing.T) {
		req := require.New(t)
		// never written to the store
		cached := user.UserSession{ID: uuid.New(), UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
		token, err := auth.IssueAccessToken(userID, cached.ID)
		req.NoError(err)

		cache.EXPECT().GetSession(gomock.Any(), cached.ID).Return(cached, true, nil).Times(1)

		id, err := auth.Authenticate(ctx, token)

		req.NoError(err)
		req.Equal(cached.ID, id.SessionID)
	})

	t.Run("should fill the cache on a miss", func(t *testing.T) {
		req := require.New(t)
		session := newSession(t, repos, userID, time.Hour)
		token, err := auth.IssueAccessToken(userID, session.ID)
		req.NoError(err)

		cache.EXPECT().GetSession(gomock.Any(), session.ID).Return(user.UserSession{}, false, nil).Times(1)
		cache.EXPECT().SetSession(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s user.UserSession) error {
			req.Equal(session.ID, s.ID)
			return nil
		}).Times(1)

		_, err = auth.Authenticate(ctx, token)

		req.NoError(err)
	})

	t.Run("should fall back to the store when the cache fails", func(t *testing.T) {
		req := require.New(t)
		session := newSession(t, repos, userID, time.Hour)
		token, err := auth.IssueAccessToken(userID, session.ID)
		req.NoError(err)

		cache.EXPECT().GetSession(gomock.Any(), session.ID).Return(user.UserSession{}, false, errors.New("redis down")).Times(1)
		cache.EXPECT().SetSession(gomock.Any(), gomock.Any()).Return(errors.New("redis down")).Times(1)

		_, err = auth.Authenticate(ctx, token)

		req.NoError(err)
	})

	t.Run("should invalidate the cache on revoke", func(t *testing.T) {
		req := require.New(t)
		session := newSession(t, repos, userID, time.Hour)

		cache.EXPECT().InvalidateSession(gomock.Any(), session.ID).Return(nil).Times(1)

		req.NoError(auth.RevokeSession(ctx, session.ID))
	})
}

func TestIdentityContext(t *testing.T) {
	req := require.New(t)
	id := services.Identity{UserID: uuid.New(), SessionID: uuid.New()}

	got, ok := services.IdentityFromContext(services.WithIdentity(context.Background(), id))
	req.True(ok)
	req.Equal(id, got)

	_, ok = services.IdentityFromContext(context.Background())
	req.False(ok)
}
