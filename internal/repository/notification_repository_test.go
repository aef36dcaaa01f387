package repository

import (
	"context"
	"testing"
	"time"

	"ondot-chat/internal/domain/notification"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	repos, _ := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")
	base := time.Now().Add(-time.Hour)

	create := func(t *testing.T, domain string, at time.Time) notification.Notification {
		n := notification.Notification{
			SenderID:      uuid.NullUUID{UUID: alice, Valid: true},
			ReceiverID:    bob,
			Message:       "alice wants to connect",
			Kind:          notification.KindContactRequested,
			ServiceDomain: domain,
			CreatedAt:     at,
		}
		require.NoError(t, repos.Notifications.Create(ctx, &n))
		return n
	}

	meeting := create(t, "MEETING", base)
	hobby := create(t, "HOBBY", base.Add(time.Minute))
	system := notification.Notification{ReceiverID: bob, Message: "welcome", Kind: notification.KindSystem, CreatedAt: base.Add(2 * time.Minute)}
	require.NoError(t, repos.Notifications.Create(ctx, &system))

	t.Run("should keep a null sender for system notifications", func(t *testing.T) {
		req := require.New(t)

		got, err := repos.Notifications.GetByID(ctx, system.ID)

		req.NoError(err)
		req.False(got.SenderID.Valid)
		req.Equal(alice, meeting.SenderID.UUID)
	})

	t.Run("should filter by domain and order newest first", func(t *testing.T) {
		req := require.New(t)

		all, err := repos.Notifications.ListForUser(ctx, bob, "")
		req.NoError(err)
		req.Len(all, 3)
		req.Equal(system.ID, all[0].ID)

		onlyHobby, err := repos.Notifications.ListForUser(ctx, bob, "HOBBY")
		req.NoError(err)
		req.Len(onlyHobby, 1)
		req.Equal(hobby.ID, onlyHobby[0].ID)
	})

	t.Run("should count unread and hide deleted", func(t *testing.T) {
		req := require.New(t)

		count, err := repos.Notifications.CountUnread(ctx, bob)
		req.NoError(err)
		req.EqualValues(3, count)

		req.NoError(repos.Notifications.MarkShown(ctx, meeting.ID))
		req.NoError(repos.Notifications.MarkDeleted(ctx, hobby.ID))

		count, err = repos.Notifications.CountUnread(ctx, bob)
		req.NoError(err)
		req.EqualValues(1, count)

		all, err := repos.Notifications.ListForUser(ctx, bob, "")
		req.NoError(err)
		req.Len(all, 2)
	})

	t.Run("should fail on unknown ids", func(t *testing.T) {
		req := require.New(t)

		req.ErrorIs(repos.Notifications.MarkShown(ctx, 9999), ondot_errors.ErrNotFound)
		_, err := repos.Notifications.GetByID(ctx, 9999)
		req.ErrorIs(err, ondot_errors.ErrNotFound)
	})
}
