package repository

import (
	"context"
	"testing"
	"time"

	"ondot-chat/internal/domain/user"
	"ondot-chat/pkg/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (Repositories, DBTX) {
	t.Helper()
	db := dbtest.Open(t)
	return New(db), db
}

func createUser(t *testing.T, repos Repositories, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := repos.Users.CreateProfile(context.Background(), user.Profile{ID: id, DisplayName: name}, time.Now())
	require.NoError(t, err)
	return id
}
