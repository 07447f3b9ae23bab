package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
)

type recordingNotifier struct {
	logins  []int
	logouts []int
}

func (n *recordingNotifier) NotifyLogin(userID int, _ string) { n.logins = append(n.logins, userID) }
func (n *recordingNotifier) NotifyLogout(userID int)          { n.logouts = append(n.logouts, userID) }

func TestAuthRegisterLoginAuthenticate(t *testing.T) {
	users := newFakeUsers()
	notifier := &recordingNotifier{}
	svc := NewAuthService(users, utils.NewTokenIssuer("secret", time.Hour), notifier)
	ctx := context.Background()

	u, err := svc.Register(ctx, " Boris@Example.com ", "hunter2hunter2", "Boris", account.RoleMaster)
	require.NoError(t, err)
	assert.Equal(t, "boris@example.com", u.Email)
	assert.NotEqual(t, "hunter2hunter2", u.PasswordHash)

	_, err = svc.Register(ctx, "boris@example.com", "hunter2hunter2", "Boris", account.RoleMaster)
	assert.ErrorIs(t, err, utils.ErrConflict)

	_, _, err = svc.Login(ctx, "boris@example.com", "wrong-password")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	token, got, err := svc.Login(ctx, "BORIS@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []int{u.ID}, notifier.logins)

	actor, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, account.Actor{ID: u.ID, Role: account.RoleMaster, Token: token}, actor)

	svc.Logout(actor)
	assert.Equal(t, []int{u.ID}, notifier.logouts)
}

func TestAuthRejects(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users, utils.NewTokenIssuer("secret", time.Hour), nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "short", "A", account.RoleClient)
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = svc.Register(ctx, "a@b.c", "long-enough", "A", account.RoleGuest)
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, _, err = svc.Login(ctx, "nobody@b.c", "whatever1")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	actor, err := svc.Authenticate("not-a-token")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
	assert.False(t, actor.Authenticated())

	other := utils.NewTokenIssuer("other-secret", time.Hour)
	token, err := other.GenerateJWT(1, "a@b.c", "client")
	require.NoError(t, err)
	_, err = svc.Authenticate(token)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)

	u, err := svc.Register(ctx, "inactive@b.c", "long-enough", "I", account.RoleClient)
	require.NoError(t, err)
	u.IsActive = false
	_, _, err = svc.Login(ctx, "inactive@b.c", "long-enough")
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
}
