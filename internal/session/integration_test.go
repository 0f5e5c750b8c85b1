package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
	"github.com/leavalz/Natural-Triade-Shop/internal/commercetest"
	"github.com/leavalz/Natural-Triade-Shop/internal/kv"
	"github.com/leavalz/Natural-Triade-Shop/internal/notify"
	"github.com/leavalz/Natural-Triade-Shop/internal/remote"
	"github.com/leavalz/Natural-Triade-Shop/internal/session"
)

func setup(t *testing.T) (*commercetest.Server, *remote.Client, *session.Store, kv.Store, *notify.Feed) {
	t.Helper()

	api := commercetest.New()
	t.Cleanup(api.Close)
	api.AddUser("ana", "ana@example.com", "secret", commerce.RoleUser)

	client, err := remote.New(remote.Config{BaseURL: api.URL})
	require.NoError(t, err)

	store := kv.NewMemoryStore()
	feed := notify.NewFeed(20)
	s := session.New(context.Background(), client, store, session.WithNotifier(feed))
	client.UseCredentials(s)
	client.OnUnauthorized(s.Expire)

	return api, client, s, store, feed
}

func TestLoginAgainstCommerceAPI(t *testing.T) {
	ctx := context.Background()
	_, _, s, store, _ := setup(t)

	require.NoError(t, s.Login(ctx, "ana", "secret"))

	assert.True(t, s.Authenticated())
	assert.False(t, s.IsAdmin())
	assert.Equal(t, "ana", s.User().Username)

	_, err := store.Get(ctx, session.KeyToken)
	assert.NoError(t, err)
}

func TestLoginByEmail(t *testing.T) {
	_, _, s, _, _ := setup(t)

	require.NoError(t, s.Login(context.Background(), "ana@example.com", "secret"))
	assert.Equal(t, "ana", s.User().Username)
}

func TestLoginWrongPasswordAgainstCommerceAPI(t *testing.T) {
	_, _, s, _, feed := setup(t)

	require.Error(t, s.Login(context.Background(), "ana", "wrong"))

	assert.Nil(t, s.User())
	assert.False(t, s.IsLoading())
	notes := feed.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, "Incorrect credentials", notes[0].Message)
}

func TestLoginIdentityLookupFailure(t *testing.T) {
	ctx := context.Background()
	api, _, s, store, feed := setup(t)
	api.FailIdentity(true)

	require.Error(t, s.Login(ctx, "ana", "secret"))

	assert.False(t, s.Authenticated())
	_, err := store.Get(ctx, session.KeyToken)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	notes := feed.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, "identity lookup failed", notes[0].Message)
}

func TestRevokedCredentialExpiresSession(t *testing.T) {
	ctx := context.Background()
	api, client, s, store, _ := setup(t)

	require.NoError(t, s.Login(ctx, "ana", "secret"))
	token, _ := s.Credential()
	api.Revoke(token)

	var ended bool
	s.OnEnd(func(context.Context) { ended = true })

	_, err := client.GetCart(ctx)
	require.ErrorIs(t, err, remote.ErrUnauthorized)

	assert.False(t, s.Authenticated())
	assert.True(t, ended)
	_, err = store.Get(ctx, session.KeyUser)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	_, _, s, _, _ := setup(t)

	profile := commerce.Profile{Email: "bea@example.com", Username: "bea", Password: "long-password"}
	require.NoError(t, s.Register(ctx, profile))
	assert.False(t, s.Authenticated())

	require.NoError(t, s.Login(ctx, "bea", "long-password"))
	assert.Equal(t, "bea@example.com", s.User().Email)
}
