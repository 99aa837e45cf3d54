package services_test

import (
	"context"
	"fmt"
	"testing"

	"instaclone/models"
	"instaclone/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Register(ctx, services.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.False(t, u.ID.IsZero())
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, services.VerifyPassword("secret123", u.PasswordHash))

	stored := e.store.User(u.ID)
	assert.Empty(t, stored.Following)
	assert.Empty(t, stored.Followers)
}

func TestRegister_Conflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	_, err := e.users.Register(ctx, services.RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Equal(t, "Username or email already exists.", services.MessageOf(err))

	_, err = e.users.Register(ctx, services.RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, services.ErrConflict)

	// Uniqueness is case-sensitive.
	_, err = e.users.Register(ctx, services.RegisterInput{Username: "Alice", Email: "Alice@example.com", Password: "secret123"})
	assert.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   services.RegisterInput
		msg  string
	}{
		{"short username", services.RegisterInput{Username: "al", Email: "al@example.com", Password: "secret123"}, "Username must be at least 3 characters."},
		{"long username", services.RegisterInput{Username: fmt.Sprintf("%031d", 0), Email: "x@example.com", Password: "secret123"}, "Username must be at most 30 characters."},
		{"bad email", services.RegisterInput{Username: "alice", Email: "nope", Password: "secret123"}, "Email must be a valid email address."},
		{"short password", services.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "12345"}, "Password must be at least 6 characters."},
		{"missing email", services.RegisterInput{Username: "alice", Password: "secret123"}, "Email is required."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.users.Register(ctx, tc.in)
			assert.ErrorIs(t, err, services.ErrValidation)
			assert.Equal(t, tc.msg, services.MessageOf(err))
		})
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")

	token, err := e.users.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	got, err := e.auth.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, wrongPassword := e.users.Login(ctx, "alice", "wrong")
	_, unknownUser := e.users.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, wrongPassword, services.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, services.ErrInvalidCredentials)
	assert.Equal(t, services.MessageOf(wrongPassword), services.MessageOf(unknownUser))
}

func TestToggleFollow_TwiceRestoresState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	before := []models.User{e.store.User(alice.ID), e.store.User(bob.ID)}

	res, err := e.users.ToggleFollow(ctx, alice, bob.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, services.Followed, res)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, e.store.User(alice.ID).Following)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, e.store.User(bob.ID).Followers)

	res, err = e.users.ToggleFollow(ctx, e.reload(alice), bob.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, services.Unfollowed, res)

	after := []models.User{e.store.User(alice.ID), e.store.User(bob.ID)}
	assert.Equal(t, before, after)
}

func TestToggleFollow_UsesStoredState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	_, err := e.users.ToggleFollow(ctx, alice, bob.ID.Hex())
	require.NoError(t, err)

	// alice is the stale pre-follow copy.
	res, err := e.users.ToggleFollow(ctx, alice, bob.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, services.Unfollowed, res)
}

func TestToggleFollow_Self(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")

	res, err := e.users.ToggleFollow(context.Background(), alice, alice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, services.FollowSelf, res)
	assert.Empty(t, e.store.User(alice.ID).Following)
	assert.Empty(t, e.store.User(alice.ID).Followers)
}

func TestToggleFollow_NotFound(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")

	_, err := e.users.ToggleFollow(context.Background(), alice, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, "User to follow/unfollow not found.", services.MessageOf(err))

	_, err = e.users.ToggleFollow(context.Background(), alice, "not-an-id")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, name := range []string{"alice", "malice", "bob", "ALIce_w"} {
		e.register(t, name)
	}

	res, err := e.users.SearchUsers(ctx, "lic", page(0, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Len(t, res.Items, 2)
	assert.True(t, res.HasNext)
	assert.False(t, res.HasPrev)

	res, err = e.users.SearchUsers(ctx, "lic", page(2, 2))
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.False(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestSearchUsers_NoMatch(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")

	res, err := e.users.SearchUsers(context.Background(), "zzz", page(0, 10))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.False(t, res.HasNext)
	assert.False(t, res.HasPrev)
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	e.post(t, bob, "first #one", "life")
	e.post(t, bob, "second", "life")

	_, err := e.users.ToggleFollow(ctx, alice, bob.ID.Hex())
	require.NoError(t, err)

	p, err := e.users.Profile(ctx, e.reload(alice), bob.ID.Hex(), page(0, 10))
	require.NoError(t, err)
	assert.Equal(t, "bob", p.User.Username)
	assert.Equal(t, 1, p.FollowersCount)
	assert.Equal(t, 0, p.FollowingCount)
	assert.True(t, p.IsFollowing)
	assert.False(t, p.IsSelf)
	assert.EqualValues(t, 2, p.Posts.Total)
	assert.Equal(t, "second", p.Posts.Items[0].Caption)

	_, err = e.users.Profile(ctx, alice, primitive.NewObjectID().Hex(), page(0, 10))
	assert.ErrorIs(t, err, services.ErrNotFound)
}
