package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/token"
	tokenfakerepo "github.com/jrsteele09/go-sales-client/token/repofake"
	"github.com/jrsteele09/go-sales-client/users"
	"github.com/stretchr/testify/require"
)

func testUser() *users.User {
	return &users.User{ID: 1, Name: "Admin", Email: "admin@example.com", Role: users.RoleAdmin, Active: true}
}

func TestWriteReadRoundTrip(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	store := token.NewKVStore(kv)

	require.NoError(t, store.Write(token.StoredCredential{Token: "t1", User: testUser()}))

	cred, err := store.Read()
	require.NoError(t, err)
	require.True(t, cred.Complete())
	require.Equal(t, "t1", cred.Token)
	require.Equal(t, testUser(), cred.User)

	tok, err := store.AccessToken()
	require.NoError(t, err)
	require.Equal(t, "t1", tok)

	raw, ok, err := kv.Get(token.KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"id":1,"nombre":"Admin","email":"admin@example.com","rol":"admin","activo":true}`, raw)
}

func TestEmptyStore(t *testing.T) {
	store := token.NewKVStore(tokenfakerepo.NewFakeKV())

	cred, err := store.Read()
	require.NoError(t, err)
	require.True(t, cred.Empty())
	require.False(t, cred.Complete())

	tok, err := store.AccessToken()
	require.NoError(t, err)
	require.Empty(t, tok)
}

func TestPartialState(t *testing.T) {
	t.Run("token without user", func(t *testing.T) {
		kv := tokenfakerepo.NewFakeKV()
		require.NoError(t, kv.Set(token.KeyAccessToken, "t1"))

		cred, err := token.NewKVStore(kv).Read()
		require.NoError(t, err)
		require.False(t, cred.Complete())
		require.False(t, cred.Empty())
		require.Equal(t, "t1", cred.Token)
	})

	t.Run("user without token", func(t *testing.T) {
		kv := tokenfakerepo.NewFakeKV()
		require.NoError(t, kv.Set(token.KeyUser, `{"id":1,"rol":"admin"}`))

		cred, err := token.NewKVStore(kv).Read()
		require.NoError(t, err)
		require.False(t, cred.Complete())
		require.NotNil(t, cred.User)
	})

	t.Run("malformed user", func(t *testing.T) {
		kv := tokenfakerepo.NewFakeKV()
		require.NoError(t, kv.Set(token.KeyAccessToken, "t1"))
		require.NoError(t, kv.Set(token.KeyUser, `{not json`))

		cred, err := token.NewKVStore(kv).Read()
		require.NoError(t, err)
		require.False(t, cred.Complete())
		require.Nil(t, cred.User)
	})
}

func TestWriteRejectsIncomplete(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	store := token.NewKVStore(kv)

	require.ErrorIs(t, store.Write(token.StoredCredential{Token: "t1"}), token.ErrIncompleteCredential)
	require.ErrorIs(t, store.Write(token.StoredCredential{User: testUser()}), token.ErrIncompleteCredential)
	require.Zero(t, kv.Len())
}

func TestWriteUserFailureDropsToken(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	kv.FailOn[token.KeyUser] = errors.New("disk full")
	store := token.NewKVStore(kv)

	err := store.Write(token.StoredCredential{Token: "t1", User: testUser()})
	require.ErrorIs(t, err, apperrors.ErrStorage)

	_, ok, _ := kv.Get(token.KeyAccessToken)
	require.False(t, ok)
}

func TestClearRemovesBothKeys(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	store := token.NewKVStore(kv)
	require.NoError(t, store.Write(token.StoredCredential{Token: "t1", User: testUser()}))

	require.NoError(t, store.Clear())
	require.Zero(t, kv.Len())

	// Idempotent
	require.NoError(t, store.Clear())
}

func TestClearContinuesAfterFailure(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	require.NoError(t, kv.Set(token.KeyAccessToken, "t1"))
	require.NoError(t, kv.Set(token.KeyUser, `{"id":1}`))
	kv.FailOn[token.KeyAccessToken] = errors.New("locked")

	err := token.NewKVStore(kv).Clear()
	require.ErrorIs(t, err, apperrors.ErrStorage)

	delete(kv.FailOn, token.KeyAccessToken)
	_, ok, _ := kv.Get(token.KeyUser)
	require.False(t, ok)
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin@example.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, ok := token.ExpiresAt(signed)
	require.True(t, ok)
	require.True(t, exp.Equal(got))

	_, ok = token.ExpiresAt("opaque-token")
	require.False(t, ok)
	_, ok = token.ExpiresAt("")
	require.False(t, ok)
}
