package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	s, err := store.Create(ctx, "doc-1", records.RoleDoctor)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.UserID)
	assert.Equal(t, records.RoleDoctor, got.Role)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	store := NewMemoryStore(30 * time.Minute)
	store.now = func() time.Time { return now }

	s, err := store.Create(ctx, "doc-1", records.RoleDoctor)
	require.NoError(t, err)

	now = now.Add(29 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecodeSession(t *testing.T) {
	s, err := decodeSession("abc", []byte(`{"userId":"doc-1","role":"admin","createdAt":"2024-06-01T09:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, records.RoleAdmin, s.Role)

	_, err = decodeSession("abc", []byte(`{}`))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = decodeSession("abc", []byte(`not json`))
	assert.Error(t, err)

	assert.Equal(t, "session:abc", sessionKey("abc"))
}

func sign(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifierAcceptsSignedAssertion(t *testing.T) {
	v := NewVerifier("s3cret", "https://id.clinic.test")

	token := sign(t, "s3cret", IdentityClaims{
		Email:     "grace@clinic.test",
		FirstName: "Grace",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "https://id.clinic.test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})

	profile, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", profile.ID)
	require.NotNil(t, profile.Email)
	assert.Equal(t, "grace@clinic.test", *profile.Email)
	assert.Equal(t, "Grace", *profile.FirstName)
	assert.Nil(t, profile.LastName)
	assert.Nil(t, profile.Role)
}

func TestVerifierRejects(t *testing.T) {
	v := NewVerifier("s3cret", "https://id.clinic.test")
	valid := jwt.RegisteredClaims{Subject: "user-42", Issuer: "https://id.clinic.test"}

	cases := map[string]string{
		"wrong key":    sign(t, "other", IdentityClaims{RegisteredClaims: valid}),
		"wrong issuer": sign(t, "s3cret", IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42", Issuer: "evil"}}),
		"no subject":   sign(t, "s3cret", IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "https://id.clinic.test"}}),
		"expired": sign(t, "s3cret", IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "https://id.clinic.test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}),
		"garbage": "not-a-jwt",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidAssertion)
		})
	}
}
