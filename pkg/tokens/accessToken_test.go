package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(15 * time.Minute)
	token, err := NewAccessToken(7, AdminAccessID, exp, testSecret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(token, testSecret)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)
	assert.True(t, claims.Privileged())
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessToken_Rejections(t *testing.T) {
	t.Parallel()

	expired, err := NewAccessToken(1, 2, time.Now().Add(-time.Minute), testSecret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, testSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	valid, err := NewAccessToken(1, 2, time.Now().Add(time.Minute), testSecret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(valid, []byte("other-secret"))
	require.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{AccessID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(unsigned, testSecret)
	require.Error(t, err)
}

func TestAccessClaims_UserID(t *testing.T) {
	t.Parallel()

	c := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	require.Error(t, err)

	c.Subject = "0"
	_, err = c.UserID()
	require.Error(t, err)

	c.AccessID = 2
	assert.False(t, c.Privileged())
}
