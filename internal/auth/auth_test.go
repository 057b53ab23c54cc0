package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectSuccess(t *testing.T) {
	assert.Equal(t, Success, Inspect(200, nil))
}

func TestInspectJwtExpired(t *testing.T) {
	assert.Equal(t, OutcomeJwtExpired, Inspect(401, []byte(`{"error":"JWT expired"}`)))
}

func TestInspectJwtInvalid(t *testing.T) {
	assert.Equal(t, OutcomeJwtInvalid, Inspect(401, []byte(`{"error":"JWT signature does not match locally computed signature"}`)))
}

func TestInspectOtherUnauthorizedIsTransportFail(t *testing.T) {
	assert.Equal(t, OutcomeTransportFail, Inspect(401, []byte(`{"error":"some other reason"}`)))
}

func TestInspectNon401NonSuccessIsTransportFail(t *testing.T) {
	assert.Equal(t, OutcomeTransportFail, Inspect(500, nil))
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLocallyExpiredDetectsPastExp(t *testing.T) {
	tok := signToken(t, time.Now().Add(-time.Hour))
	assert.True(t, LocallyExpired(tok))
}

func TestLocallyExpiredAcceptsFutureExp(t *testing.T) {
	tok := signToken(t, time.Now().Add(time.Hour))
	assert.False(t, LocallyExpired(tok))
}

func TestLocallyExpiredTreatsEmptyAsExpired(t *testing.T) {
	assert.True(t, LocallyExpired(""))
}

func TestControllerDoRefreshesOnceAndRetries(t *testing.T) {
	loginCalls := 0
	c := New(func(ctx context.Context) (string, error) {
		loginCalls++
		return "fresh-token", nil
	})
	c.SetJWT("stale-token")

	actionCalls := 0
	status, _, outcome, err := c.Do(context.Background(), false, func(ctx context.Context, cred Credential) (int, []byte, error) {
		actionCalls++
		if cred.Token == "stale-token" {
			return 401, []byte(`{"error":"JWT expired"}`), nil
		}
		return 200, []byte(`{"ok":true}`), nil
	})

	require.NoError(t, err)
	assert.Equal(t, Success, outcome)
	assert.Equal(t, 200, status)
	assert.Equal(t, 1, loginCalls)
	assert.Equal(t, 2, actionCalls)
	assert.Equal(t, "fresh-token", c.CurrentJWT())
}

func TestControllerDoNeverRetriesTwice(t *testing.T) {
	loginCalls := 0
	c := New(func(ctx context.Context) (string, error) {
		loginCalls++
		return "still-stale", nil
	})
	c.SetJWT("stale-token")

	actionCalls := 0
	_, _, outcome, err := c.Do(context.Background(), false, func(ctx context.Context, cred Credential) (int, []byte, error) {
		actionCalls++
		return 401, []byte(`{"error":"JWT expired"}`), nil
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeJwtExpired, outcome)
	assert.Equal(t, 1, loginCalls)
	assert.Equal(t, 2, actionCalls)
}

func TestControllerDoFailsFastWhenLoginActionExpires(t *testing.T) {
	c := New(func(ctx context.Context) (string, error) {
		t.Fatal("login must never be invoked for a login action")
		return "", nil
	})

	_, _, _, err := c.Do(context.Background(), true, func(ctx context.Context, cred Credential) (int, []byte, error) {
		return 401, []byte(`{"error":"JWT expired"}`), nil
	})

	require.Error(t, err)
}
