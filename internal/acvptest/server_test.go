package acvptest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/acvp-tools/libacvp-go/internal/action"
	"github.com/acvp-tools/libacvp-go/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCoordinator(t *testing.T, srv *Server) *action.Coordinator {
	t.Helper()
	tr, err := transport.New(transport.Config{})
	require.NoError(t, err)
	login := func(ctx context.Context) (string, error) {
		status, body, err := tr.Post(ctx, srv.URL()+"/acvp/v1/login", nil, transport.NoCredential)
		require.NoError(t, err)
		require.Equal(t, 200, status)
		var resp struct {
			AccessToken string `json:"accessToken"`
		}
		require.NoError(t, json.Unmarshal(body, &resp))
		return resp.AccessToken, nil
	}
	return action.New(tr, login)
}

func TestGetVectorSetWithValidToken(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.VectorSets["101"] = json.RawMessage(`{"vsId":101,"algorithm":"ACVP-TDES-ECB"}`)

	coord := newCoordinator(t, srv)
	coord.SetJWT(srv.ValidJWT)

	status, body, err := coord.Get(context.Background(), srv.URL()+"/acvp/v1/testSessions/1/vectorSets/101/")
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), "ACVP-TDES-ECB")
}

func TestGetRefreshesOnExpiredToken(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.VectorSets["101"] = json.RawMessage(`{"vsId":101,"algorithm":"ACVP-TDES-ECB"}`)

	coord := newCoordinator(t, srv)
	coord.SetJWT("")

	status, _, err := coord.Get(context.Background(), srv.URL()+"/acvp/v1/testSessions/1/vectorSets/101/")
	require.NoError(t, err)
	assert.Equal(t, 200, status)
}

func TestSubmitResultsImmediateAccept(t *testing.T) {
	srv := New()
	defer srv.Close()

	coord := newCoordinator(t, srv)
	coord.SetJWT(srv.ValidJWT)

	status, _, err := coord.PostPending(context.Background(), srv.URL()+"/acvp/v1/testSessions/1/vectorSets/101/results",
		map[string]string{"vsId": "101"})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, string(srv.Submissions["101"]), "101")
}

func TestSubmitResultsPollsUntilReady(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.PendingPolls = 2

	tr, err := transport.New(transport.Config{})
	require.NoError(t, err)
	login := func(ctx context.Context) (string, error) { return srv.ValidJWT, nil }
	coord := action.NewWithPollInterval(tr, login, 0)
	coord.SetJWT(srv.ValidJWT)

	status, body, err := coord.PostPending(context.Background(), srv.URL()+"/acvp/v1/testSessions/1/vectorSets/101/results",
		map[string]string{"vsId": "101"})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), "passed")
}

func TestLoginFailureSurfacesAsError(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.LoginFailN = 1

	tr, err := transport.New(transport.Config{})
	require.NoError(t, err)

	login := func(ctx context.Context) (string, error) {
		status, _, err := tr.Post(ctx, srv.URL()+"/acvp/v1/login", nil, transport.NoCredential)
		require.NoError(t, err)
		if status != 200 {
			return "", assert.AnError
		}
		return srv.ValidJWT, nil
	}

	coord := action.New(tr, login)
	coord.SetJWT("")

	_, _, err = coord.Get(context.Background(), srv.URL()+"/acvp/v1/testSessions/1/vectorSets/999/")
	assert.Error(t, err)
}
