package apiclient

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/session"
	"github.com/andresuchdata/retailsense/backend-go/internal/stubbackend"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *stubbackend.Server) {
	t.Helper()
	srv := stubbackend.Start()
	t.Cleanup(srv.Close)
	return NewClient(srv.BaseURL(), 5*time.Second, session.New()), srv
}

func TestClient_GetReturnsRawBody(t *testing.T) {
	client, srv := newTestClient(t)

	raw, err := client.Get(context.Background(), stubbackend.PathSalesTrend, url.Values{"days": {"7"}})

	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data"`)

	req, ok := srv.Last(stubbackend.PathSalesTrend)
	require.True(t, ok)
	assert.Equal(t, "7", req.Query.Get("days"))
	assert.Empty(t, req.Authorization, "no credential should be sent while logged out")
}

func TestClient_SendsBearerFromSession(t *testing.T) {
	client, srv := newTestClient(t)
	client.Session().Login("abc123", time.Hour)

	_, err := client.Get(context.Background(), stubbackend.PathProducts, nil)
	require.NoError(t, err)

	req, _ := srv.Last(stubbackend.PathProducts)
	assert.Equal(t, "Bearer abc123", req.Authorization)
}

func TestClient_NonSuccessStatusPropagates(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Fail(stubbackend.PathProductStats, http.StatusInternalServerError)

	_, err := client.Get(context.Background(), stubbackend.PathProductStats, nil)

	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, stubbackend.PathProductStats, statusErr.Path)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_UnauthorizedIsRecognisable(t *testing.T) {
	client, srv := newTestClient(t)
	srv.RequireToken("secret")

	_, err := client.Get(context.Background(), stubbackend.PathProducts, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_MalformedBody(t *testing.T) {
	client, srv := newTestClient(t)
	srv.SetBody(stubbackend.PathProducts, `{"products": [`)

	_, err := client.Get(context.Background(), stubbackend.PathProducts, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedBody))
}

func TestClient_EmptyBodyDecodesAsNull(t *testing.T) {
	client, srv := newTestClient(t)
	srv.SetBody(stubbackend.PathProducts, "")

	raw, err := client.Get(context.Background(), stubbackend.PathProducts, nil)

	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestClient_NetworkErrorPropagates(t *testing.T) {
	srv := stubbackend.Start()
	base := srv.BaseURL()
	srv.Close()

	client := NewClient(base, time.Second, nil)
	_, err := client.Get(context.Background(), stubbackend.PathProducts, nil)

	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestClient_TimeoutSurfacesAsError(t *testing.T) {
	srv := stubbackend.Start()
	defer srv.Close()
	srv.Set(stubbackend.PathProducts, stubbackend.Route{Body: `[]`, Delay: time.Second})

	client := NewClient(srv.BaseURL(), 50*time.Millisecond, nil)
	_, err := client.Get(context.Background(), stubbackend.PathProducts, nil)

	assert.Error(t, err)
}

func TestClient_LoginStoresToken(t *testing.T) {
	client, srv := newTestClient(t)

	auth, err := client.Login(context.Background(), "owner@retailsense.test", "secret")

	require.NoError(t, err)
	assert.Equal(t, "stub-token", auth.Token)
	assert.Equal(t, "ADMIN", auth.User.Role)
	assert.Equal(t, "stub-token", client.Session().Token())
	assert.False(t, client.Session().IsExpired())

	srv.RequireToken("stub-token")
	_, err = client.Get(context.Background(), stubbackend.PathProducts, nil)
	assert.NoError(t, err)

	client.Logout()
	_, err = client.Get(context.Background(), stubbackend.PathProducts, nil)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_LoginRejected(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Login(context.Background(), "", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, client.Session().Authenticated())
}

func TestClient_LogsErrorStatusAtDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	client, srv := newTestClient(t)
	srv.Fail(stubbackend.PathProducts, http.StatusBadGateway)

	_, err := client.Get(context.Background(), stubbackend.PathProducts, nil)

	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), `"status":502`)
	assert.Contains(t, buf.String(), `"path":"/products"`)
	assert.Contains(t, buf.String(), "backend returned error status")
}
