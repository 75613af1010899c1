package mediaauth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestExchange_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost/callback", r.PostForm.Get("redirect_uri"))

		json.NewEncoder(w).Encode(Token{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
		})
	}))
	defer srv.Close()

	e := NewHTTPExchanger(srv.Client(), srv.URL, "client-id", "client-secret", "http://localhost/callback", testLogger())

	token, err := e.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "access-1", token.AccessToken)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.Equal(t, 3600, token.ExpiresIn)
}

func TestRefresh_KeepsRefreshTokenWhenOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(Token{AccessToken: "access-2", ExpiresIn: 3600})
	}))
	defer srv.Close()

	e := NewHTTPExchanger(srv.Client(), srv.URL, "client-id", "client-secret", "", testLogger())

	token, err := e.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)
	assert.Equal(t, "refresh-1", token.RefreshToken)
}

func TestExchange_ProviderRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	e := NewHTTPExchanger(srv.Client(), srv.URL, "client-id", "client-secret", "", testLogger())

	_, err := e.Exchange(context.Background(), "stale-code")
	assert.ErrorIs(t, err, common.ErrorUpstream)
}

func TestExchange_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	e := NewHTTPExchanger(srv.Client(), srv.URL, "client-id", "client-secret", "", testLogger())

	_, err := e.Exchange(context.Background(), "auth-code")
	assert.ErrorIs(t, err, common.ErrorUpstream)
}

func TestExchange_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	e := NewHTTPExchanger(http.DefaultClient, srv.URL, "client-id", "client-secret", "", testLogger())

	_, err := e.Exchange(context.Background(), "auth-code")
	assert.ErrorIs(t, err, common.ErrorUpstream)
}
