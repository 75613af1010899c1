package identity

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "82074fcd-6eef-4caf-bc95-4dac50485fb7"

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestNormalizeID(t *testing.T) {
	got, err := NormalizeID("82074FCD-6EEF-4CAF-BC95-4DAC50485FB7")
	require.NoError(t, err)
	assert.Equal(t, testID, got)

	got, err = NormalizeID("82074fcd6eef4cafbc954dac50485fb7")
	require.NoError(t, err)
	assert.Equal(t, testID, got)

	_, err = NormalizeID("not-an-id")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestStripSeparators(t *testing.T) {
	assert.Equal(t, "82074fcd6eef4cafbc954dac50485fb7", StripSeparators(testID))
}

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+testID, r.URL.Path)
		w.Write([]byte(`{"uuid":"` + testID + `","username":"alice"}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.Client(), srv.URL, srv.URL, testLogger())
	p, err := v.Lookup(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.DisplayName)
	assert.Equal(t, testID, p.ID)
}

func TestLookup_MismatchedProfileIsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uuid":"00000000-0000-0000-0000-000000000000","username":"alice"}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.Client(), srv.URL, srv.URL, testLogger())
	_, err := v.Lookup(context.Background(), testID)
	assert.ErrorIs(t, err, common.ErrorUpstream)
}

func TestLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.Client(), srv.URL, srv.URL, testLogger())
	_, err := v.Lookup(context.Background(), testID)
	assert.ErrorIs(t, err, common.ErrorUpstream)
}

func TestCheckPossession_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		assert.Equal(t, "proof-1", r.URL.Query().Get("serverId"))
		w.Write([]byte(`{"id":"` + StripSeparators(testID) + `","name":"alice"}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.Client(), srv.URL, srv.URL, testLogger())
	err := v.CheckPossession(context.Background(), "alice", "proof-1", testID)
	assert.NoError(t, err)
}

func TestCheckPossession_StaleProofIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.Client(), srv.URL, srv.URL, testLogger())
	err := v.CheckPossession(context.Background(), "alice", "proof-1", testID)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestCheckPossession_WrongAccountIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"ffffffffffffffffffffffffffffffff","name":"alice"}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.Client(), srv.URL, srv.URL, testLogger())
	err := v.CheckPossession(context.Background(), "alice", "proof-1", testID)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
