package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/errors"
)

func newKeycloakServer(t *testing.T, createStatus int, tokenCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/accelerator/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 300})
	})
	mux.HandleFunc("/admin/realms/accelerator/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodPost:
			var u User
			require.NoError(t, json.NewDecoder(r.Body).Decode(&u))
			assert.Equal(t, u.Email, u.Username)
			require.Len(t, u.Credentials, 1)
			if createStatus == http.StatusCreated {
				w.Header().Set("Location", "http://kc/admin/realms/accelerator/users/kc-123")
			}
			w.WriteHeader(createStatus)
		case http.MethodGet:
			assert.Equal(t, "founder@startup.io", r.URL.Query().Get("email"))
			_ = json.NewEncoder(w).Encode([]User{{ID: "kc-existing", Email: "founder@startup.io"}})
		}
	})
	return httptest.NewServer(mux)
}

func TestCreateIdentity_Created(t *testing.T) {
	var tokenCalls int32
	srv := newKeycloakServer(t, http.StatusCreated, &tokenCalls)
	defer srv.Close()

	kc := NewKeycloakClient(srv.URL+"/", "accelerator", "portal", "secret")
	id, err := kc.CreateIdentity(context.Background(), "founder@startup.io", "pw", "Dana", "Levi")
	require.NoError(t, err)
	assert.Equal(t, "kc-123", id)

	_, err = kc.CreateIdentity(context.Background(), "founder@startup.io", "pw", "Dana", "Levi")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls), "token is cached")
}

func TestCreateIdentity_ConflictReturnsExisting(t *testing.T) {
	var tokenCalls int32
	srv := newKeycloakServer(t, http.StatusConflict, &tokenCalls)
	defer srv.Close()

	kc := NewKeycloakClient(srv.URL, "accelerator", "portal", "secret")
	id, err := kc.CreateIdentity(context.Background(), "founder@startup.io", "pw", "Dana", "Levi")
	require.NoError(t, err)
	assert.Equal(t, "kc-existing", id)
}

func TestCreateIdentity_ServerErrorIsRetryable(t *testing.T) {
	var tokenCalls int32
	srv := newKeycloakServer(t, http.StatusServiceUnavailable, &tokenCalls)
	defer srv.Close()

	kc := NewKeycloakClient(srv.URL, "accelerator", "portal", "secret")
	_, err := kc.CreateIdentity(context.Background(), "founder@startup.io", "pw", "Dana", "Levi")
	require.Error(t, err)

	std := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeIdentityProviderFailed, std.Code)
	assert.True(t, std.Retryable)
}
