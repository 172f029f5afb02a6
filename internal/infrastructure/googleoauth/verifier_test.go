package googleoauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("id_token"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifySuccess(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{
		"sub": "google-123",
		"email": "g@x.com",
		"aud": "client-id",
		"given_name": "Ada",
		"family_name": "Lovelace",
		"email_verified": "true"
	}`)
	v := NewVerifier("client-id", srv.URL)

	claims, err := v.Verify(context.Background(), "credential")
	require.NoError(t, err)
	assert.Equal(t, "google-123", claims.GoogleID)
	assert.Equal(t, "g@x.com", claims.Email)
	assert.Equal(t, "Ada", claims.FirstName)
	assert.Equal(t, "Lovelace", claims.LastName)
	assert.True(t, claims.EmailVerified)
}

func TestVerifyUnverifiedEmail(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{
		"sub": "google-123",
		"email": "g@x.com",
		"aud": "client-id",
		"email_verified": "false"
	}`)
	v := NewVerifier("client-id", srv.URL)

	claims, err := v.Verify(context.Background(), "credential")
	require.NoError(t, err)
	assert.False(t, claims.EmailVerified)
}

func TestVerifyAudienceMismatch(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{
		"sub": "google-123",
		"email": "g@x.com",
		"aud": "someone-else"
	}`)
	v := NewVerifier("client-id", srv.URL)

	_, err := v.Verify(context.Background(), "credential")
	assert.Error(t, err)
}

func TestVerifyMissingClaims(t *testing.T) {
	for name, body := range map[string]string{
		"no sub":   `{"email": "g@x.com", "aud": "client-id"}`,
		"no email": `{"sub": "google-123", "aud": "client-id"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, body)
			v := NewVerifier("client-id", srv.URL)

			_, err := v.Verify(context.Background(), "credential")
			assert.Error(t, err)
		})
	}
}

func TestVerifyRejectedToken(t *testing.T) {
	srv := newServer(t, http.StatusBadRequest, `{"error": "invalid_token"}`)
	v := NewVerifier("client-id", srv.URL)

	_, err := v.Verify(context.Background(), "credential")
	assert.Error(t, err)
}
