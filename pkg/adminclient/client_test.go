package adminclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	identity := NewIdentityProvider(filepath.Join(t.TempDir(), "client_id"))
	return NewClient(server.URL, identity)
}

func TestClientValidatePin_Success(t *testing.T) {
	var gotBody validateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/validate-pin", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	})

	result, err := client.ValidatePin(context.Background(), "1234")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "1234", gotBody.Pin)
	assert.Regexp(t, clientKeyPattern, gotBody.ClientID)
}

func TestClientValidatePin_InvalidPin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":"Invalid PIN. 3 attempts remaining.","attemptsRemaining":3}`))
	})

	result, err := client.ValidatePin(context.Background(), "0000")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.False(t, result.Locked)
	require.NotNil(t, result.AttemptsRemaining)
	assert.Equal(t, 3, *result.AttemptsRemaining)
	assert.Equal(t, "Invalid PIN. 3 attempts remaining.", result.Error)
}

func TestClientValidatePin_LockedOut(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"success":false,"error":"Too many failed attempts. Try again in 12 minutes.","locked":true}`))
	})

	result, err := client.ValidatePin(context.Background(), "0000")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.True(t, result.Locked)
	assert.Nil(t, result.AttemptsRemaining)
}

func TestClientValidatePin_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Server error"}`))
	})

	result, err := client.ValidatePin(context.Background(), "1234")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Server error", result.Error)
}

func TestClientValidatePin_ConnectionRefused(t *testing.T) {
	identity := NewIdentityProvider(filepath.Join(t.TempDir(), "client_id"))
	// Port reserved then closed, nothing is listening
	client := NewClient("http://127.0.0.1:1", identity)

	result, err := client.ValidatePin(context.Background(), "1234")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestClientValidatePin_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	result, err := client.ValidatePin(context.Background(), "1234")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrConnection)
}
