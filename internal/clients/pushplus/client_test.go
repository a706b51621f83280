package pushplus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var captured sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sendPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	client := NewClient("token-123", WithBaseURL(srv.URL))
	err := client.Send(context.Background(), "Daily Report", "line one\nline two")
	require.NoError(t, err)

	assert.Equal(t, "token-123", captured.Token)
	assert.Equal(t, "Daily Report", captured.Title)
	assert.Equal(t, "line one<br>line two", captured.Content)
}

func TestSendMissingToken(t *testing.T) {
	client := NewClient("")
	err := client.Send(context.Background(), "title", "content")
	assert.ErrorContains(t, err, "no notification token")
}

func TestSendNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("token", WithBaseURL(srv.URL))
	err := client.Send(context.Background(), "title", "content")
	assert.ErrorContains(t, err, "status 500")
}
