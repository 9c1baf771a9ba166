package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushSendPayload(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushClient(srv.URL, "server-key")
	err := p.Send(context.Background(), PushMessage{
		Token: "device-token",
		Title: "New message",
		Body:  "Alice: hello",
		Data:  map[string]string{"senderId": "pat-1", "type": "message"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer server-key", gotAuth)

	msg, ok := gotBody["message"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "device-token", msg["token"])

	notification, ok := msg["notification"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "New message", notification["title"])

	android, ok := msg["android"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "high", android["priority"])
}

func TestPushSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewPushClient(srv.URL, "bad-key")
	err := p.Send(context.Background(), PushMessage{Token: "t", Title: "a", Body: "b"})
	assert.Error(t, err)
}

func TestPushValidation(t *testing.T) {
	p := NewPushClient("http://unused", "key")

	err := p.Send(context.Background(), PushMessage{Title: "a", Body: "b"})
	assert.Error(t, err)

	err = p.Send(context.Background(), PushMessage{Token: "t", Body: "b"})
	assert.Error(t, err)
}

func TestPushNotConfigured(t *testing.T) {
	p := NewPushClient("http://unused", "")

	err := p.Send(context.Background(), PushMessage{Token: "t", Title: "a", Body: "b"})
	assert.ErrorIs(t, err, ErrPushNotConfigured)
}
