package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var webhookKey = []byte("0123456789abcdef0123456789abcdef")

func signedWebhook(t *testing.T, body string, at time.Time, key []byte) *http.Request {
	t.Helper()
	id := "msg_2abc"
	ts := strconv.FormatInt(at.Unix(), 10)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + ts + "." + body))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewBufferString(body))
	req.Header.Set("svix-id", id)
	req.Header.Set("svix-timestamp", ts)
	req.Header.Set("svix-signature", "v1,bm9wZQ== v1,"+sig)
	return req
}

func signedEnv(t *testing.T) *testEnv {
	env := newTestEnv(t)
	env.webhook = NewWebhookHandler(env.users, "whsec_"+base64.StdEncoding.EncodeToString(webhookKey))
	return env
}

func TestClerkWebhookLifecycle(t *testing.T) {
	env := signedEnv(t)
	now := time.Now()

	rec := httptest.NewRecorder()
	env.webhook.HandleClerkWebhook(rec, signedWebhook(t, `{"type":"user.created","data":{"id":"user_123","username":"walker"}}`, now, webhookKey))
	require.Equal(t, http.StatusOK, rec.Code)

	u, err := env.users.EnsureUser(context.Background(), "user_123")
	require.NoError(t, err)
	assert.Equal(t, "walker", u.Username)

	rec = httptest.NewRecorder()
	env.webhook.HandleClerkWebhook(rec, signedWebhook(t, `{"type":"user.updated","data":{"id":"user_123","first_name":"Ann","last_name":"Lee"}}`, now, webhookKey))
	require.Equal(t, http.StatusOK, rec.Code)

	u, err = env.users.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "AnnLee", u.Username)

	rec = httptest.NewRecorder()
	env.webhook.HandleClerkWebhook(rec, signedWebhook(t, `{"type":"user.deleted","data":{"id":"user_123","deleted":true}}`, now, webhookKey))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = env.users.GetUser(context.Background(), u.ID)
	assert.Error(t, err)

	// Deleting twice is harmless.
	rec = httptest.NewRecorder()
	env.webhook.HandleClerkWebhook(rec, signedWebhook(t, `{"type":"user.deleted","data":{"id":"user_123","deleted":true}}`, now, webhookKey))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClerkWebhookRejectsBadSignatures(t *testing.T) {
	env := signedEnv(t)
	body := `{"type":"user.created","data":{"id":"user_123"}}`

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"wrong key", signedWebhook(t, body, time.Now(), []byte("another key entirely"))},
		{"stale timestamp", signedWebhook(t, body, time.Now().Add(-time.Hour), webhookKey)},
		{"no headers", httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewBufferString(body))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.webhook.HandleClerkWebhook(rec, tt.req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestClerkWebhookBadPayload(t *testing.T) {
	env := signedEnv(t)

	rec := httptest.NewRecorder()
	env.webhook.HandleClerkWebhook(rec, signedWebhook(t, `{"type":"user.created","data":{}}`, time.Now(), webhookKey))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	env.webhook.HandleClerkWebhook(rec, signedWebhook(t, `{"type":"session.created","data":{"id":"sess_1"}}`, time.Now(), webhookKey))
	assert.Equal(t, http.StatusOK, rec.Code)
}
