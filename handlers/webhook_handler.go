package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pillarsAPI/internal/logger"
	"pillarsAPI/internal/types/clerk"
	"pillarsAPI/services"
)

const (
	maxWebhookBytes  = 1 << 16
	webhookTolerance = 5 * time.Minute
)

var errBadSignature = errors.New("invalid webhook signature")

type WebhookHandler struct {
	userService *services.UserService
	secret      string
	now         func() time.Time
}

// NewWebhookHandler verifies deliveries against secret, a Clerk "whsec_"
// signing secret. An empty secret disables verification, so the router only
// mounts such a handler when unsigned deliveries were explicitly allowed.
func NewWebhookHandler(userService *services.UserService, secret string) *WebhookHandler {
	return &WebhookHandler{
		userService: userService,
		secret:      secret,
		now:         time.Now,
	}
}

func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("ClerkWebhook: error reading body", "err", err)
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.verifySignature(r.Header, body); err != nil {
		logger.Warn("ClerkWebhook: rejected delivery", "err", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event clerk.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	logger.Info("ClerkWebhook: received event", "type", event.Type)

	switch event.Type {
	case "user.created", "user.updated":
		userData, ok := parseUserData(w, event.Data)
		if !ok {
			return
		}
		u, err := h.userService.SyncExternalUser(ctx, userData.ID, userData.DisplayName())
		if err != nil {
			logger.Error("ClerkWebhook: failed to sync user", "type", event.Type, "externalID", userData.ID, "err", err)
			respondWithServiceError(w, err)
			return
		}
		logger.Info("ClerkWebhook: synced user", "user", u.ID)

	case "user.deleted":
		userData, ok := parseUserData(w, event.Data)
		if !ok {
			return
		}
		if err := h.userService.DeleteUserByExternalID(ctx, userData.ID); err != nil {
			logger.Error("ClerkWebhook: failed to delete user", "externalID", userData.ID, "err", err)
			respondWithServiceError(w, err)
			return
		}

	default:
		logger.Debug("ClerkWebhook: unhandled event type", "type", event.Type)
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func parseUserData(w http.ResponseWriter, data json.RawMessage) (clerk.UserData, bool) {
	var userData clerk.UserData
	if err := json.Unmarshal(data, &userData); err != nil || userData.ID == "" {
		respondWithError(w, http.StatusBadRequest, "Error parsing user data")
		return userData, false
	}
	return userData, true
}

// verifySignature checks the svix headers Clerk signs deliveries with.
func (h *WebhookHandler) verifySignature(header http.Header, body []byte) error {
	if h.secret == "" {
		return nil
	}

	id := header.Get("svix-id")
	timestamp := header.Get("svix-timestamp")
	signatures := header.Get("svix-signature")
	if id == "" || timestamp == "" || signatures == "" {
		return fmt.Errorf("%w: missing svix headers", errBadSignature)
	}

	sec, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", errBadSignature)
	}
	if skew := h.now().Sub(time.Unix(sec, 0)); skew > webhookTolerance || skew < -webhookTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", errBadSignature)
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h.secret, "whsec_"))
	if err != nil {
		return fmt.Errorf("decode webhook secret: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, candidate := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		provided, err := base64.StdEncoding.DecodeString(sig)
		if err == nil && hmac.Equal(provided, expected) {
			return nil
		}
	}
	return errBadSignature
}
