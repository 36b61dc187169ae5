package messenger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"edutune/pkg/bus"
)

const (
	maxWebhookBodyBytes = 1 << 20
	signatureHeader     = "X-Hub-Signature-256"
	signaturePrefix     = "sha256="
	pageObject          = "page"
)

type webhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []messagingEvent `json:"messaging"`
}

type messagingEvent struct {
	Sender    participant   `json:"sender"`
	Recipient participant   `json:"recipient"`
	Timestamp int64         `json:"timestamp"`
	Message   *eventMessage `json:"message,omitempty"`
}

type participant struct {
	ID string `json:"id"`
}

type eventMessage struct {
	MID    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo"`
}

// handleVerify answers the subscription handshake by echoing hub.challenge
// when the mode and verify token match.
func (a *Adapter) handleVerify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")

	if mode != "subscribe" || !hmac.Equal([]byte(token), []byte(a.cfg.VerifyToken)) {
		a.log.Warn("Webhook verification rejected", "mode", mode)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	a.log.Info("Webhook verified")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, query.Get("hub.challenge"))
}

// handleEvents queues every text message in the payload and acknowledges the
// delivery before any command is executed.
func (a *Adapter) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if secret := strings.TrimSpace(a.cfg.AppSecret); secret != "" {
		if !validSignature(secret, r.Header.Get(signatureHeader), body) {
			a.log.Warn("Rejected webhook with invalid signature")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if payload.Object != pageObject {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	queued := 0
	for _, inbound := range a.inboundMessages(payload) {
		if !a.bus.PublishInbound(r.Context(), inbound) {
			a.log.Error("Failed to queue inbound message", "sender_id", inbound.SenderID)
			continue
		}
		queued++
	}
	a.log.Debug("Webhook events queued", "entries", len(payload.Entry), "queued", queued)

	w.WriteHeader(http.StatusOK)
}

func (a *Adapter) inboundMessages(payload webhookPayload) []bus.InboundMessage {
	var messages []bus.InboundMessage
	for _, entry := range payload.Entry {
		for _, event := range entry.Messaging {
			// Whitespace-only text still classifies as an unknown command.
			if event.Message == nil || event.Message.IsEcho || event.Message.Text == "" {
				continue
			}
			senderID := strings.TrimSpace(event.Sender.ID)
			if senderID == "" {
				continue
			}
			if pageID := strings.TrimSpace(a.cfg.PageID); pageID != "" && senderID == pageID {
				continue
			}

			messages = append(messages, bus.InboundMessage{
				Channel:  channelName,
				SenderID: senderID,
				ChatID:   senderID,
				Content:  event.Message.Text,
				Metadata: map[string]string{
					"mid":       event.Message.MID,
					"page_id":   entry.ID,
					"timestamp": strconv.FormatInt(event.Timestamp, 10),
				},
			})
		}
	}

	return messages
}

func validSignature(secret, header string, body []byte) bool {
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := signaturePrefix + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(header))
}
