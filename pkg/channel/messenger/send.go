package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edutune/pkg/bus"
)

const errorBodyLimit = 200

type sendRequest struct {
	Recipient participant `json:"recipient"`
	Message   sendMessage `json:"message"`
}

type sendMessage struct {
	Text       string      `json:"text,omitempty"`
	Attachment *attachment `json:"attachment,omitempty"`
}

type attachment struct {
	Type    string            `json:"type"`
	Payload attachmentPayload `json:"payload"`
}

type attachmentPayload struct {
	URL        string `json:"url"`
	IsReusable bool   `json:"is_reusable"`
}

// Send posts msg to recipientID through the Graph Send API.
func (a *Adapter) Send(ctx context.Context, recipientID string, msg bus.OutboundMessage) error {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return errors.New("recipient id is required")
	}

	request := sendRequest{Recipient: participant{ID: recipientID}}
	if msg.IsImage() {
		request.Message.Attachment = &attachment{
			Type:    "image",
			Payload: attachmentPayload{URL: msg.ImageURL, IsReusable: true},
		}
	} else {
		request.Message.Text = msg.Text
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	endpoint := a.sendURL() + "?" + url.Values{"access_token": {a.cfg.PageAccessToken}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log := a.log.With("operation", "send", "recipient_id", recipientID, "kind", string(msg.Kind))
	startedAt := time.Now()

	resp, err := a.httpClient.Do(req)
	if err != nil {
		err = redactToken(err, a.cfg.PageAccessToken)
		log.Debug("send request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		log.Debug("send request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "status", resp.StatusCode)
		return fmt.Errorf("send message: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	log.Debug("send request completed", "duration_ms", time.Since(startedAt).Milliseconds())

	return nil
}

// redactToken strips the access token from transport errors, which embed the
// request URL.
func redactToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}

	return errors.New(strings.ReplaceAll(err.Error(), token, "[redacted]"))
}
