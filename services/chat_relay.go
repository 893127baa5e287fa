// services/chat_relay.go - relays article chat to the external assistant
// workflow and falls back to a canned reply when it is unreachable.
package services

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"newsiq/database"
	"newsiq/models"

	"gorm.io/gorm"
)

const fallbackReply = "I'm having trouble reaching the assistant right now. Please try asking about this article again in a moment."

// Relay status values reported to the client.
const (
	RelayStatusOK          = "ok"
	RelayStatusUnreachable = "unreachable"
	RelayStatusInvalid     = "invalid_response"
	RelayStatusDisabled    = "disabled"
)

type ChatRelay struct {
	db         *gorm.DB
	webhookURL string
	client     *http.Client
}

var chatRelay *ChatRelay

// InitChatRelay wires the singleton relay from the environment.
func InitChatRelay() {
	chatRelay = NewChatRelay(database.GetDB(), os.Getenv("CHAT_WEBHOOK_URL"))
	if chatRelay.webhookURL == "" {
		log.Println("CHAT_WEBHOOK_URL not set, chat replies will use the fallback response")
	}
}

// GetChatRelay returns the initialized relay.
func GetChatRelay() *ChatRelay {
	return chatRelay
}

func NewChatRelay(db *gorm.DB, webhookURL string) *ChatRelay {
	return &ChatRelay{
		db:         db,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

// ChatRequest is the relay's input, matching the client contract.
type ChatRequest struct {
	UserMessage string `json:"userMessage"`
	ArticleID   uint   `json:"articleId"`
	UserID      uint   `json:"userId"`
	SessionID   string `json:"sessionId"`
	IsVoice     bool   `json:"isVoice"`
}

// ChatResult is the relay's output. The status field name is part of the
// client contract.
type ChatResult struct {
	Message       string `json:"message"`
	WebhookStatus string `json:"n8nStatus"`
}

type webhookPayload struct {
	Message   string `json:"message"`
	ArticleID uint   `json:"articleId"`
	UserID    uint   `json:"userId"`
	SessionID string `json:"sessionId"`
	IsVoice   bool   `json:"isVoice"`
}

// Relay persists the user's message, asks the workflow webhook for a reply,
// persists the reply and returns it. Webhook failures degrade to the canned
// fallback; persistence failures of the reply are logged but do not fail the
// exchange.
func (r *ChatRelay) Relay(req ChatRequest) (*ChatResult, error) {
	userMsg := models.ChatMessage{
		UserID:    req.UserID,
		ArticleID: req.ArticleID,
		SessionID: req.SessionID,
		Role:      "user",
		Content:   req.UserMessage,
		IsVoice:   req.IsVoice,
	}
	if err := r.db.Create(&userMsg).Error; err != nil {
		return nil, err
	}

	reply, status := r.askWebhook(req)

	assistantMsg := models.ChatMessage{
		UserID:    req.UserID,
		ArticleID: req.ArticleID,
		SessionID: req.SessionID,
		Role:      "assistant",
		Content:   reply,
	}
	if err := r.db.Create(&assistantMsg).Error; err != nil {
		log.Printf("Failed to persist assistant reply for session %s: %v", req.SessionID, err)
	}

	return &ChatResult{Message: reply, WebhookStatus: status}, nil
}

func (r *ChatRelay) askWebhook(req ChatRequest) (reply, status string) {
	if r.webhookURL == "" {
		return fallbackReply, RelayStatusDisabled
	}

	body, err := json.Marshal(webhookPayload{
		Message:   req.UserMessage,
		ArticleID: req.ArticleID,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		IsVoice:   req.IsVoice,
	})
	if err != nil {
		log.Printf("Failed to encode webhook payload: %v", err)
		return fallbackReply, RelayStatusInvalid
	}

	resp, err := r.client.Post(r.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Chat webhook unreachable: %v", err)
		return fallbackReply, RelayStatusUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Chat webhook returned status %d", resp.StatusCode)
		return fallbackReply, RelayStatusUnreachable
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		log.Printf("Failed to read webhook response: %v", err)
		return fallbackReply, RelayStatusInvalid
	}

	// The workflow replies with either {"output": "..."} or {"message": "..."}.
	var parsed struct {
		Output  string `json:"output"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Printf("Invalid webhook response: %v", err)
		return fallbackReply, RelayStatusInvalid
	}

	text := parsed.Output
	if text == "" {
		text = parsed.Message
	}
	if strings.TrimSpace(text) == "" {
		return fallbackReply, RelayStatusInvalid
	}

	return text, RelayStatusOK
}
