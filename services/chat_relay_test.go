package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsiq/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRelayTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.ChatMessage{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestRelaySuccess(t *testing.T) {
	db := newRelayTestDB(t)

	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("webhook received invalid JSON: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"output": "The article covers fusion research."})
	}))
	defer server.Close()

	relay := NewChatRelay(db, server.URL)
	result, err := relay.Relay(ChatRequest{
		UserMessage: "What is this article about?",
		ArticleID:   42,
		UserID:      7,
		SessionID:   "sess-1",
	})
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}

	if result.WebhookStatus != RelayStatusOK {
		t.Errorf("expected status %q, got %q", RelayStatusOK, result.WebhookStatus)
	}
	if result.Message != "The article covers fusion research." {
		t.Errorf("unexpected reply: %q", result.Message)
	}
	if received["message"] != "What is this article about?" {
		t.Errorf("webhook payload missing user message: %v", received)
	}

	// Both sides of the exchange are persisted.
	var msgs []models.ChatMessage
	db.Where("session_id = ?", "sess-1").Order("id").Find(&msgs)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
}

func TestRelayMessageFieldResponse(t *testing.T) {
	db := newRelayTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "Reply via message field"})
	}))
	defer server.Close()

	relay := NewChatRelay(db, server.URL)
	result, err := relay.Relay(ChatRequest{UserMessage: "hi", SessionID: "sess-2", UserID: 1})
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if result.Message != "Reply via message field" {
		t.Errorf("message field should be accepted, got %q", result.Message)
	}
}

func TestRelayUnreachableWebhook(t *testing.T) {
	db := newRelayTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	relay := NewChatRelay(db, server.URL)
	result, err := relay.Relay(ChatRequest{UserMessage: "hello?", SessionID: "sess-3", UserID: 1})
	if err != nil {
		t.Fatalf("relay should degrade, not fail: %v", err)
	}

	if result.WebhookStatus != RelayStatusUnreachable {
		t.Errorf("expected status %q, got %q", RelayStatusUnreachable, result.WebhookStatus)
	}
	if result.Message != fallbackReply {
		t.Errorf("expected fallback reply, got %q", result.Message)
	}

	// The fallback is still persisted as the assistant turn.
	var count int64
	db.Model(&models.ChatMessage{}).
		Where("session_id = ? AND role = ?", "sess-3", "assistant").
		Count(&count)
	if count != 1 {
		t.Errorf("fallback reply should be persisted, got %d rows", count)
	}
}

func TestRelayErrorStatus(t *testing.T) {
	db := newRelayTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	relay := NewChatRelay(db, server.URL)
	result, err := relay.Relay(ChatRequest{UserMessage: "hi", SessionID: "sess-4", UserID: 1})
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if result.WebhookStatus != RelayStatusUnreachable {
		t.Errorf("5xx should report unreachable, got %q", result.WebhookStatus)
	}
	if result.Message != fallbackReply {
		t.Errorf("expected fallback reply, got %q", result.Message)
	}
}

func TestRelayInvalidResponse(t *testing.T) {
	db := newRelayTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	relay := NewChatRelay(db, server.URL)
	result, err := relay.Relay(ChatRequest{UserMessage: "hi", SessionID: "sess-5", UserID: 1})
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if result.WebhookStatus != RelayStatusInvalid {
		t.Errorf("garbage body should report invalid, got %q", result.WebhookStatus)
	}
	if result.Message != fallbackReply {
		t.Errorf("expected fallback reply, got %q", result.Message)
	}
}

func TestRelayDisabledWithoutURL(t *testing.T) {
	db := newRelayTestDB(t)

	relay := NewChatRelay(db, "")
	result, err := relay.Relay(ChatRequest{UserMessage: "hi", SessionID: "sess-6", UserID: 1})
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if result.WebhookStatus != RelayStatusDisabled {
		t.Errorf("missing URL should report disabled, got %q", result.WebhookStatus)
	}
	if result.Message != fallbackReply {
		t.Errorf("expected fallback reply, got %q", result.Message)
	}
}
