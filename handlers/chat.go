// handlers/chat.go - article chat: HTTP relay endpoint, session history, and
// a WebSocket stream that pushes each exchange to subscribed clients.
package handlers

import (
	"log"
	"sync"

	"newsiq/database"
	"newsiq/middleware"
	"newsiq/models"
	"newsiq/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// PostChatMessage relays one user message to the assistant workflow.
// POST /api/chat {userMessage, articleId, sessionId, isVoice}
func PostChatMessage(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req services.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.UserMessage == "" {
		return c.Status(400).JSON(fiber.Map{"error": "userMessage is required"})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	// The authenticated user always wins over whatever id the body carries.
	req.UserID = userID

	result, err := services.GetChatRelay().Relay(req)
	if err != nil {
		log.Printf("Chat relay failed for session %s: %v", req.SessionID, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to process chat message"})
	}

	broadcastChatExchange(req, result)

	return c.JSON(fiber.Map{
		"message":   result.Message,
		"n8nStatus": result.WebhookStatus,
		"sessionId": req.SessionID,
	})
}

// GetChatHistory returns a session's messages, oldest first.
func GetChatHistory(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	sessionID := c.Params("sessionId")
	if sessionID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "sessionId is required"})
	}

	db := database.GetDB()

	var messages []models.ChatMessage
	if err := db.Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("created_at").
		Find(&messages).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch chat history"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"messages": messages,
	})
}

// chat stream hub

type chatEvent struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Status    string `json:"status,omitempty"`
}

// chatConn is the slice of the websocket connection the hub writes to.
type chatConn interface {
	WriteJSON(v interface{}) error
}

// chatSubscriber serializes writes to one connection. Websocket connections
// do not support concurrent writers, and overlapping chat posts for the same
// session broadcast from separate request goroutines.
type chatSubscriber struct {
	mu   sync.Mutex
	conn chatConn
}

func (s *chatSubscriber) send(event chatEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(event)
}

var chatHub = struct {
	mu   sync.RWMutex
	subs map[string]map[*chatSubscriber]bool
}{subs: make(map[string]map[*chatSubscriber]bool)}

func subscribeChat(sessionID string, conn chatConn) *chatSubscriber {
	sub := &chatSubscriber{conn: conn}

	chatHub.mu.Lock()
	if chatHub.subs[sessionID] == nil {
		chatHub.subs[sessionID] = make(map[*chatSubscriber]bool)
	}
	chatHub.subs[sessionID][sub] = true
	chatHub.mu.Unlock()

	return sub
}

func unsubscribeChat(sessionID string, sub *chatSubscriber) {
	chatHub.mu.Lock()
	delete(chatHub.subs[sessionID], sub)
	if len(chatHub.subs[sessionID]) == 0 {
		delete(chatHub.subs, sessionID)
	}
	chatHub.mu.Unlock()
}

// ChatStream subscribes a WebSocket client to a chat session's messages.
// Registered in main.go behind the upgrade middleware.
func ChatStream(conn *websocket.Conn) {
	sessionID := conn.Params("sessionId")
	if sessionID == "" {
		conn.Close()
		return
	}

	sub := subscribeChat(sessionID, conn)
	defer func() {
		unsubscribeChat(sessionID, sub)
		conn.Close()
	}()

	// Read loop only detects disconnects; clients talk via the HTTP endpoint.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func broadcastChatExchange(req services.ChatRequest, result *services.ChatResult) {
	broadcastChatEvent(chatEvent{SessionID: req.SessionID, Role: "user", Content: req.UserMessage})
	broadcastChatEvent(chatEvent{
		SessionID: req.SessionID,
		Role:      "assistant",
		Content:   result.Message,
		Status:    result.WebhookStatus,
	})
}

func broadcastChatEvent(event chatEvent) {
	chatHub.mu.RLock()
	subs := make([]*chatSubscriber, 0, len(chatHub.subs[event.SessionID]))
	for sub := range chatHub.subs[event.SessionID] {
		subs = append(subs, sub)
	}
	chatHub.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.send(event); err != nil {
			log.Printf("Failed to push chat event to subscriber: %v", err)
		}
	}
}
