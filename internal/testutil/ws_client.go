package testutil

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient is a test subscriber of the chat feed.
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	errors   chan error
	done     chan struct{}
	mu       sync.Mutex
}

// NewWSClient dials the chat feed with the given session token.
func NewWSClient(t *testing.T, url, token string) *WSClient {
	t.Helper()

	dialer := *gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			case c.errors <- err:
			default:
			}
			return
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			select {
			case c.errors <- err:
			default:
			}
			continue
		}

		select {
		case c.messages <- &msg:
		case <-c.done:
			return
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

// ExpectMessage waits for the next message and checks its type
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	select {
	case msg := <-c.messages:
		if msg == nil {
			c.t.Fatal("connection closed while waiting for message")
		}
		if msg.Type != msgType {
			c.t.Fatalf("expected message type %s, got %s", msgType, msg.Type)
		}
		return msg
	case err := <-c.errors:
		c.t.Fatalf("error while waiting for %s: %v", msgType, err)
	case <-time.After(timeout):
		c.t.Fatalf("timeout waiting for %s", msgType)
	}
	return nil
}

// ExpectChatMessage waits for a CHAT_MESSAGE and decodes its payload
func (c *WSClient) ExpectChatMessage(timeout time.Duration) *domain.ChatMessage {
	c.t.Helper()
	return c.decodeChat(c.ExpectMessage(websocket.MessageTypeChatMessage, timeout))
}

// ExpectChatDeleted waits for a CHAT_DELETED and decodes its payload
func (c *WSClient) ExpectChatDeleted(timeout time.Duration) *domain.ChatMessage {
	c.t.Helper()
	return c.decodeChat(c.ExpectMessage(websocket.MessageTypeChatDeleted, timeout))
}

// ExpectNoMessage asserts nothing arrives within the timeout
func (c *WSClient) ExpectNoMessage(timeout time.Duration) {
	c.t.Helper()

	select {
	case msg := <-c.messages:
		if msg != nil {
			c.t.Fatalf("expected no message, got %s", msg.Type)
		}
	case <-time.After(timeout):
	}
}

func (c *WSClient) decodeChat(msg *websocket.Message) *domain.ChatMessage {
	c.t.Helper()

	var payload domain.ChatMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode chat payload: %v", err)
	}
	return &payload
}
