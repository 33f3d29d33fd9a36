package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/logger"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamClient is one websocket connection following a single wallet.
type streamClient struct {
	walletID string
	send     chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *streamClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub fans activities out to websocket clients subscribed to their wallet.
type Hub struct {
	mu       sync.RWMutex
	byWallet map[string]map[*streamClient]struct{}
}

func NewHub() *Hub {
	return &Hub{byWallet: make(map[string]map[*streamClient]struct{})}
}

func (h *Hub) register(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byWallet[c.walletID] == nil {
		h.byWallet[c.walletID] = make(map[*streamClient]struct{})
	}
	h.byWallet[c.walletID][c] = struct{}{}
}

func (h *Hub) unregister(c *streamClient) {
	h.mu.Lock()
	if m := h.byWallet[c.walletID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byWallet, c.walletID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Deliver broadcasts the activity to every subscriber of its wallet. Slow clients
// whose buffer is full miss the message rather than stall the dispatcher.
func (h *Hub) Deliver(ctx context.Context, a domain.Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	h.mu.RLock()
	clients := make([]*streamClient, 0, len(h.byWallet[a.WalletID]))
	for c := range h.byWallet[a.WalletID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		if !c.closed {
			select {
			case c.send <- data:
			default:
				logger.Warn("Stream client too slow, dropping activity", "walletID", a.WalletID)
			}
		}
		c.mu.Unlock()
	}
	return nil
}

func (h *Hub) ClientCount(walletID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byWallet[walletID])
}

// serveStream upgrades the request and streams the wallet's activities until the
// client goes away. Authentication already happened in the middleware.
func (h *Hub) serveStream(w http.ResponseWriter, r *http.Request) {
	walletID := mux.Vars(r)["walletID"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", "walletID", walletID, "error", err)
		return
	}
	defer conn.Close()

	client := &streamClient{walletID: walletID, send: make(chan []byte, sendBuffer)}
	h.register(client)
	defer h.unregister(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		readPump(conn)
	}()
	writePump(client, conn, done)
}

// writePump copies messages from client.send to the connection.
func writePump(c *streamClient, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages; it only exists to notice disconnects.
func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
