package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BerniceZTT/telecaller_crm/metrics"
	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

const writeWait = 5 * time.Second

// client 一个看板连接，写操作需要串行
type client struct {
	conn   *websocket.Conn
	userID string
	mu     sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub 向管理员看板推送线索事件
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*client]bool
}

// NewHub 创建推送中心，origins 为空或包含*时不校验来源
func NewHub(origins []string) *Hub {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
		clients: make(map[*client]bool),
	}
}

// Name 接收方名称
func (h *Hub) Name() string {
	return "websocket"
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish 广播事件，写失败的连接会被移除
func (h *Hub) Publish(_ context.Context, event models.LeadEvent) error {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.writeJSON(event); err != nil {
			utils.Logger.Warn().Err(err).Str("userId", c.userID).Msg("推送线索事件失败，关闭连接")
			h.remove(c)
		}
	}
	return nil
}

// ServeWS 升级连接并保持到客户端断开
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, identity models.Identity) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Logger.Warn().Err(err).Msg("websocket升级失败")
		return
	}

	c := &client{conn: conn, userID: identity.ID}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	metrics.WSClientConnected()
	utils.Logger.Info().Str("userId", identity.ID).Msg("看板连接已建立")

	_ = c.writeJSON(map[string]string{"type": "connected"})

	// 只读取控制帧，客户端消息忽略
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

// Close 关闭全部连接
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
		metrics.WSClientDisconnected()
		utils.Logger.Info().Str("userId", c.userID).Msg("看板连接已断开")
	}
}
