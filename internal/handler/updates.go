package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/eventbus"
	"github.com/govpilot/backend/internal/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpdatesHandler 把事件总线上的更新推给前端 WebSocket 连接
type UpdatesHandler struct {
	bus   *eventbus.Bus
	relay *relay.Relay
}

// NewUpdatesHandler 创建更新推送处理器
func NewUpdatesHandler(bus *eventbus.Bus, r *relay.Relay) *UpdatesHandler {
	return &UpdatesHandler{bus: bus, relay: r}
}

// RegisterRoutes 注册路由
func (h *UpdatesHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/updates/ws", h.Stream)
	router.GET("/updates/status", h.Status)
}

// outEnvelope 推送给前端的信封，和上游接入的信封同构
type outEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Stream 升级为 WebSocket 并转发两个主题的事件，连接断开即退出
func (h *UpdatesHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		klog.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	chatCh, unsubChat := h.bus.Subscribe(eventbus.TopicChatUpdate)
	defer unsubChat()
	govCh, unsubGov := h.bus.Subscribe(eventbus.TopicGovernanceUpdate)
	defer unsubGov()

	// 读循环只用于感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	klog.V(6).Infof("updates subscriber connected: %s", c.ClientIP())
	for {
		select {
		case ev, ok := <-chatCh:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outEnvelope{Type: string(ev.Topic), Data: ev.Data}); err != nil {
				return
			}
		case ev, ok := <-govCh:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outEnvelope{Type: string(ev.Topic), Data: ev.Data}); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

// Status 上游接入状态
func (h *UpdatesHandler) Status(c *gin.Context) {
	state := relay.StateDisconnected
	if h.relay != nil {
		state = h.relay.State()
	}
	c.JSON(http.StatusOK, gin.H{
		"relay_state": string(state),
		"subscribers": gin.H{
			"chat":       h.bus.SubscriberCount(eventbus.TopicChatUpdate),
			"governance": h.bus.SubscriberCount(eventbus.TopicGovernanceUpdate),
		},
	})
}
