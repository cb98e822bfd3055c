package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"

	"github.com/govpilot/backend/internal/eventbus"
	"github.com/govpilot/backend/internal/tagcodec"
)

// 更新分发中继：持有唯一一条到推送通道的 websocket 连接，
// 把收到的信封消息按类型解码、归一化后转发给总线上的订阅者。
// 连接断开后按固定间隔无限重连，重连不升级退避、没有次数上限。

// State 连接状态
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// DefaultReconnectDelay 重连前的固定等待时间
const DefaultReconnectDelay = 3 * time.Second

// Envelope 推送通道上的消息信封
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Relay 更新分发中继。显式构造、显式启停，由持有方注入需要它的组件。
type Relay struct {
	url            string
	bus            *eventbus.Bus
	dialer         *websocket.Dialer
	reconnectDelay time.Duration

	// OnStateChange 连接状态变化回调，Start 之前设置
	OnStateChange func(State)

	mutex   sync.Mutex
	state   State
	conn    *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New 创建中继，reconnectDelay <= 0 时使用默认值
func New(url string, bus *eventbus.Bus, reconnectDelay time.Duration) *Relay {
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second
	return &Relay{
		url:            url,
		bus:            bus,
		dialer:         &dialer,
		reconnectDelay: reconnectDelay,
		state:          StateDisconnected,
	}
}

// Bus 返回中继使用的订阅总线
func (r *Relay) Bus() *eventbus.Bus {
	return r.bus
}

// State 当前连接状态
func (r *Relay) State() State {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

func (r *Relay) setState(s State) {
	r.mutex.Lock()
	changed := r.state != s
	r.state = s
	callback := r.OnStateChange
	r.mutex.Unlock()

	if changed {
		klog.V(6).Infof("中继连接状态: %s", s)
		if callback != nil {
			callback(s)
		}
	}
}

// Start 建立连接并启动读循环。重复调用返回 false。
func (r *Relay) Start(ctx context.Context) bool {
	r.mutex.Lock()
	if r.started {
		r.mutex.Unlock()
		return false
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	r.mutex.Unlock()

	go r.run(ctx)
	return true
}

// Stop 断开连接并抑制后续重连
func (r *Relay) Stop() {
	r.mutex.Lock()
	cancel := r.cancel
	conn := r.conn
	done := r.done
	r.mutex.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	if done != nil {
		<-done
	}
}

func (r *Relay) run(ctx context.Context) {
	defer close(r.done)
	defer r.setState(StateDisconnected)

	for {
		if ctx.Err() != nil {
			return
		}

		r.setState(StateConnecting)
		conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
		if err != nil {
			klog.V(6).Infof("中继连接失败: url=%s, error=%v", r.url, err)
			r.setState(StateDisconnected)
			if !r.sleep(ctx) {
				return
			}
			continue
		}

		r.mutex.Lock()
		r.conn = conn
		r.mutex.Unlock()
		r.setState(StateConnected)

		r.readLoop(ctx, conn)

		_ = conn.Close()
		r.mutex.Lock()
		r.conn = nil
		r.mutex.Unlock()
		r.setState(StateDisconnected)

		if !r.sleep(ctx) {
			return
		}
	}
}

// readLoop 单线程消费消息，逐条处理完再读下一条，保证通知顺序与到达顺序一致
func (r *Relay) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				klog.V(6).Infof("中继读取失败，准备重连: %v", err)
			}
			return
		}
		r.handleMessage(message)
	}
}

func (r *Relay) handleMessage(message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		klog.V(6).Infof("丢弃无法解析的信封: %v", err)
		return
	}

	var payload any
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			klog.V(6).Infof("丢弃无法解析的信封数据: type=%s, error=%v", env.Type, err)
			return
		}
	}

	r.Publish(eventbus.Topic(env.Type), payload)
}

// Publish 把一条数据按主题分发出去，与推送通道收到的消息走同一条处理路径。
// 调用方可以用它把一次性请求得到的结果并入订阅者流。
func (r *Relay) Publish(topic eventbus.Topic, data any) {
	switch topic {
	case eventbus.TopicChatUpdate:
		r.bus.Publish(eventbus.TopicChatUpdate, tagcodec.NormalizeChatHistory(data))
	case eventbus.TopicGovernanceUpdate:
		if tagcodec.HasChatHistory(data) {
			tagcodec.NormalizeChatHistory(data)
			if chat := extractChatHistory(data); chat != nil {
				r.bus.Publish(eventbus.TopicChatUpdate, chat)
			}
		}
		r.bus.Publish(eventbus.TopicGovernanceUpdate, data)
	default:
		klog.V(6).Infof("丢弃未知信封类型: %s", topic)
	}
}

func extractChatHistory(payload any) any {
	root, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	if chat, ok := root["chat_history"]; ok {
		return chat
	}
	if inner, ok := root["data"].(map[string]any); ok {
		if chat, ok := inner["chat_history"]; ok {
			return chat
		}
	}
	return nil
}

// sleep 等待重连间隔，ctx 取消时返回 false
func (r *Relay) sleep(ctx context.Context) bool {
	timer := time.NewTimer(r.reconnectDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
