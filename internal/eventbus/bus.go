package eventbus

import (
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Topic 更新分发的主题
type Topic string

const (
	// TopicChatUpdate 聊天历史更新
	TopicChatUpdate Topic = "chat-update"
	// TopicGovernanceUpdate 治理详情更新
	TopicGovernanceUpdate Topic = "governance-update"
)

// Event 分发给订阅者的一条更新
type Event struct {
	Topic Topic
	Data  any
}

// subscriberBuffer 订阅通道的缓冲大小。
// 慢订阅者不允许阻塞分发循环，缓冲写不进去就丢弃并计数。
const subscriberBuffer = 16

type subscriber struct {
	ch      chan Event
	dropped atomic.Uint64
}

// Bus 按主题分发的订阅总线。
// 订阅/退订可以和分发并发进行。
type Bus struct {
	mutex       sync.RWMutex
	subscribers map[Topic]map[uint64]*subscriber
	counter     uint64
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Topic]map[uint64]*subscriber),
	}
}

// Subscribe 订阅一个主题，返回接收通道和退订函数。
// 退订后通道会被关闭。
func (b *Bus) Subscribe(topic Topic) (<-chan Event, func()) {
	id := atomic.AddUint64(&b.counter, 1)
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	b.mutex.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[uint64]*subscriber)
	}
	b.subscribers[topic][id] = sub
	b.mutex.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mutex.Lock()
			subs, ok := b.subscribers[topic]
			if ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(b.subscribers, topic)
				}
			}
			// 在锁内关闭，保证分发循环不会向已关闭的通道写入
			close(sub.ch)
			b.mutex.Unlock()
		})
	}
	return sub.ch, unsubscribe
}

// Publish 把数据发给主题下当前的全部订阅者。
// 发送不阻塞，所以可以在读锁内完成，退订的关闭动作无法插到发送中间。
// 订阅者缓冲已满时丢弃该条并记录，绝不阻塞调用方。
func (b *Bus) Publish(topic Topic, data any) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	event := Event{Topic: topic, Data: data}
	for _, sub := range b.subscribers[topic] {
		select {
		case sub.ch <- event:
		default:
			n := sub.dropped.Add(1)
			klog.V(6).Infof("订阅者缓冲已满，丢弃消息: topic=%s, 累计丢弃=%d", topic, n)
		}
	}
}

// SubscriberCount 某主题当前的订阅者数量
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subscribers[topic])
}
