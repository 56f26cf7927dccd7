// Package events 提供非阻塞的发布订阅总线，用于向界面推送播放器状态
package events

import (
	"sync"

	"github.com/google/uuid"
)

const subBufferSize = 8

// Bus 非阻塞的发布订阅总线。
// 订阅者消费过慢时丢弃最旧的事件，保证最后一次发布的事件一定能被收到。
type Bus[T any] struct {
	mu   sync.Mutex
	subs map[string]chan T
}

// NewBus 创建事件总线
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{
		subs: make(map[string]chan T),
	}
}

// Subscribe 创建订阅，返回订阅ID和接收通道。
// 用完后调用 Unsubscribe 释放。
func (b *Bus[T]) Subscribe() (string, <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.NewString()
	ch := make(chan T, subBufferSize)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe 移除订阅并关闭通道
func (b *Bus[T]) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish 向所有订阅者发送事件，通道已满时挤掉最旧的一条
func (b *Bus[T]) Publish(event T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
			continue
		default:
		}
		// 发送方只有持锁的这一处，腾出一格后第二次发送必定成功
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount 当前订阅者数量
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
