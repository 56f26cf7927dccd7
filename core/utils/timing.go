package utils

import (
	"sync"
	"time"
)

// Debounce 防抖：每次调用都会取消尚未触发的定时器并重新计时，
// 等待期内只有最后一次调用会真正执行，参数取最后一次调用的参数。
func Debounce[T any](fn func(T), wait time.Duration) func(T) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)

	return func(arg T) {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(wait, func() {
			fn(arg)
		})
	}
}

// throttler 节流状态
type throttler[T any] struct {
	mu      sync.Mutex
	fn      func(T)
	wait    time.Duration
	last    time.Time
	pending T
	armed   bool
	timer   *time.Timer
	seq     uint64
}

// Throttle 节流：距离上次实际执行已超过 wait 时立即执行；
// 否则在剩余时间后补发一次，补发使用触发前收到的最新参数。
// 同一窗口内后续调用不会推迟已安排的补发。
func Throttle[T any](fn func(T), wait time.Duration) func(T) {
	t := &throttler[T]{fn: fn, wait: wait}
	return t.call
}

func (t *throttler[T]) call(arg T) {
	t.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(t.last)

	if elapsed >= t.wait {
		t.cancelLocked()
		t.last = now
		t.mu.Unlock()
		t.fn(arg)
		return
	}

	t.pending = arg
	if !t.armed {
		t.armed = true
		t.seq++
		seq := t.seq
		t.timer = time.AfterFunc(t.wait-elapsed, func() {
			t.fire(seq)
		})
	}
	t.mu.Unlock()
}

func (t *throttler[T]) fire(seq uint64) {
	t.mu.Lock()
	// 定时器已被取消或替换
	if !t.armed || seq != t.seq {
		t.mu.Unlock()
		return
	}
	arg := t.pending
	var zero T
	t.pending = zero
	t.armed = false
	t.timer = nil
	t.last = time.Now()
	t.mu.Unlock()

	t.fn(arg)
}

// cancelLocked 取消待补发的调用，调用方需持有锁
func (t *throttler[T]) cancelLocked() {
	if !t.armed {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.armed = false
	t.timer = nil
	var zero T
	t.pending = zero
	t.seq++
}
