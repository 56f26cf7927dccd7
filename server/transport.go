package server

import (
	"errors"

	"qfmwidget/logger"
)

// ErrNoListener 没有浏览器连接时无法开始播放
var ErrNoListener = errors.New("no browser connected")

// WSTransport 把音频控制指令转发给已连接的浏览器，由浏览器的 <audio> 元素执行
type WSTransport struct {
	hub *Hub
}

// NewWSTransport 创建基于 Hub 的音频传输
func NewWSTransport(hub *Hub) *WSTransport {
	return &WSTransport{hub: hub}
}

// Play 通知浏览器播放
func (t *WSTransport) Play() error {
	if t.hub.ClientCount() == 0 {
		return ErrNoListener
	}
	return t.send(MsgTypePlay, nil)
}

func (t *WSTransport) Pause() {
	t.logError(t.send(MsgTypePause, nil))
}

func (t *WSTransport) SetVolume(v float64) {
	t.logError(t.send(MsgTypeVolume, VolumeData{Volume: v}))
}

func (t *WSTransport) SetCurrentTime(sec float64) {
	t.logError(t.send(MsgTypeSeek, SeekData{Position: sec}))
}

func (t *WSTransport) send(typ MessageType, data interface{}) error {
	msg, err := NewWSMessage(typ, data)
	if err != nil {
		return err
	}
	return t.hub.BroadcastWSMessage(msg)
}

func (t *WSTransport) logError(err error) {
	if err != nil {
		logger.Warn("failed to send audio command", logger.ErrorField(err))
	}
}
