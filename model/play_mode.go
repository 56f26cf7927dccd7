package model

import "fmt"

// PlayMode 播放模式
type PlayMode string

const (
	PlayModeOrder   PlayMode = "order"   // 顺序播放
	PlayModeLoop    PlayMode = "loop"    // 单曲循环
	PlayModeShuffle PlayMode = "shuffle" // 随机播放
)

var playModeLabels = map[PlayMode]string{
	PlayModeOrder:   "顺序播放",
	PlayModeLoop:    "单曲循环",
	PlayModeShuffle: "随机播放",
}

// Next 按 order -> loop -> shuffle -> order 循环切换
func (m PlayMode) Next() PlayMode {
	switch m {
	case PlayModeOrder:
		return PlayModeLoop
	case PlayModeLoop:
		return PlayModeShuffle
	default:
		return PlayModeOrder
	}
}

// Label 返回界面显示的模式名称
func (m PlayMode) Label() string {
	return playModeLabels[m]
}

// Valid 是否为合法的播放模式
func (m PlayMode) Valid() bool {
	_, ok := playModeLabels[m]
	return ok
}

// ParsePlayMode 校验并解析持久化的模式字面量
func ParsePlayMode(s string) (PlayMode, error) {
	m := PlayMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown play mode: %q", s)
	}
	return m, nil
}
