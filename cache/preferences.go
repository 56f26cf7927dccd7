package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"qfmwidget/db"
	"qfmwidget/logger"
	"qfmwidget/model"
)

// 偏好设置使用的存储键
const (
	KeyLikedSongs   = "music-liked-songs"
	KeyVolume       = "music-volume"
	KeyPlayMode     = "music-play-mode"
	KeyCurrentIndex = "music-current-index"
)

// Preferences 播放器偏好的读写适配器。
// store 为 nil 时视为存储不可用，所有读取返回未命中、写入直接忽略。
type Preferences struct {
	store db.KVStore
}

// NewPreferences 创建偏好适配器
func NewPreferences(store db.KVStore) *Preferences {
	return &Preferences{store: store}
}

// Available 存储是否可用
func (p *Preferences) Available() bool {
	return p != nil && p.store != nil
}

func (p *Preferences) get(ctx context.Context, key string) (string, bool) {
	if !p.Available() {
		return "", false
	}
	val, ok, err := p.store.Get(ctx, key)
	if err != nil {
		logger.Warn("读取偏好失败", logger.String("key", key), logger.ErrorField(err))
		return "", false
	}
	if !ok || strings.TrimSpace(val) == "" {
		return "", false
	}
	return val, true
}

func (p *Preferences) set(ctx context.Context, key, val string) {
	if !p.Available() {
		return
	}
	if err := p.store.Set(ctx, key, val); err != nil {
		logger.Warn("写入偏好失败", logger.String("key", key), logger.ErrorField(err))
	}
}

// LoadLikedSongs 读取喜欢的歌曲ID列表
func (p *Preferences) LoadLikedSongs(ctx context.Context) ([]string, bool) {
	raw, ok := p.get(ctx, KeyLikedSongs)
	if !ok {
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logger.Error("Failed to load liked songs", logger.ErrorField(err))
		return nil, false
	}
	return ids, true
}

// SaveLikedSongs 保存喜欢的歌曲ID列表
func (p *Preferences) SaveLikedSongs(ctx context.Context, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		logger.Error("序列化喜欢列表失败", logger.ErrorField(err))
		return
	}
	p.set(ctx, KeyLikedSongs, string(data))
}

// LoadVolume 读取音量
func (p *Preferences) LoadVolume(ctx context.Context) (float64, bool) {
	raw, ok := p.get(ctx, KeyVolume)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		logger.Warn("忽略无法解析的音量", logger.String("value", raw), logger.ErrorField(err))
		return 0, false
	}
	return v, true
}

// SaveVolume 保存音量
func (p *Preferences) SaveVolume(ctx context.Context, v float64) {
	p.set(ctx, KeyVolume, strconv.FormatFloat(v, 'f', -1, 64))
}

// LoadPlayMode 读取播放模式，非法值被忽略
func (p *Preferences) LoadPlayMode(ctx context.Context) (model.PlayMode, bool) {
	raw, ok := p.get(ctx, KeyPlayMode)
	if !ok {
		return "", false
	}
	mode, err := model.ParsePlayMode(raw)
	if err != nil {
		logger.Warn("忽略非法的播放模式", logger.ErrorField(err))
		return "", false
	}
	return mode, true
}

// SavePlayMode 保存播放模式
func (p *Preferences) SavePlayMode(ctx context.Context, mode model.PlayMode) {
	p.set(ctx, KeyPlayMode, string(mode))
}

// LoadCurrentIndex 读取上次播放的位置
func (p *Preferences) LoadCurrentIndex(ctx context.Context) (int, bool) {
	raw, ok := p.get(ctx, KeyCurrentIndex)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logger.Warn("忽略无法解析的播放位置", logger.String("value", raw), logger.ErrorField(err))
		return 0, false
	}
	return idx, true
}

// SaveCurrentIndex 保存当前播放位置
func (p *Preferences) SaveCurrentIndex(ctx context.Context, idx int) {
	p.set(ctx, KeyCurrentIndex, strconv.Itoa(idx))
}
