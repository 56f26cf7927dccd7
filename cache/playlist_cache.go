package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"qfmwidget/db"
	"qfmwidget/model"
)

// CachedPlaylist 缓存中的歌单，List 保持接口返回的原始顺序
type CachedPlaylist struct {
	List []model.Song `json:"list"`
	Date int64        `json:"date"` // 毫秒时间戳
}

// GetPlaylistKey 根据歌单ID生成缓存键
func GetPlaylistKey(playlistID string) string {
	return fmt.Sprintf("music-playlist-%s", playlistID)
}

// PlaylistCache 歌单本地缓存，store 为 nil 时不做任何事
type PlaylistCache struct {
	store db.KVStore
}

// NewPlaylistCache 创建歌单缓存
func NewPlaylistCache(store db.KVStore) *PlaylistCache {
	return &PlaylistCache{store: store}
}

// Load 读取缓存的歌单，未命中时返回 nil, nil
func (c *PlaylistCache) Load(ctx context.Context, playlistID string) (*CachedPlaylist, error) {
	if c == nil || c.store == nil {
		return nil, nil
	}

	raw, ok, err := c.store.Get(ctx, GetPlaylistKey(playlistID))
	if err != nil {
		return nil, fmt.Errorf("failed to get cached playlist: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var cached CachedPlaylist
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached playlist: %w", err)
	}
	return &cached, nil
}

// Save 写入歌单缓存
func (c *PlaylistCache) Save(ctx context.Context, playlistID string, list []model.Song, at time.Time) error {
	if c == nil || c.store == nil {
		return nil
	}

	data, err := json.Marshal(CachedPlaylist{List: list, Date: at.UnixMilli()})
	if err != nil {
		return fmt.Errorf("failed to marshal playlist: %w", err)
	}
	if err := c.store.Set(ctx, GetPlaylistKey(playlistID), string(data)); err != nil {
		return fmt.Errorf("failed to cache playlist: %w", err)
	}
	return nil
}

// Clear 删除歌单缓存
func (c *PlaylistCache) Clear(ctx context.Context, playlistID string) error {
	if c == nil || c.store == nil {
		return nil
	}
	if err := c.store.Delete(ctx, GetPlaylistKey(playlistID)); err != nil {
		return fmt.Errorf("failed to clear playlist cache: %w", err)
	}
	return nil
}
