package meting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"

	"qfmwidget/logger"
	"qfmwidget/model"
)

// ErrInvalidFormat 接口返回的不是数组
var ErrInvalidFormat = errors.New("invalid playlist data format")

// BuildPlaylistURL 拼接歌单请求地址，r 为防缓存的随机参数
func BuildPlaylistURL(cfg model.MusicConfig, r float64) (string, error) {
	u, err := url.Parse(cfg.APIURL())
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", cfg.APIURL(), err)
	}
	q := u.Query()
	q.Set("server", cfg.Server)
	q.Set("type", cfg.Type)
	q.Set("id", cfg.ID)
	q.Set("r", strconv.FormatFloat(r, 'f', -1, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// GetPlaylistItems 获取歌单原始条目
func (c *Client) GetPlaylistItems(ctx context.Context, cfg model.MusicConfig) ([]model.MetingItem, error) {
	reqURL, err := BuildPlaylistURL(cfg, rand.Float64())
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	logger.Info("[GetPlaylistItems] 获取歌单",
		logger.String("server", cfg.Server),
		logger.String("type", cfg.Type),
		logger.String("playlist_id", cfg.ID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API Error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidFormat
	}

	var items []model.MetingItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	logger.Info("[GetPlaylistItems] 成功获取歌单",
		logger.String("playlist_id", cfg.ID),
		logger.Int("songs_count", len(items)))
	return items, nil
}

// GetPlaylistSongs 获取并归一化歌单，保持接口返回的顺序
func (c *Client) GetPlaylistSongs(ctx context.Context, cfg model.MusicConfig) ([]model.Song, error) {
	items, err := c.GetPlaylistItems(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NormalizeSongs(items), nil
}
