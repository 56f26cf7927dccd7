package player

import (
	"context"
	"time"

	"qfmwidget/logger"
	"qfmwidget/model"
)

// PlaylistSource 远端歌单来源
type PlaylistSource interface {
	GetPlaylistSongs(ctx context.Context, cfg model.MusicConfig) ([]model.Song, error)
}

// FetchPlaylist 加载歌单：先用本地缓存立即填充，再请求接口整体替换。
// 接口失败时保留缓存结果并设置错误提示。未启用时直接返回。
// 同时存在多个请求时按完成顺序生效。
func (p *Player) FetchPlaylist(ctx context.Context, cfg model.MusicConfig) error {
	if !cfg.Enable {
		return nil
	}

	cached, err := p.playlists.Load(ctx, cfg.ID)
	if err != nil {
		logger.Error("Failed to load cached playlist", logger.String("playlist_id", cfg.ID), logger.ErrorField(err))
		cached = nil
	}

	p.update(func(ctx context.Context) {
		p.errorMsg = nil
		if cached != nil && len(cached.List) > 0 {
			p.playlist = sortByLiked(cached.List, p.liked)
			p.syncCurrentSongLocked(ctx)
		}
	})

	if p.source == nil {
		return nil
	}

	songs, err := p.source.GetPlaylistSongs(ctx, cfg)
	if err != nil {
		logger.Error("Failed to fetch playlist", logger.String("playlist_id", cfg.ID), logger.ErrorField(err))
		p.update(func(context.Context) {
			msg := FetchErrorMessage
			p.errorMsg = &msg
		})
		return err
	}

	p.update(func(ctx context.Context) {
		p.playlist = sortByLiked(songs, p.liked)
		p.syncCurrentSongLocked(ctx)
	})

	// 缓存原始顺序，排序依赖喜欢列表，不能固化进缓存
	if err := p.playlists.Save(ctx, cfg.ID, songs, time.Now()); err != nil {
		logger.Warn("Failed to cache playlist", logger.String("playlist_id", cfg.ID), logger.ErrorField(err))
	}

	logger.Info("歌单加载完成", logger.String("playlist_id", cfg.ID), logger.Int("songs_count", len(songs)))
	return nil
}
