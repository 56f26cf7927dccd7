package player

import (
	"context"

	"qfmwidget/model"
)

// ToggleLike 切换歌曲的喜欢状态并按新状态重排歌单。
// song 为 nil 时作用于当前歌曲；两者都没有时不做任何事。
// 返回切换后该歌曲是否被喜欢。
func (p *Player) ToggleLike(song *model.Song) bool {
	var liked bool
	p.update(func(ctx context.Context) {
		liked = p.toggleLikeLocked(ctx, song)
	})
	return liked
}

// ToggleLikeByID 按ID切换喜欢状态，ID 不在歌单中时返回 false, false
func (p *Player) ToggleLikeByID(id string) (liked bool, found bool) {
	p.update(func(ctx context.Context) {
		idx := indexOfSong(p.playlist, id)
		if idx == -1 {
			return
		}
		found = true
		target := p.playlist[idx]
		liked = p.toggleLikeLocked(ctx, &target)
	})
	return liked, found
}

func (p *Player) toggleLikeLocked(ctx context.Context, song *model.Song) bool {
	target := song
	if target == nil {
		target = p.currentSong
	}
	if target == nil {
		return false
	}

	// 1. 更新喜欢集合
	next := make(map[string]struct{}, len(p.liked)+1)
	for id := range p.liked {
		next[id] = struct{}{}
	}
	_, wasLiked := next[target.ID]
	if wasLiked {
		delete(next, target.ID)
	} else {
		next[target.ID] = struct{}{}
	}
	p.liked = next

	// 2. 按新的喜欢状态重排
	sorted := sortByLiked(p.playlist, next)

	// 3. 找到正在播放的歌曲的新位置
	newIndex := -1
	if p.currentSong != nil {
		newIndex = indexOfSong(sorted, p.currentSong.ID)
	}

	// 4. 重排期间暂停推导，避免歌单和下标先后变化造成当前歌曲跳变
	p.switching = true
	p.playlist = sorted
	p.syncCurrentSongLocked(ctx)
	if newIndex != -1 {
		p.currentIndex = newIndex
		p.syncCurrentSongLocked(ctx)
	}
	p.switching = false

	// 5. 持久化
	p.prefs.SaveLikedSongs(ctx, likedIDs(next))

	return !wasLiked
}
