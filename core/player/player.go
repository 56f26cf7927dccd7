package player

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"qfmwidget/cache"
	"qfmwidget/core/events"
	"qfmwidget/db"
	"qfmwidget/logger"
	"qfmwidget/model"
)

const (
	defaultVolume  = 0.5
	persistTimeout = 3 * time.Second
)

// Player 播放器状态的唯一持有者。
// 所有修改都通过动作方法完成，每次提交后向订阅者推送一次快照。
type Player struct {
	mu sync.Mutex

	playlist     []model.Song
	currentIndex int
	currentSong  *model.Song
	playMode     model.PlayMode
	liked        map[string]struct{}
	isPlaying    bool
	isExpanded   bool
	showPlaylist bool
	volume       float64
	errorMsg     *string
	currentTime  float64
	duration     float64

	// switching 为 true 时暂停当前歌曲的推导，仅在 ToggleLike 的重排过程中置位
	switching bool

	transport AudioTransport
	prefs     *cache.Preferences
	playlists *cache.PlaylistCache
	source    PlaylistSource
	bus       *events.Bus[State]
	randIntN  func(n int) int
}

// NewPlayer 创建播放器，store 可以为 nil（不持久化）
func NewPlayer(store db.KVStore, source PlaylistSource) *Player {
	return &Player{
		playMode:  model.PlayModeOrder,
		liked:     make(map[string]struct{}),
		volume:    defaultVolume,
		prefs:     cache.NewPreferences(store),
		playlists: cache.NewPlaylistCache(store),
		source:    source,
		bus:       events.NewBus[State](),
		randIntN:  rand.IntN,
	}
}

// SetRandom 替换随机数来源
func (p *Player) SetRandom(intN func(n int) int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.randIntN = intN
}

// SetAudioTransport 绑定播放端
func (p *Player) SetAudioTransport(t AudioTransport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transport = t
}

// Subscribe 订阅状态变化
func (p *Player) Subscribe() (string, <-chan State) {
	return p.bus.Subscribe()
}

// Unsubscribe 取消订阅
func (p *Player) Unsubscribe(id string) {
	p.bus.Unsubscribe(id)
}

// Snapshot 返回当前状态
func (p *Player) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Player) snapshotLocked() State {
	playlist := make([]model.Song, len(p.playlist))
	copy(playlist, p.playlist)

	var current *model.Song
	if p.currentSong != nil {
		s := *p.currentSong
		current = &s
	}
	var errMsg *string
	if p.errorMsg != nil {
		m := *p.errorMsg
		errMsg = &m
	}
	var progress float64
	if p.duration > 0 {
		progress = p.currentTime / p.duration * 100
	}

	return State{
		Playlist:      playlist,
		CurrentIndex:  p.currentIndex,
		CurrentSong:   current,
		PlayMode:      p.playMode,
		PlayModeLabel: p.playMode.Label(),
		LikedSongs:    likedIDs(p.liked),
		IsPlaying:     p.isPlaying,
		IsExpanded:    p.isExpanded,
		ShowPlaylist:  p.showPlaylist,
		Volume:        p.volume,
		ErrorMsg:      errMsg,
		CurrentTime:   p.currentTime,
		Duration:      p.duration,
		Progress:      progress,
	}
}

// update 在锁内执行修改并推送快照，推送顺序与提交顺序一致。
// Publish 不会阻塞，可以在锁内调用。
func (p *Player) update(fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	fn(ctx)
	p.bus.Publish(p.snapshotLocked())
}

// syncCurrentSongLocked 歌单或下标变化后重新推导当前歌曲并记录下标。
// 重排过程中（switching）不做任何事。
func (p *Player) syncCurrentSongLocked(ctx context.Context) {
	if p.switching {
		return
	}
	song, ok := deriveCurrentSong(p.playlist, p.currentIndex)
	if !ok {
		p.currentSong = nil
		return
	}
	p.currentSong = &song
	p.prefs.SaveCurrentIndex(ctx, p.currentIndex)
}

// InitLikeStore 从持久化存储恢复喜欢列表、音量、播放模式和播放位置
func (p *Player) InitLikeStore(ctx context.Context) {
	liked, hasLiked := p.prefs.LoadLikedSongs(ctx)
	volume, hasVolume := p.prefs.LoadVolume(ctx)
	mode, hasMode := p.prefs.LoadPlayMode(ctx)
	index, hasIndex := p.prefs.LoadCurrentIndex(ctx)

	p.update(func(ctx context.Context) {
		if hasLiked {
			p.liked = make(map[string]struct{}, len(liked))
			for _, id := range liked {
				p.liked[id] = struct{}{}
			}
		}
		if hasVolume {
			p.volume = volume
		}
		if hasMode {
			p.playMode = mode
		}
		if hasIndex {
			p.currentIndex = index
			p.syncCurrentSongLocked(ctx)
		}
	})

	logger.Info("播放器偏好已恢复",
		logger.Int("liked", len(liked)),
		logger.Bool("volume", hasVolume),
		logger.Bool("mode", hasMode),
		logger.Bool("index", hasIndex))
}

// ToggleExpand 展开/收起播放器，收起时同时关闭歌单面板
func (p *Player) ToggleExpand() {
	p.update(func(context.Context) {
		if p.isExpanded {
			p.showPlaylist = false
		}
		p.isExpanded = !p.isExpanded
	})
}

// TogglePlaylist 显示/隐藏歌单面板
func (p *Player) TogglePlaylist() {
	p.update(func(context.Context) {
		p.showPlaylist = !p.showPlaylist
	})
}

// TogglePlay 播放/暂停，未绑定播放端时不做任何事
func (p *Player) TogglePlay() {
	p.mu.Lock()
	t := p.transport
	playing := p.isPlaying
	p.mu.Unlock()

	if t == nil {
		return
	}
	if playing {
		t.Pause()
		return
	}
	if err := t.Play(); err != nil {
		logger.Error("Playback failed", logger.ErrorField(err))
	}
}

// SetVolume 设置音量并同步到播放端
func (p *Player) SetVolume(v float64) {
	var t AudioTransport
	p.update(func(ctx context.Context) {
		t = p.setVolumeLocked(ctx, v)
	})
	if t != nil {
		t.SetVolume(v)
	}
}

func (p *Player) setVolumeLocked(ctx context.Context, v float64) AudioTransport {
	p.volume = v
	p.prefs.SaveVolume(ctx, v)
	return p.transport
}

// ToggleMute 静音，或恢复到默认音量
func (p *Player) ToggleMute() {
	var (
		t      AudioTransport
		target float64
	)
	p.update(func(ctx context.Context) {
		target = defaultVolume
		if p.volume > 0 {
			target = 0
		}
		t = p.setVolumeLocked(ctx, target)
	})
	if t != nil {
		t.SetVolume(target)
	}
}

// SwitchPlayMode 按 order -> loop -> shuffle 切换播放模式
func (p *Player) SwitchPlayMode() model.PlayMode {
	var mode model.PlayMode
	p.update(func(ctx context.Context) {
		p.playMode = p.playMode.Next()
		mode = p.playMode
		p.prefs.SavePlayMode(ctx, mode)
	})
	return mode
}

// NextSong 下一首；随机模式下选择与当前不同的随机位置
func (p *Player) NextSong() {
	p.update(func(ctx context.Context) {
		p.nextSongLocked(ctx)
	})
}

func (p *Player) nextSongLocked(ctx context.Context) {
	n := len(p.playlist)
	if n == 0 {
		return
	}

	if p.playMode == model.PlayModeShuffle {
		idx := p.randIntN(n)
		for idx == p.currentIndex && n > 1 {
			idx = p.randIntN(n)
		}
		p.currentIndex = idx
	} else {
		p.currentIndex = wrapIndex(p.currentIndex+1, n)
	}
	p.syncCurrentSongLocked(ctx)
	p.isPlaying = true
}

// PrevSong 上一首
func (p *Player) PrevSong() {
	p.update(func(ctx context.Context) {
		n := len(p.playlist)
		if n == 0 {
			return
		}
		p.currentIndex = wrapIndex(p.currentIndex-1, n)
		p.syncCurrentSongLocked(ctx)
		p.isPlaying = true
	})
}

// PlaySong 播放指定位置的歌曲，调用方负责保证下标有效
func (p *Player) PlaySong(index int) {
	p.update(func(ctx context.Context) {
		p.currentIndex = index
		p.syncCurrentSongLocked(ctx)
		p.isPlaying = true
	})
}

// HandleAutoNext 一首歌播放结束：单曲循环时从头重播，否则切到下一首
func (p *Player) HandleAutoNext() {
	p.mu.Lock()
	loop := p.playMode == model.PlayModeLoop
	t := p.transport
	p.mu.Unlock()

	if !loop {
		p.NextSong()
		return
	}
	if t == nil {
		return
	}
	t.SetCurrentTime(0)
	if err := t.Play(); err != nil {
		logger.Error("Playback failed", logger.ErrorField(err))
	}
}

// SetPlaying 播放端回报的播放状态
func (p *Player) SetPlaying(playing bool) {
	p.update(func(context.Context) {
		p.isPlaying = playing
	})
}

// UpdateProgress 播放端回报的进度
func (p *Player) UpdateProgress(currentTime, duration float64) {
	p.update(func(context.Context) {
		p.currentTime = currentTime
		p.duration = duration
	})
}

// IsLiked 歌曲是否在喜欢列表中
func (p *Player) IsLiked(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.liked[id]
	return ok
}
