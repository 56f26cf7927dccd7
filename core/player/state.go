package player

import (
	"sort"

	"qfmwidget/model"

	"github.com/samber/lo"
)

// FetchErrorMessage 歌单加载失败时展示给用户的提示
const FetchErrorMessage = "加载歌单失败，请检查网络设置"

// State 播放器状态快照，供界面渲染和推送
type State struct {
	Playlist      []model.Song   `json:"playlist"`
	CurrentIndex  int            `json:"currentIndex"`
	CurrentSong   *model.Song    `json:"currentSong"`
	PlayMode      model.PlayMode `json:"playMode"`
	PlayModeLabel string         `json:"playModeLabel"`
	LikedSongs    []string       `json:"likedSongs"`
	IsPlaying     bool           `json:"isPlaying"`
	IsExpanded    bool           `json:"isExpanded"`
	ShowPlaylist  bool           `json:"showPlaylist"`
	Volume        float64        `json:"volume"`
	ErrorMsg      *string        `json:"errorMsg"`
	CurrentTime   float64        `json:"currentTime"`
	Duration      float64        `json:"duration"`
	Progress      float64        `json:"progress"` // 百分比
}

// deriveCurrentSong 由歌单和下标推导当前歌曲，下标越界时返回 false
func deriveCurrentSong(playlist []model.Song, index int) (model.Song, bool) {
	if index < 0 || index >= len(playlist) {
		return model.Song{}, false
	}
	return playlist[index], true
}

// sortByLiked 喜欢的歌曲排在前面，其余保持原有相对顺序
func sortByLiked(list []model.Song, liked map[string]struct{}) []model.Song {
	sorted := make([]model.Song, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		_, li := liked[sorted[i].ID]
		_, lj := liked[sorted[j].ID]
		return li && !lj
	})
	return sorted
}

// indexOfSong 按ID查找歌曲位置，找不到返回 -1
func indexOfSong(list []model.Song, id string) int {
	_, idx, ok := lo.FindIndexOf(list, func(s model.Song) bool {
		return s.ID == id
	})
	if !ok {
		return -1
	}
	return idx
}

// wrapIndex 将任意整数映射到 [0, n)
func wrapIndex(i, n int) int {
	return ((i % n) + n) % n
}

func likedIDs(liked map[string]struct{}) []string {
	ids := lo.Keys(liked)
	sort.Strings(ids)
	return ids
}
