package model

// Song 归一化后的歌单条目
// 构造后不再修改，重新拉取歌单时整体替换
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Pic    string `json:"pic"`
	Lrc    string `json:"lrc,omitempty"`
}

// MusicConfig 描述要加载的远端歌单及聚合接口
type MusicConfig struct {
	Enable bool   `json:"enable"`
	ID     string `json:"id"`
	Server string `json:"server"` // netease, tencent, kugou ...
	Type   string `json:"type"`   // playlist, song, album ...
	API    string `json:"api,omitempty"`
}

// DefaultAPIURL Meting 接口的默认地址
const DefaultAPIURL = "https://api.i-meto.com/meting/api"

// DefaultMusicConfig 返回默认的歌单配置（默认不启用）
func DefaultMusicConfig() MusicConfig {
	return MusicConfig{
		Enable: false,
		ID:     "3778678",
		Server: "netease",
		Type:   "playlist",
	}
}

// APIURL 返回实际使用的接口地址
func (c MusicConfig) APIURL() string {
	if c.API == "" {
		return DefaultAPIURL
	}
	return c.API
}
