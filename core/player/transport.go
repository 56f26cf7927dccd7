package player

// AudioTransport 实际负责出声的播放端（通常是浏览器里的 audio 元素）
type AudioTransport interface {
	Play() error
	Pause()
	SetVolume(v float64)
	SetCurrentTime(seconds float64)
}
