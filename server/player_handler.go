package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"qfmwidget/core/player"
	"qfmwidget/core/utils"
	"qfmwidget/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// 播放器动作名，HTTP 路径和 WebSocket action 消息共用
const (
	ActionToggleExpand   = "toggle-expand"
	ActionTogglePlaylist = "toggle-playlist"
	ActionTogglePlay     = "toggle-play"
	ActionNext           = "next"
	ActionPrev           = "prev"
	ActionSwitchMode     = "switch-mode"
	ActionToggleMute     = "toggle-mute"
	ActionSetVolume      = "volume"
	ActionPlaySong       = "play"
	ActionToggleLike     = "like"
	ActionAutoNext       = "auto-next"
)

const (
	progressInterval = 250 * time.Millisecond
	refreshTimeout   = 30 * time.Second
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingParam  = errors.New("missing parameter")
	ErrSongNotFound  = errors.New("song not found")
)

// ActionRequest 播放器动作请求
type ActionRequest struct {
	Action string   `json:"action"`
	Index  *int     `json:"index,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
	SongID string   `json:"songId,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// PlayerHandler 播放器 HTTP/WebSocket 处理器
type PlayerHandler struct {
	player   *player.Player
	hub      *Hub
	music    *MusicSource
	upgrader websocket.Upgrader
	progress func(ProgressData)
}

// NewPlayerHandler 创建播放器处理器
func NewPlayerHandler(p *player.Player, hub *Hub, music *MusicSource) *PlayerHandler {
	h := &PlayerHandler{
		player: p,
		hub:    hub,
		music:  music,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	// timeupdate 事件非常频繁，节流后再写入状态
	h.progress = utils.Throttle(func(d ProgressData) {
		p.UpdateProgress(d.CurrentTime, d.Duration)
	}, progressInterval)
	return h
}

// RegisterRoutes 注册播放器路由
func (h *PlayerHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/player").Subrouter()
	api.HandleFunc("/state", h.GetStateHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlist/refresh", h.RefreshPlaylistHandler).Methods(http.MethodPost)
	api.HandleFunc("/play/{index}", h.PlaySongHandler).Methods(http.MethodPost)
	api.HandleFunc("/{action}", h.ActionHandler).Methods(http.MethodPost)
	router.HandleFunc("/ws", h.WebSocketHandler).Methods(http.MethodGet)
}

// GetStateHandler 返回当前状态快照
func (h *PlayerHandler) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.player.Snapshot())
}

// ActionHandler 执行路径中指定的动作，请求体可携带 volume/index/songId
func (h *PlayerHandler) ActionHandler(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求")
		return
	}
	req.Action = mux.Vars(r)["action"]

	if err := h.Apply(req); err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.player.Snapshot())
}

// PlaySongHandler 播放指定下标的歌曲
func (h *PlayerHandler) PlaySongHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "无效的歌曲下标")
		return
	}
	if err := h.Apply(ActionRequest{Action: ActionPlaySong, Index: &index}); err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.player.Snapshot())
}

// RefreshPlaylistHandler 重新拉取歌单；失败时状态中带有错误提示，接口仍返回快照
func (h *PlayerHandler) RefreshPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
	defer cancel()

	if err := h.player.FetchPlaylist(ctx, h.music.Get()); err != nil {
		logger.Warn("playlist refresh failed", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, h.player.Snapshot())
}

// Apply 执行一个播放器动作
func (h *PlayerHandler) Apply(req ActionRequest) error {
	p := h.player
	switch req.Action {
	case ActionToggleExpand:
		p.ToggleExpand()
	case ActionTogglePlaylist:
		p.TogglePlaylist()
	case ActionTogglePlay:
		p.TogglePlay()
	case ActionNext:
		p.NextSong()
	case ActionPrev:
		p.PrevSong()
	case ActionSwitchMode:
		p.SwitchPlayMode()
	case ActionToggleMute:
		p.ToggleMute()
	case ActionAutoNext:
		p.HandleAutoNext()
	case ActionSetVolume:
		if req.Volume == nil {
			return fmt.Errorf("%w: volume", ErrMissingParam)
		}
		p.SetVolume(*req.Volume)
	case ActionPlaySong:
		if req.Index == nil {
			return fmt.Errorf("%w: index", ErrMissingParam)
		}
		p.PlaySong(*req.Index)
	case ActionToggleLike:
		if req.SongID == "" {
			p.ToggleLike(nil)
			return nil
		}
		if _, found := p.ToggleLikeByID(req.SongID); !found {
			return fmt.Errorf("%w: %s", ErrSongNotFound, req.SongID)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	return nil
}

// WebSocketHandler 建立 WebSocket 连接，先推送一次完整状态
func (h *PlayerHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := NewClient(h.hub, conn)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()

	if msg, err := NewWSMessage(MsgTypeState, h.player.Snapshot()); err == nil {
		client.SendMessage(msg)
	}

	// 连接的生命周期独立于 HTTP 请求
	client.ReadPump(context.Background(), h.handleMessage)
}

// handleMessage 处理浏览器发来的消息
func (h *PlayerHandler) handleMessage(ctx context.Context, client *Client, msg *WSMessage) {
	switch msg.Type {
	case MsgTypePlayback:
		var data PlaybackData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.replyError(client, "无效的播放状态")
			return
		}
		h.player.SetPlaying(data.IsPlaying)

	case MsgTypeProgress:
		var data ProgressData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.replyError(client, "无效的播放进度")
			return
		}
		h.progress(data)

	case MsgTypeEnded:
		h.player.HandleAutoNext()

	case MsgTypeAction:
		var req ActionRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			h.replyError(client, "无效的请求")
			return
		}
		if err := h.Apply(req); err != nil {
			h.replyError(client, err.Error())
		}

	default:
		logger.Debug("unknown message type",
			logger.String("type", string(msg.Type)),
			logger.String("client", client.ID))
	}
}

func (h *PlayerHandler) replyError(client *Client, text string) {
	msg, err := NewWSMessage(MsgTypeError, ErrorResponse{Error: text})
	if err != nil {
		return
	}
	client.SendMessage(msg)
}

// PushState 把每次状态变化推送给所有连接，直到 ctx 结束
func (h *PlayerHandler) PushState(ctx context.Context) {
	id, ch := h.player.Subscribe()
	defer h.player.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-ch:
			if !ok {
				return
			}
			msg, err := NewWSMessage(MsgTypeState, state)
			if err != nil {
				logger.Warn("failed to encode state", logger.ErrorField(err))
				continue
			}
			if err := h.hub.BroadcastWSMessage(msg); err != nil {
				logger.Warn("failed to broadcast state", logger.ErrorField(err))
			}
		}
	}
}

// decodeOptionalBody 解析请求体，空请求体视为零值
func decodeOptionalBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownAction):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSongNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrMissingParam):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
