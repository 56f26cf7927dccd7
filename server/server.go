package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"qfmwidget/config"
	"qfmwidget/core/meting"
	"qfmwidget/core/player"
	"qfmwidget/db"
	"qfmwidget/logger"
	"qfmwidget/model"

	"github.com/gorilla/mux"
)

// MusicSource 当前生效的歌单配置，配置文件变更时被替换
type MusicSource struct {
	mu  sync.RWMutex
	cfg model.MusicConfig
}

func NewMusicSource(cfg model.MusicConfig) *MusicSource {
	return &MusicSource{cfg: cfg}
}

func (m *MusicSource) Get() model.MusicConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *MusicSource) Set(cfg model.MusicConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// corsMiddleware 允许站点页面跨域访问播放器接口
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter 创建带 CORS 中间件的路由
func NewRouter(h *PlayerHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	h.RegisterRoutes(router)
	// 让预检请求命中中间件
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	return router
}

// Start initializes the player and serves HTTP until SIGINT/SIGTERM.
func Start(cfg *config.Config) error {
	store, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()
	logger.Info("store opened", logger.String("driver", cfg.StoreDriver))

	// MUSIC_CONFIG_FILE 已在 config.FromEnv 中合并
	music := NewMusicSource(cfg.Music)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	p := player.NewPlayer(store, meting.NewClient(cfg.HTTPTimeout))
	p.SetAudioTransport(NewWSTransport(hub))
	p.InitLikeStore(ctx)

	handler := NewPlayerHandler(p, hub, music)
	go handler.PushState(ctx)

	go func() {
		if err := p.FetchPlaylist(ctx, music.Get()); err != nil {
			logger.Warn("initial playlist fetch failed", logger.ErrorField(err))
		}
	}()

	if cfg.MusicConfigFile != "" {
		go func() {
			err := config.WatchMusicConfig(ctx, cfg.MusicConfigFile, cfg.Music, func(next model.MusicConfig) {
				music.Set(next)
				if err := p.FetchPlaylist(ctx, next); err != nil {
					logger.Warn("playlist refetch failed", logger.ErrorField(err))
				}
			})
			if err != nil {
				logger.Error("music config watcher stopped", logger.ErrorField(err))
			}
		}()
	}

	// 设置服务器超时
	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      NewRouter(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-stop:
	}
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
