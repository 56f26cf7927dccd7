package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"qfmwidget/core/utils"
	"qfmwidget/logger"
	"qfmwidget/model"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay 编辑器保存时往往连续产生多个事件，合并后再重新加载
const reloadDelay = 300 * time.Millisecond

// WatchMusicConfig 监听歌单配置文件，内容变化且解析成功时回调 onChange。
// 阻塞直到 ctx 结束。
func WatchMusicConfig(ctx context.Context, path string, base model.MusicConfig, onChange func(model.MusicConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// 监听所在目录，兼容先写临时文件再重命名的保存方式
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}

	reload := utils.Debounce(func(p string) {
		music, err := LoadMusicConfigFile(p, base)
		if err != nil {
			logger.Warn("歌单配置重新加载失败", logger.String("path", p), logger.ErrorField(err))
			return
		}
		logger.Info("歌单配置已更新",
			logger.String("path", p),
			logger.String("id", music.ID),
			logger.String("server", music.Server))
		onChange(music)
	}, reloadDelay)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reload(target)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logger.ErrorField(err))
		}
	}
}
