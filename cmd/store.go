package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"qfmwidget/cache"
	"qfmwidget/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const probeKey = "qfmwidget-probe"

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "偏好存储相关工具",
}

var storePingCmd = &cobra.Command{
	Use:   "ping",
	Short: "存储连接测试",
	Long:  `连接 STORE_DRIVER 指定的存储，并进行一次写入、读取、删除。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		fmt.Printf("开始测试存储连接: %s\n", cfg.StoreDriver)

		store, err := db.Open(cfg)
		if err != nil {
			return fmt.Errorf("无法连接到存储: %w", err)
		}
		defer store.Close()
		fmt.Println("存储连接成功！")

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		value := time.Now().Format(time.RFC3339Nano)
		if err := store.Set(ctx, probeKey, value); err != nil {
			return fmt.Errorf("写入失败: %w", err)
		}
		got, ok, err := store.Get(ctx, probeKey)
		if err != nil {
			return fmt.Errorf("读取失败: %w", err)
		}
		if !ok || got != value {
			return fmt.Errorf("读取结果不一致: %q", got)
		}
		if err := store.Delete(ctx, probeKey); err != nil {
			return fmt.Errorf("删除失败: %w", err)
		}
		fmt.Println("存储基本操作测试成功！")
		return nil
	},
}

var storeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示已保存的播放器偏好",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store, err := db.Open(cfg)
		if err != nil {
			return fmt.Errorf("无法连接到存储: %w", err)
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		prefs := cache.NewPreferences(store)
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Key", "Value"})

		if liked, ok := prefs.LoadLikedSongs(ctx); ok {
			t.AppendRow(table.Row{cache.KeyLikedSongs, strings.Join(liked, ", ")})
		}
		if v, ok := prefs.LoadVolume(ctx); ok {
			t.AppendRow(table.Row{cache.KeyVolume, v})
		}
		if mode, ok := prefs.LoadPlayMode(ctx); ok {
			t.AppendRow(table.Row{cache.KeyPlayMode, fmt.Sprintf("%s (%s)", mode, mode.Label())})
		}
		if idx, ok := prefs.LoadCurrentIndex(ctx); ok {
			t.AppendRow(table.Row{cache.KeyCurrentIndex, idx})
		}
		cached, err := cache.NewPlaylistCache(store).Load(ctx, cfg.Music.ID)
		if err != nil {
			return err
		}
		if cached != nil {
			t.AppendRow(table.Row{
				cache.GetPlaylistKey(cfg.Music.ID),
				fmt.Sprintf("%d songs @ %s", len(cached.List), time.UnixMilli(cached.Date).Format(time.DateTime)),
			})
		}
		t.Render()
		return nil
	},
}

var storeClearCmd = &cobra.Command{
	Use:   "clear-playlist [id]",
	Short: "删除歌单缓存，默认 MUSIC_ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		id := cfg.Music.ID
		if len(args) == 1 {
			id = args[0]
		}

		store, err := db.Open(cfg)
		if err != nil {
			return fmt.Errorf("无法连接到存储: %w", err)
		}
		defer store.Close()

		if err := cache.NewPlaylistCache(store).Clear(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("已删除 %s\n", cache.GetPlaylistKey(id))
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storePingCmd, storeShowCmd, storeClearCmd)
	rootCmd.AddCommand(storeCmd)
}
