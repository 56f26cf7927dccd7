package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"qfmwidget/cache"
	"qfmwidget/core/meting"
	"qfmwidget/db"
	"qfmwidget/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	fetchID     string
	fetchServer string
	fetchType   string
	fetchAPI    string
	fetchSave   bool
	fetchCached bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "拉取歌单并以表格输出",
	Long:  `请求 Meting 接口获取歌单，输出规范化后的歌曲列表。--save 写入歌单缓存，--cached 只读取缓存。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		music := cfg.Music
		if cmd.Flags().Changed("id") {
			music.ID = fetchID
		}
		if cmd.Flags().Changed("server") {
			music.Server = fetchServer
		}
		if cmd.Flags().Changed("type") {
			music.Type = fetchType
		}
		if cmd.Flags().Changed("api") {
			music.API = fetchAPI
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout+5*time.Second)
		defer cancel()

		var (
			store db.KVStore
			err   error
		)
		if fetchSave || fetchCached {
			if store, err = db.Open(cfg); err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer store.Close()
		}
		playlists := cache.NewPlaylistCache(store)

		var songs []model.Song
		if fetchCached {
			cached, err := playlists.Load(ctx, music.ID)
			if err != nil {
				return err
			}
			if cached == nil {
				return fmt.Errorf("no cached playlist for %s", music.ID)
			}
			fmt.Printf("缓存时间: %s\n", time.UnixMilli(cached.Date).Format(time.DateTime))
			songs = cached.List
		} else {
			client := meting.NewClient(cfg.HTTPTimeout)
			if songs, err = client.GetPlaylistSongs(ctx, music); err != nil {
				return err
			}
			if fetchSave {
				if err := playlists.Save(ctx, music.ID, songs, time.Now()); err != nil {
					return err
				}
				fmt.Printf("已写入缓存 %s\n", cache.GetPlaylistKey(music.ID))
			}
		}

		printSongs(songs)
		return nil
	},
}

func printSongs(songs []model.Song) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "ID", "Title", "Author", "Lyric"})
	for i, s := range songs {
		lrc := ""
		if s.Lrc != "" {
			lrc = "✓"
		}
		t.AppendRow(table.Row{i, s.ID, s.Title, s.Author, lrc})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(songs)})
	t.Render()
}

func init() {
	fetchCmd.Flags().StringVar(&fetchID, "id", "", "歌单ID，默认取 MUSIC_ID")
	fetchCmd.Flags().StringVar(&fetchServer, "server", "", "平台，如 netease、tencent")
	fetchCmd.Flags().StringVar(&fetchType, "type", "", "类型，如 playlist")
	fetchCmd.Flags().StringVar(&fetchAPI, "api", "", "Meting 接口地址")
	fetchCmd.Flags().BoolVar(&fetchSave, "save", false, "写入歌单缓存")
	fetchCmd.Flags().BoolVar(&fetchCached, "cached", false, "只读取歌单缓存")
	rootCmd.AddCommand(fetchCmd)
}
