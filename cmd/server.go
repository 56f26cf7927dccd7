package cmd

import (
	"qfmwidget/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动播放器服务",
	Long:  `启动播放器的HTTP/WebSocket服务，加载歌单并向页面推送播放状态`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(loadConfig())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
