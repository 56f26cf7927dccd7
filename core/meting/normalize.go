package meting

import (
	"strings"

	"qfmwidget/model"

	"github.com/samber/lo"
)

// thumbnailParam 封面缩略图尺寸参数
const thumbnailParam = "param=300y300"

// NormalizePic 封面强制使用 https 并追加缩略图尺寸
func NormalizePic(pic string) string {
	if pic == "" {
		return ""
	}
	if strings.HasPrefix(pic, "http:") {
		pic = "https:" + strings.TrimPrefix(pic, "http:")
	}
	if strings.Contains(pic, "?") {
		return pic + "&" + thumbnailParam
	}
	return pic + "?" + thumbnailParam
}

// NormalizeSong 将接口条目转换为歌曲，缺少ID时用 url 作为唯一键
func NormalizeSong(item model.MetingItem) model.Song {
	id := string(item.ID)
	if item.ID.Empty() {
		id = item.URL
	}
	return model.Song{
		ID:     id,
		Title:  item.Title,
		Author: item.Author,
		URL:    item.URL,
		Pic:    NormalizePic(item.Pic),
		Lrc:    item.Lrc,
	}
}

// NormalizeSongs 批量归一化
func NormalizeSongs(items []model.MetingItem) []model.Song {
	return lo.Map(items, func(item model.MetingItem, _ int) model.Song {
		return NormalizeSong(item)
	})
}
