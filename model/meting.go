package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetingID 接口返回的歌曲ID，可能是数字也可能是字符串
type MetingID string

// UnmarshalJSON 兼容数字和字符串两种格式
func (id *MetingID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = MetingID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid meting id %s: %w", data, err)
	}
	// 数字 0 与缺省等价，归一化时回退到 url
	if f, err := n.Float64(); err == nil && f == 0 {
		*id = ""
		return nil
	}
	*id = MetingID(n.String())
	return nil
}

// Empty 对应原始数据中缺省或为假值的ID
func (id MetingID) Empty() bool {
	return id == ""
}

// MetingItem Meting 接口返回的原始条目
type MetingItem struct {
	ID     MetingID `json:"id,omitempty"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	URL    string   `json:"url"`
	Pic    string   `json:"pic,omitempty"`
	Lrc    string   `json:"lrc,omitempty"`
}
