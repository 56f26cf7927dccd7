package meting

import (
	"net/http"
	"time"
)

// Client Meting 聚合接口客户端
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient 创建新的API客户端
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	}
}

// SetHTTPClient 替换底层 HTTP 客户端
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetTimeout 设置请求超时时间
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}
