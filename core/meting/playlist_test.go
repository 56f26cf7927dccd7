package meting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"qfmwidget/model"
)

func TestBuildPlaylistURL(t *testing.T) {
	cfg := model.MusicConfig{Enable: true, ID: "3778678", Server: "netease", Type: "playlist"}
	raw, err := BuildPlaylistURL(cfg, 0.5)
	if err != nil {
		t.Fatalf("BuildPlaylistURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	if u.Scheme+"://"+u.Host+u.Path != model.DefaultAPIURL {
		t.Errorf("base = %q, want default endpoint", u.Scheme+"://"+u.Host+u.Path)
	}
	q := u.Query()
	if q.Get("server") != "netease" || q.Get("type") != "playlist" || q.Get("id") != "3778678" || q.Get("r") != "0.5" {
		t.Errorf("unexpected query %v", q)
	}

	cfg.API = "https://meting.example.com/api?token=x"
	raw, _ = BuildPlaylistURL(cfg, 0.1)
	u, _ = url.Parse(raw)
	if u.Host != "meting.example.com" || u.Query().Get("token") != "x" || u.Query().Get("id") != "3778678" {
		t.Errorf("custom api not honoured: %s", raw)
	}
}

func TestNormalizePic(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"http://p.jpg", "https://p.jpg?param=300y300"},
		{"https://p.jpg", "https://p.jpg?param=300y300"},
		{"http://p.jpg?x=1", "https://p.jpg?x=1&param=300y300"},
		{"//cdn/p.jpg", "//cdn/p.jpg?param=300y300"},
	}
	for _, tt := range tests {
		if got := NormalizePic(tt.in); got != tt.want {
			t.Errorf("NormalizePic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSongFallsBackToURL(t *testing.T) {
	s := NormalizeSong(model.MetingItem{Title: "T", Author: "A", URL: "https://u/1.mp3", Lrc: "https://l"})
	if s.ID != "https://u/1.mp3" {
		t.Errorf("id = %q, want url fallback", s.ID)
	}
	if s.Pic != "" || s.Lrc != "https://l" {
		t.Errorf("unexpected song %+v", s)
	}
}

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("r") == "" {
			t.Errorf("missing cache-busting parameter: %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetPlaylistSongs(t *testing.T) {
	srv := newTestServer(t, http.StatusOK,
		`[{"id":1,"title":"A","author":"X","url":"u","pic":"http://p.jpg"},{"title":"B","author":"Y","url":"u2"}]`)

	client := NewClient(5 * time.Second)
	songs, err := client.GetPlaylistSongs(context.Background(), model.MusicConfig{
		Enable: true, ID: "1", Server: "netease", Type: "playlist", API: srv.URL,
	})
	if err != nil {
		t.Fatalf("GetPlaylistSongs: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("got %d songs", len(songs))
	}
	want := model.Song{ID: "1", Title: "A", Author: "X", URL: "u", Pic: "https://p.jpg?param=300y300"}
	if songs[0] != want {
		t.Errorf("songs[0] = %+v, want %+v", songs[0], want)
	}
	if songs[1].ID != "u2" {
		t.Errorf("songs[1].ID = %q, want url fallback", songs[1].ID)
	}
}

func TestGetPlaylistErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		isFmt  bool
	}{
		{"server error", http.StatusInternalServerError, `[]`, false},
		{"not found", http.StatusNotFound, `not found`, false},
		{"object body", http.StatusOK, `{"error":"bad id"}`, true},
		{"empty body", http.StatusOK, ``, true},
		{"broken array", http.StatusOK, `[{"id":1,`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body)
			_, err := NewClient(time.Second).GetPlaylistItems(context.Background(), model.MusicConfig{API: srv.URL, ID: "1"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.isFmt && !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}
