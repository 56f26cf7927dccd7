package player

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"qfmwidget/cache"
	"qfmwidget/core/meting"
	"qfmwidget/db"
	"qfmwidget/model"
)

func metingServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchPlaylistNormalizesAndCaches(t *testing.T) {
	srv, _ := metingServer(t, http.StatusOK, `[{"id":1,"title":"A","author":"X","url":"u","pic":"http://p.jpg"}]`)
	store := db.NewMemoryStore()
	p := NewPlayer(store, meting.NewClient(5*time.Second))

	cfg := model.MusicConfig{Enable: true, ID: "42", Server: "netease", Type: "playlist", API: srv.URL}
	if err := p.FetchPlaylist(context.Background(), cfg); err != nil {
		t.Fatalf("FetchPlaylist: %v", err)
	}

	s := p.Snapshot()
	if len(s.Playlist) != 1 {
		t.Fatalf("playlist = %+v", s.Playlist)
	}
	if s.Playlist[0].Pic != "https://p.jpg?param=300y300" {
		t.Errorf("pic = %q", s.Playlist[0].Pic)
	}
	if s.Playlist[0].ID != "1" {
		t.Errorf("id = %q", s.Playlist[0].ID)
	}
	if s.CurrentSong == nil || s.CurrentSong.Title != "A" {
		t.Errorf("current song = %+v", s.CurrentSong)
	}
	if s.ErrorMsg != nil {
		t.Errorf("unexpected error message %q", *s.ErrorMsg)
	}

	raw, ok, _ := store.Get(context.Background(), cache.GetPlaylistKey("42"))
	if !ok {
		t.Fatal("playlist not cached")
	}
	var cached cache.CachedPlaylist
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("cached entry: %v", err)
	}
	if len(cached.List) != 1 || cached.Date == 0 {
		t.Errorf("cached = %+v", cached)
	}
}

func TestFetchPlaylistCachesUnsortedOrder(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	store.Set(ctx, cache.KeyLikedSongs, `["c"]`)

	p := NewPlayer(store, &staticSource{songs: songs("a", "b", "c")})
	p.InitLikeStore(ctx)
	if err := p.FetchPlaylist(ctx, model.MusicConfig{Enable: true, ID: "p"}); err != nil {
		t.Fatal(err)
	}

	if got := playlistIDs(p.Snapshot()); !equalIDs(got, []string{"c", "a", "b"}) {
		t.Errorf("playlist = %v", got)
	}

	cached, err := cache.NewPlaylistCache(store).Load(ctx, "p")
	if err != nil || cached == nil {
		t.Fatalf("Load cache: %v", err)
	}
	got := make([]string, len(cached.List))
	for i, s := range cached.List {
		got[i] = s.ID
	}
	if !equalIDs(got, []string{"a", "b", "c"}) {
		t.Errorf("cache should keep api order, got %v", got)
	}
}

func TestFetchPlaylistFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	if err := cache.NewPlaylistCache(store).Save(ctx, "42", songs("x", "y"), time.Now()); err != nil {
		t.Fatal(err)
	}

	srv, hits := metingServer(t, http.StatusBadGateway, `oops`)
	p := NewPlayer(store, meting.NewClient(time.Second))

	id, ch := p.Subscribe()
	defer p.Unsubscribe(id)

	err := p.FetchPlaylist(ctx, model.MusicConfig{Enable: true, ID: "42", API: srv.URL})
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if hits.Load() != 1 {
		t.Errorf("api hits = %d, want exactly 1 (no retries)", hits.Load())
	}

	// 第一次推送来自缓存
	select {
	case s := <-ch:
		if !equalIDs(playlistIDs(s), []string{"x", "y"}) {
			t.Errorf("cache fast path published %v", playlistIDs(s))
		}
		if s.ErrorMsg != nil {
			t.Error("error should be cleared at the start of a fetch")
		}
	case <-time.After(time.Second):
		t.Fatal("cache fast path did not publish")
	}

	s := p.Snapshot()
	if !equalIDs(playlistIDs(s), []string{"x", "y"}) {
		t.Errorf("failure should keep cached playlist, got %v", playlistIDs(s))
	}
	if s.ErrorMsg == nil || *s.ErrorMsg != FetchErrorMessage {
		t.Errorf("error message = %v", s.ErrorMsg)
	}
}

func TestFetchPlaylistNonArray(t *testing.T) {
	srv, _ := metingServer(t, http.StatusOK, `{"songs":[]}`)
	p := NewPlayer(nil, meting.NewClient(time.Second))
	if err := p.FetchPlaylist(context.Background(), model.MusicConfig{Enable: true, ID: "1", API: srv.URL}); err == nil {
		t.Fatal("expected shape error")
	}
	if s := p.Snapshot(); s.ErrorMsg == nil || len(s.Playlist) != 0 {
		t.Errorf("state after shape error = %+v", s)
	}
}

func TestFetchPlaylistSkipsCorruptCache(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	store.Set(ctx, cache.GetPlaylistKey("42"), `{"list": "not-a-list"`)

	p := NewPlayer(store, &staticSource{songs: songs("a")})
	if err := p.FetchPlaylist(ctx, model.MusicConfig{Enable: true, ID: "42"}); err != nil {
		t.Fatalf("corrupt cache must not be fatal: %v", err)
	}
	if got := playlistIDs(p.Snapshot()); !equalIDs(got, []string{"a"}) {
		t.Errorf("playlist = %v", got)
	}
}

func TestFetchPlaylistClearsPreviousError(t *testing.T) {
	ctx := context.Background()
	src := &staticSource{err: context.DeadlineExceeded}
	p := NewPlayer(nil, src)
	cfg := model.MusicConfig{Enable: true, ID: "1"}

	p.FetchPlaylist(ctx, cfg)
	if p.Snapshot().ErrorMsg == nil {
		t.Fatal("expected error message after failure")
	}

	src.err = nil
	src.songs = songs("a")
	if err := p.FetchPlaylist(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	if p.Snapshot().ErrorMsg != nil {
		t.Error("successful fetch should clear the error")
	}
}

func TestFetchPlaylistDisabled(t *testing.T) {
	srv, hits := metingServer(t, http.StatusOK, `[]`)
	p := NewPlayer(nil, meting.NewClient(time.Second))

	id, ch := p.Subscribe()
	defer p.Unsubscribe(id)

	if err := p.FetchPlaylist(context.Background(), model.MusicConfig{Enable: false, ID: "1", API: srv.URL}); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 0 {
		t.Error("disabled config should not hit the api")
	}
	select {
	case s := <-ch:
		t.Errorf("disabled fetch published state %+v", s)
	default:
	}
}

func TestRefetchReplacesWithoutReconciliation(t *testing.T) {
	ctx := context.Background()
	src := &staticSource{songs: songs("a", "b", "c")}
	p := NewPlayer(nil, src)
	cfg := model.MusicConfig{Enable: true, ID: "1"}
	p.FetchPlaylist(ctx, cfg)
	p.PlaySong(1) // b

	src.songs = songs("z", "y", "b")
	p.FetchPlaylist(ctx, cfg)

	s := p.Snapshot()
	if s.CurrentIndex != 1 || s.CurrentSong == nil || s.CurrentSong.ID != "y" {
		t.Errorf("index should stay put and resolve to the new occupant, got %d %+v", s.CurrentIndex, s.CurrentSong)
	}
}
